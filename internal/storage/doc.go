// Package storage opens the destination bucket for downloaded images.
//
// Destinations are gocloud.dev buckets so the same download path serves a
// local directory, S3, GCS, or an in-memory bucket in tests. With no bucket
// URL configured, downloads land in an "illustrations" directory next to
// the executable, matching where users expect a portable tool to write.
package storage
