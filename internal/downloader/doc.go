// Package downloader orchestrates bulk image downloads into a bucket.
//
// This package coordinates the planner, the task queue, the worker pool,
// and the progress reporter for one "download this set of illustrations"
// operation. It owns the retry policy: a transient transfer failure puts
// the task back on the queue and charges the URL's retry budget; a URL
// that exhausts its budget is retired, counted as finished and logged but
// never surfaced as a hard failure.
//
// # Usage
//
// The main entry point is the Download function:
//
//	err := downloader.Download(ctx, bucket, illusts, downloader.Options{
//	    Workers: 10,
//	    Layout:  planner.Layout{AddUserFolder: true},
//	})
//
// # Worker Pool
//
// A fixed number of workers drain the shared queue. Completion is the
// queue's join condition: every pushed task, retries included, has reached
// a terminal state. Nothing is ordered across tasks; only the aggregate
// finished count is guaranteed.
package downloader
