// Package planner decides which remote images still need fetching.
//
// Given a set of illustrations and a target layout, it computes the
// destination key for every image URL, filters out keys that already exist
// in the destination bucket, dedups colliding keys within the pass, and
// fills the task queue. Re-running the planner after a successful run
// enqueues nothing.
//
// # Layout
//
// With AddUserFolder, images land under a per-user prefix. An existing
// prefix is reused when its leading whitespace-delimited token equals the
// user id, even if the rest of the name is a stale display name; a new
// "<id> <name>" prefix (filesystem-illegal characters replaced by spaces)
// is only synthesized when no prefix matches.
//
// With AddRankPrefix, filenames gain a "<rank> - " prefix, as used for
// ranking downloads.
package planner
