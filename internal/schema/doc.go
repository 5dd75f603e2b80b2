// Package schema reconstructs class layouts from the schema registration
// system of a running target process.
//
// The target maintains its own reflection metadata: per-module type scopes,
// each holding class records that describe declared fields (name, type,
// instance offset). This package walks those records through a borrowed
// read capability (memory.Reader) without ever writing to the target.
//
// Descriptors are transient, read-only views. They cache nothing: every
// accessor re-reads the target, so results track the target's live memory.
// Reads are not atomic across calls; if the target mutates its own schema
// tables mid-walk, a count can disagree with the table observed after it.
// Descriptors add no locking of their own and are as concurrency-safe as
// the Reader they borrow.
package schema
