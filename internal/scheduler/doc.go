// Package scheduler serializes rebuilds triggered by file system events.
//
// # Why Scheduler Exists
//
// Editors and version control tools produce bursts of events: a single save
// can emit a write, a chmod and a rename. Running one full build pass per
// event would interleave file reads and writes of overlapping passes, so the
// output could reflect a mix of old and new sources.
//
// # How It Works
//
// The Coalescer keeps at most one pass running and at most one request
// pending. Triggers that arrive while a pass runs are merged into the
// pending request:
//
//  1. Trigger stores or merges the request and wakes the worker
//  2. The worker takes the pending request and runs the job
//  3. Triggers during the job merge into a new pending request
//  4. When the job returns, the worker picks the merged request up
//
// Merging ORs the Refresh flag, so a manifest change anywhere in a burst
// still makes the host refresh its resource index.
package scheduler
