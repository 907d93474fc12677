// Package state provides thread-safe state shared between shuffler's
// background goroutines and the status view.
//
// # Overview
//
// Three producers write into one Store: the keepalive poller records MPD
// player status, the queue maintainer records whether it is active, the
// pool size after every load and each group it enqueues. The status view is
// the only reader and renders whatever Snapshot returns.
//
//	Poller ──UpdateStatus──┐
//	                       ├──→ Store ──Snapshot──→ status view
//	Maintainer ──SetPool───┤
//	           ──SetActive─┤
//	           ──RecordPick┘
//
// # Concurrency Model
//
// The Store uses a readers-writer lock. Writers take the exclusive lock for
// the duration of a field update; Snapshot takes the read lock while it
// copies. The lock is never held during network I/O or rendering.
//
// # Update Semantics
//
// UpdateStatus keeps the previous player status when a poll fails and only
// records the error, so the view keeps showing the last known state:
//
//	store.UpdateStatus(&status, nil) → Status replaced, failures reset
//	store.UpdateStatus(nil, err)     → Status kept, LastError = err, failures++
//
// After two consecutive failures IsOffline reports true.
//
// RecordPick keeps the RecentLimit newest picks and a running total of
// enqueued songs.
//
// # Snapshot Isolation
//
// Snapshot returns copies of every slice and pointer it holds, so callers may
// modify the result freely without affecting the store.
package state
