// Package app is the composition root for shuffler.
//
// # Overview
//
// Run wires configuration, the MPD connection, catalog loading and the queue
// maintainer together, then blocks until the context is cancelled, the
// maintainer fails or, with --exit-on-db-update, the database changes.
//
// # Startup Sequence
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> resolveConfig()   config file, then flags and tweaks
//	       ├─────> setupLogging()    zerolog to stderr, or a file with --watch
//	       ├─────> buildRules()      exclude rules from config and flags
//	       ├─────> mpd.Connect()     dial, authorize, start idle watcher
//	       ├─────> maintain.Load()   fill the shuffle chain, report pool size
//	       ├─────> StartPoller()     keepalive and status into state.Store
//	       └─────> Maintainer.Run()  blocks (next to ui.Run with --watch)
//
// --print-all and --only stop after loading: the first prints every URI in
// the pool, the second enqueues the requested number of picks.
//
// # Catalog Source
//
// Without --file the MPD database is the source, and the same MPDLoader is
// handed to the maintainer for reloading on database updates. With --file
// the URI list is read once; there is nothing to reload it from.
//
// # Keepalive Poller
//
// MPD closes command connections that stay silent past its
// connection_timeout, and the maintainer only talks to MPD when something
// happens. The poller pings on the configured keepalive interval and records
// player status for the status view. Failed polls are logged and retried with
// exponential backoff capped at five minutes.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration, flags or tweaks
//   - Connection or authorization failure
//   - Catalog load failure, including a failed reload
//   - An empty pool when a pick is needed
//   - maintain.ErrDatabaseUpdated when exiting on database updates
//
// Recoverable errors (logged, polling continues):
//   - Keepalive and status poll failures
package app
