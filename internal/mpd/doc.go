// Package mpd connects to a Music Player Daemon and exposes the small surface
// the shuffler needs.
//
// # Overview
//
// The package defines capability interfaces that the rest of the program
// depends on, and a Client that implements them on top of
// github.com/fhs/gompd/v2/mpd:
//
//   - Player: status, add, play-at, pause and blocking idle notifications
//   - Library: listing the database and looking up single URIs
//   - Conn: Player + Library + keepalive ping + close
//
// The queue maintainer and the catalog loaders only see these interfaces, so
// tests drive them with in-memory fakes.
//
// # Connections
//
// A Client owns two connections. Commands go over a single gompd.Client
// guarded by a mutex, so the keepalive poller and the maintainer can share it.
// Idle notifications arrive on a gompd.Watcher, which keeps its own
// connection in idle mode permanently.
//
//	client, err := mpd.Connect(ctx, addr, mpd.TerminalPrompt)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	events, err := client.Idle(ctx, mpd.WatchedEvents)
//
// # Addressing
//
// Resolve applies the usual MPD client conventions: explicit flags win, then
// MPD_HOST and MPD_PORT, then localhost:6600. A host of the form
// "password@host" carries a password, and a host starting with "/" is a unix
// socket.
//
// # Authorization
//
// Connect applies any supplied password, then checks that every entry of
// RequiredCommands is allowed. When commands are missing and no password was
// supplied, the PasswordPrompt is asked until MPD accepts a password. If
// commands are still missing, Connect fails with ErrUnauthorized listing them.
package mpd
