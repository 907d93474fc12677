// Package ui implements the --watch status view with Bubble Tea.
//
// The view polls state.Store on a fixed tick and renders player status, the
// pool size, whether the maintainer is active or suspended and the most
// recent picks. It never talks to MPD itself.
//
// Key bindings:
//
//	q, ctrl+c  quit
//	h, ?       toggle full help
//	T          cycle theme
//	p          toggle full URIs in the pick list
//
// Theme and path display survive restarts through package prefs. Logging is
// redirected to a file by the caller while the view owns the terminal.
package ui
