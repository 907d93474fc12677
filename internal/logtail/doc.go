// Package logtail reads the end of shuffler's log file.
//
// While the status view owns the terminal, zerolog writes JSON lines to a
// file instead of stderr. The view shows the newest of those lines through
// Tail, which decodes each JSON line into a compact one-line form:
//
//	21:04:13 INF Picking from 312 groups (3904 songs). groups=312 songs=3904
//
// Read keeps only a ring buffer of maxLines while scanning, so large files
// are not held in memory.
package logtail
