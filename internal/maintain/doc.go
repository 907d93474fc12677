// Package maintain keeps an MPD queue topped up with songs picked from a
// shuffle chain.
//
// # Event Loop
//
// Run optionally primes playback (TryFirst followed by TryEnqueue) and then
// waits on MPD idle notifications for the database, queue and player
// subsystems. Each returned event set is handled in a fixed order:
//
//  1. Database update with ExitOnDBUpdate: Run returns ErrDatabaseUpdated.
//  2. Database update with a reloader: the chain is rebuilt and the
//     iteration ends.
//  3. Queue or player change: the suspend probe runs when configured, then
//     TryEnqueue unless the maintainer is suspended.
//
// A static URI list has no reloader, so database updates fall through to
// queue and player handling.
//
// # Enqueue Decision
//
// TryEnqueue reads the player status once and adds songs when playback has
// run past the end of the queue, the queue is empty, or fewer than
// QueueBuffer songs remain after the current one. With a zero buffer exactly
// one group is added; otherwise groups are added until the buffer is
// covered, counting the song about to be started when playback had stopped.
// A group may hold several songs, so the last group can overshoot.
//
// When playback had stopped, it is restarted at the first added song. If MPD
// is in single mode playback is paused again right away so the new song sits
// cued instead of playing a single track.
//
// # Suspend
//
// With SuspendTimeout set, an empty queue on a queue or player event is
// checked again after the timeout. If it is still empty the maintainer stops
// enqueuing. The first later event that finds songs in the queue resumes it.
//
// # Reload
//
// Reload loads into a staging chain and swaps it in with Chain.Replace, so a
// failing loader never leaves the live chain half built. Pool size is logged
// and published after every load.
package maintain
