// Package shuffle implements the weighted random pick used to feed the play
// queue.
//
// # Overview
//
// A Chain holds Groups. A Group is one or more song URIs picked together (a
// single song, or every song sharing a group-by key such as an album). Each
// group's weight is its URI count, so the chance of any individual song being
// picked stays uniform across the catalog even when selection happens per
// group.
//
// # Exclusion Window
//
// Every pick pushes the group id onto a FIFO of capacity WindowSize. Groups in
// the FIFO are removed from the sampling index until they fall off the front,
// so no group repeats within WindowSize consecutive picks.
//
// When the window is at least as large as the number of groups, every group
// eventually ends up excluded. Pick then releases the oldest exclusions until
// one group is selectable again, keeping the most recent picks out as long as
// possible.
//
// # Weight Index
//
// Included weights live in a Fenwick tree. Excluding a group zeroes its entry
// and releasing restores it, so pick, exclude and release are all O(log n).
//
// # Concurrency
//
// All Chain methods take the same mutex. Reloads build a fresh chain and call
// Replace so the live chain is swapped in one step.
package shuffle
