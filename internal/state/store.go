package state

import (
	"slices"
	"sync"
	"time"

	"github.com/five82/shuffler/internal/mpd"
	"github.com/five82/shuffler/internal/shuffle"
)

// RecentLimit caps how many picks a snapshot remembers.
const RecentLimit = 10

// Pick is one group handed to MPD.
type Pick struct {
	URIs []string
	At   time.Time
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Status      mpd.Status
	HasStatus   bool
	LastUpdated time.Time
	LastError   error
	// ConsecutiveFailures counts status polls that failed in a row.
	ConsecutiveFailures int

	Pool     shuffle.PoolSize
	Active   bool
	Recent   []Pick // newest last
	Enqueued int
}

// IsOffline returns true when MPD has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// UpdateStatus records a status poll. When err is non-nil the previous status
// is kept but the error is recorded for visibility.
func (s *Store) UpdateStatus(status *mpd.Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	if status != nil {
		s.snapshot.Status = cloneStatus(*status)
		s.snapshot.HasStatus = true
	} else {
		s.snapshot.HasStatus = false
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// SetPool records the size of the pool the maintainer picks from.
func (s *Store) SetPool(pool shuffle.PoolSize) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Pool = pool
}

// SetActive records whether the maintainer is currently enqueuing.
func (s *Store) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Active = active
}

// RecordPick appends a pick, dropping the oldest beyond RecentLimit.
func (s *Store) RecordPick(uris []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Enqueued += len(uris)
	s.snapshot.Recent = append(s.snapshot.Recent, Pick{URIs: slices.Clone(uris), At: time.Now()})
	if over := len(s.snapshot.Recent) - RecentLimit; over > 0 {
		s.snapshot.Recent = slices.Delete(s.snapshot.Recent, 0, over)
	}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Status = cloneStatus(s.snapshot.Status)
	snap.Recent = clonePicks(s.snapshot.Recent)
	return snap
}

func cloneStatus(st mpd.Status) mpd.Status {
	if st.SongPosition != nil {
		pos := *st.SongPosition
		st.SongPosition = &pos
	}
	return st
}

func clonePicks(picks []Pick) []Pick {
	if len(picks) == 0 {
		return nil
	}
	dup := make([]Pick, len(picks))
	for i, p := range picks {
		dup[i] = Pick{URIs: slices.Clone(p.URIs), At: p.At}
	}
	return dup
}
