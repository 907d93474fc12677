package state

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/five82/shuffler/internal/mpd"
	"github.com/five82/shuffler/internal/shuffle"
)

func TestStore_UpdateStatusAndSnapshotClone(t *testing.T) {
	var s Store

	pos := 4
	before := time.Now()
	s.UpdateStatus(&mpd.Status{QueueLength: 9, SongPosition: &pos, Playing: true}, nil)

	snap := s.Snapshot()
	if !snap.HasStatus || snap.Status.QueueLength != 9 {
		t.Fatalf("snapshot status = %#v, want length 9 HasStatus=true", snap.Status)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	*snap.Status.SongPosition = 99
	pos = 42
	snap2 := s.Snapshot()
	if *snap2.Status.SongPosition != 4 {
		t.Fatalf("Snapshot should clone song position; got %d want 4", *snap2.Status.SongPosition)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.UpdateStatus(&mpd.Status{QueueLength: 1}, nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.UpdateStatus(nil, origErr)

	snap := s.Snapshot()
	if snap.HasStatus != prev.HasStatus || snap.Status.QueueLength != prev.Status.QueueLength {
		t.Fatalf("status changed on error: got %#v want %#v", snap.Status, prev.Status)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError = %v, want the stored error", snap.LastError)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	for i := 1; i <= 3; i++ {
		s.UpdateStatus(nil, fmt.Errorf("fail %d", i))
		snap = s.Snapshot()
		if snap.ConsecutiveFailures != i {
			t.Fatalf("ConsecutiveFailures = %d, want %d", snap.ConsecutiveFailures, i)
		}
		if want := i >= 2; snap.IsOffline() != want {
			t.Fatalf("IsOffline() = %v after %d failures, want %v", snap.IsOffline(), i, want)
		}
	}

	// Success resets counter
	s.UpdateStatus(&mpd.Status{}, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0 after success", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false after success")
	}
}

func TestStore_RecordPickKeepsRecentLimit(t *testing.T) {
	var s Store

	for i := 0; i < RecentLimit+3; i++ {
		s.RecordPick([]string{fmt.Sprintf("song-%d", i), "extra"})
	}

	snap := s.Snapshot()
	if snap.Enqueued != 2*(RecentLimit+3) {
		t.Fatalf("Enqueued = %d, want %d", snap.Enqueued, 2*(RecentLimit+3))
	}
	if len(snap.Recent) != RecentLimit {
		t.Fatalf("len(Recent) = %d, want %d", len(snap.Recent), RecentLimit)
	}
	if got := snap.Recent[0].URIs[0]; got != "song-3" {
		t.Fatalf("oldest kept pick = %q, want song-3", got)
	}
	if got := snap.Recent[RecentLimit-1].URIs[0]; got != fmt.Sprintf("song-%d", RecentLimit+2) {
		t.Fatalf("newest pick = %q", got)
	}

	snap.Recent[0].URIs[0] = "mutated"
	if s.Snapshot().Recent[0].URIs[0] != "song-3" {
		t.Fatalf("Snapshot should clone recent picks")
	}
}

func TestStore_PoolAndActive(t *testing.T) {
	var s Store

	s.SetPool(shuffle.PoolSize{Groups: 3, URIs: 10})
	s.SetActive(true)

	snap := s.Snapshot()
	if snap.Pool != (shuffle.PoolSize{Groups: 3, URIs: 10}) {
		t.Fatalf("Pool = %#v", snap.Pool)
	}
	if !snap.Active {
		t.Fatalf("Active = false, want true")
	}
}
