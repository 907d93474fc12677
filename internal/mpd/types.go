package mpd

import (
	"strings"

	"github.com/samber/lo"
)

// Status is the subset of MPD player status the queue maintainer reads.
type Status struct {
	QueueLength uint
	// SongPosition is nil when no song is current: the queue is empty or
	// playback has run past its end.
	SongPosition *int
	Playing      bool
	Single       bool
}

// HasCurrent reports whether a song is current.
func (s Status) HasCurrent() bool {
	return s.SongPosition != nil
}

// Event is an MPD idle subsystem the maintainer reacts to.
type Event uint8

const (
	EventDatabase Event = 1 << iota
	EventQueue
	EventPlayer
)

// subsystem names as used by the idle command. The queue is called
// "playlist" on the wire.
var eventNames = map[Event]string{
	EventDatabase: "database",
	EventQueue:    "playlist",
	EventPlayer:   "player",
}

// EventSet is a bit set of Events.
type EventSet uint8

// NewEventSet builds a set from the given events.
func NewEventSet(events ...Event) EventSet {
	var s EventSet
	for _, e := range events {
		s = s.Add(e)
	}
	return s
}

// Add returns s with e included.
func (s EventSet) Add(e Event) EventSet {
	return s | EventSet(e)
}

// Has reports whether e is in s.
func (s EventSet) Has(e Event) bool {
	return s&EventSet(e) != 0
}

// Empty reports whether s holds no events.
func (s EventSet) Empty() bool {
	return s == 0
}

// Subsystems returns the idle subsystem names for s.
func (s EventSet) Subsystems() []string {
	var names []string
	for _, e := range []Event{EventDatabase, EventQueue, EventPlayer} {
		if s.Has(e) {
			names = append(names, eventNames[e])
		}
	}
	return names
}

func (s EventSet) String() string {
	if s.Empty() {
		return "none"
	}
	return strings.Join(s.Subsystems(), ",")
}

func eventFromSubsystem(name string) (Event, bool) {
	e, ok := lo.FindKey(eventNames, name)
	return e, ok
}

// Song is a library entry: its URI and lower-cased tag names mapped to values.
type Song struct {
	URI  string
	Tags map[string]string
}

// Tag returns the value for the named tag, matching names case-insensitively.
func (s Song) Tag(name string) (string, bool) {
	v, ok := s.Tags[strings.ToLower(name)]
	return v, ok
}
