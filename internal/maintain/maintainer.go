package maintain

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/five82/shuffler/internal/catalog"
	"github.com/five82/shuffler/internal/mpd"
	"github.com/five82/shuffler/internal/shuffle"
	"github.com/five82/shuffler/internal/state"
)

var (
	// ErrLoadFailure is wrapped by errors from rebuilding the chain after a
	// database update. The live chain is left as it was.
	ErrLoadFailure = errors.New("catalog reload failed")
	// ErrDatabaseUpdated is returned by Run when ExitOnDBUpdate is set and
	// the MPD database changes.
	ErrDatabaseUpdated = errors.New("database updated")
)

// Policy configures how the queue is kept topped up.
type Policy struct {
	// QueueBuffer is the number of songs to keep queued after the current one.
	QueueBuffer uint
	// SuspendTimeout enables the suspend probe when non-zero.
	SuspendTimeout time.Duration
	PlayOnStartup  bool
	ExitOnDBUpdate bool
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Maintainer keeps the MPD queue populated from a shuffle chain.
type Maintainer struct {
	player mpd.Player
	chain  *shuffle.Chain
	policy Policy

	reloader catalog.Loader
	store    *state.Store
	sleep    SleepFunc

	active bool
}

// Option customises a Maintainer.
type Option func(*Maintainer)

// WithReloader sets the loader used to rebuild the chain when the MPD
// database changes. Without one, database updates are ignored.
func WithReloader(l catalog.Loader) Option {
	return func(m *Maintainer) { m.reloader = l }
}

// WithStore publishes activity into store.
func WithStore(store *state.Store) Option {
	return func(m *Maintainer) { m.store = store }
}

// WithSleep replaces the sleep used by the suspend probe.
func WithSleep(fn SleepFunc) Option {
	return func(m *Maintainer) {
		if fn != nil {
			m.sleep = fn
		}
	}
}

// New returns a Maintainer that starts out active.
func New(player mpd.Player, chain *shuffle.Chain, policy Policy, opts ...Option) *Maintainer {
	m := &Maintainer{
		player: player,
		chain:  chain,
		policy: policy,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.setActive(true)
	return m
}

// Active reports whether the maintainer is currently enqueuing.
func (m *Maintainer) Active() bool {
	return m.active
}

// Run maintains the queue until ctx is cancelled or an error occurs. It
// returns nil on cancellation and ErrDatabaseUpdated when configured to exit
// on database updates.
func (m *Maintainer) Run(ctx context.Context) error {
	if m.policy.PlayOnStartup {
		if err := m.TryFirst(ctx); err != nil {
			return stopped(ctx, err)
		}
		if err := m.TryEnqueue(ctx); err != nil {
			return stopped(ctx, err)
		}
	}

	for {
		events, err := m.player.Idle(ctx, mpd.WatchedEvents)
		if err != nil {
			return stopped(ctx, errors.Wrap(err, "wait for mpd events"))
		}
		log.Debug().Stringer("events", events).Msg("mpd events")
		if err := m.Handle(ctx, events); err != nil {
			return stopped(ctx, err)
		}
	}
}

// Handle runs one iteration of the event loop for the given events. A
// database update is handled before queue and player changes, and a reload
// ends the iteration.
func (m *Maintainer) Handle(ctx context.Context, events mpd.EventSet) error {
	if events.Has(mpd.EventDatabase) {
		if m.policy.ExitOnDBUpdate {
			return ErrDatabaseUpdated
		}
		if m.reloader != nil {
			return m.Reload(ctx)
		}
	}
	if !events.Has(mpd.EventQueue) && !events.Has(mpd.EventPlayer) {
		return nil
	}

	if m.policy.SuspendTimeout > 0 {
		if err := m.probeSuspend(ctx); err != nil {
			return err
		}
	}
	if !m.active {
		log.Debug().Msg("suspended, not enqueuing")
		return nil
	}
	return m.TryEnqueue(ctx)
}

// probeSuspend goes inactive when the queue is empty and stays empty for the
// whole suspend timeout. Any non-empty reading makes the maintainer active.
func (m *Maintainer) probeSuspend(ctx context.Context) error {
	status, err := m.player.CurrentStatus(ctx)
	if err != nil {
		return err
	}
	if status.QueueLength != 0 {
		m.setActive(true)
		return nil
	}

	if err := m.sleep(ctx, m.policy.SuspendTimeout); err != nil {
		return err
	}
	status, err = m.player.CurrentStatus(ctx)
	if err != nil {
		return err
	}
	m.setActive(status.QueueLength != 0)
	if !m.active {
		log.Info().Dur("timeout", m.policy.SuspendTimeout).Msg("queue stayed empty, suspending")
	}
	return nil
}

// TryFirst starts playback with a freshly picked group unless MPD is already
// playing.
func (m *Maintainer) TryFirst(ctx context.Context) error {
	status, err := m.player.CurrentStatus(ctx)
	if err != nil {
		return err
	}
	if status.Playing {
		return nil
	}
	if _, err := m.enqueue(ctx); err != nil {
		return err
	}
	return m.player.PlayAt(ctx, status.QueueLength)
}

// TryEnqueue tops the queue up to the configured buffer and restarts
// playback when it had run off the end of the queue.
func (m *Maintainer) TryEnqueue(ctx context.Context) error {
	status, err := m.player.CurrentStatus(ctx)
	if err != nil {
		return err
	}

	pastLast := !status.HasCurrent()
	queueEmpty := status.QueueLength == 0
	remaining := 0
	if !pastLast {
		remaining = max(int(status.QueueLength)-(*status.SongPosition+1), 0)
	}

	shouldAdd := pastLast || remaining < int(m.policy.QueueBuffer) || queueEmpty
	if !shouldAdd {
		return nil
	}

	if m.policy.QueueBuffer == 0 {
		if _, err := m.enqueue(ctx); err != nil {
			return err
		}
	} else {
		needed := int(m.policy.QueueBuffer) - remaining
		if pastLast || queueEmpty {
			needed++
		}
		for needed > 0 {
			added, err := m.enqueue(ctx)
			if err != nil {
				return err
			}
			needed -= added
		}
	}

	if !pastLast && !queueEmpty {
		return nil
	}
	// status predates the additions, so its length is the first new song.
	if err := m.player.PlayAt(ctx, status.QueueLength); err != nil {
		return err
	}
	if status.Single {
		return m.player.Pause(ctx)
	}
	return nil
}

// enqueue picks one group and appends it to the queue, returning the number
// of songs added.
func (m *Maintainer) enqueue(ctx context.Context) (int, error) {
	uris, err := m.chain.Pick()
	if err != nil {
		return 0, err
	}
	if err := m.player.Add(ctx, uris...); err != nil {
		return 0, err
	}
	log.Debug().Strs("uris", uris).Msg("enqueued")
	if m.store != nil {
		m.store.RecordPick(uris)
	}
	return len(uris), nil
}

func (m *Maintainer) setActive(active bool) {
	m.active = active
	if m.store != nil {
		m.store.SetActive(active)
	}
}

// stopped turns errors caused by cancellation into a clean stop.
func stopped(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
