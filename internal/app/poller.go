package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/five82/shuffler/internal/mpd"
	"github.com/five82/shuffler/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 5 * time.Minute
)

// statusSource is what the poller needs from the MPD connection.
type statusSource interface {
	Ping(ctx context.Context) error
	CurrentStatus(ctx context.Context) (mpd.Status, error)
}

// StartPoller launches a background goroutine that keeps the command
// connection alive and records player status in store. It returns
// immediately. Failed polls back off exponentially.
func StartPoller(ctx context.Context, store *state.Store, client statusSource, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			refresh(ctx, store, client)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, client statusSource) {
	if err := client.Ping(ctx); err != nil {
		store.UpdateStatus(nil, err)
		log.Warn().Err(err).Msg("mpd keepalive failed")
		return
	}
	status, err := client.CurrentStatus(ctx)
	if err != nil {
		store.UpdateStatus(nil, err)
		log.Warn().Err(err).Msg("mpd status poll failed")
		return
	}
	store.UpdateStatus(&status, nil)
}

// calculateBackoff doubles interval for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	backoff := interval
	for i := 0; i < failures && backoff < maxBackoff; i++ {
		backoff *= 2
	}
	return min(backoff, maxBackoff)
}
