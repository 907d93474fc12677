package mpd

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	gompd "github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"
)

// Player is what the queue maintainer needs from MPD.
type Player interface {
	CurrentStatus(ctx context.Context) (Status, error)
	Add(ctx context.Context, uris ...string) error
	PlayAt(ctx context.Context, position uint) error
	Pause(ctx context.Context) error
	// Idle blocks until at least one event in want occurs and returns every
	// wanted event observed.
	Idle(ctx context.Context, want EventSet) (EventSet, error)
}

// Library is what catalog loaders need from MPD.
type Library interface {
	ListAll(ctx context.Context) ([]Song, error)
	// Search looks up a single URI. ok is false when MPD does not know it.
	Search(ctx context.Context, uri string) (song Song, ok bool, err error)
}

// Conn bundles everything a connected client offers.
type Conn interface {
	Player
	Library
	Ping(ctx context.Context) error
	Close() error
}

// Ensure Client implements Conn at compile time.
var _ Conn = (*Client)(nil)

// Client talks to MPD over one command connection and a separate idle watcher.
type Client struct {
	mu   sync.Mutex
	conn *gompd.Client

	addr    Address
	watcher *gompd.Watcher
}

// Dial opens the command connection. Authentication and the idle watcher are
// handled by Connect.
func Dial(addr Address) (*Client, error) {
	conn, err := gompd.Dial(addr.Network, addr.Addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial mpd at %s", addr)
	}
	return &Client{conn: conn, addr: addr}, nil
}

// Version returns the protocol version reported in the server greeting.
func (c *Client) Version() string {
	return c.conn.Version()
}

// CurrentStatus fetches and decodes the player status.
func (c *Client) CurrentStatus(ctx context.Context) (Status, error) {
	var attrs gompd.Attrs
	err := c.do(ctx, func(conn *gompd.Client) (err error) {
		attrs, err = conn.Status()
		return err
	})
	if err != nil {
		return Status{}, errors.Wrap(err, "mpd status")
	}
	return parseStatus(attrs)
}

// Add appends each URI to the end of the queue.
func (c *Client) Add(ctx context.Context, uris ...string) error {
	return c.do(ctx, func(conn *gompd.Client) error {
		for _, uri := range uris {
			if err := conn.Add(uri); err != nil {
				return errors.Wrapf(err, "mpd add %q", uri)
			}
		}
		return nil
	})
}

// PlayAt starts playback at the given queue position.
func (c *Client) PlayAt(ctx context.Context, position uint) error {
	return c.do(ctx, func(conn *gompd.Client) error {
		return errors.Wrapf(conn.Play(int(position)), "mpd play %d", position)
	})
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) error {
	return c.do(ctx, func(conn *gompd.Client) error {
		return errors.Wrap(conn.Pause(true), "mpd pause")
	})
}

// Ping keeps the command connection alive; MPD drops clients that stay
// silent longer than its connection_timeout.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, func(conn *gompd.Client) error {
		return errors.Wrap(conn.Ping(), "mpd ping")
	})
}

// ListAll returns every song in the MPD database with its tags.
func (c *Client) ListAll(ctx context.Context) ([]Song, error) {
	var entries []gompd.Attrs
	err := c.do(ctx, func(conn *gompd.Client) (err error) {
		entries, err = conn.ListAllInfo("/")
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "mpd listallinfo")
	}
	songs := make([]Song, 0, len(entries))
	for _, attrs := range entries {
		if song, ok := songFromAttrs(attrs); ok {
			songs = append(songs, song)
		}
	}
	return songs, nil
}

// Search finds the song with exactly the given URI.
func (c *Client) Search(ctx context.Context, uri string) (Song, bool, error) {
	var entries []gompd.Attrs
	err := c.do(ctx, func(conn *gompd.Client) (err error) {
		entries, err = conn.Find("file", uri)
		return err
	})
	if err != nil {
		return Song{}, false, errors.Wrapf(err, "mpd find %q", uri)
	}
	for _, attrs := range entries {
		if song, ok := songFromAttrs(attrs); ok && song.URI == uri {
			return song, true, nil
		}
	}
	return Song{}, false, nil
}

// Idle waits on the watcher. Watcher errors are logged and waiting continues,
// since the watcher reconnects on its own.
func (c *Client) Idle(ctx context.Context, want EventSet) (EventSet, error) {
	if c.watcher == nil {
		return 0, errors.New("mpd idle watcher not started")
	}
	var got EventSet
	errCh := c.watcher.Error
	for got.Empty() {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			log.Warn().Err(err).Msg("mpd watcher error")
		case name, ok := <-c.watcher.Event:
			if !ok {
				return 0, errors.New("mpd idle watcher closed")
			}
			got = got.merge(want, name)
		}
	}
	// Fold in notifications that arrived together with the first one.
	for {
		select {
		case name, ok := <-c.watcher.Event:
			if !ok {
				return got, nil
			}
			got = got.merge(want, name)
		default:
			return got, nil
		}
	}
}

func (s EventSet) merge(want EventSet, subsystem string) EventSet {
	e, ok := eventFromSubsystem(subsystem)
	if !ok || !want.Has(e) {
		return s
	}
	return s.Add(e)
}

func (c *Client) startWatcher(events EventSet) error {
	w, err := gompd.NewWatcher(c.addr.Network, c.addr.Addr, c.addr.Password, events.Subsystems()...)
	if err != nil {
		return errors.Wrap(err, "start mpd idle watcher")
	}
	c.watcher = w
	return nil
}

// Close shuts down the watcher and the command connection.
func (c *Client) Close() error {
	var errs []error
	if c.watcher != nil {
		errs = append(errs, c.watcher.Close())
	}
	c.mu.Lock()
	errs = append(errs, c.conn.Close())
	c.mu.Unlock()
	return errors.Join(errs...)
}

func (c *Client) do(ctx context.Context, fn func(conn *gompd.Client) error) error {
	if c == nil || c.conn == nil {
		return errors.New("client is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.conn)
}

func parseStatus(attrs gompd.Attrs) (Status, error) {
	var st Status
	if raw := attrs["playlistlength"]; raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return Status{}, errors.Wrapf(err, "parse playlistlength %q", raw)
		}
		st.QueueLength = uint(n)
	}
	if raw, ok := attrs["song"]; ok && raw != "" {
		pos, err := strconv.Atoi(raw)
		if err != nil {
			return Status{}, errors.Wrapf(err, "parse song position %q", raw)
		}
		st.SongPosition = &pos
	}
	st.Playing = attrs["state"] == "play"
	// "oneshot" counts as single mode too.
	st.Single = attrs["single"] != "" && attrs["single"] != "0"
	return st, nil
}

func songFromAttrs(attrs gompd.Attrs) (Song, bool) {
	uri := attrs["file"]
	if uri == "" {
		return Song{}, false
	}
	tags := make(map[string]string, len(attrs))
	for k, v := range attrs {
		if k == "file" {
			continue
		}
		tags[strings.ToLower(k)] = v
	}
	return Song{URI: uri, Tags: tags}, true
}
