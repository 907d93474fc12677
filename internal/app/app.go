package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/five82/shuffler/internal/catalog"
	"github.com/five82/shuffler/internal/config"
	"github.com/five82/shuffler/internal/maintain"
	"github.com/five82/shuffler/internal/mpd"
	"github.com/five82/shuffler/internal/prefs"
	"github.com/five82/shuffler/internal/rules"
	"github.com/five82/shuffler/internal/shuffle"
	"github.com/five82/shuffler/internal/state"
	"github.com/five82/shuffler/internal/ui"
)

// Options are the command line settings. Zero values keep whatever the
// config file says.
type Options struct {
	ConfigPath string
	Host       string
	Port       uint

	File    string // URI list, "-" for stdin
	NoCheck bool

	Excludes []string // tag=value
	GroupBy  []string
	ByAlbum  bool

	QueueBuffer *uint
	Tweaks      []string
	LogLevel    string

	Only     uint
	PrintAll bool
	Watch    bool

	PrefsPath string
	Out       io.Writer // defaults to stdout
}

var byAlbum = []string{"album", "date"}

// Run loads the catalog and keeps MPD's queue filled until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg.LogLevel, opts.Watch, cfg.LogPath())
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ruleset, err := buildRules(cfg.Exclude, opts.Excludes)
	if err != nil {
		return err
	}
	groupBy, err := rules.ParseTags(cfg.GroupBy)
	if err != nil {
		return errors.Wrap(err, "group-by")
	}

	addr, err := mpd.Resolve(cfg.Host, cfg.Port)
	if err != nil {
		return err
	}
	client, err := mpd.Connect(ctx, addr, mpd.TerminalPrompt)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()
	log.Info().Str("addr", addr.String()).Str("version", client.Version()).Msg("connected to mpd")

	store := &state.Store{}
	chain := shuffle.NewChain(cfg.WindowSize)
	loader, reloader, closeList, err := buildLoader(opts, client, ruleset, groupBy)
	if err != nil {
		return err
	}
	err = maintain.Load(ctx, loader, chain, store)
	_ = closeList()
	if err != nil {
		return err
	}

	switch {
	case opts.PrintAll:
		return printAll(opts.Out, chain)
	case opts.Only > 0:
		return enqueueOnly(ctx, opts.Out, client, chain, opts.Only)
	}

	StartPoller(ctx, store, client, cfg.Keepalive)

	policy := maintain.Policy{
		QueueBuffer:    cfg.QueueBuffer,
		SuspendTimeout: cfg.SuspendTimeout,
		PlayOnStartup:  cfg.PlayOnStartup,
		ExitOnDBUpdate: cfg.ExitOnDBUpdate,
	}
	mopts := []maintain.Option{maintain.WithStore(store)}
	if reloader != nil {
		mopts = append(mopts, maintain.WithReloader(reloader))
	}
	m := maintain.New(client, chain, policy, mopts...)

	if !opts.Watch {
		return m.Run(ctx)
	}
	return runWithView(ctx, m, store, addr, opts.PrefsPath, cfg.LogPath())
}

// resolveConfig loads the config file and applies command line overrides.
func resolveConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "load config")
	}

	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Port = opts.Port
	}
	if opts.QueueBuffer != nil {
		cfg.QueueBuffer = *opts.QueueBuffer
	}
	switch {
	case opts.ByAlbum && len(opts.GroupBy) > 0:
		return config.Config{}, errors.New("--by-album and --group-by cannot be combined")
	case opts.ByAlbum:
		cfg.GroupBy = byAlbum
	case len(opts.GroupBy) > 0:
		cfg.GroupBy = opts.GroupBy
	}
	for _, raw := range opts.Tweaks {
		if err := cfg.ApplyTweak(raw); err != nil {
			return config.Config{}, err
		}
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(opts.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildRules combines multi-pattern rules from the config file with the
// single-pattern rules given on the command line.
func buildRules(fromConfig []map[string]string, fromFlags []string) (rules.Ruleset, error) {
	var rs rules.Ruleset
	for _, match := range fromConfig {
		r, err := rules.NewRule(match)
		if err != nil {
			return nil, errors.Wrap(err, "config exclude")
		}
		rs = append(rs, r)
	}
	for _, raw := range fromFlags {
		r, err := rules.ParsePattern(raw)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	return rs, nil
}

// buildLoader returns the initial loader and, for the MPD database source,
// the reloader. The returned close func releases the URI list.
func buildLoader(opts Options, lib mpd.Library, ruleset rules.Ruleset, groupBy []string) (catalog.Loader, catalog.Loader, func() error, error) {
	noop := func() error { return nil }
	if opts.File == "" {
		l := &catalog.MPDLoader{Library: lib, Rules: ruleset, GroupBy: groupBy}
		return l, l, noop, nil
	}

	list, err := catalog.OpenList(opts.File)
	if err != nil {
		return nil, nil, nil, err
	}
	l := &catalog.FileLoader{Reader: list, Rules: ruleset, GroupBy: groupBy}
	if !opts.NoCheck {
		l.Check = lib
	}
	return l, nil, list.Close, nil
}

func printAll(w io.Writer, chain *shuffle.Chain) error {
	for _, group := range chain.Items() {
		for _, uri := range group {
			if _, err := fmt.Fprintln(w, uri); err != nil {
				return errors.Wrap(err, "print pool")
			}
		}
	}
	return nil
}

// enqueueOnly adds n picks to the queue and returns without maintaining it.
func enqueueOnly(ctx context.Context, w io.Writer, player mpd.Player, chain *shuffle.Chain, n uint) error {
	added := 0
	for i := uint(0); i < n; i++ {
		uris, err := chain.Pick()
		if err != nil {
			return err
		}
		if err := player.Add(ctx, uris...); err != nil {
			return err
		}
		added += len(uris)
	}
	_, err := fmt.Fprintf(w, "Added %d songs.\n", added)
	return err
}

// runWithView runs the maintainer alongside the status view. Whichever ends
// first stops the other.
func runWithView(ctx context.Context, m *maintain.Maintainer, store *state.Store, addr mpd.Address, prefsPath, logPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
		cancel()
	}()

	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		log.Warn().Err(err).Msg("load status view prefs")
	}
	viewErr := ui.Run(ctx, ui.Options{
		Store:     store,
		Address:   addr.String(),
		Prefs:     userPrefs,
		PrefsPath: prefsPath,
		LogPath:   logPath,
	})
	cancel()
	if err := <-done; err != nil {
		return err
	}
	return viewErr
}
