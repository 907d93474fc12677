package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/five82/shuffler/internal/logtail"
	"github.com/five82/shuffler/internal/prefs"
	"github.com/five82/shuffler/internal/state"
)

// Options configures the UI.
type Options struct {
	Store     *state.Store
	Address   string // shown in the header
	PollTick  time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string // tailed in the log section when set
}

// logLines is how many log lines the view keeps.
const logLines = 5

// Model is the root application state for Bubble Tea.
type Model struct {
	store     *state.Store
	address   string
	prefsPath string
	logPath   string
	pollTick  time.Duration

	keys      keyMap
	help      help.Model
	theme     Theme
	fullPaths bool
	showHelp  bool
	width     int
	height    int

	snapshot state.Snapshot
	logs     []string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		store:     opts.Store,
		address:   opts.Address,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		theme:     GetTheme(opts.Prefs.Theme),
		fullPaths: opts.Prefs.FullPaths,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(append(m.refreshCmds(), tickCmd(m.pollTick))...)
}

func (m Model) refreshCmds() []tea.Cmd {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.logPath != "" {
		cmds = append(cmds, tailLogCmd(m.logPath))
	}
	return cmds
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(append(m.refreshCmds(), tickCmd(m.pollTick))...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case logMsg:
		m.logs = msg
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()

	case key.Matches(msg, m.keys.TogglePath):
		m.fullPaths = !m.fullPaths
		m.savePrefs()
	}
	return m, nil
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, FullPaths: m.fullPaths}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		log.Warn().Err(err).Msg("save status view prefs")
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type logMsg []string

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// tailLogCmd reads the newest log lines. Read errors keep the view going
// with an empty log section.
func tailLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Tail(path, logLines)
		if err != nil {
			return logMsg(nil)
		}
		return logMsg(lines)
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
