package ui

import (
	"fmt"
	"path"
	"strings"

	"github.com/five82/shuffler/internal/state"
)

// View implements tea.Model.
func (m Model) View() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	var b strings.Builder
	header := "shuffler"
	if m.address != "" {
		header += "  ·  mpd " + m.address
	}
	b.WriteString(styles.Header.Render(header))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(styles.Label.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("Player", m.playerLine(styles))
	row("Pool", styles.Text.Render(snap.Pool.String()))
	row("Shuffler", m.maintainerLine(styles))
	if snap.LastError != nil {
		row("Error", styles.Danger.Render(snap.LastError.Error()))
	}

	b.WriteString("\n")
	b.WriteString(styles.Accent.Render("Recent picks"))
	b.WriteString("\n")
	if len(snap.Recent) == 0 {
		b.WriteString(styles.Muted.Render("  nothing enqueued yet"))
		b.WriteString("\n")
	}
	// newest first
	for i := len(snap.Recent) - 1; i >= 0; i-- {
		b.WriteString(m.pickLine(styles, snap.Recent[i]))
		b.WriteString("\n")
	}

	if m.logPath != "" {
		b.WriteString("\n")
		b.WriteString(styles.Accent.Render("Log"))
		b.WriteString("\n")
		for _, line := range m.logs {
			b.WriteString("  ")
			b.WriteString(styles.Muted.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Footer.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) playerLine(styles Styles) string {
	snap := m.snapshot
	switch {
	case snap.IsOffline():
		return styles.Danger.Render("offline")
	case !snap.HasStatus:
		return styles.Muted.Render("waiting for status")
	}

	st := snap.Status
	var b strings.Builder
	if st.Playing {
		b.WriteString(styles.Playing.Render("▶ playing"))
	} else {
		b.WriteString(styles.Paused.Render("■ stopped"))
	}
	if st.HasCurrent() {
		fmt.Fprintf(&b, "  song %d of %d", *st.SongPosition+1, st.QueueLength)
	} else {
		fmt.Fprintf(&b, "  %d queued, none current", st.QueueLength)
	}
	if st.Single {
		b.WriteString(styles.Muted.Render("  single"))
	}
	return b.String()
}

func (m Model) maintainerLine(styles Styles) string {
	snap := m.snapshot
	status := styles.Playing.Render("active")
	if !snap.Active {
		status = styles.Paused.Render("suspended")
	}
	return fmt.Sprintf("%s  %s", status, styles.Muted.Render(fmt.Sprintf("%d songs enqueued", snap.Enqueued)))
}

func (m Model) pickLine(styles Styles, p state.Pick) string {
	if len(p.URIs) == 0 {
		return ""
	}
	name := p.URIs[0]
	if !m.fullPaths {
		name = path.Base(name)
	}
	line := "  " + styles.Muted.Render(p.At.Format("15:04:05")) + "  " + styles.Text.Render(name)
	if extra := len(p.URIs) - 1; extra > 0 {
		line += styles.Muted.Render(fmt.Sprintf(" (+%d more)", extra))
	}
	return line
}
