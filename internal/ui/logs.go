package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tubarr-tui/internal/logtail"
)

// logState holds the client log overlay.
type logState struct {
	open    bool
	follow  bool
	entries []logtail.Entry
	err     error
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(m.width, max(1, m.height-3))
}

func (m *Model) resizeLogViewport() {
	m.logViewport.Width = m.width
	m.logViewport.Height = max(1, m.height-3)
	m.updateLogViewport()
}

func (m Model) openLogs() (tea.Model, tea.Cmd) {
	m.logState.open = true
	m.logState.follow = true
	return m, m.loadLogs()
}

// loadLogs reads the tail of the client's own log file.
func (m Model) loadLogs() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		if path == "" {
			return logsMsg{err: fmt.Errorf("file logging is disabled")}
		}
		entries, err := logtail.Tail(path, LogBufferLimit, "")
		return logsMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogs(msg logsMsg) {
	m.logState.entries = msg.entries
	m.logState.err = msg.err
	m.updateLogViewport()
}

func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		return
	}
	m.logViewport.SetContent(m.renderLogLines())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogLines() string {
	styles := m.theme.Styles()
	if m.logState.err != nil {
		return styles.DangerText.Render(m.logState.err.Error())
	}
	if len(m.logState.entries) == 0 {
		return styles.MutedText.Render("Log is empty")
	}
	lines := make([]string, 0, len(m.logState.entries))
	for _, e := range m.logState.entries {
		line := truncate(logtail.Format(e), m.logViewport.Width)
		switch strings.ToLower(e.Level) {
		case "error", "fatal", "panic":
			line = styles.DangerText.Render(line)
		case "warn", "warning":
			line = styles.WarningText.Render(line)
		case "debug", "trace":
			line = styles.FaintText.Render(line)
		default:
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.Escape):
		m.logState.open = false
		return m, nil
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, m.loadLogs()
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	if !m.logViewport.AtBottom() {
		m.logState.follow = false
	}
	return m, cmd
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	state := ternary(m.logState.follow, "following", "paused")
	title := styles.AccentText.Bold(true).Render("Client log") + " " +
		styles.MutedText.Render(fmt.Sprintf("%s · %d lines · %s", truncateMiddle(m.logPath, 40), len(m.logState.entries), state))
	return title + "\n" + m.logViewport.View()
}
