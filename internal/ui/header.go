package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tubarr-tui/internal/views"
)

var tabLabels = []string{"Channels", "Activity", "Search", "Settings"}

// renderMain renders the full UI: header, command bar, content, status line.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	height := max(1, m.height-3)
	var content string
	if m.logState.open {
		content = m.renderLogs()
	} else {
		content = m.renderContent(height)
	}
	b.WriteString(fitHeight(content, height))
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent(height int) string {
	switch v := m.router.Current().(type) {
	case views.HomeView:
		return m.renderHome(height)
	case views.ChannelView:
		return m.renderChannel(height)
	case views.PlaylistView:
		return m.renderPlaylist(height)
	case views.ActivityView:
		return m.renderActivity(height)
	case views.SearchView:
		return m.renderSearch(height)
	case views.PreviewView:
		return m.renderPreview(v, height)
	case views.SettingsView:
		return m.renderSettings()
	}
	return ""
}

// renderHeader renders the logo, view tabs and connection indicators.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	left := []string{styles.Logo.Render("tubarr")}
	active := tabIndex(m.router.Current())
	for i, label := range tabLabels {
		text := fmt.Sprintf("%d %s", i+1, label)
		if i == active {
			left = append(left, bg.Render(text, styles.AccentText.Bold(true)))
		} else {
			left = append(left, bg.Render(text, styles.MutedText))
		}
	}

	var right []string
	if n := views.ActiveCount(m.store); n > 0 {
		right = append(right, bg.Render(fmt.Sprintf("↓ %d", n), styles.InfoText.Bold(true)))
	}
	if m.pushState != nil {
		ps := m.pushState()
		style := styles.MutedText
		if ps == "open" {
			style = styles.SuccessText
		}
		right = append(right, bg.Render("push "+ps, style))
	}
	health := m.store.Health()
	if health.IsOffline() {
		right = append(right, bg.Render("OFFLINE", styles.DangerText))
	} else if !health.LastUpdated.IsZero() {
		ago := humanizeDuration(time.Since(health.LastUpdated))
		right = append(right, bg.Render("updated "+ago, styles.FaintText))
	}

	return m.spread(bg, bg.Join(left, "  "), bg.Join(right, "  "))
}

// spread places left and right on one full-width line.
func (m Model) spread(bg BgStyle, left, right string) string {
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return bg.FillLine(bg.Space()+left+bg.Spaces(gap)+right+bg.Space(), m.width)
}

type command struct{ key, desc string }

// renderCommandBar renders the command hints for the active view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	parts := make([]string, 0, 12)
	for _, c := range m.commands() {
		parts = append(parts, bg.Render("<"+c.key+">", styles.AccentText)+bg.Space()+bg.Render(c.desc, styles.MutedText))
	}
	return bg.FillLine(bg.Space()+bg.Join(parts, "  "), m.width)
}

func (m Model) commands() []command {
	if m.logState.open {
		return []command{
			{"space", ternary(m.logState.follow, "Pause", "Follow")},
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"L/esc", "Close"},
		}
	}
	if m.inputMode != inputNone {
		return []command{{"enter", "Apply"}, {"esc", "Cancel"}}
	}
	switch m.router.Current().(type) {
	case views.ChannelView:
		if m.playlistFocus {
			return []command{{"enter", "Open"}, {"M", "Monitor"}, {"p", "Videos"}, {"esc", "Back"}, {"?", "More"}}
		}
		return []command{
			{"d", "Download"}, {"space", "Select"}, {"D", "Download sel"}, {"x", "Delete"},
			{"s", "Sort"}, {"f", "Filter"}, {"/", "Find"}, {"m", "More"}, {"p", "Playlists"}, {"?", "Help"},
		}
	case views.PlaylistView:
		return []command{{"d", "Download"}, {"x", "Delete"}, {"r", "Refresh"}, {"esc", "Back"}, {"?", "Help"}}
	case views.ActivityView:
		return []command{{"j/k", "Scroll"}, {"r", "Refresh"}, {"?", "Help"}}
	case views.SearchView:
		return []command{{"/", "Search"}, {"enter", "Add"}, {"v", "Preview"}, {"?", "Help"}}
	case views.PreviewView:
		return []command{{"enter", "Add"}, {"esc", "Back"}, {"?", "Help"}}
	case views.SettingsView:
		return []command{
			{"a", "Auto sync"}, {"+/-", "Interval"}, {"q", "Quality"}, {"p", "Path"},
			{"w", "Save"}, {"K", "New key"}, {"r", "Rescan"}, {"y", "Sync all"},
		}
	default:
		return []command{{"enter", "Open"}, {"y", "Sync all"}, {"r", "Refresh"}, {"/", "Add channel"}, {"?", "Help"}}
	}
}

// renderStatusLine shows the line input while editing, otherwise the flash
// message.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	if m.inputMode != inputNone {
		return m.input.View()
	}
	if m.flash == "" {
		return ""
	}
	if m.flashError {
		return styles.DangerText.Render(truncate(m.flash, m.width))
	}
	return styles.SuccessText.Render(truncate(m.flash, m.width))
}

// fitHeight pads or cuts content to exactly height lines.
func fitHeight(content string, height int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
