package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tubarr-tui/internal/tubarr"
	"github.com/five82/tubarr-tui/internal/views"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// renderDialog draws a bordered box centered in the terminal.
func renderDialog(theme Theme, title, body, border string, width, height int) string {
	styles := theme.Styles()
	content := styles.Text.Bold(true).Render(title) + "\n\n" + body
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Width(min(60, max(30, width-4)))
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// confirmModal gates a destructive action. Declining drops the
// confirmation, which performs nothing.
type confirmModal struct {
	ctx  context.Context
	conf *views.Confirmation
	what string
	next views.View // navigated to after a successful accept
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Accept):
		ctx, conf, what, next := c.ctx, c.conf, c.what, c.next
		return c, func() tea.Msg {
			return opDoneMsg{what: what, err: conf.Accept(ctx), next: next}
		}, true
	case key.Matches(km, keys.Decline):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.Text.Render(c.conf.Prompt) + "\n\n" +
		styles.DangerText.Render("y") + styles.MutedText.Render(" confirm   ") +
		styles.AccentText.Render("n/esc") + styles.MutedText.Render(" cancel")
	return renderDialog(theme, "Confirm", body, theme.Danger, width, height)
}

// noticeModal blocks until acknowledged. It carries user-facing failures.
type noticeModal struct {
	title string
	text  string
}

func (n noticeModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return n, nil, false
	}
	if key.Matches(km, keys.Confirm) || key.Matches(km, keys.Escape) {
		return n, nil, true
	}
	return n, nil, false
}

func (n noticeModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	body := styles.Text.Render(n.text) + "\n\n" + styles.MutedText.Render("enter to dismiss")
	return renderDialog(theme, n.title, body, theme.Warning, width, height)
}

// Add form fields in focus order.
const (
	addFieldQuality = iota
	addFieldPath
	addFieldMonitored
	addFieldDownloadAll
	addFieldCount
)

// addModal configures a search result before adding it as a channel.
type addModal struct {
	ctx    context.Context
	search *views.Search
	form   views.AddForm
	inputs [2]textinput.Model
	focus  int
	err    string
}

func newAddModal(ctx context.Context, search *views.Search, form views.AddForm) *addModal {
	quality := textinput.New()
	quality.Prompt = ""
	quality.CharLimit = 32
	quality.SetValue(form.Quality)
	quality.Focus()

	path := textinput.New()
	path.Prompt = ""
	path.CharLimit = 512
	path.Width = 40
	path.SetValue(form.DownloadPath)

	return &addModal{ctx: ctx, search: search, form: form, inputs: [2]textinput.Model{quality, path}}
}

func (a *addModal) setFocus(i int) {
	a.focus = (i + addFieldCount) % addFieldCount
	for idx := range a.inputs {
		if idx == a.focus {
			a.inputs[idx].Focus()
		} else {
			a.inputs[idx].Blur()
		}
	}
}

func (a *addModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil, false
	}
	switch km.String() {
	case "esc":
		a.search.CancelConfigure(a.form.PlatformID)
		return a, nil, true
	case "tab", "down":
		a.setFocus(a.focus + 1)
		return a, nil, false
	case "shift+tab", "up":
		a.setFocus(a.focus - 1)
		return a, nil, false
	case "enter":
		form := a.form
		form.Quality = strings.TrimSpace(a.inputs[addFieldQuality].Value())
		form.DownloadPath = strings.TrimSpace(a.inputs[addFieldPath].Value())
		if form.Quality == "" || form.DownloadPath == "" {
			a.err = "quality and download path are required"
			return a, nil, false
		}
		ctx, search := a.ctx, a.search
		return a, func() tea.Msg {
			_, err := search.Submit(ctx, form)
			return opDoneMsg{what: "add channel", err: err, info: fmt.Sprintf("Added %s", form.Name)}
		}, true
	}

	if a.focus < len(a.inputs) {
		var cmd tea.Cmd
		a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
		return a, cmd, false
	}
	if key.Matches(km, keys.Select) {
		switch a.focus {
		case addFieldMonitored:
			a.form.Monitored = !a.form.Monitored
		case addFieldDownloadAll:
			a.form.DownloadAll = !a.form.DownloadAll
		}
	}
	return a, nil, false
}

func (a *addModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	label := func(i int, text string) string {
		marker := "  "
		if a.focus == i {
			marker = styles.AccentText.Render("› ")
		}
		return marker + styles.MutedText.Render(padRight(text, 14))
	}
	check := func(on bool) string {
		return ternary(on, styles.SuccessText.Render("[x]"), styles.MutedText.Render("[ ]"))
	}

	var b strings.Builder
	b.WriteString(styles.Text.Render(a.form.Name))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(a.form.URL))
	b.WriteString("\n\n")
	b.WriteString(label(addFieldQuality, "Quality") + a.inputs[addFieldQuality].View() + "\n")
	b.WriteString(label(addFieldPath, "Download path") + a.inputs[addFieldPath].View() + "\n")
	b.WriteString(label(addFieldMonitored, "Monitored") + check(a.form.Monitored) + "\n")
	b.WriteString(label(addFieldDownloadAll, "Download all") + check(a.form.DownloadAll) + "\n")
	if a.err != "" {
		b.WriteString("\n" + styles.DangerText.Render(a.err) + "\n")
	}
	b.WriteString("\n" + styles.MutedText.Render("tab next · space toggle · enter add · esc cancel"))
	return renderDialog(theme, "Add channel", b.String(), theme.Accent, width, height)
}

// playlistChoice is one monitoring option offered for a playlist.
type playlistChoice struct {
	label       string
	monitor     bool
	downloadAll bool
}

var playlistChoices = []playlistChoice{
	{label: "Monitor new uploads", monitor: true},
	{label: "Monitor and download all", monitor: true, downloadAll: true},
	{label: "Stop monitoring"},
}

// playlistModal changes a playlist's monitoring mode.
type playlistModal struct {
	ctx      context.Context
	detail   *views.ChannelDetail
	playlist tubarr.Playlist
	cursor   int
}

func (p playlistModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, false
	}
	switch {
	case key.Matches(km, keys.Escape):
		return p, nil, true
	case key.Matches(km, keys.Up):
		p.cursor = clamp(p.cursor-1, len(playlistChoices))
	case key.Matches(km, keys.Down):
		p.cursor = clamp(p.cursor+1, len(playlistChoices))
	case key.Matches(km, keys.Confirm):
		choice := playlistChoices[p.cursor]
		ctx, detail, id := p.ctx, p.detail, p.playlist.PlaylistID
		return p, func() tea.Msg {
			err := detail.SetPlaylistMonitor(ctx, id, choice.monitor, choice.downloadAll)
			return opDoneMsg{what: "update playlist", err: err, info: choice.label}
		}, true
	}
	return p, nil, false
}

func (p playlistModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	state := ternary(p.playlist.Monitored, "monitored", "not monitored")
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("%d videos, %s", p.playlist.VideoCount, state)))
	b.WriteString("\n\n")
	for i, choice := range playlistChoices {
		if i == p.cursor {
			b.WriteString(styles.Selected.Render("› " + choice.label))
		} else {
			b.WriteString(styles.Text.Render("  " + choice.label))
		}
		b.WriteString("\n")
	}
	return renderDialog(theme, p.playlist.Title, b.String(), theme.Accent, width, height)
}
