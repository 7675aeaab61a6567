package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tubarr-tui/internal/overlay"
	"github.com/five82/tubarr-tui/internal/views"
)

// row renders one list line, highlighted when it holds the cursor.
func (m Model) row(text string, selected bool, width int) string {
	if selected {
		return m.theme.Styles().Selected.Width(width).Render(truncate(text, width))
	}
	return truncate(text, width)
}

func (m Model) badge(status string) string {
	return m.theme.Styles().StatusStyle(status).Render(status)
}

// cell pads already-styled text to width display cells.
func (m Model) cell(styled string, width int) string {
	return styled + strings.Repeat(" ", max(0, width-lipgloss.Width(styled)))
}

// list renders rows[start:start+height] around cursor.
func (m Model) list(n, cursor, height int, line func(i int, selected bool) string) []string {
	cursor = clamp(cursor, n)
	start := window(cursor, n, height)
	end := min(n, start+height)
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, line(i, i == cursor))
	}
	return out
}

func (m Model) renderHome(height int) string {
	styles := m.theme.Styles()
	rows := m.c.Channels.Rows()
	if len(rows) == 0 {
		return styles.MutedText.Render("No channels yet. Press / to search for one.")
	}

	nameWidth := max(20, m.width-48)
	header := styles.FaintText.Render(fmt.Sprintf("  %s %-22s %-14s %s", padRight("CHANNEL", nameWidth), "HEALTH", "VIDEOS", "QUALITY"))
	lines := []string{header}
	lines = append(lines, m.list(len(rows), m.cursor[views.ViewHome], height-1, func(i int, selected bool) string {
		r := rows[i]
		name := padRight(r.Channel.Name, nameWidth)
		counts := fmt.Sprintf("%d/%d", r.Channel.DownloadedCount, r.Channel.VideoCount)
		if selected {
			text := fmt.Sprintf("  %s %s %-14s %s", name, padRight(string(r.Health), 22), counts, r.Channel.Quality)
			return m.row(text, true, m.width)
		}
		return fmt.Sprintf("  %s %s %-14s %s", name, m.cell(m.badge(string(r.Health)), 22), counts, r.Channel.Quality)
	})...)
	return strings.Join(lines, "\n")
}

func (m Model) renderChannel(height int) string {
	styles := m.theme.Styles()
	snap := m.c.Detail.Snapshot()

	title := snap.Channel.Name
	if title == "" {
		title = fmt.Sprintf("Channel %d", snap.ChannelID)
	}
	monitored := ternary(snap.Channel.Monitored, styles.SuccessText.Render("monitored"), styles.MutedText.Render("not monitored"))
	summary := fmt.Sprintf("sort %s · filter %s · %d of %d loaded · %d downloaded",
		sortLabel(snap.Sort), filterLabel(snap.Filter), snap.Loaded, snap.TotalVideos, snap.DownloadedCount)
	if snap.Selected > 0 {
		summary += fmt.Sprintf(" · %d selected", snap.Selected)
	}
	if snap.Query != "" {
		summary += fmt.Sprintf(" · matching %q", snap.Query)
	}
	lines := []string{
		styles.AccentText.Bold(true).Render(title) + "  " + monitored,
		styles.MutedText.Render(summary),
	}
	bodyHeight := max(1, height-len(lines)-1)

	switch {
	case m.width >= LayoutSidePaneWidth:
		paneWidth := 36
		videos := m.videoLines(snap, bodyHeight, m.width-paneWidth-2)
		body := lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(m.width-paneWidth-2).Render(strings.Join(videos, "\n")),
			"  ",
			strings.Join(m.playlistLines(snap, bodyHeight, paneWidth), "\n"))
		lines = append(lines, body)
	case m.playlistFocus:
		lines = append(lines, m.playlistLines(snap, bodyHeight, m.width)...)
	default:
		lines = append(lines, m.videoLines(snap, bodyHeight, m.width)...)
	}

	switch {
	case snap.LoadingMore:
		lines = append(lines, styles.InfoText.Render("Loading more…"))
	case snap.CanLoadMore():
		lines = append(lines, styles.FaintText.Render(fmt.Sprintf("%d more on the server, press m to load", snap.TotalVideos-snap.Loaded)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) videoLines(snap views.DetailSnapshot, height, width int) []string {
	styles := m.theme.Styles()
	if snap.Loading && len(snap.Rows) == 0 {
		return []string{styles.InfoText.Render("Loading…")}
	}
	if len(snap.Rows) == 0 {
		return []string{styles.MutedText.Render("No videos")}
	}
	cursor := m.cursor[views.ViewChannel]
	if m.playlistFocus {
		cursor = -1
	}
	titleWidth := max(16, width-40)
	return m.list(len(snap.Rows), cursor, height, func(i int, selected bool) string {
		r := snap.Rows[i]
		mark := ternary(r.Selected, "[x]", "[ ]")
		text := fmt.Sprintf("%s %s %10s %8s  %s", mark, padRight(r.Video.Title, titleWidth),
			videoDate(r.Video), views.FormatDuration(r.Video.Duration), displayLabel(r.State))
		if width < LayoutCompactWidth {
			text = fmt.Sprintf("%s %s  %s", mark, padRight(r.Video.Title, titleWidth+20), displayLabel(r.State))
		}
		if selected && !m.playlistFocus {
			return m.row(text, true, width)
		}
		return m.stateStyle(r.State).Render(truncate(text, width))
	})
}

func (m Model) playlistLines(snap views.DetailSnapshot, height, width int) []string {
	styles := m.theme.Styles()
	lines := []string{styles.AccentText.Render("Playlists")}
	switch {
	case snap.PlaylistsLoading && len(snap.Playlists) == 0:
		return append(lines, styles.InfoText.Render("Loading…"))
	case len(snap.Playlists) == 0:
		return append(lines, styles.MutedText.Render("None"))
	}
	cursor := -1
	if m.playlistFocus {
		cursor = m.cursor["playlists"]
	}
	return append(lines, m.list(len(snap.Playlists), cursor, height-1, func(i int, selected bool) string {
		p := snap.Playlists[i]
		text := fmt.Sprintf("%s %d/%d %s", ternary(p.Playlist.Monitored, "●", "○"),
			p.Playlist.DownloadedCount, p.Playlist.VideoCount, p.Playlist.Title)
		if selected && m.playlistFocus {
			return m.row(text, true, width)
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(styles.StatusColor(string(p.Health)))).Render(truncate(text, width))
	})...)
}

func (m Model) stateStyle(s overlay.DisplayState) lipgloss.Style {
	styles := m.theme.Styles()
	switch s {
	case overlay.Downloaded:
		return styles.Text
	case overlay.Downloading:
		return styles.InfoText
	default:
		return styles.MutedText
	}
}

func displayLabel(s overlay.DisplayState) string {
	switch s {
	case overlay.Downloaded:
		return "✓ downloaded"
	case overlay.Downloading:
		return "↓ downloading"
	default:
		return ""
	}
}

func sortLabel(s views.Sort) string {
	switch s {
	case views.SortOldest:
		return "oldest"
	case views.SortTitle:
		return "title"
	default:
		return "newest"
	}
}

func filterLabel(f views.Filter) string {
	switch f {
	case views.FilterDownloaded:
		return "downloaded"
	case views.FilterAvailable:
		return "available"
	default:
		return "all"
	}
}

func (m Model) renderPlaylist(height int) string {
	styles := m.theme.Styles()
	snap := m.c.Playlist.Snapshot()
	lines := []string{styles.AccentText.Bold(true).Render(snap.Title)}
	switch {
	case snap.Loading && len(snap.Rows) == 0:
		lines = append(lines, styles.InfoText.Render("Loading…"))
	case len(snap.Rows) == 0:
		lines = append(lines, styles.MutedText.Render("No videos"))
	default:
		titleWidth := max(16, m.width-36)
		lines = append(lines, m.list(len(snap.Rows), m.cursor[views.ViewPlaylist], height-1, func(i int, selected bool) string {
			r := snap.Rows[i]
			text := fmt.Sprintf("%s %10s %8s  %s", padRight(r.Video.Title, titleWidth),
				videoDate(r.Video), views.FormatDuration(r.Video.Duration), displayLabel(r.State))
			if selected {
				return m.row(text, true, m.width)
			}
			return m.stateStyle(r.State).Render(truncate(text, m.width))
		})...)
	}
	return strings.Join(lines, "\n")
}

// activityLines flattens the queue and history into one scrollable list.
func (m Model) activityLines(snap views.ActivitySnapshot) []string {
	styles := m.theme.Styles()
	titleWidth := max(16, m.width-44)
	lines := []string{styles.AccentText.Bold(true).Render(fmt.Sprintf("Downloading (%d)", len(snap.Active)))}
	if len(snap.Active) == 0 {
		lines = append(lines, styles.MutedText.Render("  Nothing in the queue"))
	}
	for _, q := range snap.Active {
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			padRight(q.Title, titleWidth), padRight(q.ChannelName, 24), m.badge(strings.TrimSpace(q.Status))))
	}
	lines = append(lines, "", styles.AccentText.Bold(true).Render(fmt.Sprintf("History (%d)", len(snap.History))))
	if len(snap.History) == 0 {
		lines = append(lines, styles.MutedText.Render("  No downloads yet"))
	}
	for _, h := range snap.History {
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			padRight(h.VideoTitle, titleWidth), padRight(h.ChannelName, 24), styles.FaintText.Render(h.DownloadedAt)))
	}
	return lines
}

func (m Model) renderActivity(height int) string {
	lines := m.activityLines(m.c.Activity.Snapshot())
	offset := min(m.cursor[views.ViewActivity], max(0, len(lines)-height))
	return strings.Join(lines[max(0, offset):], "\n")
}

func (m Model) renderSearch(height int) string {
	styles := m.theme.Styles()
	snap := m.c.Search.Snapshot()
	var lines []string
	switch snap.Phase {
	case views.SearchIdle:
		return styles.MutedText.Render("Press / to search YouTube for a channel.")
	case views.Searching:
		return styles.InfoText.Render(fmt.Sprintf("Searching for %q…", snap.Query))
	}
	lines = append(lines, styles.MutedText.Render(fmt.Sprintf("%d results for %q", len(snap.Items), snap.Query)))
	if snap.Err != "" {
		lines = append(lines, styles.DangerText.Render(snap.Err))
	}
	nameWidth := max(16, m.width-48)
	lines = append(lines, m.list(len(snap.Items), m.cursor[views.ViewSearch], height-len(lines), func(i int, selected bool) string {
		it := snap.Items[i]
		detail := ternary(it.Enrichment == views.Enriched,
			fmt.Sprintf("%s subs · %s videos", formatCount(it.Result.SubscriberCount), formatCount(it.Result.VideoCount)), "…")
		text := fmt.Sprintf("%s %-26s %s", padRight(it.Result.Name, nameWidth), detail, addLabel(it))
		if selected {
			return m.row(text, true, m.width)
		}
		if it.Add == views.AddFailed {
			return styles.DangerText.Render(truncate(text, m.width))
		}
		return truncate(text, m.width)
	})...)
	return strings.Join(lines, "\n")
}

func addLabel(it views.SearchItem) string {
	switch it.Add {
	case views.AddConfiguring:
		return "configuring"
	case views.AddSubmitting:
		return "adding…"
	case views.AddAdded:
		return "✓ added"
	case views.AddFailed:
		return "failed: " + it.AddError
	default:
		return ""
	}
}

func (m Model) renderPreview(v views.PreviewView, height int) string {
	styles := m.theme.Styles()
	p := v.Preview
	lines := []string{
		styles.AccentText.Bold(true).Render(ternary(p.Name != "", p.Name, p.PlatformID)),
		styles.MutedText.Render(fmt.Sprintf("%d recent uploads · enter to add this channel", len(p.Videos))),
	}
	lines = append(lines, m.list(len(p.Videos), m.cursor[views.ViewPreview], height-2, func(i int, selected bool) string {
		return m.row("  "+p.Videos[i].Title, selected, m.width)
	})...)
	return strings.Join(lines, "\n")
}

func (m Model) renderSettings() string {
	styles := m.theme.Styles()
	snap := m.c.Settings.Snapshot()
	current := snap.Settings
	if m.draft != nil {
		current = *m.draft
	}

	field := func(label, value string, changed bool) string {
		mark := ternary(changed, styles.WarningText.Render("* "), "  ")
		return mark + styles.MutedText.Render(padRight(label, 18)) + styles.Text.Render(value)
	}
	saved := snap.Settings
	interval := fmt.Sprintf("every %d min", current.SyncInterval)
	lines := []string{
		styles.AccentText.Bold(true).Render("Server settings"),
		field("Auto sync", ternary(current.AutoSync, "on", "off"), current.AutoSync != saved.AutoSync),
		field("Sync interval", interval, current.SyncInterval != saved.SyncInterval),
		field("Default quality", current.DefaultQuality, current.DefaultQuality != saved.DefaultQuality),
		field("Download path", truncateMiddle(current.DefaultPath, 48), current.DefaultPath != saved.DefaultPath),
		field("Naming", current.NamingFormat, false),
		field("API key", maskKey(current.APIKey), current.APIKey != saved.APIKey),
		"",
		styles.AccentText.Bold(true).Render("Library"),
		field("Channels", fmt.Sprintf("%d", snap.Status.Channels), false),
		field("Videos", fmt.Sprintf("%d", snap.Status.Videos), false),
		field("Downloaded", fmt.Sprintf("%d", snap.Status.Downloaded), false),
	}
	if snap.Status.Version != "" {
		lines = append(lines, field("Server version", snap.Status.Version, false))
	}
	if !snap.Loaded {
		lines = append(lines, "", styles.WarningText.Render("Showing defaults until the server answers."))
	}
	if m.draft != nil {
		lines = append(lines, "", styles.WarningText.Render("Unsaved changes: w to save, esc to discard."))
	}
	return strings.Join(lines, "\n")
}

// maskKey shows only the last four characters of an API key.
func maskKey(k string) string {
	if k == "" {
		return "(none)"
	}
	if len(k) <= 4 {
		return strings.Repeat("•", len(k))
	}
	return strings.Repeat("•", 8) + k[len(k)-4:]
}

// qualities offered when cycling the default quality.
var qualities = []string{"best", "2160p", "1440p", "1080p", "720p", "480p"}

func nextQuality(current string) string {
	for i, q := range qualities {
		if q == current {
			return qualities[(i+1)%len(qualities)]
		}
	}
	return qualities[0]
}
