package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tubarr-tui/internal/tubarr"
	"github.com/five82/tubarr-tui/internal/views"
)

// move applies a navigation key to the named cursor over n rows and reports
// whether msg was one.
func (m Model) move(msg tea.KeyMsg, name string, n int) bool {
	cur := clamp(m.cursor[name], n)
	half := max(1, (m.height-3)/2)
	switch {
	case key.Matches(msg, m.keys.Up):
		cur--
	case key.Matches(msg, m.keys.Down):
		cur++
	case key.Matches(msg, m.keys.Top):
		cur = 0
	case key.Matches(msg, m.keys.Bottom):
		cur = n - 1
	case key.Matches(msg, m.keys.HalfPageUp):
		cur -= half
	case key.Matches(msg, m.keys.HalfPageDown):
		cur += half
	default:
		return false
	}
	m.cursor[name] = clamp(cur, n)
	return true
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.c.Channels.Rows()
	if m.move(msg, views.ViewHome, len(rows)) {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Open):
		if len(rows) == 0 {
			return m, nil
		}
		return m.openChannel(rows[clamp(m.cursor[views.ViewHome], len(rows))].Channel.ID)
	case key.Matches(msg, m.keys.Sync):
		return m, m.syncAll()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.navigate(views.HomeView{})
	case key.Matches(msg, m.keys.Filter):
		return m.openSearch()
	}
	return m, nil
}

func (m Model) openChannel(id int64) (tea.Model, tea.Cmd) {
	m.cursor[views.ViewChannel] = 0
	m.cursor["playlists"] = 0
	m.playlistFocus = false
	return m, m.navigate(views.ChannelView{ChannelID: id})
}

func (m Model) syncAll() tea.Cmd {
	ctx, settings := m.ctx, m.c.Settings
	return func() tea.Msg {
		res, err := settings.SyncAll(ctx)
		return opDoneMsg{what: "sync channels", err: err, info: fmt.Sprintf("Sync finished, %d new videos", res.NewVideos)}
	}
}

func (m Model) handleChannelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.c.Detail.Snapshot()
	if m.playlistFocus {
		return m.handlePlaylistPaneKey(msg, snap)
	}

	n := len(snap.Rows)
	atEnd := clamp(m.cursor[views.ViewChannel], n) == n-1
	if m.move(msg, views.ViewChannel, n) {
		if key.Matches(msg, m.keys.Down) && atEnd && snap.CanLoadMore() && !snap.LoadingMore {
			return m, m.run("load more videos", "", m.c.Detail.LoadMore)
		}
		return m, nil
	}

	detail := m.c.Detail
	switch {
	case key.Matches(msg, m.keys.CycleSort):
		m.cursor[views.ViewChannel] = 0
		next := cycle(views.Sorts, snap.Sort)
		return m, m.run("change sort", "", func(ctx context.Context) error {
			return detail.ChangeSortOrFilter(ctx, next, snap.Filter)
		})
	case key.Matches(msg, m.keys.CycleFilter):
		m.cursor[views.ViewChannel] = 0
		next := cycle(views.Filters, snap.Filter)
		return m, m.run("change filter", "", func(ctx context.Context) error {
			return detail.ChangeSortOrFilter(ctx, snap.Sort, next)
		})
	case key.Matches(msg, m.keys.LoadMore):
		if !snap.CanLoadMore() {
			return m, nil
		}
		return m, m.run("load more videos", "", detail.LoadMore)
	case key.Matches(msg, m.keys.Filter):
		return m.startInput(inputFilter, snap.Query), nil
	case key.Matches(msg, m.keys.Monitor):
		ctx := m.ctx
		return m, func() tea.Msg {
			on, err := detail.ToggleMonitor(ctx)
			return opDoneMsg{what: "change monitoring", err: err, info: ternary(on, "Monitoring on", "Monitoring off")}
		}
	case key.Matches(msg, m.keys.Sync):
		return m, m.run("sync channel", "Channel sync started", detail.Sync)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run("refresh channel", "", detail.Refresh)
	case key.Matches(msg, m.keys.Playlists):
		if len(snap.Playlists) > 0 {
			m.playlistFocus = true
		}
		return m, nil
	case key.Matches(msg, m.keys.DeleteChannel):
		if conf := detail.DeleteChannel(); conf != nil {
			m.modal = confirmModal{ctx: m.ctx, conf: conf, what: "remove channel", next: views.HomeView{}}
		}
		return m, nil
	case key.Matches(msg, m.keys.BulkDownload):
		if snap.Selected == 0 {
			m.setFlash("Nothing selected", false)
			return m, nil
		}
		ctx := m.ctx
		return m, func() tea.Msg { return bulkDone(detail.BulkDownload(ctx)) }
	case key.Matches(msg, m.keys.BulkDelete):
		if conf := detail.BulkDelete(); conf != nil {
			m.modal = confirmModal{ctx: m.ctx, conf: conf, what: "delete videos"}
		} else {
			m.setFlash("Nothing selected", false)
		}
		return m, nil
	}

	if n == 0 {
		return m, nil
	}
	video := snap.Rows[clamp(m.cursor[views.ViewChannel], n)].Video
	switch {
	case key.Matches(msg, m.keys.Select):
		detail.Toggle(video.VideoID)
		m.move(tea.KeyMsg{Type: tea.KeyDown}, views.ViewChannel, n)
	case key.Matches(msg, m.keys.Download), key.Matches(msg, m.keys.Open):
		return m, m.run("start the download", "Queued "+video.Title, func(ctx context.Context) error {
			return detail.Download(ctx, video.VideoID)
		})
	case key.Matches(msg, m.keys.Delete):
		if conf := detail.DeleteVideo(video.VideoID); conf != nil {
			m.modal = confirmModal{ctx: m.ctx, conf: conf, what: "delete video"}
		}
	}
	return m, nil
}

func (m Model) handlePlaylistPaneKey(msg tea.KeyMsg, snap views.DetailSnapshot) (tea.Model, tea.Cmd) {
	n := len(snap.Playlists)
	if m.move(msg, "playlists", n) {
		return m, nil
	}
	if key.Matches(msg, m.keys.Playlists) {
		m.playlistFocus = false
		return m, nil
	}
	if n == 0 {
		return m, nil
	}
	p := snap.Playlists[clamp(m.cursor["playlists"], n)].Playlist
	switch {
	case key.Matches(msg, m.keys.Open):
		m.cursor[views.ViewPlaylist] = 0
		return m, m.navigate(views.PlaylistView{ChannelID: snap.ChannelID, PlaylistID: p.PlaylistID, Title: p.Title})
	case key.Matches(msg, m.keys.Monitor):
		m.modal = playlistModal{ctx: m.ctx, detail: m.c.Detail, playlist: p}
	}
	return m, nil
}

// bulkDone reports a bulk download. Calls are independent, so a partial
// failure lists how many did not go through.
func bulkDone(res views.BulkResult) tea.Msg {
	if res.Failed > 0 {
		return opDoneMsg{
			what:   "download videos",
			err:    res.FirstErr,
			notice: fmt.Sprintf("%d of %d downloads failed: %s", res.Failed, res.Requested, views.UserMessage(res.FirstErr, "download failed")),
		}
	}
	return opDoneMsg{info: fmt.Sprintf("Queued %d videos", res.Requested)}
}

// cycle returns the value after cur in values, wrapping around.
func cycle[T comparable](values []T, cur T) T {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func (m Model) handlePlaylistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.c.Playlist.Snapshot()
	n := len(snap.Rows)
	if m.move(msg, views.ViewPlaylist, n) {
		return m, nil
	}
	playlist := m.c.Playlist
	if key.Matches(msg, m.keys.Refresh) {
		return m, m.run("refresh playlist", "", playlist.Refresh)
	}
	if n == 0 {
		return m, nil
	}
	video := snap.Rows[clamp(m.cursor[views.ViewPlaylist], n)].Video
	switch {
	case key.Matches(msg, m.keys.Download), key.Matches(msg, m.keys.Open):
		return m, m.run("start the download", "Queued "+video.Title, func(ctx context.Context) error {
			return playlist.Download(ctx, video.VideoID)
		})
	case key.Matches(msg, m.keys.Delete):
		if conf := playlist.DeleteVideo(video.VideoID); conf != nil {
			m.modal = confirmModal{ctx: m.ctx, conf: conf, what: "delete video"}
		}
	}
	return m, nil
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lines := m.activityLines(m.c.Activity.Snapshot())
	if m.move(msg, views.ViewActivity, len(lines)) {
		return m, nil
	}
	if key.Matches(msg, m.keys.Refresh) {
		return m, m.run("refresh activity", "", m.c.Activity.Refresh)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.c.Search.Snapshot()
	n := len(snap.Items)
	if m.move(msg, views.ViewSearch, n) {
		return m, nil
	}
	if key.Matches(msg, m.keys.Filter) {
		return m.startInput(inputSearch, snap.Query), nil
	}
	if n == 0 {
		return m, nil
	}
	item := snap.Items[clamp(m.cursor[views.ViewSearch], n)]
	switch {
	case key.Matches(msg, m.keys.Open):
		return m.configure(item)
	case key.Matches(msg, m.keys.Preview):
		ctx, search, id := m.ctx, m.c.Search, item.Result.PlatformID
		return m, func() tea.Msg {
			preview, err := search.Preview(ctx, id)
			return previewMsg{preview: preview, err: err}
		}
	}
	return m, nil
}

// configure opens the add form for a search result.
func (m Model) configure(item views.SearchItem) (tea.Model, tea.Cmd) {
	if item.Add == views.AddAdded {
		m.setFlash(item.Result.Name+" is already added", false)
		return m, nil
	}
	form, err := m.c.Search.Configure(item.Result.PlatformID)
	if err != nil {
		m.modal = noticeModal{title: "Cannot add channel", text: views.UserMessage(err, "Could not open the add form")}
		return m, nil
	}
	m.modal = newAddModal(m.ctx, m.c.Search, form)
	return m, textinput.Blink
}

func (m Model) handlePreviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v, ok := m.router.Current().(views.PreviewView)
	if !ok {
		return m, nil
	}
	if m.move(msg, views.ViewPreview, len(v.Preview.Videos)) {
		return m, nil
	}
	if key.Matches(msg, m.keys.Open) {
		for _, it := range m.c.Search.Snapshot().Items {
			if it.Result.PlatformID == v.Preview.PlatformID {
				return m.configure(it)
			}
		}
		m.modal = noticeModal{title: "Cannot add channel", text: views.UserMessage(views.ErrUnknownResult, "")}
	}
	return m, nil
}

// editDraft starts a settings edit from the cached values on first change.
func (m *Model) editDraft() *tubarr.Settings {
	if m.draft == nil {
		current := m.c.Settings.Current()
		m.draft = &current
	}
	return m.draft
}

// syncIntervals are the minutes offered by the interval keys.
var syncIntervals = []int{5, 10, 15, 30, 60, 120, 240, 360, 720, 1440}

func stepInterval(current, dir int) int {
	if dir > 0 {
		for _, v := range syncIntervals {
			if v > current {
				return v
			}
		}
		return current
	}
	for i := len(syncIntervals) - 1; i >= 0; i-- {
		if syncIntervals[i] < current {
			return syncIntervals[i]
		}
	}
	return current
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	settings := m.c.Settings
	ctx := m.ctx
	switch {
	case key.Matches(msg, m.keys.ToggleAutoSync):
		d := m.editDraft()
		d.AutoSync = !d.AutoSync
	case key.Matches(msg, m.keys.IntervalUp):
		d := m.editDraft()
		d.SyncInterval = stepInterval(d.SyncInterval, 1)
	case key.Matches(msg, m.keys.IntervalDown):
		d := m.editDraft()
		d.SyncInterval = stepInterval(d.SyncInterval, -1)
	case key.Matches(msg, m.keys.CycleQuality):
		d := m.editDraft()
		d.DefaultQuality = nextQuality(d.DefaultQuality)
	case key.Matches(msg, m.keys.EditPath):
		path := settings.Current().DefaultPath
		if m.draft != nil {
			path = m.draft.DefaultPath
		}
		return m.startInput(inputPath, path), nil
	case key.Matches(msg, m.keys.Save):
		if m.draft == nil {
			m.setFlash("No changes to save", false)
			return m, nil
		}
		draft := *m.draft
		return m, func() tea.Msg { return settingsSavedMsg{err: settings.Save(ctx, draft)} }
	case key.Matches(msg, m.keys.GenerateKey):
		return m, func() tea.Msg {
			k, err := settings.GenerateKey(ctx)
			return keyGeneratedMsg{key: k, err: err}
		}
	case key.Matches(msg, m.keys.Rescan):
		return m, func() tea.Msg {
			res, err := settings.Rescan(ctx)
			return opDoneMsg{what: "rescan the library", err: err,
				info: fmt.Sprintf("Rescan finished, %d updated, %d imported", res.Updated, res.Imported)}
		}
	case key.Matches(msg, m.keys.Sync):
		return m, m.syncAll()
	}
	return m, nil
}
