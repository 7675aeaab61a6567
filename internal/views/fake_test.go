package views

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/tubarr-tui/internal/overlay"
	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

// fakeAPI is an in-memory server. Hooks override the default behaviour of
// individual endpoints.
type fakeAPI struct {
	mu sync.Mutex

	channels  []tubarr.Channel
	nextID    int64
	total     map[int64]int
	playlists []tubarr.Playlist
	queue     []tubarr.QueueEntry
	history   []tubarr.HistoryEntry
	results   []tubarr.SearchResult
	settings  tubarr.Settings
	status    tubarr.SystemStatus

	listErr     error
	queueErr    error
	downloadErr map[string]error

	detailHook   func(id int64, q tubarr.PageQuery) (tubarr.ChannelDetail, error)
	addHook      func(req tubarr.AddChannelRequest) error
	infoHook     func(platformID string) (tubarr.ChannelInfo, error)
	downloadHook func(platformID string)

	detailCalls []tubarr.PageQuery
	downloads   []string
	deletes     []string
	infoCalls   int
	saved       []tubarr.Settings
	syncs       int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		total:       make(map[int64]int),
		downloadErr: make(map[string]error),
		settings:    tubarr.DefaultSettings(),
	}
}

func (f *fakeAPI) addFixture(ch tubarr.Channel, videos int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, ch)
	f.total[ch.ID] = videos
	if ch.ID > f.nextID {
		f.nextID = ch.ID
	}
}

func (f *fakeAPI) setQueue(queue ...tubarr.QueueEntry) {
	f.mu.Lock()
	f.queue = queue
	f.mu.Unlock()
}

func (f *fakeAPI) calls() []tubarr.PageQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tubarr.PageQuery(nil), f.detailCalls...)
}

func (f *fakeAPI) downloaded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.downloads...)
}

func (f *fakeAPI) channel(id int64) tubarr.Channel {
	for _, ch := range f.channels {
		if ch.ID == id {
			return ch
		}
	}
	return tubarr.Channel{ID: id}
}

// page returns videos [offset, offset+limit) of a channel whose catalog has
// f.total[id] entries.
func (f *fakeAPI) page(id int64, q tubarr.PageQuery) tubarr.ChannelDetail {
	total := f.total[id]
	detail := tubarr.ChannelDetail{Channel: f.channel(id), TotalVideos: total, Videos: []tubarr.Video{}}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}
	for i := q.Offset; i < end; i++ {
		detail.Videos = append(detail.Videos, tubarr.Video{
			VideoID:   fmt.Sprintf("c%d-v%d", id, i),
			ChannelID: id,
			Title:     fmt.Sprintf("Video %d", i),
		})
	}
	detail.HasMore = end < total
	return detail
}

func (f *fakeAPI) ListChannels(context.Context) ([]tubarr.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]tubarr.Channel(nil), f.channels...), nil
}

func (f *fakeAPI) AddChannel(_ context.Context, req tubarr.AddChannelRequest) (tubarr.Channel, error) {
	if f.addHook != nil {
		if err := f.addHook(req); err != nil {
			return tubarr.Channel{}, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ch := tubarr.Channel{ID: f.nextID, Name: req.URL, URL: req.URL, Monitored: req.Monitored, Quality: req.Quality}
	f.channels = append(f.channels, ch)
	return ch, nil
}

func (f *fakeAPI) DeleteChannel(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.channels[:0]
	for _, ch := range f.channels {
		if ch.ID != id {
			out = append(out, ch)
		}
	}
	f.channels = out
	return nil
}

func (f *fakeAPI) ToggleMonitor(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.channels {
		if f.channels[i].ID == id {
			f.channels[i].Monitored = !f.channels[i].Monitored
			return f.channels[i].Monitored, nil
		}
	}
	return false, &tubarr.APIError{Method: "PATCH", Path: "/channel", Status: 404, Message: "Channel not found"}
}

func (f *fakeAPI) SyncChannel(context.Context, int64) error { return nil }

func (f *fakeAPI) ChannelDetail(_ context.Context, id int64, q tubarr.PageQuery) (tubarr.ChannelDetail, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, q)
	hook := f.detailHook
	f.mu.Unlock()
	if hook != nil {
		return hook(id, q)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page(id, q), nil
}

func (f *fakeAPI) ChannelPlaylists(context.Context, int64) ([]tubarr.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tubarr.Playlist(nil), f.playlists...), nil
}

func (f *fakeAPI) ChannelInfo(_ context.Context, platformID string) (tubarr.ChannelInfo, error) {
	f.mu.Lock()
	f.infoCalls++
	f.mu.Unlock()
	if f.infoHook != nil {
		return f.infoHook(platformID)
	}
	return tubarr.ChannelInfo{}, nil
}

func (f *fakeAPI) ListVideos(context.Context) ([]tubarr.Video, error) { return nil, nil }

func (f *fakeAPI) DownloadVideo(context.Context, int64) error { return nil }

func (f *fakeAPI) DownloadByPlatformID(_ context.Context, platformID string, channelID int64) error {
	if f.downloadHook != nil {
		f.downloadHook(platformID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.downloadErr[platformID]; err != nil {
		return err
	}
	f.downloads = append(f.downloads, platformID)
	f.queue = append(f.queue, tubarr.QueueEntry{VideoID: platformID, ChannelID: channelID, Status: tubarr.StatusQueued})
	return nil
}

func (f *fakeAPI) DeleteVideo(_ context.Context, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, videoID)
	return nil
}

func (f *fakeAPI) PlaylistVideos(context.Context, string) ([]tubarr.Video, error) {
	return []tubarr.Video{{VideoID: "p-v1", Title: "Playlist video"}}, nil
}

func (f *fakeAPI) MonitorPlaylist(context.Context, string, int64, bool) error { return nil }

func (f *fakeAPI) UnmonitorPlaylist(context.Context, string) error { return nil }

func (f *fakeAPI) Queue(context.Context) ([]tubarr.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queueErr != nil {
		return nil, f.queueErr
	}
	return append([]tubarr.QueueEntry(nil), f.queue...), nil
}

func (f *fakeAPI) History(context.Context) ([]tubarr.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tubarr.HistoryEntry(nil), f.history...), nil
}

func (f *fakeAPI) Search(context.Context, string) ([]tubarr.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tubarr.SearchResult(nil), f.results...), nil
}

func (f *fakeAPI) PreviewChannel(_ context.Context, platformID string) (tubarr.ChannelPreview, error) {
	return tubarr.ChannelPreview{Name: "Preview " + platformID}, nil
}

func (f *fakeAPI) Settings(context.Context) (tubarr.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings, nil
}

func (f *fakeAPI) SaveSettings(_ context.Context, settings tubarr.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, settings)
	f.settings = settings
	return nil
}

func (f *fakeAPI) GenerateKey(context.Context) (string, error) { return "new-key", nil }

func (f *fakeAPI) Status(context.Context) (tubarr.SystemStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, nil
}

func (f *fakeAPI) Rescan(context.Context) (tubarr.RescanResult, error) {
	return tubarr.RescanResult{Status: "ok", Updated: 2, Imported: 1}, nil
}

func (f *fakeAPI) SyncAll(context.Context) (tubarr.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	return tubarr.SyncResult{Status: "ok", NewVideos: 3}, nil
}

func (f *fakeAPI) ImageURL(raw string) string {
	return tubarr.ProxyImageURL("http://tubarr.test/api/v1", raw)
}

func newTestDeps(t *testing.T, api tubarr.API) Deps {
	t.Helper()
	return Deps{
		API:     api,
		Store:   state.NewStore(),
		Overlay: overlay.New(time.Minute),
		Log:     zerolog.Nop(),
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
