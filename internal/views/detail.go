package views

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/five82/tubarr-tui/internal/overlay"
	"github.com/five82/tubarr-tui/internal/poll"
	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

// PageSize is the first window of a channel catalog and the LoadMore step.
const PageSize = 25

// Sort orders a channel catalog.
type Sort string

const (
	SortNewest Sort = "date_desc"
	SortOldest Sort = "date_asc"
	SortTitle  Sort = "title"
)

// Filter narrows a channel catalog by download state.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterDownloaded Filter = "downloaded"
	FilterAvailable  Filter = "available"
)

// Sorts and Filters list the accepted values in display order.
var (
	Sorts   = []Sort{SortNewest, SortOldest, SortTitle}
	Filters = []Filter{FilterAll, FilterDownloaded, FilterAvailable}
)

func validSort(s Sort) bool {
	for _, v := range Sorts {
		if v == s {
			return true
		}
	}
	return false
}

func validFilter(f Filter) bool {
	for _, v := range Filters {
		if v == f {
			return true
		}
	}
	return false
}

// VideoRow is a video with its resolved display state.
type VideoRow struct {
	Video    tubarr.Video
	State    overlay.DisplayState
	Selected bool
}

// DetailSnapshot is everything the channel-detail screen renders.
type DetailSnapshot struct {
	ChannelID        int64
	Channel          tubarr.Channel
	Sort             Sort
	Filter           Filter
	Loaded           int
	HasMore          bool
	TotalVideos      int
	DownloadedCount  int
	Loading          bool
	LoadingMore      bool
	PlaylistsLoading bool
	Query            string
	Rows             []VideoRow
	Playlists        []PlaylistRow
	Selected         int
}

// CanLoadMore reports whether a Load More control applies.
func (s DetailSnapshot) CanLoadMore() bool {
	return s.HasMore && s.Query == "" && !s.Loading && !s.LoadingMore
}

// PlaylistRow is a playlist with its health.
type PlaylistRow struct {
	Playlist tubarr.Playlist
	Health   Health
}

// ChannelDetail controls one channel's paginated catalog. It owns the
// channel-detail and playlists cache entries while active.
//
// Two counters guard against stale responses. visit changes whenever the
// selected channel changes or the view is left; window changes whenever the
// loaded window is redefined (new channel, new sort/filter, appended page).
// A response is applied only if the counter it was issued under still holds.
// apply serializes that check with the cache write; it is always taken
// before mu, never after.
type ChannelDetail struct {
	d        Deps
	channels *Channels

	apply            sync.Mutex
	mu               sync.Mutex
	active           bool
	channelID        int64
	sort             Sort
	filter           Filter
	loaded           int
	hasMore          bool
	visit            uint64
	window           uint64
	loading          bool
	loadingMore      bool
	playlistsLoading bool
	query            string
	selection        map[string]struct{}
}

// NewChannelDetail builds the controller.
func NewChannelDetail(d Deps, channels *Channels) *ChannelDetail {
	return &ChannelDetail{
		d:         d,
		channels:  channels,
		sort:      SortNewest,
		filter:    FilterAll,
		loaded:    PageSize,
		selection: make(map[string]struct{}),
	}
}

type detailTicket struct {
	channelID int64
	visit     uint64
	window    uint64
	query     tubarr.PageQuery
}

// Load selects channelID, resets sort, filter and the window, and fetches
// page one. Playlists load concurrently and do not block the videos.
func (c *ChannelDetail) Load(ctx context.Context, channelID int64) error {
	if channelID <= 0 {
		return ErrNoChannel
	}
	return c.begin(channelID)(ctx)
}

// begin switches the controller to channelID and starts its timer without
// touching the network. The returned func fetches page one and the
// playlists; its result is discarded if the view is left meanwhile.
func (c *ChannelDetail) begin(channelID int64) func(context.Context) error {
	c.apply.Lock()
	c.mu.Lock()
	c.active = true
	c.channelID = channelID
	c.sort = SortNewest
	c.filter = FilterAll
	c.loaded = PageSize
	c.hasMore = false
	c.query = ""
	c.selection = make(map[string]struct{})
	c.visit++
	c.window++
	c.loading = true
	c.loadingMore = false
	c.playlistsLoading = true
	visit := c.visit
	ticket := c.ticketLocked(0, PageSize)
	c.mu.Unlock()
	state.Clear(c.d.Store, state.ChannelDetail)
	state.Clear(c.d.Store, state.Playlists)
	c.apply.Unlock()

	c.acquireTimer()

	return func(ctx context.Context) error {
		go c.loadPlaylists(ctx, channelID, visit)
		return c.fetchWindow(ctx, ticket)
	}
}

// ChangeSortOrFilter redefines the window: loaded count back to PageSize and
// page one replaced, never merged. The refresh timer is re-keyed and one
// immediate fetch runs.
func (c *ChannelDetail) ChangeSortOrFilter(ctx context.Context, sortBy Sort, filter Filter) error {
	if !validSort(sortBy) {
		return fmt.Errorf("unknown sort %q", sortBy)
	}
	if !validFilter(filter) {
		return fmt.Errorf("unknown filter %q", filter)
	}
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrNoChannel
	}
	c.sort = sortBy
	c.filter = filter
	c.loaded = PageSize
	c.hasMore = false
	c.window++
	c.loading = true
	c.loadingMore = false
	ticket := c.ticketLocked(0, PageSize)
	c.mu.Unlock()

	c.acquireTimer()
	return c.fetchWindow(ctx, ticket)
}

// LoadMore appends the next page at offset = loaded count. It is a no-op when
// the server reported no more pages, another LoadMore is in flight, or page
// one is still being (re)loaded.
func (c *ChannelDetail) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if !c.active || !c.hasMore || c.loading || c.loadingMore {
		c.mu.Unlock()
		return nil
	}
	c.loadingMore = true
	ticket := c.ticketLocked(c.loaded, PageSize)
	c.mu.Unlock()
	c.notify()

	page, err := c.d.API.ChannelDetail(ctx, ticket.channelID, ticket.query)

	c.apply.Lock()
	defer c.apply.Unlock()
	c.mu.Lock()
	if ticket.window == c.window {
		c.loadingMore = false
	}
	if err != nil {
		c.mu.Unlock()
		c.notify()
		c.d.Log.Error().Err(err).Int64("channel_id", ticket.channelID).Int("offset", ticket.query.Offset).Msg("load more failed")
		return err
	}
	if ticket.window != c.window {
		c.mu.Unlock()
		return nil
	}
	c.loaded += len(page.Videos)
	c.hasMore = page.HasMore
	c.window++
	c.mu.Unlock()

	state.Merge(c.d.Store, state.ChannelDetail, func(cur tubarr.ChannelDetail, _ bool) tubarr.ChannelDetail {
		seen := make(map[string]struct{}, len(cur.Videos))
		for _, v := range cur.Videos {
			seen[v.VideoID] = struct{}{}
		}
		for _, v := range page.Videos {
			if _, dup := seen[v.VideoID]; !dup {
				cur.Videos = append(cur.Videos, v)
			}
		}
		cur.Channel = page.Channel
		cur.HasMore = page.HasMore
		cur.TotalVideos = page.TotalVideos
		cur.DownloadedCount = page.DownloadedCount
		cur.LoadedVideos = len(cur.Videos)
		return cur
	})
	c.notify()
	return nil
}

// Refresh re-synchronizes the loaded window: offset 0, limit = loaded count,
// current sort and filter. It never grows or shrinks the window.
func (c *ChannelDetail) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return nil
	}
	ticket := c.ticketLocked(0, c.loaded)
	c.mu.Unlock()
	return c.fetchWindow(ctx, ticket)
}

// Leave releases the timer and discards whatever is still in flight.
func (c *ChannelDetail) Leave() {
	c.apply.Lock()
	defer c.apply.Unlock()
	c.mu.Lock()
	wasActive := c.active
	c.active = false
	c.visit++
	c.window++
	c.loading = false
	c.loadingMore = false
	c.playlistsLoading = false
	c.selection = make(map[string]struct{})
	c.mu.Unlock()
	if !wasActive {
		return
	}
	if c.d.Poller != nil {
		c.d.Poller.Release(poll.SlotView)
	}
	state.Clear(c.d.Store, state.ChannelDetail)
	state.Clear(c.d.Store, state.Playlists)
}

// ChannelID returns the selected channel, or 0 when inactive.
func (c *ChannelDetail) ChannelID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return 0
	}
	return c.channelID
}

func (c *ChannelDetail) ticketLocked(offset, limit int) detailTicket {
	return detailTicket{
		channelID: c.channelID,
		visit:     c.visit,
		window:    c.window,
		query:     tubarr.PageQuery{Limit: limit, Offset: offset, Sort: string(c.sort), Filter: string(c.filter)},
	}
}

// fetchWindow fetches offset 0 and replaces the cached page if the window is
// still the one the request was issued for.
func (c *ChannelDetail) fetchWindow(ctx context.Context, t detailTicket) error {
	page, err := c.d.API.ChannelDetail(ctx, t.channelID, t.query)

	c.apply.Lock()
	defer c.apply.Unlock()
	c.mu.Lock()
	current := t.window == c.window
	if current {
		c.loading = false
	}
	if err != nil && !current {
		c.mu.Unlock()
		c.d.Log.Debug().Err(err).Int64("channel_id", t.channelID).Msg("stale channel page failed")
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		c.notify()
		return err
	}
	if !current {
		c.mu.Unlock()
		c.d.Log.Debug().Int64("channel_id", t.channelID).Msg("stale channel page discarded")
		return nil
	}
	c.hasMore = page.HasMore
	keep := make(map[string]struct{}, len(c.selection))
	for _, v := range page.Videos {
		if _, ok := c.selection[v.VideoID]; ok {
			keep[v.VideoID] = struct{}{}
		}
	}
	c.selection = keep
	c.mu.Unlock()

	page.LoadedVideos = len(page.Videos)
	state.Set(c.d.Store, state.ChannelDetail, page)
	c.notify()
	return nil
}

func (c *ChannelDetail) loadPlaylists(ctx context.Context, channelID int64, visit uint64) {
	playlists, err := c.d.API.ChannelPlaylists(ctx, channelID)

	c.apply.Lock()
	defer c.apply.Unlock()
	c.mu.Lock()
	current := visit == c.visit
	if current {
		c.playlistsLoading = false
	}
	c.mu.Unlock()
	if !current {
		return
	}
	if err != nil {
		c.d.background("playlists", err)
		c.notify()
		return
	}
	state.Set(c.d.Store, state.Playlists, playlists)
	c.notify()
}

func (c *ChannelDetail) acquireTimer() {
	if c.d.Poller == nil {
		return
	}
	c.mu.Lock()
	key := poll.Key{View: "channel", Params: fmt.Sprintf("%d|%s|%s", c.channelID, c.sort, c.filter)}
	c.mu.Unlock()
	c.d.Poller.Acquire(poll.SlotView, key, c.d.Intervals.WithDefaults().Detail, c.tick)
}

// RefreshBackground is Refresh for ticks and push hints: failures are only
// logged and counted toward the offline indicator.
func (c *ChannelDetail) RefreshBackground(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.d.background("channel detail", err)
		return
	}
	c.d.Store.RecordSuccess()
}

func (c *ChannelDetail) tick(ctx context.Context) {
	c.RefreshBackground(ctx)
	_ = c.d.RefreshQueue(ctx)
}

// Toggle flips selection of a video in the current page.
func (c *ChannelDetail) Toggle(videoID string) {
	if !c.inPage(videoID) {
		return
	}
	c.mu.Lock()
	if _, ok := c.selection[videoID]; ok {
		delete(c.selection, videoID)
	} else {
		c.selection[videoID] = struct{}{}
	}
	c.mu.Unlock()
	c.notify()
}

// ClearSelection empties the selection.
func (c *ChannelDetail) ClearSelection() {
	c.mu.Lock()
	c.selection = make(map[string]struct{})
	c.mu.Unlock()
	c.notify()
}

// Selection returns the selected video ids in sorted order.
func (c *ChannelDetail) Selection() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.selection))
	for id := range c.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetQuery filters the loaded window by title on the client. It never
// touches pagination state.
func (c *ChannelDetail) SetQuery(q string) {
	c.mu.Lock()
	c.query = strings.TrimSpace(q)
	c.mu.Unlock()
	c.notify()
}

func (c *ChannelDetail) inPage(videoID string) bool {
	page, ok := state.Get(c.d.Store, state.ChannelDetail)
	if !ok {
		return false
	}
	for _, v := range page.Videos {
		if v.VideoID == videoID {
			return true
		}
	}
	return false
}

// Download queues one video of the current page.
func (c *ChannelDetail) Download(ctx context.Context, videoID string) error {
	channelID := c.ChannelID()
	if channelID == 0 {
		return ErrNoChannel
	}
	if !c.inPage(videoID) {
		return ErrMismatchedVideo
	}
	return c.d.download(ctx, videoID, channelID)
}

// BulkDownload issues one download per selected video and clears the
// selection once dispatched, whatever the individual outcomes.
func (c *ChannelDetail) BulkDownload(ctx context.Context) BulkResult {
	channelID := c.ChannelID()
	ids := c.takeSelection()
	if channelID == 0 || len(ids) == 0 {
		return BulkResult{}
	}
	return fanOut(ctx, ids, func(ctx context.Context, id string) error {
		return c.d.download(ctx, id, channelID)
	})
}

func (c *ChannelDetail) takeSelection() []string {
	ids := c.Selection()
	c.mu.Lock()
	c.selection = make(map[string]struct{})
	c.mu.Unlock()
	c.notify()
	return ids
}

// BulkDelete returns a confirmation for deleting the current selection, or
// nil when nothing is selected. Accepting deletes each video independently,
// clears the selection and refreshes the window.
func (c *ChannelDetail) BulkDelete() *Confirmation {
	ids := c.Selection()
	if len(ids) == 0 {
		return nil
	}
	return &Confirmation{
		Prompt: fmt.Sprintf("Delete %d videos?", len(ids)),
		run: func(ctx context.Context) error {
			c.mu.Lock()
			for _, id := range ids {
				delete(c.selection, id)
			}
			c.mu.Unlock()
			res := fanOut(ctx, ids, c.d.API.DeleteVideo)
			c.afterDelete(ctx)
			if res.Failed > 0 {
				return fmt.Errorf("%d of %d deletes failed: %w", res.Failed, res.Requested, res.FirstErr)
			}
			return nil
		},
	}
}

// DeleteVideo returns a confirmation for deleting one downloaded video.
func (c *ChannelDetail) DeleteVideo(videoID string) *Confirmation {
	title := videoID
	if page, ok := state.Get(c.d.Store, state.ChannelDetail); ok {
		for _, v := range page.Videos {
			if v.VideoID == videoID && v.Title != "" {
				title = v.Title
			}
		}
	}
	return &Confirmation{
		Prompt: fmt.Sprintf("Delete %q?", title),
		run: func(ctx context.Context) error {
			if err := c.d.API.DeleteVideo(ctx, videoID); err != nil {
				return err
			}
			c.afterDelete(ctx)
			return nil
		},
	}
}

func (c *ChannelDetail) afterDelete(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.d.background("channel detail", err)
	}
	if c.channels != nil {
		c.channels.RefreshBackground(ctx)
	}
}

// DeleteChannel returns a confirmation for removing the selected channel.
// After it is accepted the controller is inactive and the caller navigates away.
func (c *ChannelDetail) DeleteChannel() *Confirmation {
	channelID := c.ChannelID()
	if channelID == 0 {
		return nil
	}
	name := fmt.Sprintf("channel %d", channelID)
	if page, ok := state.Get(c.d.Store, state.ChannelDetail); ok && page.Channel.Name != "" {
		name = page.Channel.Name
	}
	return &Confirmation{
		Prompt: fmt.Sprintf("Delete %s and all its videos?", name),
		run: func(ctx context.Context) error {
			if err := c.d.API.DeleteChannel(ctx, channelID); err != nil {
				return err
			}
			c.d.Log.Info().Int64("channel_id", channelID).Msg("channel deleted")
			if c.ChannelID() == channelID {
				c.Leave()
			}
			if c.channels != nil {
				c.channels.remove(channelID)
				c.channels.RefreshBackground(ctx)
			}
			return nil
		},
	}
}

// Sync asks the server to rediscover the channel's uploads.
func (c *ChannelDetail) Sync(ctx context.Context) error {
	channelID := c.ChannelID()
	if channelID == 0 {
		return ErrNoChannel
	}
	if err := c.d.API.SyncChannel(ctx, channelID); err != nil {
		return err
	}
	c.d.Log.Info().Int64("channel_id", channelID).Msg("channel sync started")
	return nil
}

// ToggleMonitor flips the monitored flag and patches both caches.
func (c *ChannelDetail) ToggleMonitor(ctx context.Context) (bool, error) {
	channelID := c.ChannelID()
	if channelID == 0 {
		return false, ErrNoChannel
	}
	monitored, err := c.d.API.ToggleMonitor(ctx, channelID)
	if err != nil {
		return false, err
	}
	c.apply.Lock()
	if c.ChannelID() == channelID {
		state.Merge(c.d.Store, state.ChannelDetail, func(cur tubarr.ChannelDetail, ok bool) tubarr.ChannelDetail {
			if ok && cur.Channel.ID == channelID {
				cur.Channel.Monitored = monitored
			}
			return cur
		})
	}
	c.apply.Unlock()
	if c.channels != nil {
		c.channels.setMonitored(channelID, monitored)
	}
	if err := c.Refresh(ctx); err != nil {
		c.d.background("channel detail", err)
	}
	return monitored, nil
}

// SetPlaylistMonitor enables (optionally queuing the backlog once) or
// disables monitoring of a playlist, then re-reads the playlists.
func (c *ChannelDetail) SetPlaylistMonitor(ctx context.Context, playlistID string, monitor, downloadAll bool) error {
	c.mu.Lock()
	channelID, visit, active := c.channelID, c.visit, c.active
	c.mu.Unlock()
	if !active {
		return ErrNoChannel
	}
	var err error
	if monitor {
		err = c.d.API.MonitorPlaylist(ctx, playlistID, channelID, downloadAll)
	} else {
		err = c.d.API.UnmonitorPlaylist(ctx, playlistID)
	}
	if err != nil {
		return err
	}
	c.mu.Lock()
	if visit == c.visit {
		c.playlistsLoading = true
	}
	c.mu.Unlock()
	c.loadPlaylists(ctx, channelID, visit)
	return nil
}

// Snapshot assembles the render state.
func (c *ChannelDetail) Snapshot() DetailSnapshot {
	c.mu.Lock()
	snap := DetailSnapshot{
		ChannelID:        c.channelID,
		Sort:             c.sort,
		Filter:           c.filter,
		Loaded:           c.loaded,
		HasMore:          c.hasMore,
		Loading:          c.loading,
		LoadingMore:      c.loadingMore,
		PlaylistsLoading: c.playlistsLoading,
		Query:            c.query,
		Selected:         len(c.selection),
	}
	selected := make(map[string]struct{}, len(c.selection))
	for id := range c.selection {
		selected[id] = struct{}{}
	}
	active := c.active
	c.mu.Unlock()
	if !active {
		snap.ChannelID = 0
		return snap
	}

	page, _ := state.Get(c.d.Store, state.ChannelDetail)
	snap.Channel = page.Channel
	snap.TotalVideos = page.TotalVideos
	snap.DownloadedCount = page.DownloadedCount

	resolve := c.d.resolver()
	needle := strings.ToLower(snap.Query)
	for _, v := range page.Videos {
		if needle != "" && !strings.Contains(strings.ToLower(v.Title), needle) {
			continue
		}
		_, sel := selected[v.VideoID]
		snap.Rows = append(snap.Rows, VideoRow{Video: v, State: resolve.State(v), Selected: sel})
	}

	playlists, _ := state.Get(c.d.Store, state.Playlists)
	for _, p := range playlists {
		snap.Playlists = append(snap.Playlists, PlaylistRow{Playlist: p, Health: PlaylistHealth(p)})
	}
	return snap
}

func (c *ChannelDetail) notify() {
	c.d.Store.Notify(KindDetailView)
}
