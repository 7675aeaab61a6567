package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/five82/tubarr-tui/internal/poll"
	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

// PlaylistDetail controls the playlist screen.
type PlaylistDetail struct {
	d Deps

	apply      sync.Mutex
	mu         sync.Mutex
	active     bool
	channelID  int64
	playlistID string
	title      string
	visit      uint64
	loading    bool
}

// NewPlaylistDetail builds the controller.
func NewPlaylistDetail(d Deps) *PlaylistDetail {
	return &PlaylistDetail{d: d}
}

// Load selects a playlist of channelID and fetches its videos.
func (p *PlaylistDetail) Load(ctx context.Context, channelID int64, playlistID, title string) error {
	if channelID <= 0 || playlistID == "" {
		return ErrNoChannel
	}
	return p.begin(channelID, playlistID, title)(ctx)
}

// begin selects the playlist and starts its timer; the returned func does
// the first fetch.
func (p *PlaylistDetail) begin(channelID int64, playlistID, title string) func(context.Context) error {
	p.apply.Lock()
	p.mu.Lock()
	p.active = true
	p.channelID = channelID
	p.playlistID = playlistID
	p.title = title
	p.visit++
	p.loading = true
	visit := p.visit
	p.mu.Unlock()
	state.Clear(p.d.Store, state.PlaylistDetail)
	p.apply.Unlock()

	if p.d.Poller != nil {
		p.d.Poller.Acquire(poll.SlotView, poll.Key{View: "playlist", Params: playlistID},
			p.d.Intervals.WithDefaults().Detail, p.tick)
	}
	return func(ctx context.Context) error {
		return p.fetch(ctx, visit, channelID, playlistID)
	}
}

// Refresh re-reads the playlist's videos.
func (p *PlaylistDetail) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return nil
	}
	visit, channelID, playlistID := p.visit, p.channelID, p.playlistID
	p.mu.Unlock()
	return p.fetch(ctx, visit, channelID, playlistID)
}

func (p *PlaylistDetail) fetch(ctx context.Context, visit uint64, channelID int64, playlistID string) error {
	videos, err := p.d.API.PlaylistVideos(ctx, playlistID)

	p.apply.Lock()
	defer p.apply.Unlock()
	p.mu.Lock()
	current := visit == p.visit
	if current {
		p.loading = false
	}
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if !current {
		return nil
	}
	state.Set(p.d.Store, state.PlaylistDetail, state.PlaylistPage{
		ChannelID:  channelID,
		PlaylistID: playlistID,
		Videos:     videos,
	})
	return nil
}

func (p *PlaylistDetail) tick(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		p.d.background("playlist", err)
	} else {
		p.d.Store.RecordSuccess()
	}
	_ = p.d.RefreshQueue(ctx)
}

// Leave releases the timer and discards in-flight results.
func (p *PlaylistDetail) Leave() {
	p.apply.Lock()
	defer p.apply.Unlock()
	p.mu.Lock()
	wasActive := p.active
	p.active = false
	p.visit++
	p.loading = false
	p.mu.Unlock()
	if !wasActive {
		return
	}
	if p.d.Poller != nil {
		p.d.Poller.Release(poll.SlotView)
	}
	state.Clear(p.d.Store, state.PlaylistDetail)
}

// Download queues one playlist video. The owning channel is the video's own
// when reported, else the playlist's channel.
func (p *PlaylistDetail) Download(ctx context.Context, videoID string) error {
	video, ok := p.video(videoID)
	if !ok {
		return ErrMismatchedVideo
	}
	channelID := video.ChannelID
	if channelID == 0 {
		p.mu.Lock()
		channelID = p.channelID
		p.mu.Unlock()
	}
	return p.d.download(ctx, videoID, channelID)
}

// DeleteVideo returns a confirmation for deleting one playlist video.
func (p *PlaylistDetail) DeleteVideo(videoID string) *Confirmation {
	video, ok := p.video(videoID)
	if !ok {
		return nil
	}
	return &Confirmation{
		Prompt: fmt.Sprintf("Delete %q?", video.Title),
		run: func(ctx context.Context) error {
			if err := p.d.API.DeleteVideo(ctx, videoID); err != nil {
				return err
			}
			if err := p.Refresh(ctx); err != nil {
				p.d.background("playlist", err)
			}
			return nil
		},
	}
}

func (p *PlaylistDetail) video(videoID string) (tubarr.Video, bool) {
	page, ok := state.Get(p.d.Store, state.PlaylistDetail)
	if !ok {
		return tubarr.Video{}, false
	}
	for _, v := range page.Videos {
		if v.VideoID == videoID {
			return v, true
		}
	}
	return tubarr.Video{}, false
}

// PlaylistSnapshot is what the playlist screen renders.
type PlaylistSnapshot struct {
	ChannelID  int64
	PlaylistID string
	Title      string
	Loading    bool
	Rows       []VideoRow
}

// Snapshot assembles the render state.
func (p *PlaylistDetail) Snapshot() PlaylistSnapshot {
	p.mu.Lock()
	snap := PlaylistSnapshot{ChannelID: p.channelID, PlaylistID: p.playlistID, Title: p.title, Loading: p.loading}
	active := p.active
	p.mu.Unlock()
	if !active {
		return PlaylistSnapshot{}
	}
	page, _ := state.Get(p.d.Store, state.PlaylistDetail)
	resolve := p.d.resolver()
	for _, v := range page.Videos {
		snap.Rows = append(snap.Rows, VideoRow{Video: v, State: resolve.State(v)})
	}
	return snap
}
