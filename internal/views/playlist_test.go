package views

import (
	"context"
	"testing"

	"github.com/five82/tubarr-tui/internal/state"
)

func TestPlaylistDetailLifecycle(t *testing.T) {
	api := newFakeAPI()
	d := newTestDeps(t, api)
	p := NewPlaylistDetail(d)
	ctx := context.Background()

	if err := p.Load(ctx, 0, "PL1", "Talks"); err == nil {
		t.Fatalf("expected error without channel")
	}
	if err := p.Load(ctx, 7, "PL1", "Talks"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := p.Snapshot()
	if snap.Title != "Talks" || len(snap.Rows) != 1 || snap.Loading {
		t.Fatalf("snapshot = %+v", snap)
	}

	if err := p.Download(ctx, "p-v1"); err != nil {
		t.Fatalf("Download: %v", err)
	}
	api.mu.Lock()
	queued := api.queue
	api.mu.Unlock()
	if len(queued) != 1 || queued[0].ChannelID != 7 {
		t.Fatalf("queue = %+v, want entry for the playlist's channel", queued)
	}
	if err := p.Download(ctx, "missing"); err != ErrMismatchedVideo {
		t.Fatalf("err = %v, want ErrMismatchedVideo", err)
	}

	p.Leave()
	if _, ok := state.Get(d.Store, state.PlaylistDetail); ok {
		t.Fatalf("playlist cache not cleared")
	}
	if snap := p.Snapshot(); len(snap.Rows) != 0 {
		t.Fatalf("rows after leave = %d", len(snap.Rows))
	}
}
