package views

import (
	"context"
	"testing"

	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

func TestActiveCountFollowsQueue(t *testing.T) {
	api := newFakeAPI()
	api.setQueue(tubarr.QueueEntry{VideoID: "v1", Status: "⬇️ Downloading..."})
	api.history = []tubarr.HistoryEntry{{VideoID: "v0", VideoTitle: "Old"}}
	d := newTestDeps(t, api)
	activity := NewActivity(d)

	if err := activity.Enter(context.Background()); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if n := ActiveCount(d.Store); n != 1 {
		t.Fatalf("active = %d, want 1", n)
	}
	snap := activity.Snapshot()
	if len(snap.Active) != 1 || len(snap.History) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}

	api.setQueue(tubarr.QueueEntry{VideoID: "v1", Status: tubarr.StatusDone})
	if err := activity.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if n := ActiveCount(d.Store); n != 0 {
		t.Fatalf("active = %d, want 0", n)
	}
	activity.Leave()
}

func TestActiveQueueStatuses(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{tubarr.StatusPending, true},
		{tubarr.StatusQueued, true},
		{"⬇️ Downloading...", true},
		{tubarr.StatusDone, false},
		{tubarr.StatusFailed, false},
		{"", false},
	}
	for _, tc := range cases {
		got := len(ActiveQueue([]tubarr.QueueEntry{{Status: tc.status}})) == 1
		if got != tc.want {
			t.Fatalf("ActiveQueue(%q) active = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestApplyQueueReconcilesMarkers(t *testing.T) {
	d := newTestDeps(t, newFakeAPI())
	d.Overlay.Add("v1")
	d.Overlay.Add("v2")
	ApplyQueue(d.Store, d.Overlay, []tubarr.QueueEntry{
		{VideoID: "v1", Status: "Completed"},
		{VideoID: "v2", Status: tubarr.StatusQueued},
	})
	if d.Overlay.Has("v1") {
		t.Fatalf("finished marker kept")
	}
	if !d.Overlay.Has("v2") {
		t.Fatalf("active marker dropped")
	}

	ApplyQueue(d.Store, d.Overlay, nil)
	queue, ok := state.Get(d.Store, state.Queue)
	if !ok || queue == nil || len(queue) != 0 {
		t.Fatalf("nil queue should cache as empty, got %v ok=%v", queue, ok)
	}
}

func TestRefreshQueueFailureKeepsSnapshot(t *testing.T) {
	api := newFakeAPI()
	api.setQueue(tubarr.QueueEntry{VideoID: "v1", Status: tubarr.StatusQueued})
	d := newTestDeps(t, api)
	if err := d.RefreshQueue(context.Background()); err != nil {
		t.Fatalf("RefreshQueue: %v", err)
	}
	api.mu.Lock()
	api.queueErr = tubarr.ErrTransport
	api.mu.Unlock()
	for i := 0; i < 2; i++ {
		if err := d.RefreshQueue(context.Background()); err == nil {
			t.Fatalf("expected error")
		}
	}
	if n := ActiveCount(d.Store); n != 1 {
		t.Fatalf("active = %d, want last known 1", n)
	}
	if !d.Store.Health().IsOffline() {
		t.Fatalf("two failures should mark offline")
	}
}
