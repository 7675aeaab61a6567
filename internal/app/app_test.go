package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/tubarr-tui/internal/config"
	"github.com/five82/tubarr-tui/internal/overlay"
	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
	"github.com/five82/tubarr-tui/internal/views"
)

// newServer serves the few endpoints the app wiring touches.
func newServer(t *testing.T, listCalls *atomic.Int32) *tubarr.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/channel", func(w http.ResponseWriter, r *http.Request) {
		if listCalls != nil {
			listCalls.Add(1)
		}
		_ = json.NewEncoder(w).Encode([]tubarr.Channel{{ID: 1, Name: "Alpha", Monitored: true}})
	})
	mux.HandleFunc("/api/v1/queue", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]tubarr.QueueEntry{})
	})
	mux.HandleFunc("/api/v1/settings", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"autoSync":true,"syncInterval":20}`))
	})
	mux.HandleFunc("/api/v1/system/status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"channels":1,"videos":10,"downloaded":4}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := tubarr.NewClient(srv.URL+"/api/v1", time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func newDispatcher(t *testing.T, api tubarr.API) *dispatcher {
	t.Helper()
	deps := views.Deps{
		API:     api,
		Store:   state.NewStore(),
		Overlay: overlay.New(time.Minute),
		Log:     zerolog.Nop(),
	}
	return &dispatcher{ctx: context.Background(), deps: deps, c: views.NewControllers(deps, 10), log: zerolog.Nop()}
}

func TestDispatchQueueUpdate(t *testing.T) {
	d := newDispatcher(t, newServer(t, nil))
	d.deps.Overlay.Add("v1")
	d.deps.Overlay.Add("v2")

	d.handle(tubarr.PushMessage{Type: tubarr.PushQueueUpdate, Queue: []tubarr.QueueEntry{
		{VideoID: "v1", Status: "Failed"},
		{VideoID: "v2", Status: "⬇️ Downloading..."},
	}})

	queue, ok := state.Get(d.deps.Store, state.Queue)
	if !ok || len(queue) != 2 {
		t.Fatalf("queue = %v ok=%v", queue, ok)
	}
	if d.deps.Overlay.Has("v1") || !d.deps.Overlay.Has("v2") {
		t.Fatalf("markers = %v, want only v2", d.deps.Overlay.IDs())
	}
	if n := views.ActiveCount(d.deps.Store); n != 1 {
		t.Fatalf("active = %d, want 1", n)
	}
}

func TestDispatchStatusUpdate(t *testing.T) {
	d := newDispatcher(t, newServer(t, nil))
	d.handle(tubarr.PushMessage{Type: tubarr.PushStatusUpdate, Status: &tubarr.SystemStatus{Channels: 4}})
	status, ok := state.Get(d.deps.Store, state.Status)
	if !ok || status.Channels != 4 {
		t.Fatalf("status = %+v ok=%v", status, ok)
	}
	// Without a payload the message is ignored.
	d.handle(tubarr.PushMessage{Type: tubarr.PushStatusUpdate})
	if status, _ := state.Get(d.deps.Store, state.Status); status.Channels != 4 {
		t.Fatalf("status overwritten: %+v", status)
	}
}

func TestDispatchChannelUpdateRefreshesList(t *testing.T) {
	var calls atomic.Int32
	d := newDispatcher(t, newServer(t, &calls))
	d.handle(tubarr.PushMessage{Type: tubarr.PushChannelUpdate})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if list, ok := state.Get(d.deps.Store, state.Channels); ok && len(list) == 1 {
			if calls.Load() != 1 {
				t.Fatalf("list calls = %d, want 1", calls.Load())
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("channel list not refreshed")
}

func TestAutoSyncFollowsSettings(t *testing.T) {
	store := state.NewStore()
	var runs atomic.Int32
	a := newAutoSync(context.Background(), store, func(context.Context) error {
		runs.Add(1)
		return nil
	}, zerolog.Nop())
	a.Start()
	defer a.Stop()

	if got := a.Schedule(); got != 0 {
		t.Fatalf("schedule before settings = %d, want 0", got)
	}

	settings := tubarr.DefaultSettings()
	state.Set(store, state.Settings, settings)
	if got := a.Schedule(); got != 15 {
		t.Fatalf("schedule = %d, want 15", got)
	}

	settings.SyncInterval = 30
	state.Set(store, state.Settings, settings)
	if got := a.Schedule(); got != 30 {
		t.Fatalf("schedule = %d, want 30", got)
	}

	settings.AutoSync = false
	state.Set(store, state.Settings, settings)
	if got := a.Schedule(); got != 0 {
		t.Fatalf("schedule = %d, want 0 when disabled", got)
	}
	if runs.Load() != 0 {
		t.Fatalf("job ran before its first interval")
	}
}

func TestRuntimeStartAndClose(t *testing.T) {
	client := newServer(t, nil)
	cfg := config.Default()
	cfg.WSURL = "ws://127.0.0.1:1/ws"
	cfg.ReconnectDelay = time.Hour

	rt := newRuntime(context.Background(), client, cfg, zerolog.Nop(), "")
	rt.start("channel")

	if _, ok := rt.router.Current().(views.HomeView); !ok {
		t.Fatalf("restored view = %#v, want HomeView", rt.router.Current())
	}
	if list, _ := state.Get(rt.deps.Store, state.Channels); len(list) != 1 {
		t.Fatalf("channels not loaded on start")
	}
	if got := rt.autoSync.Schedule(); got != 20 {
		t.Fatalf("auto sync = %d, want 20 from server settings", got)
	}
	rt.close()
	if rt.pushState() != "closed" {
		t.Fatalf("push state = %s, want closed", rt.pushState())
	}
}
