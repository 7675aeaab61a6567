package views

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/tubarr-tui/internal/poll"
	"github.com/five82/tubarr-tui/internal/prefs"
	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

func newRouterFixture(t *testing.T) (*Router, *fakeAPI, Deps, string) {
	t.Helper()
	api := newFakeAPI()
	api.addFixture(tubarr.Channel{ID: 1, Name: "Alpha"}, 3)
	d := newTestDeps(t, api)
	ctx, cancel := context.WithCancel(context.Background())
	d.Poller = poll.New(ctx, zerolog.Nop())
	d.Intervals = poll.Intervals{Activity: time.Hour, Detail: time.Hour, Heartbeat: time.Hour}
	t.Cleanup(func() {
		cancel()
		d.Poller.Close()
	})
	path := filepath.Join(t.TempDir(), "prefs.toml")
	return NewRouter(d, NewControllers(d, 100), path), api, d, path
}

func TestRestorableFallsBackToHome(t *testing.T) {
	cases := map[string]View{
		ViewHome:     HomeView{},
		ViewActivity: ActivityView{},
		ViewSearch:   SearchView{},
		ViewSettings: SettingsView{},
		ViewChannel:  HomeView{},
		ViewPlaylist: HomeView{},
		ViewPreview:  HomeView{},
		"":           HomeView{},
		"bogus":      HomeView{},
	}
	for name, want := range cases {
		if got := restorable(name); got != want {
			t.Fatalf("restorable(%q) = %#v, want %#v", name, got, want)
		}
	}
}

func TestRestorePersistsFallback(t *testing.T) {
	r, _, _, path := newRouterFixture(t)
	if err := prefs.Save(path, prefs.Prefs{Theme: "Nord", LastView: ViewChannel}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	p, _ := prefs.Load(path)
	if err := r.Restore(context.Background(), p.LastView); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if _, ok := r.Current().(HomeView); !ok {
		t.Fatalf("current = %#v, want HomeView", r.Current())
	}
	p, _ = prefs.Load(path)
	if p.LastView != ViewHome || p.Theme != "Nord" {
		t.Fatalf("prefs = %+v", p)
	}
}

func TestNavigateRejectsViewWithoutSubject(t *testing.T) {
	r, _, _, _ := newRouterFixture(t)
	if err := r.Navigate(context.Background(), ChannelView{}); !errors.Is(err, ErrNoChannel) {
		t.Fatalf("err = %v, want ErrNoChannel", err)
	}
	if err := r.Navigate(context.Background(), PlaylistView{ChannelID: 1}); !errors.Is(err, ErrNoChannel) {
		t.Fatalf("err = %v, want ErrNoChannel", err)
	}
	if err := r.Navigate(context.Background(), PreviewView{}); err == nil {
		t.Fatalf("expected error for empty preview")
	}
	if _, ok := r.Current().(HomeView); !ok {
		t.Fatalf("current changed on rejected navigation")
	}
}

func TestNavigateOwnsTimers(t *testing.T) {
	r, _, d, _ := newRouterFixture(t)
	ctx := context.Background()

	if err := r.Navigate(ctx, HomeView{}); err != nil {
		t.Fatalf("Navigate home: %v", err)
	}
	if _, ok := d.Poller.Active(poll.SlotHeartbeat); !ok {
		t.Fatalf("heartbeat not running on home")
	}

	if err := r.Navigate(ctx, ActivityView{}); err != nil {
		t.Fatalf("Navigate activity: %v", err)
	}
	if _, ok := d.Poller.Active(poll.SlotHeartbeat); ok {
		t.Fatalf("heartbeat still running on activity")
	}
	if key, ok := d.Poller.Active(poll.SlotView); !ok || key.View != "activity" {
		t.Fatalf("view timer = %v %v, want activity", key, ok)
	}

	if err := r.Navigate(ctx, ChannelView{ChannelID: 1}); err != nil {
		t.Fatalf("Navigate channel: %v", err)
	}
	if key, ok := d.Poller.Active(poll.SlotView); !ok || key.View != "channel" {
		t.Fatalf("view timer = %v %v, want channel", key, ok)
	}
	if r.Controllers().Detail.ChannelID() != 1 {
		t.Fatalf("detail not loaded")
	}

	if err := r.Navigate(ctx, SearchView{}); err != nil {
		t.Fatalf("Navigate search: %v", err)
	}
	if _, ok := d.Poller.Active(poll.SlotView); ok {
		t.Fatalf("channel timer survived leaving the view")
	}
	if r.Controllers().Detail.ChannelID() != 0 {
		t.Fatalf("detail still active")
	}
	if _, ok := state.Get(d.Store, state.ChannelDetail); ok {
		t.Fatalf("detail cache not cleared")
	}
	if _, ok := d.Poller.Active(poll.SlotHeartbeat); !ok {
		t.Fatalf("heartbeat not running on search")
	}

	r.Close()
	if _, ok := d.Poller.Active(poll.SlotHeartbeat); ok {
		t.Fatalf("heartbeat running after Close")
	}
}

func TestNavigateBetweenChannelsReloads(t *testing.T) {
	r, api, d, _ := newRouterFixture(t)
	api.addFixture(tubarr.Channel{ID: 2, Name: "Beta"}, 4)
	ctx := context.Background()
	if err := r.Navigate(ctx, ChannelView{ChannelID: 1}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if err := r.Navigate(ctx, ChannelView{ChannelID: 2}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	page, ok := state.Get(d.Store, state.ChannelDetail)
	if !ok || page.Channel.ID != 2 || len(page.Videos) != 4 {
		t.Fatalf("page = %+v ok=%v", page.Channel, ok)
	}
	if key, _ := d.Poller.Active(poll.SlotView); key.Params == "" || key.Params[:2] != "2|" {
		t.Fatalf("timer key = %v, want channel 2", key)
	}
}

func TestNavigateDoesNotWaitForSlowLoad(t *testing.T) {
	r, api, d, _ := newRouterFixture(t)
	ctx := context.Background()
	started, release := blockNextDetail(api)

	slow := make(chan error, 1)
	go func() { slow <- r.Navigate(ctx, ChannelView{ChannelID: 1}) }()
	<-started

	home := make(chan error, 1)
	go func() { home <- r.Navigate(ctx, HomeView{}) }()
	select {
	case err := <-home:
		if err != nil {
			t.Fatalf("Navigate home: %v", err)
		}
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatalf("Navigate home blocked behind the channel load")
	}
	if _, ok := r.Current().(HomeView); !ok {
		t.Fatalf("current = %#v, want HomeView", r.Current())
	}

	close(release)
	if err := <-slow; err != nil {
		t.Fatalf("Navigate channel: %v", err)
	}
	if r.Controllers().Detail.ChannelID() != 0 {
		t.Fatalf("left channel became active again")
	}
	if _, ok := state.Get(d.Store, state.ChannelDetail); ok {
		t.Fatalf("stale channel page was applied after leaving")
	}
	if _, ok := d.Poller.Active(poll.SlotView); ok {
		t.Fatalf("channel timer running on home")
	}
}
