package views

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

func TestSettingsLoadAndSave(t *testing.T) {
	api := newFakeAPI()
	api.settings.DefaultQuality = "480p"
	api.settings.Extra = map[string]json.RawMessage{"webhook": json.RawMessage(`"https://hook"`)}
	api.status = tubarr.SystemStatus{Channels: 3, Videos: 40, Downloaded: 12}
	d := newTestDeps(t, api)
	s := NewSettings(d)

	if snap := s.Snapshot(); snap.Loaded || snap.Settings.DefaultPath != "/downloads" {
		t.Fatalf("pre-load snapshot = %+v", snap)
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := s.Snapshot()
	if !snap.Loaded || snap.Settings.DefaultQuality != "480p" || snap.Status.Videos != 40 {
		t.Fatalf("snapshot = %+v", snap)
	}

	next := s.Current()
	next.SyncInterval = 30
	if err := s.Save(context.Background(), next); err != nil {
		t.Fatalf("Save: %v", err)
	}
	api.mu.Lock()
	saved := api.saved[len(api.saved)-1]
	api.mu.Unlock()
	if saved.SyncInterval != 30 || string(saved.Extra["webhook"]) != `"https://hook"` {
		t.Fatalf("saved = %+v", saved)
	}
	cached, _ := state.Get(d.Store, state.Settings)
	if cached.SyncInterval != 30 {
		t.Fatalf("cache not updated")
	}
}

func TestSettingsSaveValidates(t *testing.T) {
	api := newFakeAPI()
	s := NewSettings(newTestDeps(t, api))
	bad := tubarr.DefaultSettings()
	bad.DefaultPath = " "
	bad.SyncInterval = 0
	if err := s.Save(context.Background(), bad); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(api.saved) != 0 {
		t.Fatalf("invalid settings were sent")
	}
}

func TestGenerateKeyUpdatesCache(t *testing.T) {
	d := newTestDeps(t, newFakeAPI())
	s := NewSettings(d)
	key, err := s.GenerateKey(context.Background())
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if key != "new-key" || s.Current().APIKey != "new-key" {
		t.Fatalf("key = %q, cached = %q", key, s.Current().APIKey)
	}
	if s.Current().DefaultPath != "/downloads" {
		t.Fatalf("defaults lost when caching key")
	}
}

func TestLibraryCommands(t *testing.T) {
	api := newFakeAPI()
	d := newTestDeps(t, api)
	s := NewSettings(d)
	res, err := s.Rescan(context.Background())
	if err != nil || res.Updated != 2 || res.Imported != 1 {
		t.Fatalf("Rescan = %+v, %v", res, err)
	}
	sync, err := s.SyncAll(context.Background())
	if err != nil || sync.NewVideos != 3 {
		t.Fatalf("SyncAll = %+v, %v", sync, err)
	}
	if _, ok := state.Get(d.Store, state.Queue); !ok {
		t.Fatalf("sync-all should refresh the queue")
	}
}
