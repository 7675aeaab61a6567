package views

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

func newSearchFixture(t *testing.T) (*Search, *fakeAPI, Deps) {
	t.Helper()
	api := newFakeAPI()
	api.results = []tubarr.SearchResult{
		{PlatformID: "UCa", Name: "Alpha", URL: "https://youtube.com/channel/UCa"},
		{PlatformID: "UCb", Name: "Beta", URL: "https://youtube.com/channel/UCb", Thumbnail: "https://img/b.jpg"},
	}
	d := newTestDeps(t, api)
	return NewSearch(d, NewChannels(d), 1000), api, d
}

func item(snap SearchSnapshot, id string) SearchItem {
	for _, it := range snap.Items {
		if it.Result.PlatformID == id {
			return it
		}
	}
	return SearchItem{}
}

func TestSearchEnrichmentIsBestEffort(t *testing.T) {
	s, api, _ := newSearchFixture(t)
	subs := int64(1200)
	api.infoHook = func(id string) (tubarr.ChannelInfo, error) {
		if id == "UCb" {
			return tubarr.ChannelInfo{}, tubarr.ErrTransport
		}
		return tubarr.ChannelInfo{Thumbnail: "https://img/a.jpg", SubscriberCount: &subs, Description: "about alpha"}, nil
	}

	if err := s.Run(context.Background(), "  alpha  "); err != nil {
		t.Fatalf("Run: %v", err)
	}
	snap := s.Snapshot()
	if snap.Phase != SearchResults || snap.Query != "alpha" || len(snap.Items) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if !strings.Contains(item(snap, "UCb").ImageURL, "/proxy/image?url=") {
		t.Fatalf("thumbnail not proxied: %q", item(snap, "UCb").ImageURL)
	}

	waitFor(t, "enrichment", func() bool {
		api.mu.Lock()
		calls := api.infoCalls
		api.mu.Unlock()
		return calls == 2 && item(s.Snapshot(), "UCa").Enrichment == Enriched
	})
	a := item(s.Snapshot(), "UCa")
	if a.Result.Description != "about alpha" || a.Result.SubscriberCount == nil || *a.Result.SubscriberCount != 1200 {
		t.Fatalf("enriched result = %+v", a.Result)
	}
	if !strings.Contains(a.ImageURL, "a.jpg") {
		t.Fatalf("image url = %q", a.ImageURL)
	}
	b := item(s.Snapshot(), "UCb")
	if b.Enrichment != Placeholder || b.Result.Name != "Beta" {
		t.Fatalf("failed enrichment changed the placeholder: %+v", b)
	}
}

func TestSearchEmptyQueryResets(t *testing.T) {
	s, _, _ := newSearchFixture(t)
	if err := s.Run(context.Background(), "alpha"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := s.Run(context.Background(), "   "); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if snap := s.Snapshot(); snap.Phase != SearchIdle || len(snap.Items) != 0 {
		t.Fatalf("snapshot = %+v, want idle", snap)
	}
}

func TestConfigureUsesSettingsDefaults(t *testing.T) {
	s, _, d := newSearchFixture(t)
	settings := tubarr.DefaultSettings()
	settings.DefaultQuality = "720p"
	settings.DefaultPath = "/media/yt"
	state.Set(d.Store, state.Settings, settings)
	if err := s.Run(context.Background(), "alpha"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	form, err := s.Configure("UCa")
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if !form.Monitored || form.Quality != "720p" || form.DownloadPath != "/media/yt" || form.DownloadAll {
		t.Fatalf("form = %+v", form)
	}
	if got := item(s.Snapshot(), "UCa").Add; got != AddConfiguring {
		t.Fatalf("add state = %v, want configuring", got)
	}
	s.CancelConfigure("UCa")
	if got := item(s.Snapshot(), "UCa").Add; got != AddIdle {
		t.Fatalf("add state = %v, want idle", got)
	}
	if _, err := s.Configure("nope"); !errors.Is(err, ErrUnknownResult) {
		t.Fatalf("err = %v, want ErrUnknownResult", err)
	}
}

func TestSubmitGuardIsPerResult(t *testing.T) {
	s, api, d := newSearchFixture(t)
	if err := s.Run(context.Background(), "channels"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	started := make(chan struct{})
	release := make(chan struct{})
	api.addHook = func(req tubarr.AddChannelRequest) error {
		if strings.HasSuffix(req.URL, "UCa") {
			close(started)
			<-release
		}
		return nil
	}

	formA, _ := s.Configure("UCa")
	formB, _ := s.Configure("UCb")
	errc := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), formA)
		errc <- err
	}()
	<-started

	if _, err := s.Submit(context.Background(), formA); !errors.Is(err, ErrSubmitting) {
		t.Fatalf("second submit err = %v, want ErrSubmitting", err)
	}
	if _, err := s.Configure("UCa"); !errors.Is(err, ErrSubmitting) {
		t.Fatalf("configure while submitting err = %v, want ErrSubmitting", err)
	}
	if _, err := s.Submit(context.Background(), formB); err != nil {
		t.Fatalf("other result blocked: %v", err)
	}
	if got := item(s.Snapshot(), "UCb").Add; got != AddAdded {
		t.Fatalf("UCb add state = %v, want added", got)
	}

	close(release)
	if err := <-errc; err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := item(s.Snapshot(), "UCa").Add; got != AddAdded {
		t.Fatalf("UCa add state = %v, want added", got)
	}
	list, _ := state.Get(d.Store, state.Channels)
	if len(list) != 2 {
		t.Fatalf("channels = %d, want 2", len(list))
	}
}

func TestSubmitFailureKeepsMessage(t *testing.T) {
	s, api, _ := newSearchFixture(t)
	api.addHook = func(tubarr.AddChannelRequest) error {
		return &tubarr.APIError{Method: "POST", Path: "/channel", Status: 400, Message: "Channel already exists"}
	}
	if err := s.Run(context.Background(), "alpha"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	form, _ := s.Configure("UCa")
	if _, err := s.Submit(context.Background(), form); err == nil {
		t.Fatalf("expected error")
	}
	it := item(s.Snapshot(), "UCa")
	if it.Add != AddFailed || it.AddError != "Channel already exists" {
		t.Fatalf("item = %+v", it)
	}
}

func TestPreviewFillsPlatformID(t *testing.T) {
	s, _, _ := newSearchFixture(t)
	preview, err := s.Preview(context.Background(), "UCa")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if preview.PlatformID != "UCa" || preview.Name != "Preview UCa" {
		t.Fatalf("preview = %+v", preview)
	}
}
