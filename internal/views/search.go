package views

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

// SearchPhase is the state of the search screen.
type SearchPhase int

const (
	SearchIdle SearchPhase = iota
	Searching
	SearchResults
)

// Enrichment is the per-result detail state.
type Enrichment int

const (
	Placeholder Enrichment = iota
	Enriched
)

// AddState is the per-result add sub-flow.
type AddState int

const (
	AddIdle AddState = iota
	AddConfiguring
	AddSubmitting
	AddAdded
	AddFailed
)

// SearchItem is one result with its enrichment and add state.
type SearchItem struct {
	Result     tubarr.SearchResult
	Enrichment Enrichment
	ImageURL   string
	Add        AddState
	AddError   string
}

// AddForm is the configuration modal for adding a channel.
type AddForm struct {
	PlatformID   string
	Name         string
	URL          string
	Quality      string
	DownloadPath string
	Monitored    bool
	DownloadAll  bool
}

// SearchSnapshot is what the search screen renders.
type SearchSnapshot struct {
	Phase SearchPhase
	Query string
	Err   string
	Items []SearchItem
}

// Search controls channel search, result enrichment and the add flow.
type Search struct {
	d        Deps
	channels *Channels
	limiter  *rate.Limiter

	mu    sync.Mutex
	phase SearchPhase
	query string
	err   string
	gen   uint64
	items []SearchItem
	index map[string]int
}

// DefaultEnrichRate caps background /channel/info calls per second.
const DefaultEnrichRate = 4

// NewSearch builds the controller. perSecond throttles enrichment requests.
func NewSearch(d Deps, channels *Channels, perSecond float64) *Search {
	if perSecond <= 0 {
		perSecond = DefaultEnrichRate
	}
	return &Search{
		d:        d,
		channels: channels,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		index:    make(map[string]int),
	}
}

// Run searches for query. Results start as placeholders and are enriched in
// the background; a newer Run makes older enrichment results irrelevant.
func (s *Search) Run(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		s.Reset()
		return nil
	}
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.phase = Searching
	s.query = query
	s.err = ""
	s.items = nil
	s.index = make(map[string]int)
	s.mu.Unlock()
	s.notify()

	results, err := s.d.API.Search(ctx, query)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.phase = SearchIdle
		s.err = UserMessage(err, "Search failed")
		s.mu.Unlock()
		s.notify()
		return err
	}
	s.phase = SearchResults
	for i, r := range results {
		s.items = append(s.items, SearchItem{Result: r, ImageURL: s.d.API.ImageURL(r.Thumbnail)})
		s.index[r.PlatformID] = i
	}
	s.mu.Unlock()
	s.notify()

	for _, r := range results {
		go s.enrich(ctx, gen, r.PlatformID)
	}
	return nil
}

// enrich fetches channel info for one result. Failures leave the placeholder.
func (s *Search) enrich(ctx context.Context, gen uint64, platformID string) {
	if err := s.limiter.Wait(ctx); err != nil {
		return
	}
	s.mu.Lock()
	stale := gen != s.gen
	s.mu.Unlock()
	if stale {
		return
	}
	info, err := s.d.API.ChannelInfo(ctx, platformID)
	if err != nil {
		s.d.Log.Debug().Err(err).Str("channel_id", platformID).Msg("search enrichment failed")
		return
	}
	if info.Empty() {
		return
	}

	s.mu.Lock()
	idx, ok := s.index[platformID]
	if gen != s.gen || !ok {
		s.mu.Unlock()
		return
	}
	item := &s.items[idx]
	if info.Thumbnail != "" {
		item.Result.Thumbnail = info.Thumbnail
		item.ImageURL = s.d.API.ImageURL(info.Thumbnail)
	}
	if info.SubscriberCount != nil {
		item.Result.SubscriberCount = info.SubscriberCount
	}
	if info.VideoCount != nil {
		item.Result.VideoCount = info.VideoCount
	}
	if info.Description != "" {
		item.Result.Description = info.Description
	}
	item.Enrichment = Enriched
	s.mu.Unlock()
	s.notify()
}

// Reset returns to Idle and abandons in-flight work.
func (s *Search) Reset() {
	s.mu.Lock()
	s.gen++
	s.phase = SearchIdle
	s.query = ""
	s.err = ""
	s.items = nil
	s.index = make(map[string]int)
	s.mu.Unlock()
	s.notify()
}

// Configure opens the add modal for a result, prefilled from settings.
func (s *Search) Configure(platformID string) (AddForm, error) {
	settings, ok := state.Get(s.d.Store, state.Settings)
	if !ok {
		settings = tubarr.DefaultSettings()
	}
	s.mu.Lock()
	idx, ok := s.index[platformID]
	if !ok {
		s.mu.Unlock()
		return AddForm{}, ErrUnknownResult
	}
	item := &s.items[idx]
	if item.Add == AddSubmitting {
		s.mu.Unlock()
		return AddForm{}, ErrSubmitting
	}
	if item.Add != AddAdded {
		item.Add = AddConfiguring
		item.AddError = ""
	}
	form := AddForm{
		PlatformID:   platformID,
		Name:         item.Result.Name,
		URL:          item.Result.URL,
		Quality:      firstNonEmpty(settings.DefaultQuality, "1080p"),
		DownloadPath: firstNonEmpty(settings.DefaultPath, "/downloads"),
		Monitored:    true,
	}
	s.mu.Unlock()
	s.notify()
	return form, nil
}

// CancelConfigure closes the modal without side effects.
func (s *Search) CancelConfigure(platformID string) {
	s.mu.Lock()
	if idx, ok := s.index[platformID]; ok && s.items[idx].Add == AddConfiguring {
		s.items[idx].Add = AddIdle
	}
	s.mu.Unlock()
	s.notify()
}

// Submit adds the configured channel. Only this result is blocked while the
// request is in flight; other results can be configured and submitted.
func (s *Search) Submit(ctx context.Context, form AddForm) (tubarr.Channel, error) {
	s.mu.Lock()
	idx, ok := s.index[form.PlatformID]
	if !ok {
		s.mu.Unlock()
		return tubarr.Channel{}, ErrUnknownResult
	}
	if s.items[idx].Add == AddSubmitting {
		s.mu.Unlock()
		return tubarr.Channel{}, ErrSubmitting
	}
	s.items[idx].Add = AddSubmitting
	gen := s.gen
	s.mu.Unlock()
	s.notify()

	created, err := s.channels.Add(ctx, tubarr.AddChannelRequest{
		URL:          form.URL,
		DownloadPath: form.DownloadPath,
		Quality:      form.Quality,
		Monitored:    form.Monitored,
		DownloadAll:  form.DownloadAll,
	})

	s.mu.Lock()
	if idx, ok := s.index[form.PlatformID]; ok && gen == s.gen {
		if err != nil {
			s.items[idx].Add = AddFailed
			s.items[idx].AddError = UserMessage(err, "Failed to add channel")
		} else {
			s.items[idx].Add = AddAdded
		}
	}
	s.mu.Unlock()
	s.notify()
	return created, err
}

// Preview fetches recent uploads of a result without adding it.
func (s *Search) Preview(ctx context.Context, platformID string) (tubarr.ChannelPreview, error) {
	preview, err := s.d.API.PreviewChannel(ctx, platformID)
	if err != nil {
		return tubarr.ChannelPreview{}, err
	}
	if preview.PlatformID == "" {
		preview.PlatformID = platformID
	}
	return preview, nil
}

// Snapshot assembles the render state.
func (s *Search) Snapshot() SearchSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]SearchItem, len(s.items))
	copy(items, s.items)
	return SearchSnapshot{Phase: s.phase, Query: s.query, Err: s.err, Items: items}
}

func (s *Search) notify() {
	s.d.Store.Notify(KindSearch)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
