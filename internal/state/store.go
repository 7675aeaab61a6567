package state

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/five82/tubarr-tui/internal/tubarr"
)

// Kind names one server-owned collection held by the Store.
type Kind string

const (
	KindChannels       Kind = "channels"
	KindQueue          Kind = "queue"
	KindHistory        Kind = "history"
	KindChannelDetail  Kind = "channel_detail"
	KindPlaylists      Kind = "playlists"
	KindPlaylistDetail Kind = "playlist_detail"
	KindSettings       Kind = "settings"
	KindStatus         Kind = "status"
	// KindHealth is notified when background refresh health changes.
	KindHealth Kind = "health"
)

// PlaylistPage is the cached content of the playlist-detail view.
type PlaylistPage struct {
	ChannelID  int64
	PlaylistID string
	Videos     []tubarr.Video
}

// Key is a typed handle for one Kind. The clone function keeps values handed
// out by the Store independent of the stored copy.
type Key[T any] struct {
	kind  Kind
	clone func(T) T
}

// Kind returns the collection the key addresses.
func (k Key[T]) Kind() Kind { return k.kind }

var (
	Channels       = Key[[]tubarr.Channel]{KindChannels, cloneSlice[tubarr.Channel]}
	Queue          = Key[[]tubarr.QueueEntry]{KindQueue, cloneSlice[tubarr.QueueEntry]}
	History        = Key[[]tubarr.HistoryEntry]{KindHistory, cloneSlice[tubarr.HistoryEntry]}
	ChannelDetail  = Key[tubarr.ChannelDetail]{KindChannelDetail, cloneDetail}
	Playlists      = Key[[]tubarr.Playlist]{KindPlaylists, cloneSlice[tubarr.Playlist]}
	PlaylistDetail = Key[PlaylistPage]{KindPlaylistDetail, clonePlaylistPage}
	Settings       = Key[tubarr.Settings]{KindSettings, cloneSettings}
	Status         = Key[tubarr.SystemStatus]{KindStatus, func(s tubarr.SystemStatus) tubarr.SystemStatus { return s }}
)

// Health tracks background refresh failures.
type Health struct {
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive background failures
}

// IsOffline returns true when the API has been unreachable for multiple refreshes.
func (h Health) IsOffline() bool {
	return h.ConsecutiveFailures >= 2
}

type entry struct {
	value   any
	updated time.Time
}

// Store holds the last-known-good snapshot of every collection and notifies
// subscribers after each change. It never performs I/O.
type Store struct {
	mu      sync.RWMutex
	entries map[Kind]entry
	health  Health

	subMu   sync.Mutex
	subs    map[int]func(Kind)
	nextSub int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Kind]entry)}
}

// Get returns a copy of the stored value, or the zero value and false when
// nothing has been stored yet.
func Get[T any](s *Store, key Key[T]) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key.kind]
	if !ok {
		var zero T
		return zero, false
	}
	return key.clone(e.value.(T)), true
}

// Set replaces the stored value.
func Set[T any](s *Store, key Key[T], value T) {
	s.mu.Lock()
	s.put(key.kind, key.clone(value))
	s.mu.Unlock()
	s.Notify(key.kind)
}

// Merge applies fn to the current value (zero value and false when empty)
// and stores the result. fn runs under the store lock and must be pure.
func Merge[T any](s *Store, key Key[T], fn func(current T, ok bool) T) {
	s.mu.Lock()
	var current T
	e, ok := s.entries[key.kind]
	if ok {
		current = key.clone(e.value.(T))
	}
	s.put(key.kind, key.clone(fn(current, ok)))
	s.mu.Unlock()
	s.Notify(key.kind)
}

// Clear drops the stored value.
func Clear[T any](s *Store, key Key[T]) {
	s.mu.Lock()
	_, ok := s.entries[key.kind]
	delete(s.entries, key.kind)
	s.mu.Unlock()
	if ok {
		s.Notify(key.kind)
	}
}

// UpdatedAt reports when kind was last written.
func (s *Store) UpdatedAt(kind Kind) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[kind].updated
}

func (s *Store) put(kind Kind, value any) {
	if s.entries == nil {
		s.entries = make(map[Kind]entry)
	}
	s.entries[kind] = entry{value: value, updated: time.Now()}
}

// RecordSuccess resets the failure counter after a background refresh.
func (s *Store) RecordSuccess() {
	s.mu.Lock()
	changed := s.health.ConsecutiveFailures != 0 || s.health.LastError != nil
	s.health.LastError = nil
	s.health.LastUpdated = time.Now()
	s.health.ConsecutiveFailures = 0
	s.mu.Unlock()
	if changed {
		s.Notify(KindHealth)
	}
}

// RecordError records a background refresh failure. Cached data is kept.
func (s *Store) RecordError(err error) {
	if err == nil {
		s.RecordSuccess()
		return
	}
	s.mu.Lock()
	s.health.LastError = err
	s.health.LastUpdated = time.Now()
	s.health.ConsecutiveFailures++
	s.mu.Unlock()
	s.Notify(KindHealth)
}

// Health returns a copy of the current health.
func (s *Store) Health() Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.health
	if s.health.LastError != nil {
		h.LastError = fmt.Errorf("%w", s.health.LastError)
	}
	return h
}

// Subscribe registers fn to be called with the changed kind after every
// write. The returned func unsubscribes. fn runs on the writer's goroutine
// and must not block.
func (s *Store) Subscribe(fn func(Kind)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(Kind))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Notify calls every subscriber with kind.
func (s *Store) Notify(kind Kind) {
	s.subMu.Lock()
	fns := make([]func(Kind), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(kind)
	}
}

func cloneSlice[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}

func cloneDetail(d tubarr.ChannelDetail) tubarr.ChannelDetail {
	d.Videos = cloneSlice(d.Videos)
	return d
}

func clonePlaylistPage(p PlaylistPage) PlaylistPage {
	p.Videos = cloneSlice(p.Videos)
	return p
}

func cloneSettings(s tubarr.Settings) tubarr.Settings {
	if s.Extra == nil {
		return s
	}
	extra := make(map[string]json.RawMessage, len(s.Extra))
	for k, v := range s.Extra {
		extra[k] = append(json.RawMessage(nil), v...)
	}
	s.Extra = extra
	return s
}
