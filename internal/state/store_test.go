package state

import (
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/five82/tubarr-tui/internal/tubarr"
)

func TestStore_SetAndGetClone(t *testing.T) {
	s := NewStore()

	if _, ok := Get(s, Queue); ok {
		t.Fatal("Get on empty store reported ok")
	}

	before := time.Now()
	Set(s, Queue, []tubarr.QueueEntry{{ID: 1, VideoID: "abc"}, {ID: 2}})

	got, ok := Get(s, Queue)
	if !ok || len(got) != 2 || got[0].VideoID != "abc" {
		t.Fatalf("Get(Queue) = %#v, %v; want 2 entries", got, ok)
	}
	if s.UpdatedAt(KindQueue).Before(before) {
		t.Fatalf("UpdatedAt = %v, want >= %v", s.UpdatedAt(KindQueue), before)
	}

	// Returned values should be independent of the stored one.
	got[0].VideoID = "mutated"
	again, _ := Get(s, Queue)
	if again[0].VideoID != "abc" {
		t.Fatalf("Get should clone; got %q want abc", again[0].VideoID)
	}
}

func TestStore_MergeAppendsPage(t *testing.T) {
	s := NewStore()
	Set(s, ChannelDetail, tubarr.ChannelDetail{Videos: []tubarr.Video{{VideoID: "a"}}, HasMore: true})

	Merge(s, ChannelDetail, func(cur tubarr.ChannelDetail, ok bool) tubarr.ChannelDetail {
		if !ok {
			t.Fatal("Merge saw empty entry")
		}
		cur.Videos = append(cur.Videos, tubarr.Video{VideoID: "b"})
		cur.HasMore = false
		return cur
	})

	got, _ := Get(s, ChannelDetail)
	if len(got.Videos) != 2 || got.Videos[1].VideoID != "b" || got.HasMore {
		t.Fatalf("merged detail = %#v", got)
	}
}

func TestStore_ClearAndSettingsClone(t *testing.T) {
	s := NewStore()
	settings := tubarr.DefaultSettings()
	settings.Extra = map[string]json.RawMessage{"plexToken": json.RawMessage(`"x"`)}
	Set(s, Settings, settings)

	got, _ := Get(s, Settings)
	got.Extra["plexToken"][1] = 'y'
	again, _ := Get(s, Settings)
	if string(again.Extra["plexToken"]) != `"x"` {
		t.Fatalf("settings extra not cloned: %s", again.Extra["plexToken"])
	}

	Clear(s, Settings)
	if _, ok := Get(s, Settings); ok {
		t.Fatal("Get after Clear reported ok")
	}
}

func TestStore_SubscribersSeeKinds(t *testing.T) {
	s := NewStore()

	var mu sync.Mutex
	var seen []Kind
	unsubscribe := s.Subscribe(func(k Kind) {
		mu.Lock()
		seen = append(seen, k)
		mu.Unlock()
	})

	Set(s, Channels, []tubarr.Channel{{ID: 1}})
	Merge(s, Queue, func(cur []tubarr.QueueEntry, _ bool) []tubarr.QueueEntry { return cur })
	s.RecordError(errors.New("boom"))
	Clear(s, History) // nothing stored, no notification
	unsubscribe()
	Set(s, Status, tubarr.SystemStatus{Channels: 1})

	want := []Kind{KindChannels, KindQueue, KindHealth}
	mu.Lock()
	defer mu.Unlock()
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("notifications = %v, want %v", seen, want)
	}
}

func TestStore_ErrorKeepsPreviousData(t *testing.T) {
	s := NewStore()
	Set(s, Channels, []tubarr.Channel{{ID: 1}})

	before := time.Now()
	origErr := errors.New("boom")
	s.RecordError(origErr)

	got, _ := Get(s, Channels)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("channels changed on error: %#v", got)
	}
	h := s.Health()
	if h.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", h.LastUpdated, before)
	}
	if h.LastError == nil || h.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", h.LastError)
	}
	if reflect.ValueOf(h.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Health should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	s := NewStore()

	if h := s.Health(); h.ConsecutiveFailures != 0 || h.IsOffline() {
		t.Fatalf("initial health = %#v, want online", h)
	}

	s.RecordError(errors.New("fail 1"))
	if h := s.Health(); h.ConsecutiveFailures != 1 || h.IsOffline() {
		t.Fatalf("after 1 failure health = %#v, want online", h)
	}

	// Second failure - now offline
	s.RecordError(errors.New("fail 2"))
	if h := s.Health(); h.ConsecutiveFailures != 2 || !h.IsOffline() {
		t.Fatalf("after 2 failures health = %#v, want offline", h)
	}

	s.RecordError(errors.New("fail 3"))
	if h := s.Health(); h.ConsecutiveFailures != 3 || !h.IsOffline() {
		t.Fatalf("after 3 failures health = %#v, want offline", h)
	}

	// Success resets counter
	s.RecordSuccess()
	if h := s.Health(); h.ConsecutiveFailures != 0 || h.IsOffline() || h.LastError != nil {
		t.Fatalf("after success health = %#v, want reset", h)
	}
}
