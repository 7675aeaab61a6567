package overlay

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/five82/tubarr-tui/internal/tubarr"
)

// DefaultTTL bounds how long a marker survives if its request never returns.
const DefaultTTL = 2 * time.Minute

// Set holds the ids of videos whose download request is in transit.
// Membership is per id; adding or removing one id never affects another.
type Set struct {
	items *cache.Cache
	ttl   time.Duration

	mu       sync.RWMutex
	onChange func()
}

// New returns an empty Set. Markers older than ttl are dropped even if the
// request never completes.
func New(ttl time.Duration) *Set {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Set{
		items: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
	s.items.OnEvicted(func(string, interface{}) { s.changed() })
	return s
}

// OnChange registers fn to run after every membership change.
func (s *Set) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Add marks id as in flight.
func (s *Set) Add(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	s.items.Set(id, time.Now(), s.ttl)
	s.changed()
}

// Remove clears the marker for id. Removing an absent id is a no-op.
func (s *Set) Remove(id string) {
	s.items.Delete(strings.TrimSpace(id))
}

// Has reports whether id is currently marked.
func (s *Set) Has(id string) bool {
	_, ok := s.items.Get(id)
	return ok
}

// IDs returns the marked ids in sorted order.
func (s *Set) IDs() []string {
	items := s.items.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live markers.
func (s *Set) Len() int {
	return len(s.items.Items())
}

// Reconcile drops markers whose queue entry has reached a terminal state and
// returns how many were removed.
func (s *Set) Reconcile(queue []tubarr.QueueEntry) int {
	removed := 0
	for _, entry := range queue {
		if entry.IsTerminal() && s.Has(entry.VideoID) {
			s.Remove(entry.VideoID)
			removed++
		}
	}
	return removed
}

func (s *Set) changed() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
