package poll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Default cadences.
const (
	ActivityInterval  = time.Second
	DetailInterval    = 5 * time.Second
	HeartbeatInterval = 5 * time.Second
)

// Intervals groups the cadence of each kind of view.
type Intervals struct {
	Activity  time.Duration
	Detail    time.Duration
	Heartbeat time.Duration
}

// DefaultIntervals returns the built-in cadences.
func DefaultIntervals() Intervals {
	return Intervals{Activity: ActivityInterval, Detail: DetailInterval, Heartbeat: HeartbeatInterval}
}

// WithDefaults fills zero fields with the built-in cadences.
func (i Intervals) WithDefaults() Intervals {
	if i.Activity <= 0 {
		i.Activity = ActivityInterval
	}
	if i.Detail <= 0 {
		i.Detail = DetailInterval
	}
	if i.Heartbeat <= 0 {
		i.Heartbeat = HeartbeatInterval
	}
	return i
}

// Slot names an independent timer owned by the scheduler.
type Slot string

const (
	// SlotView is the foreground view's refresh timer.
	SlotView Slot = "view"
	// SlotHeartbeat refreshes the queue badge while no view timer does.
	SlotHeartbeat Slot = "heartbeat"
)

// Key identifies what a timer refreshes: the view plus the parameters that
// define its data. A timer never outlives a change of key.
type Key struct {
	View   string
	Params string
}

func (k Key) String() string {
	if k.Params == "" {
		return k.View
	}
	return k.View + "(" + k.Params + ")"
}

// Task is one refresh. ctx is the scheduler's base context, not the timer's,
// so requests already sent are not aborted when the timer is cancelled.
type Task func(ctx context.Context)

type handle struct {
	key   Key
	every time.Duration
	stop  chan struct{}
}

// Scheduler runs at most one repeating timer per slot.
type Scheduler struct {
	ctx context.Context
	log zerolog.Logger

	mu     sync.Mutex
	slots  map[Slot]*handle
	closed bool
	wg     sync.WaitGroup
}

// New returns a scheduler whose tasks run with ctx.
func New(ctx context.Context, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		ctx:   ctx,
		log:   log,
		slots: make(map[Slot]*handle),
	}
}

// Acquire makes task the timer for slot. When the slot already runs a timer
// with the same key and cadence it is kept and Acquire returns false.
// Otherwise the previous timer is cancelled before the new one starts. The
// first tick fires after one interval.
func (s *Scheduler) Acquire(slot Slot, key Key, every time.Duration, task Task) bool {
	if every <= 0 || task == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if cur, ok := s.slots[slot]; ok {
		if cur.key == key && cur.every == every {
			return false
		}
		close(cur.stop)
		delete(s.slots, slot)
	}

	h := &handle{key: key, every: every, stop: make(chan struct{})}
	s.slots[slot] = h
	s.wg.Add(1)
	go s.loop(slot, h, task)
	s.log.Debug().Str("slot", string(slot)).Str("key", key.String()).Dur("every", every).Msg("timer acquired")
	return true
}

// Release cancels the slot's timer, if any.
func (s *Scheduler) Release(slot Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.slots[slot]; ok {
		close(cur.stop)
		delete(s.slots, slot)
		s.log.Debug().Str("slot", string(slot)).Str("key", cur.key.String()).Msg("timer released")
	}
}

// Active reports the key currently owning slot.
func (s *Scheduler) Active(slot Slot) (Key, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.slots[slot]; ok {
		return cur.key, true
	}
	return Key{}, false
}

// Close cancels every timer and waits for the timer goroutines to exit.
// Ticks already running are not waited for.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for slot, cur := range s.slots {
		close(cur.stop)
		delete(s.slots, slot)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) loop(slot Slot, h *handle, task Task) {
	defer s.wg.Done()
	ticker := time.NewTicker(h.every)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}
		// A tick that raced with cancellation must not run against stale parameters.
		if !s.owns(slot, h) {
			return
		}
		go s.run(h.key, task)
	}
}

func (s *Scheduler) owns(slot Slot, h *handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[slot] == h
}

func (s *Scheduler) run(key Key, task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("key", key.String()).Str("panic", fmt.Sprint(r)).Msg("poll tick panicked")
		}
	}()
	task(s.ctx)
}
