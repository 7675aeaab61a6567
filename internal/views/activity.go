package views

import (
	"context"
	"errors"

	"github.com/five82/tubarr-tui/internal/poll"
	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

// Activity controls the queue and history screen.
type Activity struct {
	d Deps
}

// NewActivity builds the controller.
func NewActivity(d Deps) *Activity {
	return &Activity{d: d}
}

// Enter starts the fast refresh timer and fetches once right away.
func (a *Activity) Enter(ctx context.Context) error {
	return a.begin()(ctx)
}

func (a *Activity) begin() func(context.Context) error {
	if a.d.Poller != nil {
		a.d.Poller.Acquire(poll.SlotView, poll.Key{View: "activity"}, a.d.Intervals.WithDefaults().Activity, a.tick)
	}
	return a.Refresh
}

// Leave stops the timer.
func (a *Activity) Leave() {
	if a.d.Poller != nil {
		a.d.Poller.Release(poll.SlotView)
	}
}

// Refresh fetches queue and history.
func (a *Activity) Refresh(ctx context.Context) error {
	qErr := a.d.RefreshQueue(ctx)
	history, hErr := a.d.API.History(ctx)
	if hErr == nil {
		state.Set(a.d.Store, state.History, history)
	} else {
		a.d.background("history", hErr)
	}
	return errors.Join(qErr, hErr)
}

func (a *Activity) tick(ctx context.Context) {
	_ = a.Refresh(ctx)
}

// ActiveQueue returns the entries that count toward the badge: Pending,
// Queued, or anything reported as Downloading.
func ActiveQueue(queue []tubarr.QueueEntry) []tubarr.QueueEntry {
	var out []tubarr.QueueEntry
	for _, q := range queue {
		if q.IsActive() {
			out = append(out, q)
		}
	}
	return out
}

// ActiveCount is len(ActiveQueue) over the cached queue.
func ActiveCount(store *state.Store) int {
	queue, _ := state.Get(store, state.Queue)
	return len(ActiveQueue(queue))
}

// ActivitySnapshot is what the activity screen renders.
type ActivitySnapshot struct {
	Active  []tubarr.QueueEntry
	History []tubarr.HistoryEntry
}

// Snapshot assembles the render state.
func (a *Activity) Snapshot() ActivitySnapshot {
	queue, _ := state.Get(a.d.Store, state.Queue)
	history, _ := state.Get(a.d.Store, state.History)
	return ActivitySnapshot{Active: ActiveQueue(queue), History: history}
}
