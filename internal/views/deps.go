package views

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/five82/tubarr-tui/internal/overlay"
	"github.com/five82/tubarr-tui/internal/poll"
	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

// Kinds notified through the store when controller-local state changes, so
// a single subscription is enough to redraw.
const (
	KindDetailView state.Kind = "detail_view"
	KindSearch     state.Kind = "search"
	KindRouter     state.Kind = "router"
)

// Controller-level rejections.
var (
	ErrSubmitting      = errors.New("add already in progress for this result")
	ErrMismatchedVideo = errors.New("video is not part of the current page")
	ErrNoChannel       = errors.New("no channel selected")
	ErrUnknownResult   = errors.New("unknown search result")
)

// Deps are the collaborators shared by every controller.
type Deps struct {
	API       tubarr.API
	Store     *state.Store
	Overlay   *overlay.Set
	Poller    *poll.Scheduler
	Log       zerolog.Logger
	Intervals poll.Intervals
}

// RefreshQueue fetches the live queue and applies it. Failures count toward
// the offline indicator and are returned for logging only.
func (d Deps) RefreshQueue(ctx context.Context) error {
	queue, err := d.API.Queue(ctx)
	if err != nil {
		d.background("queue", err)
		return err
	}
	ApplyQueue(d.Store, d.Overlay, queue)
	d.Store.RecordSuccess()
	return nil
}

// ApplyQueue replaces the cached queue and drops overlay markers the snapshot
// shows as finished. Push and poll both land here.
func ApplyQueue(store *state.Store, marks *overlay.Set, queue []tubarr.QueueEntry) {
	if queue == nil {
		queue = []tubarr.QueueEntry{}
	}
	state.Set(store, state.Queue, queue)
	if marks != nil {
		marks.Reconcile(queue)
	}
}

// background records a failed passive refresh without surfacing it.
func (d Deps) background(what string, err error) {
	d.Store.RecordError(err)
	d.Log.Warn().Err(err).Str("refresh", what).Msg("background refresh failed")
}

func (d Deps) resolver() overlay.Resolver {
	queue, _ := state.Get(d.Store, state.Queue)
	if d.Overlay == nil {
		return overlay.NewResolver(queue, nil)
	}
	return overlay.NewResolver(queue, d.Overlay)
}

// Confirmation gates a destructive action. Nothing happens until Accept;
// dropping the value is the decline path.
type Confirmation struct {
	Prompt string
	run    func(ctx context.Context) error
}

// Accept performs the gated action.
func (c *Confirmation) Accept(ctx context.Context) error {
	if c == nil || c.run == nil {
		return nil
	}
	return c.run(ctx)
}

// UserMessage turns an error into text for a blocking notice: the server's
// own message when it sent one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *tubarr.APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, tubarr.ErrTransport):
		return fallback + " (server unreachable)"
	case errors.Is(err, ErrSubmitting), errors.Is(err, ErrMismatchedVideo),
		errors.Is(err, ErrNoChannel), errors.Is(err, ErrUnknownResult):
		return err.Error()
	}
	return fallback
}
