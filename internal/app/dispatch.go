package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
	"github.com/five82/tubarr-tui/internal/views"
)

// dispatcher applies push messages. It runs on the push read goroutine, so
// anything that needs a request is started in its own goroutine.
type dispatcher struct {
	ctx  context.Context
	deps views.Deps
	c    *views.Controllers
	log  zerolog.Logger
}

func (d *dispatcher) handle(msg tubarr.PushMessage) {
	switch msg.Type {
	case tubarr.PushQueueUpdate:
		// The pushed queue is authoritative; it replaces the cached one and
		// retires finished optimistic markers.
		views.ApplyQueue(d.deps.Store, d.deps.Overlay, msg.Queue)
		d.log.Debug().Int("entries", len(msg.Queue)).Msg("queue pushed")
	case tubarr.PushChannelUpdate:
		go d.refreshChannels()
	case tubarr.PushStatusUpdate:
		if msg.Status != nil {
			state.Set(d.deps.Store, state.Status, *msg.Status)
		}
	}
}

// refreshChannels follows a channel_update hint: the list always, the open
// channel when there is one.
func (d *dispatcher) refreshChannels() {
	d.c.Channels.RefreshBackground(d.ctx)
	if d.c.Detail.ChannelID() != 0 {
		d.c.Detail.RefreshBackground(d.ctx)
	}
}
