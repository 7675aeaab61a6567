package views

import (
	"context"
	"sort"
	"strings"

	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

// ChannelRow is one line of the channel list.
type ChannelRow struct {
	Channel tubarr.Channel
	Health  Health
}

// Channels controls the home screen's channel list.
type Channels struct {
	d Deps
}

// NewChannels builds the channel list controller.
func NewChannels(d Deps) *Channels {
	return &Channels{d: d}
}

// Refresh replaces the cached list with the server's.
func (c *Channels) Refresh(ctx context.Context) error {
	list, err := c.d.API.ListChannels(ctx)
	if err != nil {
		return err
	}
	state.Set(c.d.Store, state.Channels, list)
	return nil
}

// RefreshBackground is Refresh for ticks and push hints: failures are only logged.
func (c *Channels) RefreshBackground(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.d.background("channels", err)
		return
	}
	c.d.Store.RecordSuccess()
}

// Add subscribes to a channel. The created channel is merged into the cache
// by id right away, then the list is re-read from the server. Either way it
// appears exactly once.
func (c *Channels) Add(ctx context.Context, req tubarr.AddChannelRequest) (tubarr.Channel, error) {
	req.URL = strings.TrimSpace(req.URL)
	created, err := c.d.API.AddChannel(ctx, req)
	if err != nil {
		c.d.Log.Error().Err(err).Str("url", req.URL).Msg("add channel failed")
		return tubarr.Channel{}, err
	}
	c.d.Log.Info().Int64("channel_id", created.ID).Str("name", created.Name).Msg("channel added")
	if created.ID != 0 {
		c.upsert(created)
	}
	if err := c.Refresh(ctx); err != nil {
		c.d.background("channels", err)
	}
	return created, nil
}

func (c *Channels) upsert(ch tubarr.Channel) {
	state.Merge(c.d.Store, state.Channels, func(cur []tubarr.Channel, _ bool) []tubarr.Channel {
		for i := range cur {
			if cur[i].ID == ch.ID {
				cur[i] = ch
				return cur
			}
		}
		return append(cur, ch)
	})
}

// setMonitored patches one channel's flag in the cached list.
func (c *Channels) setMonitored(id int64, monitored bool) {
	state.Merge(c.d.Store, state.Channels, func(cur []tubarr.Channel, _ bool) []tubarr.Channel {
		for i := range cur {
			if cur[i].ID == id {
				cur[i].Monitored = monitored
			}
		}
		return cur
	})
}

// remove drops a channel from the cached list.
func (c *Channels) remove(id int64) {
	state.Merge(c.d.Store, state.Channels, func(cur []tubarr.Channel, _ bool) []tubarr.Channel {
		out := cur[:0]
		for _, ch := range cur {
			if ch.ID != id {
				out = append(out, ch)
			}
		}
		return out
	})
}

// Rows returns the cached channels sorted by name with their health.
func (c *Channels) Rows() []ChannelRow {
	list, _ := state.Get(c.d.Store, state.Channels)
	queue, _ := state.Get(c.d.Store, state.Queue)
	rows := make([]ChannelRow, 0, len(list))
	for _, ch := range list {
		rows = append(rows, ChannelRow{Channel: ch, Health: ChannelHealth(ch, queue)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Channel.Name) < strings.ToLower(rows[j].Channel.Name)
	})
	return rows
}

// Find returns the cached channel with id.
func (c *Channels) Find(id int64) (tubarr.Channel, bool) {
	list, _ := state.Get(c.d.Store, state.Channels)
	for _, ch := range list {
		if ch.ID == id {
			return ch, true
		}
	}
	return tubarr.Channel{}, false
}
