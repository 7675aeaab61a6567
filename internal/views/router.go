package views

import (
	"context"
	"errors"
	"sync"

	"github.com/five82/tubarr-tui/internal/poll"
	"github.com/five82/tubarr-tui/internal/prefs"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

// View is one screen. Each variant carries exactly the data it needs, so a
// detail view without its subject cannot be expressed.
type View interface {
	// Name is the key persisted as the last active view.
	Name() string
	isView()
}

// Persisted view names.
const (
	ViewHome     = "home"
	ViewChannel  = "channel"
	ViewPlaylist = "playlist"
	ViewActivity = "activity"
	ViewSearch   = "search"
	ViewSettings = "settings"
	ViewPreview  = "preview"
)

type (
	// HomeView is the channel list.
	HomeView struct{}
	// ChannelView is one channel's catalog.
	ChannelView struct{ ChannelID int64 }
	// PlaylistView is one playlist of a channel.
	PlaylistView struct {
		ChannelID  int64
		PlaylistID string
		Title      string
	}
	// ActivityView is the queue and history.
	ActivityView struct{}
	// SearchView is channel search and the add flow.
	SearchView struct{}
	// SettingsView is server settings and library commands.
	SettingsView struct{}
	// PreviewView shows recent uploads of a channel that is not added yet.
	PreviewView struct{ Preview tubarr.ChannelPreview }
)

func (HomeView) Name() string     { return ViewHome }
func (ChannelView) Name() string  { return ViewChannel }
func (PlaylistView) Name() string { return ViewPlaylist }
func (ActivityView) Name() string { return ViewActivity }
func (SearchView) Name() string   { return ViewSearch }
func (SettingsView) Name() string { return ViewSettings }
func (PreviewView) Name() string  { return ViewPreview }

func (HomeView) isView()     {}
func (ChannelView) isView()  {}
func (PlaylistView) isView() {}
func (ActivityView) isView() {}
func (SearchView) isView()   {}
func (SettingsView) isView() {}
func (PreviewView) isView()  {}

// Controllers bundles one instance of every view controller.
type Controllers struct {
	Channels *Channels
	Detail   *ChannelDetail
	Playlist *PlaylistDetail
	Activity *Activity
	Search   *Search
	Settings *Settings
}

// NewControllers wires the controllers to shared dependencies.
func NewControllers(d Deps, enrichPerSecond float64) *Controllers {
	channels := NewChannels(d)
	return &Controllers{
		Channels: channels,
		Detail:   NewChannelDetail(d, channels),
		Playlist: NewPlaylistDetail(d),
		Activity: NewActivity(d),
		Search:   NewSearch(d, channels, enrichPerSecond),
		Settings: NewSettings(d),
	}
}

// Router maps the current view variant to its controller and owns the
// transitions between them: leaving the old view, starting the right timers
// and persisting the view name.
type Router struct {
	d         Deps
	c         *Controllers
	prefsPath string

	nav     sync.Mutex
	mu      sync.Mutex
	current View
}

// NewRouter returns a router positioned on HomeView without entering it.
// An empty prefsPath disables persistence.
func NewRouter(d Deps, c *Controllers, prefsPath string) *Router {
	return &Router{d: d, c: c, prefsPath: prefsPath, current: HomeView{}}
}

// Controllers returns the controllers the router drives.
func (r *Router) Controllers() *Controllers { return r.c }

// Current returns the active view.
func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate leaves the current view and enters v. The returned error is the
// entering view's initial load; the view is switched either way.
func (r *Router) Navigate(ctx context.Context, v View) error {
	if err := validateView(v); err != nil {
		return err
	}
	r.nav.Lock()
	r.mu.Lock()
	prev := r.current
	r.current = v
	r.mu.Unlock()

	r.leave(prev, v)
	r.heartbeat(v)
	r.persist(v)
	load := r.enter(v)
	r.nav.Unlock()

	r.d.Store.Notify(KindRouter)
	// The load runs without nav held; controllers drop the results of a
	// view that was left meanwhile.
	return load(ctx)
}

// Restore enters the view persisted under name. Views that need a subject
// which is not persisted (channel, playlist, preview) fall back to home.
func (r *Router) Restore(ctx context.Context, name string) error {
	return r.Navigate(ctx, restorable(name))
}

func restorable(name string) View {
	switch name {
	case ViewActivity:
		return ActivityView{}
	case ViewSearch:
		return SearchView{}
	case ViewSettings:
		return SettingsView{}
	default:
		return HomeView{}
	}
}

// Close leaves the current view and stops the heartbeat.
func (r *Router) Close() {
	r.nav.Lock()
	defer r.nav.Unlock()
	r.leave(r.Current(), nil)
	if r.d.Poller != nil {
		r.d.Poller.Release(poll.SlotHeartbeat)
	}
}

func validateView(v View) error {
	switch v := v.(type) {
	case nil:
		return errors.New("nil view")
	case ChannelView:
		if v.ChannelID <= 0 {
			return ErrNoChannel
		}
	case PlaylistView:
		if v.ChannelID <= 0 || v.PlaylistID == "" {
			return ErrNoChannel
		}
	case PreviewView:
		if v.Preview.PlatformID == "" {
			return errors.New("preview has no channel")
		}
	}
	return nil
}

// leave stops whatever prev owns. Moving between two channels or two
// playlists is left to the controller's Load, which resets in place.
func (r *Router) leave(prev, next View) {
	switch prev.(type) {
	case ChannelView:
		if _, same := next.(ChannelView); !same {
			r.c.Detail.Leave()
		}
	case PlaylistView:
		if _, same := next.(PlaylistView); !same {
			r.c.Playlist.Leave()
		}
	case ActivityView:
		r.c.Activity.Leave()
	case SearchView:
		if _, toPreview := next.(PreviewView); !toPreview {
			if _, same := next.(SearchView); !same {
				r.c.Search.Reset()
			}
		}
	}
}

// heartbeat keeps the queue badge fresh on views without their own queue
// refresh.
func (r *Router) heartbeat(v View) {
	if r.d.Poller == nil {
		return
	}
	switch v.(type) {
	case HomeView, SearchView, SettingsView, PreviewView:
		r.d.Poller.Acquire(poll.SlotHeartbeat, poll.Key{View: "heartbeat"}, r.d.Intervals.WithDefaults().Heartbeat,
			func(ctx context.Context) { _ = r.d.RefreshQueue(ctx) })
	default:
		r.d.Poller.Release(poll.SlotHeartbeat)
	}
}

func (r *Router) persist(v View) {
	if r.prefsPath == "" {
		return
	}
	if err := prefs.SaveLastView(r.prefsPath, v.Name()); err != nil {
		r.d.Log.Warn().Err(err).Str("view", v.Name()).Msg("persist last view failed")
	}
}

// enter switches v's controller over and returns its initial load.
func (r *Router) enter(v View) func(context.Context) error {
	switch v := v.(type) {
	case HomeView:
		return func(ctx context.Context) error {
			err := r.c.Channels.Refresh(ctx)
			if qErr := r.d.RefreshQueue(ctx); err == nil {
				err = qErr
			}
			return err
		}
	case ChannelView:
		return r.c.Detail.begin(v.ChannelID)
	case PlaylistView:
		return r.c.Playlist.begin(v.ChannelID, v.PlaylistID, v.Title)
	case ActivityView:
		return r.c.Activity.begin()
	case SettingsView:
		return r.c.Settings.Load
	}
	return func(context.Context) error { return nil }
}
