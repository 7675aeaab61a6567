package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/tubarr-tui/internal/config"
	"github.com/five82/tubarr-tui/internal/logging"
	"github.com/five82/tubarr-tui/internal/overlay"
	"github.com/five82/tubarr-tui/internal/poll"
	"github.com/five82/tubarr-tui/internal/prefs"
	"github.com/five82/tubarr-tui/internal/push"
	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
	"github.com/five82/tubarr-tui/internal/ui"
	"github.com/five82/tubarr-tui/internal/views"
)

// Options configure the client.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/tubarr-tui/prefs.toml
	Debug      bool
}

// Run boots the client until the UI exits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closer, err := logging.New(logging.Options{Path: cfg.LogFile, Debug: opts.Debug})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, _ := prefs.Load(prefsPath)

	client, err := tubarr.NewClient(cfg.APIURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init tubarr client: %w", err)
	}
	log.Info().Str("api", client.BaseURL()).Str("ws", cfg.WSURL).Msg("starting")

	rt := newRuntime(ctx, client, cfg, log, prefsPath)
	defer rt.close()
	rt.start(userPrefs.LastView)

	return ui.Run(ui.Options{
		Context:   ctx,
		Router:    rt.router,
		Store:     rt.deps.Store,
		ThemeName: userPrefs.Theme,
		PrefsPath: prefsPath,
		LogPath:   cfg.LogFile,
		PushState: rt.pushState,
	})
}

// runtime owns every long-lived component between start and close.
type runtime struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	deps     views.Deps
	c        *views.Controllers
	router   *views.Router
	push     *push.Channel
	autoSync *autoSync
}

func newRuntime(parent context.Context, api tubarr.API, cfg config.Config, log zerolog.Logger, prefsPath string) *runtime {
	ctx, cancel := context.WithCancel(parent)
	store := state.NewStore()
	marks := overlay.New(overlay.DefaultTTL)
	marks.OnChange(func() { store.Notify(state.KindQueue) })

	deps := views.Deps{
		API:     api,
		Store:   store,
		Overlay: marks,
		Poller:  poll.New(ctx, logging.Component(log, "poll")),
		Log:     logging.Component(log, "views"),
		Intervals: poll.Intervals{
			Activity:  cfg.ActivityPoll,
			Detail:    cfg.DetailPoll,
			Heartbeat: cfg.HeartbeatPoll,
		}.WithDefaults(),
	}
	c := views.NewControllers(deps, cfg.EnrichPerSecond)
	rt := &runtime{
		ctx:    ctx,
		cancel: cancel,
		log:    log,
		deps:   deps,
		c:      c,
		router: views.NewRouter(deps, c, prefsPath),
	}

	d := &dispatcher{ctx: ctx, deps: deps, c: c, log: logging.Component(log, "dispatch")}
	rt.push = push.New(push.Options{
		URL:            cfg.WSURL,
		ReconnectDelay: cfg.ReconnectDelay,
		Log:            logging.Component(log, "push"),
		OnState:        func(push.State) { store.Notify(views.KindRouter) },
	}, d.handle)

	rt.autoSync = newAutoSync(ctx, store, func(ctx context.Context) error {
		_, err := c.Settings.SyncAll(ctx)
		return err
	}, logging.Component(log, "autosync"))
	return rt
}

// start connects the push channel, loads settings and restores the last view.
// Failures here are background failures: the UI starts regardless and shows
// the offline indicator.
func (rt *runtime) start(lastView string) {
	rt.push.Start()
	rt.autoSync.Start()

	loadCtx, cancel := context.WithTimeout(rt.ctx, 10*time.Second)
	defer cancel()
	if err := rt.c.Settings.Load(loadCtx); err != nil {
		rt.deps.Store.RecordError(err)
		rt.log.Warn().Err(err).Msg("initial settings load failed")
	}
	if err := rt.router.Restore(loadCtx, lastView); err != nil {
		rt.deps.Store.RecordError(err)
		rt.log.Warn().Err(err).Str("view", lastView).Msg("initial view load failed")
	}
}

func (rt *runtime) pushState() string {
	return rt.push.State().String()
}

func (rt *runtime) close() {
	rt.router.Close()
	rt.autoSync.Stop()
	if err := rt.push.Close(); err != nil {
		rt.log.Debug().Err(err).Msg("close push channel")
	}
	rt.cancel()
	rt.deps.Poller.Close()
	rt.log.Info().Msg("stopped")
}
