package app

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/five82/tubarr-tui/internal/state"
)

const autoSyncTag = "autosync"

// autoSync issues a library sync every settings.syncInterval minutes while
// settings.autoSync is on. It follows the cached settings, so saving them in
// the settings view reschedules or removes the job.
type autoSync struct {
	ctx   context.Context
	store *state.Store
	run   func(context.Context) error
	log   zerolog.Logger
	cron  *gocron.Scheduler

	mu          sync.Mutex
	enabled     bool
	every       int
	unsubscribe func()
}

func newAutoSync(ctx context.Context, store *state.Store, run func(context.Context) error, log zerolog.Logger) *autoSync {
	cron := gocron.NewScheduler(time.Local)
	cron.SetMaxConcurrentJobs(1, gocron.RescheduleMode)
	return &autoSync{ctx: ctx, store: store, run: run, log: log, cron: cron}
}

// Start applies the current settings and begins following changes.
func (a *autoSync) Start() {
	a.mu.Lock()
	a.unsubscribe = a.store.Subscribe(func(kind state.Kind) {
		if kind == state.KindSettings {
			a.apply()
		}
	})
	a.mu.Unlock()
	a.apply()
	a.cron.StartAsync()
}

// Stop removes the job and stops following settings.
func (a *autoSync) Stop() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	a.cron.Stop()
}

// Schedule reports the active interval in minutes; zero means off.
func (a *autoSync) Schedule() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled {
		return 0
	}
	return a.every
}

func (a *autoSync) apply() {
	settings, ok := state.Get(a.store, state.Settings)
	if !ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	want := settings.AutoSync && settings.SyncInterval > 0
	if want == a.enabled && (!want || settings.SyncInterval == a.every) {
		return
	}

	_ = a.cron.RemoveByTag(autoSyncTag)
	a.enabled = false
	a.every = 0
	if !want {
		a.log.Info().Msg("auto sync disabled")
		return
	}
	_, err := a.cron.Every(settings.SyncInterval).Minutes().WaitForSchedule().Tag(autoSyncTag).Do(a.sync)
	if err != nil {
		a.log.Error().Err(err).Int("minutes", settings.SyncInterval).Msg("schedule auto sync failed")
		return
	}
	a.enabled = true
	a.every = settings.SyncInterval
	a.log.Info().Int("minutes", settings.SyncInterval).Msg("auto sync scheduled")
}

func (a *autoSync) sync() {
	if err := a.run(a.ctx); err != nil {
		a.log.Warn().Err(err).Msg("auto sync failed")
	}
}
