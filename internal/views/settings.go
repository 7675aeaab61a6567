package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/five82/tubarr-tui/internal/state"
	"github.com/five82/tubarr-tui/internal/tubarr"
)

// Settings controls the settings screen and the library-wide commands.
type Settings struct {
	d Deps
}

// NewSettings builds the controller.
func NewSettings(d Deps) *Settings {
	return &Settings{d: d}
}

// Load fetches settings (merged over defaults by the decoder) and the system
// status. A settings failure leaves the last known values in place.
func (s *Settings) Load(ctx context.Context) error {
	settings, err := s.d.API.Settings(ctx)
	if err != nil {
		return err
	}
	state.Set(s.d.Store, state.Settings, settings)
	if err := s.RefreshStatus(ctx); err != nil {
		s.d.background("status", err)
	}
	return nil
}

// Current returns the cached settings, or the defaults before the first load.
func (s *Settings) Current() tubarr.Settings {
	if settings, ok := state.Get(s.d.Store, state.Settings); ok {
		return settings
	}
	return tubarr.DefaultSettings()
}

// Save validates and writes the whole settings object. Unknown server keys
// carried in Extra go back unchanged.
func (s *Settings) Save(ctx context.Context, settings tubarr.Settings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}
	if err := s.d.API.SaveSettings(ctx, settings); err != nil {
		s.d.Log.Error().Err(err).Msg("save settings failed")
		return err
	}
	state.Set(s.d.Store, state.Settings, settings)
	s.d.Log.Info().Bool("auto_sync", settings.AutoSync).Int("sync_interval", settings.SyncInterval).Msg("settings saved")
	return nil
}

func validateSettings(settings tubarr.Settings) error {
	var errs []error
	if strings.TrimSpace(settings.DefaultPath) == "" {
		errs = append(errs, errors.New("download path is required"))
	}
	if settings.AutoSync && settings.SyncInterval <= 0 {
		errs = append(errs, fmt.Errorf("sync interval must be positive, got %d", settings.SyncInterval))
	}
	return errors.Join(errs...)
}

// GenerateKey asks the server for a new API key and stores it in the cached
// settings.
func (s *Settings) GenerateKey(ctx context.Context) (string, error) {
	key, err := s.d.API.GenerateKey(ctx)
	if err != nil {
		return "", err
	}
	state.Merge(s.d.Store, state.Settings, func(cur tubarr.Settings, ok bool) tubarr.Settings {
		if !ok {
			cur = tubarr.DefaultSettings()
		}
		cur.APIKey = key
		return cur
	})
	return key, nil
}

// RefreshStatus re-reads the library counters.
func (s *Settings) RefreshStatus(ctx context.Context) error {
	status, err := s.d.API.Status(ctx)
	if err != nil {
		return err
	}
	state.Set(s.d.Store, state.Status, status)
	return nil
}

// Rescan reconciles the library with the files on disk.
func (s *Settings) Rescan(ctx context.Context) (tubarr.RescanResult, error) {
	res, err := s.d.API.Rescan(ctx)
	if err != nil {
		return tubarr.RescanResult{}, err
	}
	s.d.Log.Info().Int("updated", res.Updated).Int("imported", res.Imported).Msg("rescan finished")
	if err := s.RefreshStatus(ctx); err != nil {
		s.d.background("status", err)
	}
	return res, nil
}

// SyncAll checks every monitored channel for new uploads.
func (s *Settings) SyncAll(ctx context.Context) (tubarr.SyncResult, error) {
	res, err := s.d.API.SyncAll(ctx)
	if err != nil {
		return tubarr.SyncResult{}, err
	}
	s.d.Log.Info().Int("new_videos", res.NewVideos).Msg("sync finished")
	_ = s.d.RefreshQueue(ctx)
	return res, nil
}

// SettingsSnapshot is what the settings screen renders.
type SettingsSnapshot struct {
	Settings tubarr.Settings
	Status   tubarr.SystemStatus
	Loaded   bool
}

// Snapshot assembles the render state.
func (s *Settings) Snapshot() SettingsSnapshot {
	settings, ok := state.Get(s.d.Store, state.Settings)
	if !ok {
		settings = tubarr.DefaultSettings()
	}
	status, _ := state.Get(s.d.Store, state.Status)
	return SettingsSnapshot{Settings: settings, Status: status, Loaded: ok}
}
