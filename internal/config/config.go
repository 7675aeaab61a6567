package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures how the client reaches the Tubarr server and how often it
// refreshes each view.
type Config struct {
	APIURL          string
	WSURL           string
	RequestTimeout  time.Duration
	ReconnectDelay  time.Duration
	LogFile         string
	ActivityPoll    time.Duration
	DetailPoll      time.Duration
	HeartbeatPoll   time.Duration
	EnrichPerSecond float64
}

const (
	defaultConfigPath     = "~/.config/tubarr-tui/config.toml"
	defaultLogFile        = "~/.local/state/tubarr-tui/tubarr-tui.log"
	defaultAPIURL         = "http://127.0.0.1:8000/api/v1"
	defaultRequestTimeout = 5 * time.Second
	defaultReconnectDelay = 5 * time.Second
	defaultActivityPoll   = time.Second
	defaultDetailPoll     = 5 * time.Second
	defaultHeartbeatPoll  = 5 * time.Second
	defaultEnrichRate     = 4
)

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{
		APIURL:          defaultAPIURL,
		RequestTimeout:  defaultRequestTimeout,
		ReconnectDelay:  defaultReconnectDelay,
		LogFile:         mustExpand(defaultLogFile),
		ActivityPoll:    defaultActivityPoll,
		DetailPoll:      defaultDetailPoll,
		HeartbeatPoll:   defaultHeartbeatPoll,
		EnrichPerSecond: defaultEnrichRate,
	}
	cfg.WSURL = DeriveWSURL(cfg.APIURL)
	return cfg
}

// Load locates and parses the client config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL          string  `toml:"api_url"`
		WSURL           string  `toml:"ws_url"`
		RequestTimeout  int     `toml:"request_timeout"`
		ReconnectDelay  int     `toml:"reconnect_delay"`
		LogFile         string  `toml:"log_file"`
		ActivityPollMS  int     `toml:"activity_poll_ms"`
		DetailPollMS    int     `toml:"detail_poll_ms"`
		HeartbeatPollMS int     `toml:"heartbeat_poll_ms"`
		EnrichPerSecond float64 `toml:"enrich_per_second"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = strings.TrimSuffix(v, "/")
	}
	cfg.WSURL = strings.TrimSpace(raw.WSURL)
	if cfg.WSURL == "" {
		cfg.WSURL = DeriveWSURL(cfg.APIURL)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	cfg.RequestTimeout = durationOr(raw.RequestTimeout, time.Second, defaultRequestTimeout)
	cfg.ReconnectDelay = durationOr(raw.ReconnectDelay, time.Second, defaultReconnectDelay)
	cfg.ActivityPoll = durationOr(raw.ActivityPollMS, time.Millisecond, defaultActivityPoll)
	cfg.DetailPoll = durationOr(raw.DetailPollMS, time.Millisecond, defaultDetailPoll)
	cfg.HeartbeatPoll = durationOr(raw.HeartbeatPollMS, time.Millisecond, defaultHeartbeatPoll)
	if raw.EnrichPerSecond > 0 {
		cfg.EnrichPerSecond = raw.EnrichPerSecond
	}

	return cfg, nil
}

// DeriveWSURL maps an API root such as http://host:8000/api/v1 to the push
// endpoint ws://host:8000/ws. https maps to wss.
func DeriveWSURL(apiURL string) string {
	trimmed := strings.TrimSpace(apiURL)
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return "ws://127.0.0.1:8000/ws"
	}
	scheme := "ws"
	if u.Scheme == "https" || u.Scheme == "wss" {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: u.Host, Path: "/ws"}).String()
}

func durationOr(n int, unit, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * unit
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
