// Package config handles loading the tubarr-tui client configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/tubarr-tui/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing, empty or non-positive, use defaults
//
// # Configuration Fields
//
//	api_url           = "http://127.0.0.1:8000/api/v1"  # REST root
//	ws_url            = ""                               # derived from api_url when empty
//	request_timeout   = 5                                # seconds
//	reconnect_delay   = 5                                # seconds between push reconnects
//	log_file          = "~/.local/state/tubarr-tui/tubarr-tui.log"
//	activity_poll_ms  = 1000
//	detail_poll_ms    = 5000
//	heartbeat_poll_ms = 5000
//	enrich_per_second = 4                                # search enrichment rate
//
// When ws_url is empty it is derived from api_url: same host, ws or wss
// scheme, path /ws.
//
// # Error Handling
//
// A missing file is not an error. Unreadable files return "open config" or
// "read config" errors; invalid TOML returns a "parse config" error.
package config
