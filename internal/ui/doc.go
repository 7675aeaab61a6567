// Package ui provides the Bubble Tea terminal interface for tubarr-tui.
//
// # Architecture Overview
//
// The model never owns data. Every screen renders from the view controllers'
// snapshots, and every operation that can block (network calls, navigation)
// runs inside a tea.Cmd whose result comes back as a message. The store is
// observed through one subscription that signals a buffered channel without
// blocking; a single outstanding command waits on it and triggers a redraw.
//
// # Package Structure
//
//   - app.go: Model, Options, message types, Update/View and Run
//   - handlers.go: per-view key handling
//   - screens.go: per-view rendering
//   - header.go: header, command bar and status line
//   - modal.go: confirmation, notice, add-channel and playlist dialogs
//   - logs.go: client log overlay backed by the log file
//   - theme.go, style_helpers.go: palettes and background-safe rendering
//   - keys.go, help.go: bindings and the help overlay generated from them
//
// # Views
//
// The top-level tabs are Channels, Activity, Search and Settings (1-4, tab).
// Channel, playlist and preview screens are reached from those and esc
// returns to their parent.
//
// # Dialogs
//
// Destructive actions always go through a confirmation; declining drops it
// and nothing is sent. Failed user actions raise a blocking notice with the
// server's message when it gave one. Background refresh failures never raise
// a dialog: they surface as the OFFLINE indicator in the header.
package ui
