package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which secondary columns are hidden.
	LayoutCompactWidth = 100

	// LayoutSidePaneWidth is the minimum width to show the playlist pane
	// beside a channel's videos.
	LayoutSidePaneWidth = 120
)

// Log overlay limits.
const (
	// LogBufferLimit is the maximum number of log lines read from the file.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// DefaultUIInterval drives relative timestamps and log follow.
	DefaultUIInterval = time.Second

	// FlashDuration is how long a status line message stays visible.
	FlashDuration = 4 * time.Second
)
