package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tubarr-tui/internal/tubarr"
)

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		if m := int(d.Minutes()) % 60; m > 0 {
			return fmt.Sprintf("%dh %dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func ternary(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// truncate cuts value to limit display cells, ending with an ellipsis.
func truncate(value string, limit int) string {
	if limit <= 0 || lipgloss.Width(value) <= limit {
		return value
	}
	runes := []rune(value)
	if limit == 1 {
		return "…"
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	keep := limit - 1 // room for ellipsis rune
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}

// padRight pads value with spaces to width display cells, truncating first.
func padRight(value string, width int) string {
	value = truncate(value, width)
	if gap := width - lipgloss.Width(value); gap > 0 {
		return value + strings.Repeat(" ", gap)
	}
	return value
}

// statusKey normalizes a status for color lookup. Queue statuses carry
// progress text ("Downloading 42%"), so anything mentioning downloading maps
// to the same key.
func statusKey(status string) string {
	key := strings.ToLower(strings.TrimSpace(status))
	if strings.Contains(key, "downloading") {
		return "downloading"
	}
	return key
}

// formatCount renders an optional counter compactly: 1234 -> 1.2K.
func formatCount(n *int64) string {
	if n == nil {
		return "–"
	}
	v := *n
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", float64(v)/1_000)
	default:
		return fmt.Sprintf("%d", v)
	}
}

// videoDate shortens an ISO timestamp to its date.
func videoDate(v tubarr.Video) string {
	if len(v.PublishDate) >= 10 {
		return v.PublishDate[:10]
	}
	return v.PublishDate
}

// clamp keeps a cursor inside [0, n).
func clamp(cursor, n int) int {
	if n <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// window returns the first index to render so that cursor stays visible in
// a list of n rows shown height at a time.
func window(cursor, n, height int) int {
	if height <= 0 || n <= height {
		return 0
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start > n-height {
		start = n - height
	}
	return start
}
