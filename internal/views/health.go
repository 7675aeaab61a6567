package views

import (
	"fmt"

	"github.com/five82/tubarr-tui/internal/tubarr"
)

// Health classifies a channel or playlist for the list badges.
type Health string

const (
	HealthDownloading        Health = "downloading"
	HealthMissing            Health = "missing"
	HealthMissingUnmonitored Health = "missing-unmonitored"
	HealthContinuing         Health = "continuing"
	HealthEnded              Health = "ended"
	HealthUnknown            Health = "unknown"
)

// ChannelHealth applies the list rule: anything in the queue for the channel
// wins, then missing videos split by monitored flag, then complete channels
// split into continuing (monitored) and ended.
func ChannelHealth(ch tubarr.Channel, queue []tubarr.QueueEntry) Health {
	for _, q := range queue {
		if q.ChannelID == ch.ID {
			return HealthDownloading
		}
	}
	total, done := ch.VideoCount, ch.DownloadedCount
	switch {
	case done < total && ch.Monitored:
		return HealthMissing
	case done < total:
		return HealthMissingUnmonitored
	case total > 0 && done == total && ch.Monitored:
		return HealthContinuing
	case total > 0 && done == total:
		return HealthEnded
	}
	return HealthUnknown
}

// PlaylistHealth is ChannelHealth without the queue check. An unmonitored
// playlist only counts as missing once something has been downloaded.
func PlaylistHealth(p tubarr.Playlist) Health {
	total, done := p.VideoCount, p.DownloadedCount
	switch {
	case done < total && p.Monitored:
		return HealthMissing
	case done < total && done > 0:
		return HealthMissingUnmonitored
	case total > 0 && done == total && p.Monitored:
		return HealthContinuing
	case total > 0 && done == total:
		return HealthEnded
	}
	return HealthUnknown
}

// FormatDuration renders seconds as h:mm:ss or m:ss; zero renders empty.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
