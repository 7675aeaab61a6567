package overlay

import "github.com/five82/tubarr-tui/internal/tubarr"

// DisplayState is what a video shows in any list.
type DisplayState int

const (
	NotDownloaded DisplayState = iota
	Downloading
	Downloaded
)

func (d DisplayState) String() string {
	switch d {
	case Downloading:
		return "downloading"
	case Downloaded:
		return "downloaded"
	default:
		return "not downloaded"
	}
}

// Markers is the read side of an optimistic marker set.
type Markers interface {
	Has(id string) bool
}

// Resolver decides display state for many videos against one queue snapshot.
type Resolver struct {
	queued  map[string]struct{}
	markers Markers
}

// NewResolver indexes the non-terminal entries of queue. markers may be nil.
func NewResolver(queue []tubarr.QueueEntry, markers Markers) Resolver {
	queued := make(map[string]struct{}, len(queue))
	for _, entry := range queue {
		if !entry.IsTerminal() {
			queued[entry.VideoID] = struct{}{}
		}
	}
	return Resolver{queued: queued, markers: markers}
}

// State applies the precedence rule: an authoritative downloaded flag always
// wins, then live queue membership or an in-flight marker means downloading.
func (r Resolver) State(v tubarr.Video) DisplayState {
	if v.Downloaded {
		return Downloaded
	}
	if _, ok := r.queued[v.VideoID]; ok {
		return Downloading
	}
	if r.markers != nil && r.markers.Has(v.VideoID) {
		return Downloading
	}
	return NotDownloaded
}

// Resolve is a one-off State for a single video.
func Resolve(v tubarr.Video, queue []tubarr.QueueEntry, markers Markers) DisplayState {
	return NewResolver(queue, markers).State(v)
}
