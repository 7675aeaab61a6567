package tubarr

import (
	"encoding/json"
	"strings"
)

// Queue status values reported by /queue. Downloading is reported with
// decorations ("⬇️ Downloading...") so it is matched by substring.
const (
	StatusPending     = "Pending"
	StatusQueued      = "Queued"
	StatusDownloading = "Downloading"
	StatusDone        = "Done"
	StatusFailed      = "Failed"
)

// Channel mirrors a subscribed channel as returned by /channel.
type Channel struct {
	ID              int64  `json:"id"`
	Name            string `json:"channel_name"`
	URL             string `json:"channel_url"`
	PlatformID      string `json:"channel_id"`
	Thumbnail       string `json:"thumbnail,omitempty"`
	Description     string `json:"description,omitempty"`
	Monitored       bool   `json:"monitored"`
	Quality         string `json:"quality"`
	DownloadPath    string `json:"download_path,omitempty"`
	VideoCount      int    `json:"video_count"`
	DownloadedCount int    `json:"downloaded_count"`
	Added           string `json:"added,omitempty"`
}

// Video is a single upload known to the server.
type Video struct {
	ID          int64  `json:"id,omitempty"`
	VideoID     string `json:"video_id"`
	ChannelID   int64  `json:"channel_id,omitempty"`
	PlaylistID  string `json:"playlist_id,omitempty"`
	Title       string `json:"title"`
	Duration    int    `json:"duration"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	ViewCount   *int64 `json:"view_count,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
	Downloaded  bool   `json:"downloaded"`
}

// ChannelDetail is one page of a channel's catalog.
type ChannelDetail struct {
	Channel         Channel `json:"channel"`
	Videos          []Video `json:"videos"`
	TotalVideos     int     `json:"total_videos"`
	LoadedVideos    int     `json:"loaded_videos"`
	DownloadedCount int     `json:"downloaded_count"`
	HasMore         bool    `json:"has_more"`
}

// Playlist belongs to a channel. DownloadAll is never part of the payload; it
// is only sent as a query flag when monitoring is enabled.
type Playlist struct {
	PlaylistID      string `json:"playlist_id"`
	Title           string `json:"title"`
	VideoCount      int    `json:"video_count"`
	DownloadedCount int    `json:"downloaded_count"`
	Monitored       bool   `json:"monitored"`
}

// QueueEntry is a live download request.
type QueueEntry struct {
	ID          int64  `json:"id"`
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	ChannelID   int64  `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	PublishDate string `json:"publish_date,omitempty"`
	Status      string `json:"status"`
}

// IsActive reports whether the entry counts toward the activity badge.
func (q QueueEntry) IsActive() bool {
	status := strings.TrimSpace(q.Status)
	return status == StatusPending || status == StatusQueued || strings.Contains(status, StatusDownloading)
}

// IsTerminal reports whether the entry has finished, successfully or not.
func (q QueueEntry) IsTerminal() bool {
	switch strings.ToLower(strings.TrimSpace(q.Status)) {
	case "done", "completed", "failed":
		return true
	}
	return false
}

// HistoryEntry is a denormalized record of a finished download.
type HistoryEntry struct {
	ID           int64  `json:"id"`
	VideoID      string `json:"video_id"`
	VideoTitle   string `json:"video_title"`
	ChannelName  string `json:"channel_name"`
	DownloadedAt string `json:"downloaded_at"`
}

// SystemStatus mirrors /system/status.
type SystemStatus struct {
	Channels   int    `json:"channels"`
	Videos     int    `json:"videos"`
	Downloaded int    `json:"downloaded"`
	Version    string `json:"version,omitempty"`
}

// SearchResult is a channel candidate from /search. Thumbnail, counts and
// description are usually absent until enriched via /channel/info.
type SearchResult struct {
	PlatformID      string `json:"channel_id"`
	Name            string `json:"channel_name"`
	URL             string `json:"channel_url"`
	SubscriberCount *int64 `json:"subscriber_count,omitempty"`
	VideoCount      *int64 `json:"video_count,omitempty"`
	Thumbnail       string `json:"thumbnail,omitempty"`
	Description     string `json:"description,omitempty"`
}

// ChannelInfo is the best-effort detail payload for a search result.
type ChannelInfo struct {
	Thumbnail       string `json:"thumbnail,omitempty"`
	SubscriberCount *int64 `json:"subscriber_count,omitempty"`
	VideoCount      *int64 `json:"video_count,omitempty"`
	Description     string `json:"description,omitempty"`
}

// Empty reports whether the server had nothing to say about the channel.
func (i ChannelInfo) Empty() bool {
	return i.Thumbnail == "" && i.SubscriberCount == nil && i.VideoCount == nil && i.Description == ""
}

// ChannelPreview lists the most recent uploads of a channel that is not yet added.
type ChannelPreview struct {
	PlatformID string         `json:"channel_id"`
	Name       string         `json:"channel_name"`
	Videos     []PreviewVideo `json:"videos"`
}

// PreviewVideo is a lightweight video entry in a ChannelPreview.
type PreviewVideo struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// AddChannelRequest is the body of POST /channel.
type AddChannelRequest struct {
	URL          string `json:"channel_url"`
	DownloadPath string `json:"download_path"`
	Quality      string `json:"quality"`
	Monitored    bool   `json:"monitored"`
	DownloadAll  bool   `json:"download_all"`
}

// PageQuery selects a window of a channel catalog.
type PageQuery struct {
	Limit  int
	Offset int
	Sort   string
	Filter string
}

// RescanResult mirrors /command/rescan.
type RescanResult struct {
	Status   string `json:"status"`
	Updated  int    `json:"updated"`
	Imported int    `json:"imported"`
}

// SyncResult mirrors /command/sync.
type SyncResult struct {
	Status    string `json:"status"`
	NewVideos int    `json:"new_videos"`
}

// Settings is the server's flat configuration object. Keys the client does
// not know about are kept in Extra so that a save never drops them.
type Settings struct {
	APIKey         string `json:"apiKey"`
	DefaultPath    string `json:"defaultPath"`
	DefaultQuality string `json:"defaultQuality"`
	AutoSync       bool   `json:"autoSync"`
	SyncInterval   int    `json:"syncInterval"`
	Theme          string `json:"theme"`
	NamingFormat   string `json:"namingFormat"`
	CustomNaming   string `json:"customNaming"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownSettingsKeys = []string{
	"apiKey", "defaultPath", "defaultQuality", "autoSync",
	"syncInterval", "theme", "namingFormat", "customNaming",
}

// DefaultSettings returns the values used before the server has answered.
func DefaultSettings() Settings {
	return Settings{
		DefaultPath:    "/downloads",
		DefaultQuality: "1080p",
		AutoSync:       true,
		SyncInterval:   15,
		Theme:          "dark",
		NamingFormat:   "standard",
		CustomNaming:   "{channel} - S{season:00}E{episode:000} - {title}",
	}
}

// UnmarshalJSON overlays the payload onto the receiver, so decoding into
// DefaultSettings() yields server values merged over defaults.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	merged := plain(*s)
	if err := json.Unmarshal(data, &merged); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range knownSettingsKeys {
		delete(raw, key)
	}
	merged.Extra = nil
	if len(raw) > 0 {
		merged.Extra = raw
	}
	*s = Settings(merged)
	return nil
}

// MarshalJSON writes known fields plus any preserved unknown keys.
func (s Settings) MarshalJSON() ([]byte, error) {
	type plain Settings
	data, err := json.Marshal(plain(s))
	if err != nil || len(s.Extra) == 0 {
		return data, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	for key, value := range s.Extra {
		if _, known := out[key]; !known {
			out[key] = value
		}
	}
	return json.Marshal(out)
}

// PushMessage is a frame delivered over the WebSocket feed.
type PushMessage struct {
	Type   string        `json:"type"`
	Queue  []QueueEntry  `json:"queue,omitempty"`
	Status *SystemStatus `json:"status,omitempty"`
}

// Push message types understood by the client.
const (
	PushQueueUpdate   = "queue_update"
	PushChannelUpdate = "channel_update"
	PushStatusUpdate  = "status_update"
)
