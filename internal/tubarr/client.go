package tubarr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// API is the full set of server capabilities the views depend on.
// It is implemented by *Client and can be faked in tests.
type API interface {
	ListChannels(ctx context.Context) ([]Channel, error)
	AddChannel(ctx context.Context, req AddChannelRequest) (Channel, error)
	DeleteChannel(ctx context.Context, id int64) error
	ToggleMonitor(ctx context.Context, id int64) (bool, error)
	SyncChannel(ctx context.Context, id int64) error
	ChannelDetail(ctx context.Context, id int64, query PageQuery) (ChannelDetail, error)
	ChannelPlaylists(ctx context.Context, id int64) ([]Playlist, error)
	ChannelInfo(ctx context.Context, platformID string) (ChannelInfo, error)

	ListVideos(ctx context.Context) ([]Video, error)
	DownloadVideo(ctx context.Context, id int64) error
	DownloadByPlatformID(ctx context.Context, platformID string, channelID int64) error
	DeleteVideo(ctx context.Context, videoID string) error

	PlaylistVideos(ctx context.Context, playlistID string) ([]Video, error)
	MonitorPlaylist(ctx context.Context, playlistID string, channelID int64, downloadAll bool) error
	UnmonitorPlaylist(ctx context.Context, playlistID string) error

	Queue(ctx context.Context) ([]QueueEntry, error)
	History(ctx context.Context) ([]HistoryEntry, error)

	Search(ctx context.Context, query string) ([]SearchResult, error)
	PreviewChannel(ctx context.Context, platformID string) (ChannelPreview, error)

	Settings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, settings Settings) error
	GenerateKey(ctx context.Context) (string, error)

	Status(ctx context.Context) (SystemStatus, error)
	Rescan(ctx context.Context) (RescanResult, error)
	SyncAll(ctx context.Context) (SyncResult, error)

	ImageURL(raw string) string
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the Tubarr HTTP API.
type Client struct {
	baseURL *url.URL
	http    *resty.Client
}

const (
	defaultAPIURL    = "http://127.0.0.1:8000/api/v1"
	defaultUserAgent = "tubarr-tui/0.1"
	defaultTimeout   = 5 * time.Second
)

// NewClient builds a Client rooted at apiURL (e.g. http://host:8000/api/v1).
func NewClient(apiURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rc := resty.New().
		SetBaseURL(base.String()).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", defaultUserAgent)
	return &Client{baseURL: base, http: rc}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListChannels returns every subscribed channel.
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	var out []Channel
	if err := c.do(ctx, http.MethodGet, "/channel", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddChannel subscribes to a channel.
func (c *Client) AddChannel(ctx context.Context, req AddChannelRequest) (Channel, error) {
	var out Channel
	if err := c.do(ctx, http.MethodPost, "/channel", nil, req, &out); err != nil {
		return Channel{}, err
	}
	return out, nil
}

// DeleteChannel removes a channel and, server-side, its videos.
func (c *Client) DeleteChannel(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/channel/"+idPath(id), nil, nil, nil)
}

// ToggleMonitor flips the monitored flag and returns the new value.
func (c *Client) ToggleMonitor(ctx context.Context, id int64) (bool, error) {
	var out struct {
		Monitored bool `json:"monitored"`
	}
	if err := c.do(ctx, http.MethodPatch, "/channel/"+idPath(id)+"/monitor", nil, nil, &out); err != nil {
		return false, err
	}
	return out.Monitored, nil
}

// SyncChannel asks the server to rediscover a channel's uploads.
func (c *Client) SyncChannel(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, "/channel/"+idPath(id)+"/sync", nil, nil, nil)
}

// ChannelDetail fetches one window of a channel's catalog.
func (c *Client) ChannelDetail(ctx context.Context, id int64, query PageQuery) (ChannelDetail, error) {
	values := url.Values{}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	values.Set("offset", strconv.Itoa(max(query.Offset, 0)))
	if sort := strings.TrimSpace(query.Sort); sort != "" {
		values.Set("sort", sort)
	}
	if filter := strings.TrimSpace(query.Filter); filter != "" {
		values.Set("filter", filter)
	}
	var out ChannelDetail
	if err := c.do(ctx, http.MethodGet, "/channel/"+idPath(id), values, nil, &out); err != nil {
		return ChannelDetail{}, err
	}
	return out, nil
}

// ChannelPlaylists lists the playlists published by a channel.
func (c *Client) ChannelPlaylists(ctx context.Context, id int64) ([]Playlist, error) {
	var out []Playlist
	if err := c.do(ctx, http.MethodGet, "/channel/"+idPath(id)+"/playlists", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChannelInfo fetches enrichment data for a platform channel id.
func (c *Client) ChannelInfo(ctx context.Context, platformID string) (ChannelInfo, error) {
	var out ChannelInfo
	if err := c.do(ctx, http.MethodGet, "/channel/info/"+url.PathEscape(platformID), nil, nil, &out); err != nil {
		return ChannelInfo{}, err
	}
	return out, nil
}

// ListVideos returns every known video.
func (c *Client) ListVideos(ctx context.Context) ([]Video, error) {
	var out []Video
	if err := c.do(ctx, http.MethodGet, "/video", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadVideo queues a download by server-side video id.
func (c *Client) DownloadVideo(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, "/video/"+idPath(id)+"/download", nil, nil, nil)
}

// DownloadByPlatformID queues a download by platform video id. The server
// requires the owning channel so it can validate the pair.
func (c *Client) DownloadByPlatformID(ctx context.Context, platformID string, channelID int64) error {
	body := struct {
		ChannelID int64 `json:"channel_id"`
	}{ChannelID: channelID}
	return c.do(ctx, http.MethodPost, "/video/download/"+url.PathEscape(platformID), nil, body, nil)
}

// DeleteVideo removes a video's file and record.
func (c *Client) DeleteVideo(ctx context.Context, videoID string) error {
	return c.do(ctx, http.MethodDelete, "/video/"+url.PathEscape(videoID), nil, nil, nil)
}

// PlaylistVideos lists a playlist's videos enriched with download state.
func (c *Client) PlaylistVideos(ctx context.Context, playlistID string) ([]Video, error) {
	var out []Video
	if err := c.do(ctx, http.MethodGet, "/playlist/"+url.PathEscape(playlistID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MonitorPlaylist starts tracking a playlist, optionally queuing its backlog.
func (c *Client) MonitorPlaylist(ctx context.Context, playlistID string, channelID int64, downloadAll bool) error {
	values := url.Values{}
	values.Set("channel_id", idPath(channelID))
	values.Set("download_all", strconv.FormatBool(downloadAll))
	return c.do(ctx, http.MethodPost, "/playlist/"+url.PathEscape(playlistID)+"/monitor", values, nil, nil)
}

// UnmonitorPlaylist stops tracking a playlist.
func (c *Client) UnmonitorPlaylist(ctx context.Context, playlistID string) error {
	return c.do(ctx, http.MethodPost, "/playlist/"+url.PathEscape(playlistID)+"/unmonitor", nil, nil, nil)
}

// Queue retrieves the live download queue.
func (c *Client) Queue(ctx context.Context) ([]QueueEntry, error) {
	var out []QueueEntry
	if err := c.do(ctx, http.MethodGet, "/queue", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// History retrieves recently completed downloads.
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	var out []HistoryEntry
	if err := c.do(ctx, http.MethodGet, "/history", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search looks up channels by free text.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	values := url.Values{}
	values.Set("query", query)
	var out []SearchResult
	if err := c.do(ctx, http.MethodGet, "/search", values, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PreviewChannel fetches recent uploads of a channel that is not subscribed.
func (c *Client) PreviewChannel(ctx context.Context, platformID string) (ChannelPreview, error) {
	var out ChannelPreview
	if err := c.do(ctx, http.MethodGet, "/preview/channel/"+url.PathEscape(platformID), nil, nil, &out); err != nil {
		return ChannelPreview{}, err
	}
	return out, nil
}

// Settings loads the server settings merged over DefaultSettings.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	out := DefaultSettings()
	if err := c.do(ctx, http.MethodGet, "/settings", nil, nil, &out); err != nil {
		return Settings{}, err
	}
	return out, nil
}

// SaveSettings replaces the server settings.
func (c *Client) SaveSettings(ctx context.Context, settings Settings) error {
	return c.do(ctx, http.MethodPost, "/settings", nil, settings, nil)
}

// GenerateKey rotates the API key and returns the new value.
func (c *Client) GenerateKey(ctx context.Context) (string, error) {
	var out struct {
		APIKey string `json:"apiKey"`
	}
	if err := c.do(ctx, http.MethodPost, "/settings/generate-key", nil, nil, &out); err != nil {
		return "", err
	}
	return out.APIKey, nil
}

// Status retrieves the derived system counters.
func (c *Client) Status(ctx context.Context) (SystemStatus, error) {
	var out SystemStatus
	if err := c.do(ctx, http.MethodGet, "/system/status", nil, nil, &out); err != nil {
		return SystemStatus{}, err
	}
	return out, nil
}

// Rescan asks the server to reconcile the download folders with the database.
func (c *Client) Rescan(ctx context.Context) (RescanResult, error) {
	var out RescanResult
	if err := c.do(ctx, http.MethodPost, "/command/rescan", nil, nil, &out); err != nil {
		return RescanResult{}, err
	}
	return out, nil
}

// SyncAll checks every monitored channel for new uploads.
func (c *Client) SyncAll(ctx context.Context) (SyncResult, error) {
	var out SyncResult
	if err := c.do(ctx, http.MethodPost, "/command/sync", nil, nil, &out); err != nil {
		return SyncResult{}, err
	}
	return out, nil
}

// ImageURL builds the proxied image URL for raw. It performs no request.
func (c *Client) ImageURL(raw string) string {
	return ProxyImageURL(c.baseURL.String(), raw)
}

// ProxyImageURL builds {apiRoot}/proxy/image?url=<raw>. Empty input yields "".
func ProxyImageURL(apiRoot, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.TrimSuffix(apiRoot, "/") + "/proxy/image?url=" + url.QueryEscape(raw)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	if resp.StatusCode() >= 400 {
		return &APIError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode(),
			Message: serverMessage(resp.Body()),
		}
	}
	if dest == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func idPath(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
