package views

import (
	"context"
	"sync"
)

// download issues one download request with an optimistic marker. The marker
// covers the round trip only: it is removed as soon as the call returns,
// after the follow-up queue refresh on success so the video moves straight
// from the marker to its queue entry.
func (d Deps) download(ctx context.Context, videoID string, channelID int64) error {
	d.Overlay.Add(videoID)
	err := d.API.DownloadByPlatformID(ctx, videoID, channelID)
	if err != nil {
		d.Overlay.Remove(videoID)
		d.Log.Error().Err(err).Str("video_id", videoID).Int64("channel_id", channelID).Msg("download request failed")
		return err
	}
	d.Log.Info().Str("video_id", videoID).Int64("channel_id", channelID).Msg("download requested")
	_ = d.RefreshQueue(ctx)
	d.Overlay.Remove(videoID)
	return nil
}

// BulkResult reports how many of a bulk operation's independent calls failed.
type BulkResult struct {
	Requested int
	Failed    int
	FirstErr  error
}

// fanOut runs fn once per id concurrently. Each call stands alone; there is
// no rollback when some fail.
func fanOut(ctx context.Context, ids []string, fn func(context.Context, string) error) BulkResult {
	res := BulkResult{Requested: len(ids)}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := fn(ctx, id); err != nil {
				mu.Lock()
				res.Failed++
				if res.FirstErr == nil {
					res.FirstErr = err
				}
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()
	return res
}
