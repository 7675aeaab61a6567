// Package state provides the thread-safe entity cache shared by every view.
//
// # Overview
//
// The Store holds the last-known-good snapshot of each server-owned
// collection: channels, the live queue, history, the current channel-detail
// page, the current playlist page, playlists, settings and system status.
// It is a pure data holder. Writers are the view controllers, the poll ticks
// and the push dispatcher; readers are the controllers and the UI.
//
// # Typed Keys
//
// Each collection is addressed by a typed Key, so reads and writes are
// checked at compile time:
//
//	state.Set(store, state.Queue, entries)
//	queue, ok := state.Get(store, state.Queue)
//	state.Merge(store, state.ChannelDetail, func(cur tubarr.ChannelDetail, ok bool) tubarr.ChannelDetail {
//		cur.Videos = append(cur.Videos, page.Videos...)
//		return cur
//	})
//
// Values are cloned on the way in and on the way out, so callers never share
// slices with the store.
//
// # Observers
//
// Subscribe registers a callback that receives the Kind of every write.
// The UI uses it to schedule a redraw; callbacks must not block.
//
// # Health
//
// Background refreshes report through RecordSuccess and RecordError. An error
// never drops cached data; it only increments the failure counter. Two
// consecutive failures mark the cache offline.
package state
