// Package views holds the per-view controllers and the router between them.
//
// # Controllers
//
// Each screen has a controller that issues its fetches, applies results to
// the shared state.Store and exposes a Snapshot for rendering:
//
//   - Channels: the channel list with health badges and the add operation.
//   - ChannelDetail: one channel's paginated catalog, playlists, selection
//     and bulk actions.
//   - PlaylistDetail: one playlist's videos.
//   - Activity: the live queue and download history.
//   - Search: channel search, best-effort enrichment and the add flow.
//   - Settings: server settings and library-wide commands.
//
// Controllers never render. The UI calls their operations and redraws when
// the store notifies.
//
// # Stale Responses
//
// Every fetch is tagged with the controller's generation at issue time and
// applied only if that generation still holds. Leaving a view, switching
// channel or changing sort and filter all advance it, so late responses are
// dropped instead of overwriting newer data.
//
// # Optimistic Downloads
//
// A download adds the video to the overlay before the request is sent and
// removes it when the request returns. Display state is always resolved by
// overlay.Resolver against the cached queue.
//
// # Destructive Actions
//
// Deletes return a *Confirmation. Nothing is sent until Accept is called;
// dropping the value declines.
//
// # Router
//
// View is a closed set of variants, each carrying the data it needs. Router
// leaves the old view, enters the new one, keeps the queue heartbeat running
// on views without their own timer and persists the view name. Restore falls
// back to HomeView for views whose subject is not persisted.
package views
