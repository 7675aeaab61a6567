// Package poll owns the recurring refresh timers of the visible view.
//
// A Scheduler has two slots. The view slot belongs to the foreground screen
// and is keyed by the screen plus its defining parameters (channel id, sort,
// filter, playlist id). The heartbeat slot keeps the queue badge fresh while
// the foreground screen does not refresh the queue itself.
//
// Acquiring a slot with a different key cancels the previous timer first, and
// a tick that loses the race with cancellation is dropped, so a stale
// parameter set never fires. Ticks run on their own goroutine with the
// scheduler's base context: a slow request may overlap the next tick, and
// callers detect stale responses themselves. A panicking tick is logged and
// the timer keeps running.
package poll
