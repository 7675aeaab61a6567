// Package push maintains the WebSocket feed of server change events.
//
// The Channel moves Connecting -> Open -> Closed and, after a fixed delay,
// back to Connecting. Exactly one reconnect timer can be pending: scheduling
// a new one stops the previous one, and Close stops it and closes the socket.
//
// Frames are decoded into tubarr.PushMessage values. Recognized types are
// queue_update (whole-queue replacement), channel_update (a hint to re-fetch
// channels) and status_update. Unknown types and malformed frames are
// dropped without affecting the connection.
package push
