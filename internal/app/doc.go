// Package app is the composition root of the Tubarr terminal client.
//
// # Overview
//
// Run wires configuration, logging, the REST client, the shared state.Store,
// the optimistic overlay, the poll scheduler, the view controllers, the push
// channel and the auto-sync job, then hands control to the UI.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()       Read client config
//	       ├─────> logging.New()       Open the JSON log file
//	       ├─────> tubarr.NewClient()  REST client
//	       ├─────> newRuntime()        Store, overlay, scheduler, controllers, router
//	       ├─────> push.Start()        WebSocket feed (reconnects every 5s)
//	       ├─────> autoSync.Start()    gocron job driven by settings
//	       ├─────> router.Restore()    Last view, home when it needs a subject
//	       └─────> ui.Run()            Start TUI (blocks)
//
// # Push Dispatch
//
// queue_update replaces the cached queue and retires finished optimistic
// markers. channel_update re-fetches the channel list and, when a channel is
// open, its loaded window. status_update replaces the library counters.
//
// # Error Handling
//
// Only configuration, logging and client construction errors are fatal. A
// server that is down at startup is a background failure: the UI opens with
// the offline indicator and recovers on the next successful refresh.
package app
