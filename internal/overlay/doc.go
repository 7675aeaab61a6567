// Package overlay tracks optimistic "download requested" markers and owns the
// single rule that turns a video, the live queue and those markers into a
// display state.
//
// A marker is added when a download call is issued and removed when that
// call returns, whatever the outcome. A queue snapshot showing the video in a
// terminal state also removes it. Authoritative downloaded=true always wins.
package overlay
