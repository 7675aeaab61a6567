// Package tubarr provides an HTTP client for the Tubarr server API.
//
// # Overview
//
// Client exposes one method per server capability: channel CRUD, sync and
// monitor toggling, paginated channel catalogs, video downloads, playlists,
// the live queue, history, search, settings and the maintenance commands.
// Views depend on the API interface so tests can substitute a fake.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Are rooted at the configured API root (default http://127.0.0.1:8000/api/v1)
//   - Carry an X-Request-ID header so server logs can be correlated
//   - Are never retried; retry and refresh policy belongs to the callers
//
// # Error Handling
//
// Failures come in three shapes:
//
//   - Transport errors wrap ErrTransport (connection refused, timeout)
//   - Status >= 400 returns *APIError with the server's "detail" message if any
//   - Malformed JSON returns a "decode response" error
//
// # Images
//
// ImageURL and ProxyImageURL only build {root}/proxy/image?url=... strings;
// nothing in this package fetches images.
package tubarr
