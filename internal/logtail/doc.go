// Package logtail reads the tail of the client log file for the in-app log
// overlay.
//
// # Reading
//
// Read returns the last N lines of a file in one pass using a ring buffer,
// so memory is bounded by N rather than by the file size. A missing file
// yields no lines and no error; the log may simply not exist yet.
//
// # Parsing
//
// The client logs zerolog JSON. Parse turns one line into an Entry with the
// time, level, component, message and error pulled out and every other
// attribute kept as text in Fields. Lines that are not JSON are kept as
// plain messages. Format renders an Entry as a single readable line:
//
//	entries, err := logtail.Tail(path, 400, "info")
//	for _, e := range entries {
//		fmt.Println(logtail.Format(e))
//	}
package logtail
