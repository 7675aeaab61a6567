package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file is not an error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Error     string
	// Fields holds the remaining attributes, rendered as text.
	Fields map[string]string
	// Raw is the original line; it is all that is set when the line is not JSON.
	Raw string
}

var reservedKeys = map[string]bool{
	"time": true, "level": true, "component": true, "message": true, "error": true,
}

// Parse decodes a JSON log line. Lines that are not JSON objects come back
// with only Raw and Message set, so a hand-edited or truncated file still
// displays.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	trimmed := strings.TrimSpace(line)
	var raw map[string]json.RawMessage
	if !strings.HasPrefix(trimmed, "{") || json.Unmarshal([]byte(trimmed), &raw) != nil {
		entry.Message = trimmed
		return entry
	}

	entry.Level = strings.ToLower(stringField(raw, "level"))
	entry.Component = stringField(raw, "component")
	entry.Message = stringField(raw, "message")
	entry.Error = stringField(raw, "error")
	if ts := stringField(raw, "time"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Time = parsed
		}
	}
	for key, value := range raw {
		if reservedKeys[key] {
			continue
		}
		if entry.Fields == nil {
			entry.Fields = make(map[string]string)
		}
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			text = string(value)
		}
		entry.Fields[key] = text
	}
	return entry
}

func stringField(raw map[string]json.RawMessage, key string) string {
	value, ok := raw[key]
	if !ok {
		return ""
	}
	var text string
	if err := json.Unmarshal(value, &text); err != nil {
		return ""
	}
	return text
}

// Format renders an entry as one line of text:
//
//	15:04:05 WARN [views] background refresh failed refresh=queue error=...
func Format(e Entry) string {
	if e.Level == "" && e.Time.IsZero() {
		return e.Message
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		b.WriteString(strings.ToUpper(e.Level))
		b.WriteByte(' ')
	}
	if e.Component != "" {
		b.WriteString("[" + e.Component + "] ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%s", key, e.Fields[key])
	}
	if e.Error != "" {
		b.WriteString(" error=" + e.Error)
	}
	return b.String()
}

// Tail reads the last maxLines of path and parses them. Entries below
// minLevel are dropped; an empty minLevel keeps everything.
func Tail(path string, maxLines int, minLevel string) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	threshold := levelRank(minLevel)
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry := Parse(line)
		if entry.Level != "" && levelRank(entry.Level) < threshold {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func levelRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return 0
	case "debug":
		return 1
	case "info":
		return 2
	case "warn", "warning":
		return 3
	case "error":
		return 4
	case "fatal", "panic":
		return 5
	}
	return 0
}
