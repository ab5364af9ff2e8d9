package logger

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/overfiltrr/overfiltrr/internal/ringbuf"
)

const defaultBufferSize = 500

// LogEntry represents a parsed log entry.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LogBuffer implements io.Writer and keeps the most recent log entries in
// memory for the logs endpoint.
type LogBuffer struct {
	buffer *ringbuf.Buffer[LogEntry]
}

// NewLogBuffer creates a log buffer holding up to size entries.
func NewLogBuffer(size int) *LogBuffer {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &LogBuffer{buffer: ringbuf.New[LogEntry](size)}
}

// Write implements io.Writer. It receives JSON log entries from zerolog.
func (b *LogBuffer) Write(p []byte) (n int, err error) {
	n = len(p)

	entry, parseErr := parseLogEntry(p)
	if parseErr != nil {
		return n, nil //nolint:nilerr // malformed entries are dropped
	}

	b.buffer.Push(entry)
	return n, nil
}

// Recent returns up to limit entries at or above minLevel, oldest first. A
// non-positive limit returns every matching entry.
func (b *LogBuffer) Recent(limit int, minLevel string) []LogEntry {
	all := b.buffer.All()
	threshold := zerolog.TraceLevel
	if minLevel != "" {
		threshold = ParseLevel(minLevel)
	}

	out := make([]LogEntry, 0, len(all))
	for _, e := range all {
		lvl, err := zerolog.ParseLevel(e.Level)
		if err == nil && lvl < threshold {
			continue
		}
		out = append(out, e)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// parseLogEntry parses a zerolog JSON entry into a LogEntry.
func parseLogEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{
		Fields: make(map[string]any),
	}

	if ts, ok := raw["time"].(string); ok {
		entry.Timestamp = ts
		delete(raw, "time")
	}
	if level, ok := raw["level"].(string); ok {
		entry.Level = level
		delete(raw, "level")
	}
	if component, ok := raw["component"].(string); ok {
		entry.Component = component
		delete(raw, "component")
	}
	if msg, ok := raw["message"].(string); ok {
		entry.Message = msg
		delete(raw, "message")
	}

	for k, v := range raw {
		entry.Fields[k] = v
	}

	return entry, nil
}
