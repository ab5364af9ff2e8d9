package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		"info":     zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"CRITICAL": zerolog.FatalLevel,
		"bogus":    zerolog.InfoLevel,
		"":         zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(Config{Level: "debug", Format: "json"}, &buf)
	l.WithComponent("pipeline").Debug().Str("requestId", "42").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "pipeline", entry["component"])
	assert.Equal(t, "42", entry["requestId"])
	assert.Contains(t, entry, "time")
}

func TestNew_ConsoleWithoutTerminalHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(Config{Level: "info", Color: true}, &buf)
	l.Info().Msg("plain")

	out := buf.String()
	assert.Contains(t, out, "plain")
	assert.False(t, strings.Contains(out, "\x1b["), "non-terminal output must not contain ANSI codes")
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(Config{Level: "warn", Format: "json"}, &buf)
	l.Info().Msg("dropped")
	assert.Empty(t, buf.String())
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "overfiltrr.log")
	var buf bytes.Buffer
	l := newLogger(Config{Level: "info", FileEnabled: true, Path: path}, &buf)
	l.Info().Str("category", "Anime").Msg("categorized")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "Anime", entry["category"])
}

func TestNew_FileDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "off.log")
	l := newLogger(Config{Level: "info", FileEnabled: false, Path: path}, &bytes.Buffer{})
	l.Info().Msg("console only")
	require.NoError(t, l.Close())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLogBuffer_Recent(t *testing.T) {
	l := newLogger(Config{Level: "debug", Format: "json"}, &bytes.Buffer{})
	l.Debug().Msg("one")
	l.WithComponent("api").Info().Int("status", 202).Msg("two")
	l.Warn().Msg("three")

	all := l.Buffer().Recent(0, "")
	require.Len(t, all, 3)
	assert.Equal(t, "one", all[0].Message)
	assert.Equal(t, "api", all[1].Component)
	assert.Equal(t, float64(202), all[1].Fields["status"])

	assert.Len(t, l.Buffer().Recent(0, "info"), 2)

	last := l.Buffer().Recent(1, "")
	require.Len(t, last, 1)
	assert.Equal(t, "three", last[0].Message)
}

func TestLogBuffer_IgnoresMalformed(t *testing.T) {
	b := NewLogBuffer(10)
	n, err := b.Write([]byte("not json"))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Empty(t, b.Recent(0, ""))
}
