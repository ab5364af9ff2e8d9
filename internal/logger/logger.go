package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zerolog for application logging.
type Logger struct {
	zerolog.Logger
	rotator *lumberjack.Logger
	buffer  *LogBuffer
}

// Config holds logger configuration.
type Config struct {
	Level       string
	Format      string // console output: "console" or "json"
	Color       bool   // colorize console output when stdout is a terminal
	FileEnabled bool
	Path        string // log file path
	FileFormat  string // "json" or "console"
	MaxSizeMB   int    // max size in MB before rotation (default: 5)
	MaxBackups  int    // max number of old log files to keep (default: 5)
	MaxAgeDays  int    // max age in days to keep old files (default: 30)
	Compress    bool
}

// New creates a new logger instance writing to stdout and, when enabled, a
// rotating log file.
func New(cfg Config) *Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg Config, stdout io.Writer) *Logger {
	consoleOutput := consoleWriter(cfg.Format, stdout, cfg.Color && isTerminal(stdout))

	buffer := NewLogBuffer(defaultBufferSize)
	writers := []io.Writer{consoleOutput, buffer}
	var rotator *lumberjack.Logger

	if cfg.FileEnabled && cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err == nil {
			maxSize := cfg.MaxSizeMB
			if maxSize <= 0 {
				maxSize = 5
			}
			maxBackups := cfg.MaxBackups
			if maxBackups <= 0 {
				maxBackups = 5
			}
			maxAge := cfg.MaxAgeDays
			if maxAge <= 0 {
				maxAge = 30
			}

			rotator = &lumberjack.Logger{
				Filename:   cfg.Path,
				MaxSize:    maxSize,
				MaxBackups: maxBackups,
				MaxAge:     maxAge,
				Compress:   cfg.Compress,
				LocalTime:  true,
			}

			fileFormat := cfg.FileFormat
			if fileFormat == "" {
				fileFormat = "json"
			}
			writers = append(writers, consoleWriter(fileFormat, rotator, false))
		}
	}

	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	logger := zerolog.New(io.MultiWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger, rotator: rotator, buffer: buffer}
}

// Buffer returns the in-memory buffer of recent entries.
func (l *Logger) Buffer() *LogBuffer {
	return l.buffer
}

func consoleWriter(format string, out io.Writer, color bool) io.Writer {
	if format == "json" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// ParseLevel converts a level name to a zerolog.Level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal", "critical":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithComponent returns a new logger with component field.
func (l *Logger) WithComponent(component string) zerolog.Logger {
	return l.Logger.With().Str("component", component).Logger()
}
