package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// TimeFormat is the timestamp layout of every log line.
const TimeFormat = "2006/01/02 15:04:05"

// ParseLevel maps a LOG_LEVEL value such as "debug" or "INFO" to a zerolog level.
// An empty value means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
	return l, nil
}

// New creates a console logger that is safe for concurrent use. Debug and
// info lines go to stdout, warnings and errors to stderr. An unknown level
// falls back to info.
func New(stdout, stderr io.Writer, level string) zerolog.Logger {
	l, err := ParseLevel(level)
	if err != nil {
		l = zerolog.InfoLevel
	}

	writer := splitWriter{
		out: console(stdout),
		err: console(stderr),
	}

	return zerolog.New(writer).Level(l).With().Timestamp().Logger()
}

// Discard returns a logger that drops everything.
func Discard() zerolog.Logger {
	return zerolog.Nop()
}

// WithRunID returns a context carrying logger tagged with the run ID.
func WithRunID(ctx context.Context, logger zerolog.Logger, runID string) context.Context {
	return logger.With().Str("run_id", runID).Logger().WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or fallback if there is none.
func FromContext(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return fallback
}

func console(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: zerolog.SyncWriter(w), NoColor: true, TimeFormat: TimeFormat}
}

// splitWriter routes warnings and errors to err and everything else to out.
type splitWriter struct {
	out io.Writer
	err io.Writer
}

func (w splitWriter) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

func (w splitWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.WarnLevel && level != zerolog.NoLevel {
		return w.err.Write(p)
	}
	return w.out.Write(p)
}
