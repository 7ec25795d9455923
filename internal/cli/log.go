package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logFormats maps --log-format values to charmbracelet/log formatters. The
// structured formats are meant for "serve" behind a log collector.
var logFormats = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          appName,
	})
}

// setLogFormat switches l to the named formatter.
func setLogFormat(l *log.Logger, name string) error {
	f, ok := logFormats[name]
	if !ok {
		return fmt.Errorf("unknown log format %q (want text, json or logfmt)", name)
	}
	l.SetFormatter(f)
	if f != log.TextFormatter {
		// Collectors stamp lines themselves; RFC 3339 keeps ours sortable.
		l.SetTimeFormat(time.RFC3339)
	}
	return nil
}

// progress measures one step and reports it at debug level.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Debug(msg, append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
