// Package cli implements the archlens command-line interface.
//
// The commands scan a Python source tree once per invocation and then
// report on it:
//   - scan: summarize modules, third-party packages and skipped files
//   - view: draw a configured architecture view as SVG, PDF, PNG, DOT or JSON
//   - modules: tabulate modules by lines of code or churn
//   - churn: rank modules or files by churn mined from git history
//   - serve: serve views and reports over HTTP
//   - snapshots: list, compare and delete stored scans
//   - cache: clear or locate the import and artifact cache
//
// Configuration is read from archlens.toml (see package config). Loggers
// travel through the command context; user-facing output goes to stdout and
// logs to stderr.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with timestamps like
// "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts timing an operation.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered top-level (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
