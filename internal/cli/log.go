// Package cli implements the stackpkg command-line interface.
//
// The commands resolve and install packages (install, plan), remove them
// (uninstall), inspect the installation (list), publish a directory of
// archives as a registry (serve) and manage the registry metadata cache
// (cache). The CLI is built using cobra and logs through charmbracelet/log.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging and
// --log-format for machine-readable output. One logger is created per
// process and handed to every collaborator.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackpkg/pkg/errors"
)

var logFormatters = map[string]log.Formatter{
	"":       log.TextFormatter,
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

// SetLogFormat switches the logger output format.
func (c *CLI) SetLogFormat(format string) error {
	f, ok := logFormatters[format]
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown log format %q", format)
	}
	c.Logger.SetFormatter(f)
	return nil
}

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Installed 12 packages (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
