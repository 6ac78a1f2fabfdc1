// Package logging builds the structured JSON logger shared by the HTTP layer,
// migrations and tracing setup.
package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a JSON logger writing one object per line to w.
// Timestamps are rendered in loc; a nil loc means UTC.
func New(w io.Writer, loc *time.Location) *log.Logger {
	if loc == nil {
		loc = time.UTC
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		TimeFunction: func(t time.Time) time.Time {
			return t.In(loc)
		},
		Formatter: log.JSONFormatter,
		Level:     log.DebugLevel,
	})
}
