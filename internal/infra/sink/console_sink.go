// Package sink provides the reporting sinks that render worker reports.
package sink

import (
	"fmt"
	"io"

	"peerbackup/internal/domain/entity"
	"peerbackup/internal/domain/service"
)

// consoleSink writes one line per message for interactive runs.
type consoleSink struct {
	w      io.Writer
	prefix string
}

// NewConsoleSink writes "<prefix> <text>" lines to w. Severity is not rendered,
// matching what an operator watching the console expects.
func NewConsoleSink(w io.Writer, prefix string) service.ReportingSink {
	return &consoleSink{w: w, prefix: prefix}
}

func (s *consoleSink) Emit(_ entity.Severity, text string) {
	// A console that cannot be written to has nowhere to report the failure.
	_, _ = fmt.Fprintf(s.w, "%s %s\n", s.prefix, text)
}
