package sink

import (
	"context"
	"log/slog"

	"peerbackup/internal/domain/entity"
	"peerbackup/internal/domain/service"
)

// eventLogSink records reports in the host log as structured entries.
type eventLogSink struct {
	logger *slog.Logger
	prefix string
}

// NewEventLogSink maps severities onto slog levels and prefixes entries with "<prefix> Service".
func NewEventLogSink(logger *slog.Logger, prefix string) service.ReportingSink {
	return &eventLogSink{
		logger: logger.With(slog.String("source", prefix+" Service")),
		prefix: prefix,
	}
}

func (s *eventLogSink) Emit(severity entity.Severity, text string) {
	s.logger.LogAttrs(context.Background(), levelFor(severity), s.prefix+" Service "+text,
		slog.String("severity", severity.String()),
	)
}

func levelFor(severity entity.Severity) slog.Level {
	switch severity {
	case entity.SeverityWarning:
		return slog.LevelWarn
	case entity.SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
