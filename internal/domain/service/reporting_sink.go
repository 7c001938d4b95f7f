package service

import "peerbackup/internal/domain/entity"

// ReportingSink renders severity-tagged messages to a console or host log.
// Emit is called from a single goroutine, in report order.
type ReportingSink interface {
	Emit(severity entity.Severity, text string)
}
