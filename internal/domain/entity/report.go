package entity

import "peerbackup/internal/domain/lifecycle"

// Severity tags a message delivered to a reporting sink.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	return string(s)
}

// IsValid checks if the Severity is a valid value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError:
		return true
	default:
		return false
	}
}

// WorkerReport is one unit of log and state information flowing from the
// background worker to the reporting sink. Empty log fields are not emitted.
type WorkerReport struct {
	LogMessage string
	LogWarning string
	LogError   string

	// ServiceState is applied only when SetServiceState is true.
	ServiceState    lifecycle.State
	SetServiceState bool
}

// Info builds a report carrying a single informational message.
func Info(msg string) WorkerReport {
	return WorkerReport{LogMessage: msg}
}

// Warning builds a report carrying a single warning.
func Warning(msg string) WorkerReport {
	return WorkerReport{LogWarning: msg}
}

// Failure builds a report carrying a single error message.
func Failure(msg string) WorkerReport {
	return WorkerReport{LogError: msg}
}

// Messages returns the populated log fields in delivery order: info, warning, error.
func (r WorkerReport) Messages() []ReportMessage {
	msgs := make([]ReportMessage, 0, 3)
	if r.LogMessage != "" {
		msgs = append(msgs, ReportMessage{Severity: SeverityInfo, Text: r.LogMessage})
	}
	if r.LogWarning != "" {
		msgs = append(msgs, ReportMessage{Severity: SeverityWarning, Text: r.LogWarning})
	}
	if r.LogError != "" {
		msgs = append(msgs, ReportMessage{Severity: SeverityError, Text: r.LogError})
	}

	return msgs
}

// ReportMessage is a single severity-tagged line of a WorkerReport.
type ReportMessage struct {
	Severity Severity
	Text     string
}
