package entity

import "time"

// AuditTimeLayout renders audit timestamps as sortable UTC text, second precision.
const AuditTimeLayout = "20060102150405"

// Audit actions written by the credential store.
const (
	AuditActionCreateAccount = "Create Account"
)

// AuditEntry is one immutable row of the audit trail.
type AuditEntry struct {
	ActorUserID int
	Timestamp   time.Time
	Action      string
	Details     string
}

// FormatAuditTime converts t to the persisted audit timestamp text.
func FormatAuditTime(t time.Time) string {
	return t.UTC().Format(AuditTimeLayout)
}

// ParseAuditTime is the inverse of FormatAuditTime.
func ParseAuditTime(s string) (time.Time, error) {
	return time.ParseInLocation(AuditTimeLayout, s, time.UTC)
}
