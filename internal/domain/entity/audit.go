package entity

import "time"

// AuditEntry is one authentication event appended to the audit log.
type AuditEntry struct {
	UserID    string         `json:"userId,omitempty"`
	Email     string         `json:"email,omitempty"`
	Action    string         `json:"action"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
