package domain

import "time"

// ApplicationStatus is the lifecycle state of a tracked application.
type ApplicationStatus string

const (
	StatusApplied  ApplicationStatus = "applied"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

// IsValid reports whether s is a known status.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusApplied, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Application is a tracked job application record.
type Application struct {
	ID              int64             `json:"id"`
	UserID          string            `json:"user_id"`
	Company         string            `json:"company"`
	Role            string            `json:"role"`
	Status          ApplicationStatus `json:"status"`
	SourceMessageID string            `json:"source_message_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}
