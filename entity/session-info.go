package entity

import "time"

// SessionInfo is the operator-facing summary of one live funnel session.
type SessionInfo struct {
	ID           string    `json:"id"`
	CurrentStep  string    `json:"current_step"`
	UserName     string    `json:"user_name,omitempty"`
	City         string    `json:"city,omitempty"`
	MessageCount int       `json:"message_count"`
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
}
