package domain

import (
	"encoding/json"
	"time"
)

const (
	ActivityLeadCreated   = "lead_created"
	ActivityLeadUpdated   = "lead_updated"
	ActivityStatusChanged = "status_changed"
)

type Activity struct {
	ID           int64           `json:"id"`
	LeadID       int64           `json:"lead_id"`
	ActivityType string          `json:"activity_type"`
	Description  string          `json:"description"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type EmailValidation struct {
	LeadID     int64
	Email      string
	Valid      bool
	Confidence int
	Details    map[string]any
}
