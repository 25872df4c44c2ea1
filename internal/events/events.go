package events

import (
	"encoding/json"
	"time"
)

// Event types streamed on /events. Version 1 payloads throughout.
const (
	JobQueued    = "job_queued"
	JobStarted   = "job_started"
	JobCompleted = "job_completed"
	JobFailed    = "job_failed"
	LeadSaved    = "lead_saved"
	LeadUpdated  = "lead_status_changed"
	LeadDeleted  = "lead_deleted"
	ConfigSaved  = "config_saved"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Publisher is what the pipeline and handlers need from a Hub.
type Publisher interface {
	Publish(evt string)
}

// Nop drops everything.
type Nop struct{}

func (Nop) Publish(string) {}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err == nil {
			raw = b
		}
	}
	b, _ := json.Marshal(Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	})
	return string(b)
}

type JobData struct {
	JobID      int64  `json:"job_id"`
	Query      string `json:"query"`
	Source     string `json:"source_type"`
	LeadsFound int    `json:"leads_found,omitempty"`
	Error      string `json:"error,omitempty"`
}

type LeadData struct {
	LeadID  int64  `json:"lead_id"`
	URL     string `json:"url,omitempty"`
	Score   int    `json:"lead_score,omitempty"`
	Status  string `json:"status,omitempty"`
	Created bool   `json:"created,omitempty"`
}
