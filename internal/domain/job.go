package domain

import "time"

type SourceType string

const (
	SourceURL    SourceType = "url"
	SourceSearch SourceType = "search"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ScrapingJob tracks one run of the pipeline. It is never retried.
type ScrapingJob struct {
	ID           int64      `json:"id"`
	Query        string     `json:"query"`
	SourceType   SourceType `json:"source_type"`
	Status       JobStatus  `json:"status"`
	LeadsFound   int        `json:"leads_found"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func (j ScrapingJob) Done() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}
