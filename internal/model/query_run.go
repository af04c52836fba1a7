package model

import "time"

const (
	RunOutcomeSuccess = "success"
	RunOutcomeEmpty   = "empty"
	RunOutcomeError   = "error"

	RunSourceHTTP = "http"
	RunSourceCLI  = "cli"
)

// QueryRun is the audit record of one pipeline invocation.
type QueryRun struct {
	ID             string    `json:"id"`
	Time           time.Time `json:"@timestamp"`
	Source         string    `json:"source"`
	Question       string    `json:"question"`
	Cluster        string    `json:"cluster"`
	Database       string    `json:"database"`
	GeneratedQuery string    `json:"generated_query"`
	Outcome        string    `json:"outcome"`
	RowCount       int       `json:"row_count"`
	DurationMs     int64     `json:"duration_ms"`
	Error          string    `json:"error,omitempty"`
}
