package dto

// KQLQueryRequest is one question to run through the pipeline. Cluster and
// Database override the configured defaults when set.
type KQLQueryRequest struct {
	Question string
	Cluster  string
	Database string
	Source   string // "http" | "cli"
	RunID    string // optional, generated when empty
}

// KQLTriggerBody is the accepted JSON/form body of the HTTP trigger.
type KQLTriggerBody struct {
	NLQuery string `json:"nlquery" form:"nlquery"`
}
