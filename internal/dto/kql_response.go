package dto

import "kql-assistant-backend/internal/model"

// KQLAnswer is what one pipeline run produced. Table is nil when the store
// returned no primary result.
type KQLAnswer struct {
	RunID    string
	Cluster  string
	Database string
	Prompt   string
	Query    string
	Table    *model.QueryResult
}

type KQLTriggerResponse struct {
	KQLQuery    string                   `json:"kql_query"`
	KustoResult []map[string]interface{} `json:"kusto_result"`
}
