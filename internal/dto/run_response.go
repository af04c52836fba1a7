package dto

import "kql-assistant-backend/internal/model"

type RunSearchResponse struct {
	Runs       []model.QueryRun `json:"runs"`
	TotalCount int64            `json:"totalCount"`
}

type RunStatsPoint struct {
	Timestamp     int64   `json:"timestamp"` // epoch ms
	Count         int64   `json:"count"`
	AvgDurationMs float64 `json:"avgDurationMs"`
}

// RunStatsSeries holds one series per outcome.
type RunStatsSeries struct {
	Outcome string          `json:"outcome"`
	Data    []RunStatsPoint `json:"data"`
}

type RunStatsResponse struct {
	Series []RunStatsSeries `json:"series"`
}
