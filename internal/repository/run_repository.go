package repository

import (
	"context"

	"kql-assistant-backend/internal/dto"
)

// RunSearchRepository lists recorded query runs.
type RunSearchRepository interface {
	Search(ctx context.Context, req dto.RunSearchRequest) (*dto.RunSearchResponse, error)
}

// RunStatsRepository aggregates recorded query runs over time.
type RunStatsRepository interface {
	GetRunStats(ctx context.Context, req dto.RunStatsRequest) (*dto.RunStatsResponse, error)
}

// RunPurger removes recorded runs past the retention window.
type RunPurger interface {
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}
