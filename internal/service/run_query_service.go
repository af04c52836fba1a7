package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kql-assistant-backend/internal/dto"
	"kql-assistant-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	defaultRunPageSize = 50
	maxRunPageSize     = 1000
	defaultRunInterval = "1 hour"
)

type RunQueryService interface {
	SearchRuns(ctx context.Context, req dto.RunSearchRequest) (*dto.RunSearchResponse, error)
	GetRunStats(ctx context.Context, req dto.RunStatsRequest) (*dto.RunStatsResponse, error)
}

type runQueryService struct {
	searchRepo repository.RunSearchRepository
	statsRepo  repository.RunStatsRepository
}

// NewRunQueryService accepts nil repositories; the matching query then
// reports ErrAuditDisabled.
func NewRunQueryService(searchRepo repository.RunSearchRepository, statsRepo repository.RunStatsRepository) RunQueryService {
	return &runQueryService{
		searchRepo: searchRepo,
		statsRepo:  statsRepo,
	}
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return &InputError{Err: errors.New("startTime and endTime are required")}
	}
	if end.Before(start) {
		return &InputError{Err: errors.New("endTime cannot be before startTime")}
	}
	return nil
}

func (s *runQueryService) SearchRuns(ctx context.Context, req dto.RunSearchRequest) (*dto.RunSearchResponse, error) {
	if s.searchRepo == nil {
		return nil, ErrAuditDisabled
	}
	if err := validateRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if req.Size <= 0 || req.Size > maxRunPageSize {
		req.Size = defaultRunPageSize
	}

	log.Info().
		Time("start_time", req.StartTime).
		Time("end_time", req.EndTime).
		Str("outcome", req.Outcome).
		Int("size", req.Size).
		Msg("Searching query runs")

	return s.searchRepo.Search(ctx, req)
}

func (s *runQueryService) GetRunStats(ctx context.Context, req dto.RunStatsRequest) (*dto.RunStatsResponse, error) {
	if s.statsRepo == nil {
		return nil, ErrAuditDisabled
	}
	if err := validateRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if req.Interval == "" {
		req.Interval = defaultRunInterval
	}
	if !dto.RunStatsIntervals[req.Interval] {
		return nil, &InputError{Err: fmt.Errorf("invalid interval: %s", req.Interval)}
	}

	log.Info().
		Time("start_time", req.StartTime).
		Time("end_time", req.EndTime).
		Str("interval", req.Interval).
		Msg("Aggregating query runs")

	return s.statsRepo.GetRunStats(ctx, req)
}
