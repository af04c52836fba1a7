package timescaledb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"kql-assistant-backend/internal/dto"
	"kql-assistant-backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type runStatsRepository struct {
	pool     *pgxpool.Pool
	runTable string
}

func NewRunStatsRepository(pool *pgxpool.Pool) (repository.RunStatsRepository, error) {
	if pool == nil {
		return nil, errors.New("TimescaleDB connection pool is required for RunStatsRepository")
	}
	return &runStatsRepository{
		pool:     pool,
		runTable: runsTableName,
	}, nil
}

func buildStatsQuery(table string, req dto.RunStatsRequest) (string, []interface{}, error) {
	if !dto.RunStatsIntervals[req.Interval] {
		return "", nil, fmt.Errorf("invalid interval: %s", req.Interval)
	}
	query := fmt.Sprintf(
		"SELECT time_bucket($1::interval, %s) AS bucket, %s, COUNT(*) AS runs, COALESCE(AVG(%s), 0) AS avg_duration "+
			"FROM %s WHERE %s >= $2 AND %s < $3 GROUP BY bucket, %s ORDER BY bucket ASC",
		colTime, colOutcome, colDurationMs, table, colTime, colTime, colOutcome)
	return query, []interface{}{req.Interval, req.StartTime, req.EndTime}, nil
}

func (r *runStatsRepository) GetRunStats(ctx context.Context, req dto.RunStatsRequest) (*dto.RunStatsResponse, error) {
	querySQL, args, err := buildStatsQuery(r.runTable, req)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("query", querySQL).Interface("args", args).Msg("Executing TimescaleDB run stats query")

	rows, err := r.pool.Query(ctx, querySQL, args...)
	if err != nil {
		log.Error().Err(err).Str("query", querySQL).Msg("Failed to execute run stats query")
		return nil, fmt.Errorf("run stats query failed: %w", err)
	}
	defer rows.Close()

	seriesMap := make(map[string][]dto.RunStatsPoint)
	for rows.Next() {
		var bucket time.Time
		var outcome string
		var count int64
		var avg float64
		if err := rows.Scan(&bucket, &outcome, &count, &avg); err != nil {
			log.Error().Err(err).Msg("Failed to scan run stats row")
			continue
		}
		seriesMap[outcome] = append(seriesMap[outcome], dto.RunStatsPoint{
			Timestamp:     bucket.UnixMilli(),
			Count:         count,
			AvgDurationMs: avg,
		})
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error iterating run stats rows")
		return nil, fmt.Errorf("failed iterating query results: %w", err)
	}

	return toStatsResponse(seriesMap), nil
}

func toStatsResponse(seriesMap map[string][]dto.RunStatsPoint) *dto.RunStatsResponse {
	response := &dto.RunStatsResponse{
		Series: make([]dto.RunStatsSeries, 0, len(seriesMap)),
	}
	for outcome, data := range seriesMap {
		response.Series = append(response.Series, dto.RunStatsSeries{Outcome: outcome, Data: data})
	}
	sort.Slice(response.Series, func(i, j int) bool {
		return response.Series[i].Outcome < response.Series[j].Outcome
	})
	return response
}
