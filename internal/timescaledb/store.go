package timescaledb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

const sinkName = "timescaledb"

const (
	runsTableName     = "kql_query_runs"
	colTime           = "time"
	colRunID          = "run_id"
	colSource         = "source"
	colCluster        = "cluster"
	colDatabase       = "database"
	colOutcome        = "outcome"
	colRowCount       = "row_count"
	colDurationMs     = "duration_ms"
	colQuestion       = "question"
	colGeneratedQuery = "generated_query"
	colError          = "error"
)

var runColumns = []string{
	colTime, colRunID, colSource, colCluster, colDatabase, colOutcome,
	colRowCount, colDurationMs, colQuestion, colGeneratedQuery, colError,
}

type RunStore struct {
	pool      *pgxpool.Pool
	tableName string
}

// ProvideRunStore opens the pool, verifies it and makes sure the runs
// hypertable exists.
func ProvideRunStore(lc fx.Lifecycle, cfg *config.Config) (*RunStore, *pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.TimescaleDB.DSN)
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse TimescaleDB DSN")
		return nil, nil, fmt.Errorf("invalid TimescaleDB DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Error().Err(err).Msg("Unable to create connection pool to TimescaleDB")
		return nil, nil, fmt.Errorf("failed to connect to TimescaleDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Error().Err(err).Msg("Failed to ping TimescaleDB")
		return nil, nil, fmt.Errorf("failed to ping TimescaleDB: %w", err)
	}
	log.Info().Msg("TimescaleDB connection pool created and verified.")

	store := &RunStore{
		pool:      pool,
		tableName: runsTableName,
	}

	setupCtx, cancelSetup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelSetup()
	if err := store.ensureHypertable(setupCtx); err != nil {
		pool.Close()
		log.Error().Err(err).Msg("Failed to ensure TimescaleDB hypertable exists")
		return nil, nil, fmt.Errorf("failed ensuring hypertable: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing TimescaleDB connection pool...")
			store.Close()
			return nil
		},
	})

	return store, pool, nil
}

func (s *RunStore) ensureHypertable(ctx context.Context) error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s TIMESTAMPTZ NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s INTEGER NOT NULL DEFAULT 0,
			%s BIGINT NOT NULL DEFAULT 0,
			%s TEXT,
			%s TEXT,
			%s TEXT
		);`,
		s.tableName, colTime, colRunID, colSource, colCluster, colDatabase, colOutcome,
		colRowCount, colDurationMs, colQuestion, colGeneratedQuery, colError)

	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create base table %s: %w", s.tableName, err)
	}
	log.Info().Str("table", s.tableName).Msg("Ensured base table exists.")

	isHypertable := lookupHypertable(ctx, s.pool, s.tableName)

	if !isHypertable {
		log.Info().Str("table", s.tableName).Msg("Table is not a hypertable, attempting to create...")
		if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS timescaledb;"); err != nil {
			log.Warn().Err(err).Msg("Failed to ensure timescaledb extension exists (permission issue?). Trying to proceed...")
		}

		createHyperSQL := fmt.Sprintf(
			"SELECT create_hypertable('%s', '%s', if_not_exists => TRUE, chunk_time_interval => INTERVAL '1 day');",
			s.tableName,
			colTime,
		)
		_, err := s.pool.Exec(ctx, createHyperSQL)
		if err != nil && !strings.Contains(err.Error(), "already a hypertable") {
			return fmt.Errorf("failed to create hypertable %s: %w", s.tableName, err)
		}
		log.Info().Str("table", s.tableName).Msg("Successfully ensured hypertable.")
	}

	indexSQL := fmt.Sprintf(`
        CREATE INDEX IF NOT EXISTS idx_%s_outcome_time ON %s (outcome, time DESC);
        CREATE INDEX IF NOT EXISTS idx_%s_run_id ON %s (run_id);
    `, s.tableName, s.tableName, s.tableName, s.tableName)
	if _, err := s.pool.Exec(ctx, indexSQL); err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes on runs table (continuing)")
	}

	return nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// lookupHypertable reports whether table is already a hypertable. A failed
// lookup is logged and treated as "not yet".
func lookupHypertable(ctx context.Context, q rowQuerier, table string) bool {
	checkHyperSQL := `SELECT EXISTS (
        SELECT 1 FROM timescaledb_information.hypertables WHERE hypertable_name = $1
    );`
	var isHypertable bool
	if err := q.QueryRow(ctx, checkHyperSQL, table).Scan(&isHypertable); err != nil {
		log.Warn().Err(err).Str("table", table).Msg("Hypertable lookup failed, treating table as plain")
		return false
	}
	return isHypertable
}

func (s *RunStore) Name() string { return sinkName }

func (s *RunStore) StoreRuns(ctx context.Context, runs []model.QueryRun) error {
	if len(runs) == 0 {
		return nil
	}

	source := pgx.CopyFromSlice(len(runs), func(i int) ([]interface{}, error) {
		return runRow(runs[i]), nil
	})

	copyCount, err := s.pool.CopyFrom(ctx, pgx.Identifier{s.tableName}, runColumns, source)
	if err != nil {
		log.Error().Err(err).Msg("Failed to bulk insert query runs into TimescaleDB")
		return fmt.Errorf("timescaledb copyfrom failed: %w", err)
	}

	if int(copyCount) != len(runs) {
		log.Warn().Int64("inserted", copyCount).Int("expected", len(runs)).Msg("TimescaleDB CopyFrom run count mismatch")
	} else {
		log.Debug().Int64("count", copyCount).Msg("Successfully inserted query runs into TimescaleDB")
	}
	return nil
}

// runRow orders a run's fields to match runColumns. Empty optional text is
// stored as NULL.
func runRow(r model.QueryRun) []interface{} {
	return []interface{}{
		r.Time, r.ID, r.Source, r.Cluster, r.Database, r.Outcome,
		r.RowCount, r.DurationMs, nullable(r.Question), nullable(r.GeneratedQuery), nullable(r.Error),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// PurgeOlderThan deletes runs recorded more than days ago and reports how many
// rows went away.
func (s *RunStore) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("retention days must be positive, got %d", days)
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s < $1", s.tableName, colTime), cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging runs older than %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

func (s *RunStore) Close() {
	s.pool.Close()
}
