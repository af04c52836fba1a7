package service

import (
	"context"
	"time"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/audit"
	"kql-assistant-backend/internal/dto"
	"kql-assistant-backend/internal/kusto"
	"kql-assistant-backend/internal/model"
	"kql-assistant-backend/internal/observability"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// KQLService runs the question -> prompt -> generated query -> result chain.
type KQLService interface {
	Answer(ctx context.Context, req dto.KQLQueryRequest) (*dto.KQLAnswer, error)
}

type kqlService struct {
	generator QueryGenerator
	executor  kusto.QueryExecutor
	recorder  audit.Recorder
	defaults  config.KustoConfig
}

func NewKQLService(generator QueryGenerator, executor kusto.QueryExecutor, recorder audit.Recorder, cfg *config.Config) KQLService {
	if recorder == nil {
		recorder = audit.NopRecorder()
	}
	return &kqlService{
		generator: generator,
		executor:  executor,
		recorder:  recorder,
		defaults:  cfg.Kusto,
	}
}

func (s *kqlService) Answer(ctx context.Context, req dto.KQLQueryRequest) (*dto.KQLAnswer, error) {
	cluster := firstNonEmpty(req.Cluster, s.defaults.Cluster)
	database := firstNonEmpty(req.Database, s.defaults.Database)

	if req.Question == "" {
		return nil, &InputError{Err: ErrEmptyQuestion}
	}
	if cluster == "" {
		return nil, &InputError{Err: ErrMissingCluster}
	}
	if database == "" {
		return nil, &InputError{Err: ErrMissingDatabase}
	}

	answer := &dto.KQLAnswer{
		RunID:    firstNonEmpty(req.RunID, uuid.NewString()),
		Cluster:  cluster,
		Database: database,
	}
	logger := log.With().Str("run_id", answer.RunID).Str("cluster", cluster).Str("database", database).Logger()
	logger.Info().Str("question", req.Question).Msg("Processing KQL question")

	started := time.Now()
	run := model.QueryRun{
		ID:       answer.RunID,
		Time:     started.UTC(),
		Source:   firstNonEmpty(req.Source, model.RunSourceHTTP),
		Question: req.Question,
		Cluster:  cluster,
		Database: database,
	}

	prompt, err := BuildPrompt(req.Question)
	if err != nil {
		return nil, err
	}
	answer.Prompt = prompt

	stageStart := time.Now()
	query, err := s.generator.GenerateQuery(ctx, prompt)
	observability.ObserveStage("generate", time.Since(stageStart))
	if err != nil {
		logger.Error().Err(err).Str("stage", "generate").Msg("Query generation failed")
		s.finish(ctx, run, started, model.RunOutcomeError, nil, err)
		return nil, err
	}
	answer.Query = query
	run.GeneratedQuery = query

	stageStart = time.Now()
	table, err := s.executor.Execute(ctx, cluster, database, query)
	observability.ObserveStage("execute", time.Since(stageStart))
	if err != nil {
		logger.Error().Err(err).Str("stage", "execute").Msg("Query execution failed")
		s.finish(ctx, run, started, model.RunOutcomeError, nil, err)
		return nil, err
	}
	answer.Table = table

	outcome := model.RunOutcomeSuccess
	if table == nil {
		outcome = model.RunOutcomeEmpty
	}
	s.finish(ctx, run, started, outcome, table, nil)
	logger.Info().Str("outcome", outcome).Int("rows", table.RowCount()).Msg("KQL question answered")
	return answer, nil
}

func (s *kqlService) finish(ctx context.Context, run model.QueryRun, started time.Time, outcome string, table *model.QueryResult, err error) {
	run.Outcome = outcome
	run.RowCount = table.RowCount()
	run.DurationMs = time.Since(started).Milliseconds()
	if err != nil {
		run.Error = err.Error()
	}
	observability.ObservePipelineRun(outcome)
	s.recorder.Record(ctx, run)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
