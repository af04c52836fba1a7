package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/dto"
	"kql-assistant-backend/internal/model"
	"kql-assistant-backend/internal/service"
)

type stubGenerator struct {
	query   string
	err     error
	prompts []string
}

func (g *stubGenerator) GenerateQuery(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.query, g.err
}

type executeCall struct {
	cluster, database, query string
}

type stubExecutor struct {
	result *model.QueryResult
	err    error
	calls  []executeCall
}

func (e *stubExecutor) Execute(_ context.Context, cluster, database, query string) (*model.QueryResult, error) {
	e.calls = append(e.calls, executeCall{cluster, database, query})
	return e.result, e.err
}

type captureRecorder struct {
	runs []model.QueryRun
}

func (r *captureRecorder) Record(_ context.Context, run model.QueryRun) {
	r.runs = append(r.runs, run)
}

func twoRowTable() *model.QueryResult {
	return &model.QueryResult{
		Columns: []model.Column{{Name: "Computer", Type: "string"}, {Name: "CounterValue", Type: "real"}},
		Rows: [][]interface{}{
			{"web-01", 97.5},
			{"web-02", 88.0},
		},
	}
}

func defaultConfig() *config.Config {
	return &config.Config{Kusto: config.KustoConfig{Cluster: "https://cfg.kusto.windows.net", Database: "cfgdb"}}
}

func TestKQLService_Answer_Success(t *testing.T) {
	gen := &stubGenerator{query: "Perf | top 10 by CounterValue"}
	exec := &stubExecutor{result: twoRowTable()}
	rec := &captureRecorder{}
	svc := service.NewKQLService(gen, exec, rec, defaultConfig())

	answer, err := svc.Answer(context.Background(), dto.KQLQueryRequest{
		Question: "show top 10 computers by CPU usage",
		RunID:    "run-42",
	})
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "show top 10 computers by CPU usage")
	assert.Equal(t, gen.prompts[0], answer.Prompt)

	require.Len(t, exec.calls, 1)
	assert.Equal(t, executeCall{"https://cfg.kusto.windows.net", "cfgdb", "Perf | top 10 by CounterValue"}, exec.calls[0])

	assert.Equal(t, "run-42", answer.RunID)
	assert.Equal(t, "Perf | top 10 by CounterValue", answer.Query)
	assert.Equal(t, twoRowTable(), answer.Table)

	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.Equal(t, "run-42", run.ID)
	assert.Equal(t, model.RunOutcomeSuccess, run.Outcome)
	assert.Equal(t, 2, run.RowCount)
	assert.Equal(t, model.RunSourceHTTP, run.Source)
	assert.Equal(t, "Perf | top 10 by CounterValue", run.GeneratedQuery)
}

func TestKQLService_Answer_RequestTargetOverridesDefaults(t *testing.T) {
	exec := &stubExecutor{result: twoRowTable()}
	svc := service.NewKQLService(&stubGenerator{query: "Heartbeat | take 5"}, exec, nil, defaultConfig())

	answer, err := svc.Answer(context.Background(), dto.KQLQueryRequest{
		Question: "q",
		Cluster:  "https://other.kusto.windows.net",
		Database: "otherdb",
		Source:   model.RunSourceCLI,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, answer.RunID)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, "https://other.kusto.windows.net", exec.calls[0].cluster)
	assert.Equal(t, "otherdb", exec.calls[0].database)
}

func TestKQLService_Answer_QueryPassedVerbatim(t *testing.T) {
	raw := "// comment the model should not have written\nEvent | where Computer == 'x'; .drop table Perf"
	exec := &stubExecutor{result: twoRowTable()}
	svc := service.NewKQLService(&stubGenerator{query: raw}, exec, nil, defaultConfig())

	_, err := svc.Answer(context.Background(), dto.KQLQueryRequest{Question: "q"})
	require.NoError(t, err)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, raw, exec.calls[0].query)
}

func TestKQLService_Answer_Absence(t *testing.T) {
	rec := &captureRecorder{}
	svc := service.NewKQLService(&stubGenerator{query: "Perf | take 0"}, &stubExecutor{}, rec, defaultConfig())

	answer, err := svc.Answer(context.Background(), dto.KQLQueryRequest{Question: "q"})
	require.NoError(t, err)
	assert.Nil(t, answer.Table)
	assert.Equal(t, "Perf | take 0", answer.Query)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, model.RunOutcomeEmpty, rec.runs[0].Outcome)
	assert.Equal(t, 0, rec.runs[0].RowCount)
}

func TestKQLService_Answer_InputErrorsMakeNoCalls(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		req  dto.KQLQueryRequest
		want error
	}{
		{"empty question", defaultConfig(), dto.KQLQueryRequest{}, service.ErrEmptyQuestion},
		{"no cluster", &config.Config{Kusto: config.KustoConfig{Database: "db"}}, dto.KQLQueryRequest{Question: "q"}, service.ErrMissingCluster},
		{"no database", &config.Config{Kusto: config.KustoConfig{Cluster: "c"}}, dto.KQLQueryRequest{Question: "q"}, service.ErrMissingDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{query: "Perf"}
			exec := &stubExecutor{result: twoRowTable()}
			rec := &captureRecorder{}
			svc := service.NewKQLService(gen, exec, rec, tt.cfg)

			answer, err := svc.Answer(context.Background(), tt.req)
			assert.Nil(t, answer)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, service.IsInputError(err))
			assert.Empty(t, gen.prompts)
			assert.Empty(t, exec.calls)
			assert.Empty(t, rec.runs)
		})
	}
}

func TestKQLService_Answer_GeneratorErrorSkipsExecutor(t *testing.T) {
	genErr := errors.New("401 unauthorized")
	exec := &stubExecutor{result: twoRowTable()}
	rec := &captureRecorder{}
	svc := service.NewKQLService(&stubGenerator{err: genErr}, exec, rec, defaultConfig())

	answer, err := svc.Answer(context.Background(), dto.KQLQueryRequest{Question: "q"})
	assert.Nil(t, answer)
	assert.Same(t, genErr, err)
	assert.Empty(t, exec.calls)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, model.RunOutcomeError, rec.runs[0].Outcome)
	assert.Equal(t, "401 unauthorized", rec.runs[0].Error)
}

func TestKQLService_Answer_ExecutorErrorPropagatesUnmodified(t *testing.T) {
	execErr := errors.New("dial tcp: connection refused")
	rec := &captureRecorder{}
	svc := service.NewKQLService(&stubGenerator{query: "Perf"}, &stubExecutor{err: execErr}, rec, defaultConfig())

	answer, err := svc.Answer(context.Background(), dto.KQLQueryRequest{Question: "q"})
	assert.Nil(t, answer)
	assert.Same(t, execErr, err)
	assert.False(t, service.IsInputError(err))

	require.Len(t, rec.runs, 1)
	assert.Equal(t, model.RunOutcomeError, rec.runs[0].Outcome)
	assert.Equal(t, "Perf", rec.runs[0].GeneratedQuery)
}
