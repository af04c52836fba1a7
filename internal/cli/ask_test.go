package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kql-assistant-backend/config"
	"kql-assistant-backend/internal/dto"
	"kql-assistant-backend/internal/filestate"
	"kql-assistant-backend/internal/model"
	"kql-assistant-backend/internal/service"
)

type fakeKQLService struct {
	answer *dto.KQLAnswer
	err    error
	calls  []dto.KQLQueryRequest
}

func (f *fakeKQLService) Answer(_ context.Context, req dto.KQLQueryRequest) (*dto.KQLAnswer, error) {
	f.calls = append(f.calls, req)
	return f.answer, f.err
}

func (f *fakeKQLService) factory() serviceFactory {
	return func() (service.KQLService, func(), error) { return f, func() {}, nil }
}

func newState(t *testing.T) filestate.Manager {
	return filestate.NewManager(filepath.Join(t.TempDir(), "state.json"))
}

func TestRunAsk_NoTargetIsNoop(t *testing.T) {
	svc := &fakeKQLService{}
	var out bytes.Buffer

	err := runAsk(context.Background(), &out, svc.factory(), newState(t), config.KustoConfig{}, askOptions{Question: "q", Cluster: "c"})
	require.NoError(t, err)
	assert.Empty(t, svc.calls)
	assert.Contains(t, out.String(), msgNeedTarget)
}

func TestRunAsk_SuccessRendersAndSavesState(t *testing.T) {
	svc := &fakeKQLService{answer: &dto.KQLAnswer{
		Prompt: "the prompt",
		Query:  "Perf | take 2",
		Table:  timeSeries(),
	}}
	state := newState(t)
	var out bytes.Buffer

	err := runAsk(context.Background(), &out, svc.factory(), state, config.KustoConfig{}, askOptions{
		Question:   "cpu over time",
		Cluster:    "https://c.kusto.windows.net",
		Database:   "db",
		ShowQuery:  true,
		ShowPrompt: true,
		Advanced:   true,
	})
	require.NoError(t, err)

	require.Len(t, svc.calls, 1)
	assert.Equal(t, model.RunSourceCLI, svc.calls[0].Source)
	assert.Equal(t, "db", svc.calls[0].Database)

	text := out.String()
	assert.Contains(t, text, "the prompt")
	assert.Contains(t, text, "Perf | take 2")
	assert.Contains(t, text, "Query Results:")
	assert.Contains(t, text, "Value over Date")

	saved, err := state.LoadState()
	require.NoError(t, err)
	assert.Equal(t, filestate.CLIState{Cluster: "https://c.kusto.windows.net", Database: "db"}, saved)
}

func TestRunAsk_FallsBackToSavedStateThenConfig(t *testing.T) {
	state := newState(t)
	require.NoError(t, state.SaveState(filestate.CLIState{Cluster: "saved-cluster"}))
	svc := &fakeKQLService{answer: &dto.KQLAnswer{Table: timeSeries()}}

	err := runAsk(context.Background(), &bytes.Buffer{}, svc.factory(), state, config.KustoConfig{Cluster: "env-cluster", Database: "env-db"}, askOptions{Question: "q"})
	require.NoError(t, err)
	require.Len(t, svc.calls, 1)
	assert.Equal(t, "saved-cluster", svc.calls[0].Cluster)
	assert.Equal(t, "env-db", svc.calls[0].Database)
}

func TestRunAsk_Absence(t *testing.T) {
	svc := &fakeKQLService{answer: &dto.KQLAnswer{Query: "Perf | take 0"}}
	state := newState(t)
	var out bytes.Buffer

	err := runAsk(context.Background(), &out, svc.factory(), state, config.KustoConfig{Cluster: "c", Database: "d"}, askOptions{Question: "q"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "An error occurred while executing the Kusto query.")

	saved, err := state.LoadState()
	require.NoError(t, err)
	assert.Equal(t, filestate.CLIState{}, saved)
}

func TestRunAsk_ErrorIsReported(t *testing.T) {
	svc := &fakeKQLService{err: errors.New("connection refused")}
	var out bytes.Buffer

	err := runAsk(context.Background(), &out, svc.factory(), newState(t), config.KustoConfig{Cluster: "c", Database: "d"}, askOptions{Question: "q"})
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out.String(), "An error occurred: connection refused")
}

func TestRunAsk_NoTargetDoesNotBuildService(t *testing.T) {
	built := false
	factory := func() (service.KQLService, func(), error) {
		built = true
		return nil, nil, errors.New("OPENAI_API_ENGINE must be set")
	}
	var out bytes.Buffer

	err := runAsk(context.Background(), &out, factory, newState(t), config.KustoConfig{}, askOptions{Question: "q"})
	require.NoError(t, err)
	assert.False(t, built)
	assert.Contains(t, out.String(), msgNeedTarget)
}

func TestRunAsk_ServiceSetupErrorIsReported(t *testing.T) {
	factory := func() (service.KQLService, func(), error) {
		return nil, nil, errors.New("OPENAI_API_ENGINE must be set")
	}
	var out bytes.Buffer

	err := runAsk(context.Background(), &out, factory, newState(t), config.KustoConfig{Cluster: "c", Database: "d"}, askOptions{Question: "q"})
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out.String(), "An error occurred: OPENAI_API_ENGINE must be set")
}
