package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kql-assistant-backend/internal/audit"
	"kql-assistant-backend/internal/model"
)

// captureSink keeps ctx.Err() as observed during StoreRuns.
type captureSink struct {
	name   string
	err    error
	runs   []model.QueryRun
	ctxErr error
	stored bool
}

func (s *captureSink) Name() string { return s.name }

func (s *captureSink) StoreRuns(ctx context.Context, runs []model.QueryRun) error {
	s.ctxErr = ctx.Err()
	s.stored = true
	s.runs = append(s.runs, runs...)
	return s.err
}

func TestRecorder_FansOutEvenWhenASinkFails(t *testing.T) {
	failing := &captureSink{name: "kafka", err: errors.New("broker down")}
	healthy := &captureSink{name: "elasticsearch"}
	rec := audit.NewRecorder(failing, healthy)

	rec.Record(context.Background(), model.QueryRun{ID: "run-1", Outcome: model.RunOutcomeSuccess})

	require.Len(t, failing.runs, 1)
	require.Len(t, healthy.runs, 1)
	assert.Equal(t, "run-1", healthy.runs[0].ID)
}

func TestRecorder_IgnoresCallerCancellation(t *testing.T) {
	sink := &captureSink{name: "timescaledb"}
	rec := audit.NewRecorder(sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Record(ctx, model.QueryRun{ID: "run-2"})

	require.True(t, sink.stored)
	assert.NoError(t, sink.ctxErr)
}

func TestNopRecorder(t *testing.T) {
	assert.NotPanics(t, func() {
		audit.NewRecorder().Record(context.Background(), model.QueryRun{})
	})
}
