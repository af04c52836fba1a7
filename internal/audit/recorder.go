package audit

import (
	"context"
	"time"

	"kql-assistant-backend/internal/model"
	"kql-assistant-backend/internal/observability"

	"github.com/rs/zerolog/log"
)

const recordTimeout = 5 * time.Second

// Sink persists query runs somewhere outside the process.
type Sink interface {
	Name() string
	StoreRuns(ctx context.Context, runs []model.QueryRun) error
}

// Recorder accepts finished runs. Recording never fails from the caller's
// point of view; sink errors are logged and counted.
type Recorder interface {
	Record(ctx context.Context, run model.QueryRun)
}

type fanOutRecorder struct {
	sinks []Sink
}

func NewRecorder(sinks ...Sink) Recorder {
	if len(sinks) == 0 {
		return NopRecorder()
	}
	return &fanOutRecorder{sinks: sinks}
}

func (r *fanOutRecorder) Record(ctx context.Context, run model.QueryRun) {
	// Detach from request cancellation so a client hang-up still gets audited.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	runs := []model.QueryRun{run}
	for _, s := range r.sinks {
		if err := s.StoreRuns(ctx, runs); err != nil {
			observability.ObserveAuditFailure(s.Name())
			log.Error().Err(err).Str("sink", s.Name()).Str("run_id", run.ID).Msg("Failed to record query run")
		}
	}
}

type nopRecorder struct{}

func NopRecorder() Recorder { return nopRecorder{} }

func (nopRecorder) Record(context.Context, model.QueryRun) {}
