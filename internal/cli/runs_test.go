package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kql-assistant-backend/internal/model"
)

type fakeConsumer struct {
	runs      []*model.QueryRun
	errs      []error
	committed int
	cancel    context.CancelFunc
}

func (f *fakeConsumer) FetchRun(ctx context.Context) (*model.QueryRun, kafka.Message, error) {
	if len(f.runs) == 0 {
		f.cancel()
		return nil, kafka.Message{}, ctx.Err()
	}
	run, err := f.runs[0], f.errs[0]
	f.runs, f.errs = f.runs[1:], f.errs[1:]
	return run, kafka.Message{Topic: "kql_runs"}, err
}

func (f *fakeConsumer) CommitMessages(context.Context, ...kafka.Message) error {
	f.committed++
	return nil
}

func (f *fakeConsumer) Close() error { return nil }

func TestTailRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var syntaxErr error = &json.SyntaxError{}
	c := &fakeConsumer{
		runs: []*model.QueryRun{
			{ID: "1", Question: "how many errors", Outcome: model.RunOutcomeSuccess, RowCount: 3},
			nil,
		},
		errs:   []error{nil, syntaxErr},
		cancel: cancel,
	}
	var out bytes.Buffer

	require.NoError(t, tailRuns(ctx, &out, c))
	assert.Contains(t, out.String(), `"how many errors"`)
	assert.Equal(t, 2, c.committed)
}

func TestFormatRun(t *testing.T) {
	line := formatRun(model.QueryRun{
		Time:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Source:     model.RunSourceHTTP,
		Question:   "q",
		Outcome:    model.RunOutcomeError,
		DurationMs: 42,
		Error:      "boom",
	})
	assert.Contains(t, line, "2024-05-01T12:00:00Z")
	assert.Contains(t, line, "error")
	assert.Contains(t, line, "42ms")
	assert.Contains(t, line, "[http]")
	assert.Contains(t, line, "error=boom")
}
