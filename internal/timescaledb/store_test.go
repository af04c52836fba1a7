package timescaledb

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

type stubRow struct {
	exists bool
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*bool) = r.exists
	return nil
}

type stubQuerier struct {
	row stubRow
}

func (q stubQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return q.row
}

func captureLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestLookupHypertable(t *testing.T) {
	buf := captureLog(t)

	assert.True(t, lookupHypertable(context.Background(), stubQuerier{row: stubRow{exists: true}}, runsTableName))
	assert.False(t, lookupHypertable(context.Background(), stubQuerier{row: stubRow{}}, runsTableName))
	assert.Empty(t, buf.String())
}

func TestLookupHypertable_LogsLookupFailure(t *testing.T) {
	buf := captureLog(t)

	ok := lookupHypertable(context.Background(), stubQuerier{row: stubRow{err: errors.New("permission denied for schema timescaledb_information")}}, runsTableName)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "permission denied")
	assert.Contains(t, buf.String(), runsTableName)
}
