package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kql-assistant-backend/internal/util"
)

func TestParseTimeFlexible(t *testing.T) {
	got, err := util.ParseTimeFlexible("2024-05-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), got)

	got, err = util.ParseTimeFlexible("1714557600000")
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1714557600000).UTC(), got)

	_, err = util.ParseTimeFlexible("01/05/2024")
	assert.Error(t, err)
}

func TestParseTimeInput(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"now", now},
		{"now-1h", now.Add(-time.Hour)},
		{"now-90m", now.Add(-90 * time.Minute)},
		{"now-7d", now.Add(-7 * 24 * time.Hour)},
		{"2024-05-01T00:00:00Z", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := util.ParseTimeInput(tt.input, now)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	for _, bad := range []string{"now-", "now-xd", "now--1h", "yesterday"} {
		_, err := util.ParseTimeInput(bad, now)
		assert.Error(t, err, bad)
	}
}
