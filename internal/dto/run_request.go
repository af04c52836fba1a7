package dto

import "time"

type RunSearchRequest struct {
	StartTime time.Time
	EndTime   time.Time
	Outcome   string
	Size      int
}

type RunStatsRequest struct {
	StartTime time.Time
	EndTime   time.Time
	Interval  string // one of RunStatsIntervals
}

// RunStatsIntervals are the accepted bucket widths for run stats.
var RunStatsIntervals = map[string]bool{
	"1 minute": true, "5 minute": true, "10 minute": true, "30 minute": true, "1 hour": true, "1 day": true,
}
