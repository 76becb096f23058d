package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveInterval(t *testing.T) {
	// Wednesday, 15 January 2025.
	now := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		interval  Interval
		wantStart string
		wantEnd   string
	}{
		{"daily is today only", IntervalDaily, "2025-01-15", "2025-01-15"},
		{"weekly starts on sunday", IntervalWeekly, "2025-01-12", "2025-01-15"},
		{"monthly starts on the 1st", IntervalMonthly, "2025-01-01", "2025-01-15"},
		{"unknown falls back to daily", Interval("fortnightly"), "2025-01-15", "2025-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ResolveInterval(now, tt.interval)
			assert.Equal(t, tt.wantStart, start.String())
			assert.Equal(t, tt.wantEnd, end.String())
		})
	}
}

func TestResolveInterval_WeeklyOnSunday(t *testing.T) {
	// A Sunday resolves the week start to itself.
	now := time.Date(2025, 1, 12, 8, 0, 0, 0, time.UTC)
	start, end := ResolveInterval(now, IntervalWeekly)
	assert.Equal(t, "2025-01-12", start.String())
	assert.Equal(t, "2025-01-12", end.String())
}

func TestResolveInterval_MonthlyCrossesYears(t *testing.T) {
	now := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)
	start, end := ResolveInterval(now, IntervalMonthly)
	assert.Equal(t, "2025-12-01", start.String())
	assert.Equal(t, "2025-12-31", end.String())
}
