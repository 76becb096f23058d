package report

import (
	"log/slog"
	"time"

	"github.com/mananladha/expense-tracker/internal/core"
)

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

// Interval is a relative reporting period resolved against "now".
type Interval string

// ResolveInterval maps an interval keyword to an absolute inclusive
// [start, end] date pair. The end is always today; the start depends on
// the interval: daily is today only, weekly starts on the most recent
// Sunday, monthly on the first of the current month. Unknown keywords
// fall back to daily with a warning, never an error.
func ResolveInterval(now time.Time, interval Interval) (start, end core.Date) {
	today := core.DateOf(now)
	end = today

	switch interval {
	case IntervalDaily:
		start = today
	case IntervalWeekly:
		start = core.DateOf(now.AddDate(0, 0, -int(now.Weekday())))
	case IntervalMonthly:
		start = core.NewDate(now.Year(), int(now.Month()), 1)
	default:
		slog.Warn("Unknown date range interval, defaulting to daily", "interval", string(interval))
		start = today
	}
	return start, end
}
