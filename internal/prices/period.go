package prices

import (
	"fmt"
	"time"
)

// Bar intervals understood by the provider.
const (
	IntervalDaily   = "1d"
	IntervalWeekly  = "1wk"
	IntervalMonthly = "1mo"
)

var periodDays = map[string]int{
	"1w": 7,
	"1m": 30,
	"3m": 90,
	"6m": 180,
	"1y": 365,
	"5y": 1825,
}

// maxPeriodYears bounds the "max" period; older bars add nothing to a
// personal ledger and blow up the payload.
const maxPeriodYears = 20

// ResolvePeriod turns a named period (1w, 1m, 3m, 6m, 1y, 5y, max) into
// a start date and bar interval. Granularity coarsens with range to
// bound payload size.
func ResolvePeriod(period string, now time.Time) (start time.Time, interval string, err error) {
	if period == "max" {
		return now.AddDate(-maxPeriodYears, 0, 0), IntervalMonthly, nil
	}
	days, ok := periodDays[period]
	if !ok {
		return time.Time{}, "", fmt.Errorf("unknown period %q", period)
	}
	start = now.AddDate(0, 0, -days)
	switch {
	case days <= 180:
		interval = IntervalDaily
	case days <= 365*2:
		interval = IntervalWeekly
	default:
		interval = IntervalMonthly
	}
	return start, interval, nil
}
