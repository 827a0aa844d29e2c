package logic

import (
	"fmt"
	"math"
	"strings"

	"github.com/hll-crcon/stats-hooks/internal/locale"
)

// Calendar approximations used to break a duration down.
const (
	secondsPerYear   = 31_536_000 // 365 days
	secondsPerMonth  = 2_592_000  // 30 days
	secondsPerWeek   = 604_800
	secondsPerDay    = 86_400
	secondsPerHour   = 3_600
	secondsPerMinute = 60
)

// DurationStyle selects the calendar units of a readable duration.
type DurationStyle int

const (
	// StyleMonths breaks down into years, months and days.
	StyleMonths DurationStyle = iota
	// StyleWeeks adds a weeks unit between months and days.
	StyleWeeks
)

// InvalidDurationError is returned for negative or non-finite durations.
type InvalidDurationError struct {
	Seconds float64
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration: %v seconds", e.Seconds)
}

// DurationParts is the unit decomposition of a duration.
type DurationParts struct {
	Years   int64
	Months  int64
	Weeks   int64
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// Total reconstructs the number of seconds the parts represent.
func (p DurationParts) Total() int64 {
	return p.Years*secondsPerYear +
		p.Months*secondsPerMonth +
		p.Weeks*secondsPerWeek +
		p.Days*secondsPerDay +
		p.Hours*secondsPerHour +
		p.Minutes*secondsPerMinute +
		p.Seconds
}

// Breakdown truncates seconds to an integer and splits it into units,
// largest first.
func Breakdown(seconds float64, style DurationStyle) (DurationParts, error) {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return DurationParts{}, &InvalidDurationError{Seconds: seconds}
	}

	rest := int64(seconds)
	var p DurationParts
	p.Years, rest = rest/secondsPerYear, rest%secondsPerYear
	p.Months, rest = rest/secondsPerMonth, rest%secondsPerMonth
	if style == StyleWeeks {
		p.Weeks, rest = rest/secondsPerWeek, rest%secondsPerWeek
	}
	p.Days, rest = rest/secondsPerDay, rest%secondsPerDay
	p.Hours, rest = rest/secondsPerHour, rest%secondsPerHour
	p.Minutes, p.Seconds = rest/secondsPerMinute, rest%secondsPerMinute
	return p, nil
}

// ReadableDuration renders seconds as e.g. "1 years, 2 months, 3 days, 4h05m06s"
// with unit names from tbl. Zero-valued calendar units are omitted; the
// hours/minutes/seconds remainder is always present.
func ReadableDuration(seconds float64, tbl locale.Table, style DurationStyle) (string, error) {
	p, err := Breakdown(seconds, style)
	if err != nil {
		return "", err
	}

	units := []struct {
		n   int64
		key string
	}{
		{p.Years, "years"},
		{p.Months, "months"},
		{p.Weeks, "weeks"},
		{p.Days, "days"},
	}

	parts := make([]string, 0, len(units)+1)
	for _, u := range units {
		if u.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", u.n, tbl.T(u.key)))
		}
	}
	parts = append(parts, fmt.Sprintf("%dh%02dm%02ds", p.Hours, p.Minutes, p.Seconds))

	return strings.Join(parts, ", "), nil
}
