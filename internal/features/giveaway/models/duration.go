package models

import (
	"strconv"
	"strings"
	"time"
)

// Accepted time expressions: a bare integer is taken as seconds, otherwise a
// number with one of the unit suffixes below. Months and years are fixed at
// 30 and 365 days.
const durationHelp = "valid time formats: 1s, 1m, 1h, 1d, 1w, 1mo, 1y or plain seconds"

var durationUnits = []struct {
	suffix string
	unit   time.Duration
}{
	{"mo", 30 * 24 * time.Hour},
	{"s", time.Second},
	{"m", time.Minute},
	{"h", time.Hour},
	{"d", 24 * time.Hour},
	{"w", 7 * 24 * time.Hour},
	{"y", 365 * 24 * time.Hour},
}

// ParseDuration parses a giveaway lifespan expression.
func ParseDuration(expr string) (time.Duration, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, &ValidationError{Field: "duration", Reason: "empty duration; " + durationHelp}
	}

	if secs, err := strconv.ParseInt(expr, 10, 64); err == nil {
		if secs <= 0 {
			return 0, &ValidationError{Field: "duration", Reason: "duration must be positive"}
		}
		return time.Duration(secs) * time.Second, nil
	}

	for _, u := range durationUnits {
		num, ok := strings.CutSuffix(expr, u.suffix)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil || n <= 0 {
			return 0, &ValidationError{Field: "duration", Reason: expr + " is not a valid time; " + durationHelp}
		}
		return time.Duration(n) * u.unit, nil
	}

	return 0, &ValidationError{Field: "duration", Reason: expr + " is not a valid time; " + durationHelp}
}
