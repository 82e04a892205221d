// Package timeperiod parses and validates the time window a dashboard is
// printed for. Expressions are either absolute ("2024-03-01 12:00:00", or a
// shorter prefix) or relative to now ("now-1h", "now-1d/d", "now/w").
package timeperiod

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dashprint/backend/internal/domain/shared"
)

// Default relative window
const (
	DefaultFrom = "now-1h"
	DefaultTo   = "now"
)

// Bounds of a printable period
const (
	MinPeriod = 60 * time.Second
	MaxPeriod = 2 * 365 * 24 * time.Hour
)

// maxOffset bounds a single relative offset. It stays below the range of
// time.Duration, so shifting by seconds, minutes or hours cannot overflow.
const maxOffset = 200 * 366 * 24 * time.Hour

var unitLength = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
	'M': 31 * 24 * time.Hour,
	'y': 366 * 24 * time.Hour,
}

// Period is a resolved time window. From and To keep the expressions the
// window was resolved from, FromTS and ToTS the resulting unix timestamps.
type Period struct {
	ProfileIdx  string `json:"profileIdx"`
	ProfileIdx2 uint64 `json:"profileIdx2"`
	From        string `json:"from"`
	To          string `json:"to"`
	FromTS      int64  `json:"from_ts"`
	ToTS        int64  `json:"to_ts"`
}

// Duration returns the inclusive length of the period
func (p Period) Duration() time.Duration {
	return time.Duration(p.ToTS-p.FromTS+1) * time.Second
}

var absoluteLayouts = []struct {
	layout string
	unit   byte
}{
	{"2006-01-02 15:04:05", 's'},
	{"2006-01-02 15:04", 'm'},
	{"2006-01-02 15", 'h'},
	{"2006-01-02", 'd'},
	{"2006-01", 'M'},
	{"2006", 'y'},
}

// IsValid reports whether expr can be parsed
func IsValid(expr string) bool {
	_, err := Parse(expr, time.Now(), false)
	return err == nil
}

// Parse resolves an expression against now. isTo selects the end of a
// rounded or partial unit instead of its start.
func Parse(expr string, now time.Time, isTo bool) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, invalid(expr)
	}
	if strings.HasPrefix(expr, "now") {
		return parseRelative(expr, now, isTo)
	}
	return parseAbsolute(expr, now.Location(), isTo)
}

func parseAbsolute(expr string, loc *time.Location, isTo bool) (time.Time, error) {
	for _, l := range absoluteLayouts {
		if len(expr) != len(l.layout) {
			continue
		}
		t, err := time.ParseInLocation(l.layout, expr, loc)
		if err != nil {
			continue
		}
		if isTo {
			return endOf(t, l.unit), nil
		}
		return t, nil
	}
	return time.Time{}, invalid(expr)
}

func parseRelative(expr string, now time.Time, isTo bool) (time.Time, error) {
	t := now.Truncate(time.Second)
	rest := expr[len("now"):]

	for rest != "" {
		switch rest[0] {
		case '/':
			if len(rest) < 2 || !isUnit(rest[1]) {
				return time.Time{}, invalid(expr)
			}
			if isTo {
				t = endOf(t, rest[1])
			} else {
				t = startOf(t, rest[1])
			}
			rest = rest[2:]
		case '+', '-':
			sign := 1
			if rest[0] == '-' {
				sign = -1
			}
			i := 1
			for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
				i++
			}
			if i == 1 || i >= len(rest) || !isUnit(rest[i]) {
				return time.Time{}, invalid(expr)
			}
			n, err := strconv.Atoi(rest[1:i])
			if err != nil || int64(n) > int64(maxOffset/unitLength[rest[i]]) {
				return time.Time{}, invalid(expr)
			}
			t = shift(t, sign*n, rest[i])
			rest = rest[i+1:]
		default:
			return time.Time{}, invalid(expr)
		}
	}
	return t, nil
}

func isUnit(u byte) bool {
	return strings.IndexByte("smhdwMy", u) >= 0
}

func shift(t time.Time, n int, unit byte) time.Time {
	switch unit {
	case 's':
		return t.Add(time.Duration(n) * time.Second)
	case 'm':
		return t.Add(time.Duration(n) * time.Minute)
	case 'h':
		return t.Add(time.Duration(n) * time.Hour)
	case 'd':
		return t.AddDate(0, 0, n)
	case 'w':
		return t.AddDate(0, 0, 7*n)
	case 'M':
		return t.AddDate(0, n, 0)
	case 'y':
		return t.AddDate(n, 0, 0)
	}
	return t
}

func startOf(t time.Time, unit byte) time.Time {
	y, mo, d := t.Date()
	loc := t.Location()
	switch unit {
	case 's':
		return t.Truncate(time.Second)
	case 'm':
		return time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, loc)
	case 'h':
		return time.Date(y, mo, d, t.Hour(), 0, 0, 0, loc)
	case 'd':
		return time.Date(y, mo, d, 0, 0, 0, 0, loc)
	case 'w':
		// weeks start on Monday
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, mo, d-offset, 0, 0, 0, 0, loc)
	case 'M':
		return time.Date(y, mo, 1, 0, 0, 0, 0, loc)
	case 'y':
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
	return t
}

func endOf(t time.Time, unit byte) time.Time {
	start := startOf(t, unit)
	var next time.Time
	switch unit {
	case 's':
		return start
	case 'w':
		next = start.AddDate(0, 0, 7)
	default:
		next = shift(start, 1, unit)
	}
	return next.Add(-time.Second)
}

func invalid(expr string) error {
	return shared.NewDomainError("INVALID_TIME", fmt.Sprintf("Invalid time expression %q", expr))
}

// Resolve parses both ends of a window and validates the result
func Resolve(from, to string, now time.Time) (Period, error) {
	fromTime, err := Parse(from, now, false)
	if err != nil {
		return Period{}, err
	}
	toTime, err := Parse(to, now, true)
	if err != nil {
		return Period{}, err
	}
	p := Period{
		From:   from,
		To:     to,
		FromTS: fromTime.Unix(),
		ToTS:   toTime.Unix(),
	}
	if err := Validate(p); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks ordering and the min/max length of a period
func Validate(p Period) error {
	if p.FromTS >= p.ToTS {
		return shared.NewDomainError("INVALID_PERIOD", "Start of the time period must be before its end")
	}
	d := p.Duration()
	if d < MinPeriod {
		return shared.NewDomainError("INVALID_PERIOD",
			fmt.Sprintf("Minimum time period to display is %d minutes.", int(MinPeriod/time.Minute)))
	}
	if d > MaxPeriod {
		return shared.NewDomainError("INVALID_PERIOD",
			fmt.Sprintf("Maximum time period to display is %d days.", int(MaxPeriod/(24*time.Hour))))
	}
	return nil
}
