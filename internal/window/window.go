// Package window resolves named or custom date filters into concrete time ranges.
// Every resolution takes an explicit reference instant; nothing here reads the clock.
package window

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Last7Days   = "last_7_days"
	Last30Days  = "last_30_days"
	Last3Months = "last_3_months"
	Last6Months = "last_6_months"
	Today       = "today"
	Yesterday   = "yesterday"
	ThisMonth   = "this_month"
	LastMonth   = "last_month"
	ThisQuarter = "this_quarter"
	ThisYear    = "this_year"
	Custom      = "custom"
)

var ErrUnknownFilter = errors.New("unknown date filter")

// InvalidRangeError is returned for a custom window whose start is after its end,
// or that lacks one of its bounds.
type InvalidRangeError struct {
	Start, End time.Time
	Reason     string
}

func (e *InvalidRangeError) Error() string {
	if e.Reason != "" {
		return "invalid date range: " + e.Reason
	}
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// Filter is either a named token or an explicit custom range. The zero Filter
// means no filtering.
type Filter struct {
	Type  string
	Start *time.Time
	End   *time.Time
}

func (f Filter) IsZero() bool { return f.Type == "" && f.Start == nil && f.End == nil }

// DateWindow is an inclusive [Start, End] range. A window with both bounds zero
// is unbounded and contains every instant.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func Unbounded() DateWindow { return DateWindow{} }

func (w DateWindow) Unbounded() bool { return w.Start.IsZero() && w.End.IsZero() }

func (w DateWindow) Contains(t time.Time) bool {
	if w.Unbounded() {
		return true
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w DateWindow) String() string {
	if w.Unbounded() {
		return "unbounded"
	}
	return w.Start.Format(time.RFC3339) + ".." + w.End.Format(time.RFC3339)
}

// Resolve turns f into a concrete window relative to now.
func Resolve(f Filter, now time.Time) (DateWindow, error) {
	if f.IsZero() {
		return Unbounded(), nil
	}
	typ := strings.ToLower(strings.TrimSpace(f.Type))
	if typ == "" {
		typ = Custom
	}
	switch typ {
	case Last7Days:
		return LastDays(now, 7), nil
	case Last30Days:
		return LastDays(now, 30), nil
	case Last3Months:
		return LastMonths(now, 3), nil
	case Last6Months:
		return LastMonths(now, 6), nil
	case Today:
		return DateWindow{Start: midnight(now), End: now}, nil
	case Yesterday:
		end := midnight(now)
		return DateWindow{Start: end.AddDate(0, 0, -1), End: end.Add(-time.Nanosecond)}, nil
	case ThisMonth:
		return DateWindow{Start: firstOfMonth(now), End: now}, nil
	case LastMonth:
		end := firstOfMonth(now)
		return DateWindow{Start: end.AddDate(0, -1, 0), End: end.Add(-time.Nanosecond)}, nil
	case ThisQuarter:
		y, m, _ := now.Date()
		qm := time.Month((int(m)-1)/3*3 + 1)
		return DateWindow{Start: time.Date(y, qm, 1, 0, 0, 0, 0, now.Location()), End: now}, nil
	case ThisYear:
		return DateWindow{Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), End: now}, nil
	case Custom:
		if f.Start == nil || f.End == nil {
			return DateWindow{}, &InvalidRangeError{Reason: "custom range needs both start and end"}
		}
		if f.Start.After(*f.End) {
			return DateWindow{}, &InvalidRangeError{Start: *f.Start, End: *f.End}
		}
		return DateWindow{Start: *f.Start, End: *f.End}, nil
	}
	return DateWindow{}, fmt.Errorf("%w: %q", ErrUnknownFilter, f.Type)
}

// LastDays is the trailing window of n whole 24h days ending at now.
func LastDays(now time.Time, n int) DateWindow {
	return DateWindow{Start: now.Add(-time.Duration(n) * 24 * time.Hour), End: now}
}

// LastMonths is the trailing calendar window of n months ending at now.
func LastMonths(now time.Time, n int) DateWindow {
	return DateWindow{Start: now.AddDate(0, -n, 0), End: now}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
