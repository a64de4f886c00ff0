package window

import (
	"fmt"
	"strings"
	"time"
)

// ParseFilter builds a Filter from query-string style values. Explicit dates win
// over a token; a date-only end covers its whole day.
func ParseFilter(filterType, startDate, endDate string) (Filter, error) {
	filterType = strings.TrimSpace(filterType)
	startDate = strings.TrimSpace(startDate)
	endDate = strings.TrimSpace(endDate)

	if startDate == "" && endDate == "" {
		if filterType == Custom {
			return Filter{}, &InvalidRangeError{Reason: "custom range needs both start and end"}
		}
		return Filter{Type: filterType}, nil
	}

	f := Filter{Type: Custom}
	if startDate != "" {
		t, _, err := parseInstant(startDate)
		if err != nil {
			return Filter{}, fmt.Errorf("start_date: %w", err)
		}
		f.Start = &t
	}
	if endDate != "" {
		t, dateOnly, err := parseInstant(endDate)
		if err != nil {
			return Filter{}, fmt.Errorf("end_date: %w", err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.End = &t
	}
	return f, nil
}

func parseInstant(s string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}
