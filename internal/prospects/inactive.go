package prospects

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/AngelCh415/pardot-insights/internal/models"
	"github.com/AngelCh415/pardot-insights/internal/window"
)

// Never is the DaysSince sentinel for prospects without any recorded activity.
const Never = "Never"

// DaysSince is a whole number of days, or Never.
type DaysSince struct {
	Days  int
	Never bool
}

func (d DaysSince) String() string {
	if d.Never {
		return Never
	}
	return strconv.Itoa(d.Days)
}

func (d DaysSince) MarshalJSON() ([]byte, error) {
	if d.Never {
		return json.Marshal(Never)
	}
	return json.Marshal(d.Days)
}

func (d *DaysSince) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != Never {
			return fmt.Errorf("days since: unknown value %q", s)
		}
		*d = DaysSince{Never: true}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = DaysSince{Days: n}
	return nil
}

type InactiveProspect struct {
	Ref
	LastActivityAt    *time.Time `json:"lastActivityAt"`
	DaysSinceActivity DaysSince  `json:"daysSinceActivity"`
}

type InactiveResult struct {
	Count         int                `json:"count"`
	ThresholdDays int                `json:"threshold_days"`
	Prospects     []InactiveProspect `json:"details"`
	Skipped       int                `json:"skipped"`
}

// FindInactive flags prospects never active or idle for more than thresholdDays.
// Never-active prospects come first, then the longest idle, then by id.
func FindInactive(prospects []models.Prospect, now time.Time, thresholdDays int) InactiveResult {
	res := InactiveResult{ThresholdDays: thresholdDays, Prospects: []InactiveProspect{}}
	cutoff := window.LastDays(now, thresholdDays).Start

	for _, p := range prospects {
		if !valid(p) {
			res.Skipped++
			continue
		}
		if p.LastActivityAt == nil {
			res.Prospects = append(res.Prospects, InactiveProspect{Ref: refOf(p), DaysSinceActivity: DaysSince{Never: true}})
			continue
		}
		if p.LastActivityAt.Before(cutoff) {
			res.Prospects = append(res.Prospects, InactiveProspect{
				Ref:               refOf(p),
				LastActivityAt:    p.LastActivityAt,
				DaysSinceActivity: DaysSince{Days: daysBetween(*p.LastActivityAt, now)},
			})
		}
	}

	sort.SliceStable(res.Prospects, func(i, j int) bool {
		a, b := res.Prospects[i].DaysSinceActivity, res.Prospects[j].DaysSinceActivity
		if a.Never != b.Never {
			return a.Never
		}
		if a.Days != b.Days {
			return a.Days > b.Days
		}
		return res.Prospects[i].ID < res.Prospects[j].ID
	})
	res.Count = len(res.Prospects)
	return res
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
