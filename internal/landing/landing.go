package landing

import (
	"time"

	"github.com/AngelCh415/pardot-insights/internal/activity"
	"github.com/AngelCh415/pardot-insights/internal/metrics"
	"github.com/AngelCh415/pardot-insights/internal/models"
	"github.com/AngelCh415/pardot-insights/internal/window"
)

const DefaultWindowMonths = 3

const Criteria = "Landing pages with visitor activity (views, clicks, submissions) inside the trailing window are active"

type Config struct {
	WindowMonths int
}

type PageStats struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	URL              string     `json:"url"`
	Views            int        `json:"views"`
	Clicks           int        `json:"clicks"`
	Submissions      int        `json:"submissions"`
	TotalActivities  int        `json:"total_activities"`
	RecentActivities int        `json:"recent_activities"`
	IsActive         bool       `json:"is_active"`
	LastActivity     *time.Time `json:"last_activity"`
}

type Summary struct {
	TotalPages            int     `json:"total_pages"`
	ActiveCount           int     `json:"active_count"`
	InactiveCount         int     `json:"inactive_count"`
	ActivePercentage      float64 `json:"active_percentage"`
	InactivePercentage    float64 `json:"inactive_percentage"`
	TotalActivities       int     `json:"total_activities"`
	TotalRecentActivities int     `json:"total_recent_activities"`
}

type Report struct {
	Criteria string            `json:"criteria"`
	Window   window.DateWindow `json:"window"`
	Active   []PageStats       `json:"active_pages"`
	Inactive []PageStats       `json:"inactive_pages"`
	Summary  Summary           `json:"summary"`
	Skipped  int               `json:"skipped"`
}

// Subject reduces a page to one event at LastActivityAt weighted by its recent
// activity count.
func Subject(p models.LandingPage) activity.Subject {
	s := activity.Subject{Kind: activity.KindLandingPage, ID: p.ID}
	if p.LastActivityAt != nil && p.TotalActivityCount > 0 {
		s.Events = []activity.Event{{At: *p.LastActivityAt, Weight: p.RecentActivityCount}}
	}
	return s
}

func Stats(p models.LandingPage, w window.DateWindow) PageStats {
	ps := PageStats{
		ID:               p.ID,
		Name:             p.Name,
		URL:              p.URL,
		Views:            p.Views,
		Clicks:           p.Clicks,
		Submissions:      p.Submissions,
		TotalActivities:  max0(p.TotalActivityCount),
		RecentActivities: max0(p.RecentActivityCount),
		IsActive:         activity.Classify(w, Subject(p)).Active,
	}
	if ps.URL == "" {
		ps.URL = "No URL"
	}
	// sin actividad nunca => sin fecha
	if ps.TotalActivities > 0 {
		ps.LastActivity = p.LastActivityAt
	}
	return ps
}

func Analyze(pages []models.LandingPage, now time.Time, cfg Config) *Report {
	months := cfg.WindowMonths
	if months <= 0 {
		months = DefaultWindowMonths
	}
	w := window.LastMonths(now, months)
	rep := &Report{Criteria: Criteria, Window: w, Active: []PageStats{}, Inactive: []PageStats{}}

	for _, p := range pages {
		if p.Validate() != nil {
			rep.Skipped++
			continue
		}
		ps := Stats(p, w)
		if ps.IsActive {
			rep.Active = append(rep.Active, ps)
		} else {
			rep.Inactive = append(rep.Inactive, ps)
		}
		rep.Summary.TotalActivities += ps.TotalActivities
		rep.Summary.TotalRecentActivities += ps.RecentActivities
	}

	s := &rep.Summary
	s.ActiveCount = len(rep.Active)
	s.InactiveCount = len(rep.Inactive)
	s.TotalPages = s.ActiveCount + s.InactiveCount
	s.ActivePercentage = metrics.Pct(s.ActiveCount, s.TotalPages)
	s.InactivePercentage = metrics.Pct(s.InactiveCount, s.TotalPages)
	return rep
}

func max0(i int) int {
	if i < 0 {
		return 0
	}
	return i
}
