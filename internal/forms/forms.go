package forms

import (
	"sort"
	"strconv"
	"time"

	"github.com/AngelCh415/pardot-insights/internal/activity"
	"github.com/AngelCh415/pardot-insights/internal/metrics"
	"github.com/AngelCh415/pardot-insights/internal/models"
	"github.com/AngelCh415/pardot-insights/internal/window"
)

const (
	DefaultWindowDays      = 90
	DefaultHighAbandonment = 70.0
	DefaultLowAbandonment  = 20.0
)

// Config tunes the analyzer. A nil threshold means the default; zero is a
// valid threshold.
type Config struct {
	WindowDays      int
	HighAbandonment *float64
	LowAbandonment  *float64
}

func DefaultConfig() Config {
	high, low := DefaultHighAbandonment, DefaultLowAbandonment
	return Config{WindowDays: DefaultWindowDays, HighAbandonment: &high, LowAbandonment: &low}
}

type thresholds struct {
	windowDays int
	high, low  float64
}

func (c Config) resolve() thresholds {
	t := thresholds{windowDays: c.WindowDays, high: DefaultHighAbandonment, low: DefaultLowAbandonment}
	if t.windowDays <= 0 {
		t.windowDays = DefaultWindowDays
	}
	if c.HighAbandonment != nil {
		t.high = *c.HighAbandonment
	}
	if c.LowAbandonment != nil {
		t.low = *c.LowAbandonment
	}
	return t
}

type FormStats struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Views             int        `json:"views"`
	UniqueViews       int        `json:"unique_views"`
	Submissions       int        `json:"submissions"`
	UniqueSubmissions int        `json:"unique_submissions"`
	Abandoned         int        `json:"abandoned"`
	Clicks            int        `json:"clicks"`
	Conversions       int        `json:"conversions"`
	ConversionRate    float64    `json:"conversion_rate"`
	AbandonmentRate   float64    `json:"abandonment_rate"`
	IsActive          bool       `json:"is_active"`
	LastActivity      *time.Time `json:"last_activity"`
}

type Category struct {
	Threshold string      `json:"threshold"`
	Count     int         `json:"count"`
	Forms     []FormStats `json:"forms"`
}

type Summary struct {
	TotalForms             int     `json:"total_forms"`
	TotalViews             int     `json:"total_views"`
	TotalSubmissions       int     `json:"total_submissions"`
	TotalAbandoned         int     `json:"total_abandoned"`
	OverallConversionRate  float64 `json:"overall_conversion_rate"`
	OverallAbandonmentRate float64 `json:"overall_abandonment_rate"`
	ActiveCount            int     `json:"active_count"`
	InactiveCount          int     `json:"inactive_count"`
	ActivePercentage       float64 `json:"active_percentage"`
}

type Insights struct {
	AvgAbandonmentRate        float64    `json:"avg_abandonment_rate"`
	FormsNeedingAttention     int        `json:"forms_needing_attention"`
	BestPerformingForm        *FormStats `json:"best_performing_form"`
	AvgConversionRateActive   float64    `json:"avg_conversion_rate_active"`
	AvgConversionRateInactive float64    `json:"avg_conversion_rate_inactive"`
}

type Report struct {
	Window          window.DateWindow `json:"window"`
	Forms           []FormStats       `json:"forms"`
	Active          []FormStats       `json:"active_forms"`
	Inactive        []FormStats       `json:"inactive_forms"`
	HighAbandonment Category          `json:"high_abandonment"`
	LowAbandonment  Category          `json:"low_abandonment"`
	Summary         Summary           `json:"summary"`
	Insights        Insights          `json:"insights"`
	Skipped         int               `json:"skipped"`
}

// Subject reduces a form to its activity: one event at LastActivity weighted by
// views plus submissions.
func Subject(f models.Form) activity.Subject {
	s := activity.Subject{Kind: activity.KindForm, ID: f.ID}
	if f.LastActivity != nil {
		s.Events = []activity.Event{{At: *f.LastActivity, Weight: max0(f.Views) + max0(f.Submissions)}}
	}
	return s
}

// Stats computes per-form rates and the activity classification against w.
func Stats(f models.Form, w window.DateWindow) FormStats {
	st := activity.Classify(w, Subject(f))
	return FormStats{
		ID:                f.ID,
		Name:              f.Name,
		Views:             f.Views,
		UniqueViews:       f.UniqueViews,
		Submissions:       f.Submissions,
		UniqueSubmissions: f.UniqueSubmissions,
		Abandoned:         f.Abandoned,
		Clicks:            f.Clicks,
		Conversions:       f.Conversions,
		ConversionRate:    metrics.Pct(f.Submissions, f.Views),
		AbandonmentRate:   metrics.Pct(f.Abandoned, f.Views),
		IsActive:          st.Active,
		LastActivity:      f.LastActivity,
	}
}

// Analyze classifies every form against the trailing window ending at now.
func Analyze(forms []models.Form, now time.Time, cfg Config) *Report {
	th := cfg.resolve()
	w := window.LastDays(now, th.windowDays)

	rep := &Report{
		Window:          w,
		Forms:           make([]FormStats, 0, len(forms)),
		HighAbandonment: Category{Threshold: thresholdLabel(">=", th.high), Forms: []FormStats{}},
		LowAbandonment:  Category{Threshold: thresholdLabel("<=", th.low), Forms: []FormStats{}},
		Active:          []FormStats{},
		Inactive:        []FormStats{},
	}

	var abandonRates, activeConv, inactiveConv []float64
	for _, f := range forms {
		if f.Validate() != nil {
			rep.Skipped++
			continue
		}
		fs := Stats(f, w)
		rep.Forms = append(rep.Forms, fs)

		rep.Summary.TotalViews += max0(f.Views)
		rep.Summary.TotalSubmissions += max0(f.Submissions)
		rep.Summary.TotalAbandoned += max0(f.Abandoned)

		if fs.IsActive {
			rep.Active = append(rep.Active, fs)
			activeConv = append(activeConv, fs.ConversionRate)
		} else {
			rep.Inactive = append(rep.Inactive, fs)
			inactiveConv = append(inactiveConv, fs.ConversionRate)
		}

		if fs.AbandonmentRate >= th.high {
			rep.HighAbandonment.Forms = append(rep.HighAbandonment.Forms, fs)
		}
		if fs.AbandonmentRate <= th.low {
			rep.LowAbandonment.Forms = append(rep.LowAbandonment.Forms, fs)
		}
		if f.Views > 0 {
			abandonRates = append(abandonRates, fs.AbandonmentRate)
			if rep.Insights.BestPerformingForm == nil || better(fs, *rep.Insights.BestPerformingForm) {
				best := fs
				rep.Insights.BestPerformingForm = &best
			}
		}
	}

	// peores primero dentro de cada categoría
	sortByAbandonment(rep.HighAbandonment.Forms, true)
	sortByAbandonment(rep.LowAbandonment.Forms, false)
	rep.HighAbandonment.Count = len(rep.HighAbandonment.Forms)
	rep.LowAbandonment.Count = len(rep.LowAbandonment.Forms)

	s := &rep.Summary
	s.TotalForms = len(rep.Forms)
	s.OverallConversionRate = metrics.Pct(s.TotalSubmissions, s.TotalViews)
	s.OverallAbandonmentRate = metrics.Pct(s.TotalAbandoned, s.TotalViews)
	s.ActiveCount = len(rep.Active)
	s.InactiveCount = len(rep.Inactive)
	s.ActivePercentage = metrics.Pct(s.ActiveCount, s.TotalForms)

	rep.Insights.AvgAbandonmentRate = metrics.Mean(abandonRates)
	rep.Insights.FormsNeedingAttention = rep.HighAbandonment.Count
	rep.Insights.AvgConversionRateActive = metrics.Mean(activeConv)
	rep.Insights.AvgConversionRateInactive = metrics.Mean(inactiveConv)
	return rep
}

func better(a, b FormStats) bool {
	if a.AbandonmentRate != b.AbandonmentRate {
		return a.AbandonmentRate < b.AbandonmentRate
	}
	return a.ID < b.ID
}

func sortByAbandonment(fs []FormStats, desc bool) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].AbandonmentRate != fs[j].AbandonmentRate {
			if desc {
				return fs[i].AbandonmentRate > fs[j].AbandonmentRate
			}
			return fs[i].AbandonmentRate < fs[j].AbandonmentRate
		}
		return fs[i].ID < fs[j].ID
	})
}

func thresholdLabel(op string, v float64) string {
	return op + " " + strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func max0(i int) int {
	if i < 0 {
		return 0
	}
	return i
}
