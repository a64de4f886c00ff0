package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/pardot-insights/internal/models"
	"github.com/AngelCh415/pardot-insights/internal/window"
)

var now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time { return models.Time(now.AddDate(0, 0, -n)) }

func TestAllAbandonedFormIsHighAbandonment(t *testing.T) {
	rep := Analyze([]models.Form{{ID: "f1", Name: "Signup", Views: 100, Submissions: 0, Abandoned: 100, LastActivity: daysAgo(1)}}, now, DefaultConfig())

	require.Len(t, rep.Forms, 1)
	assert.Equal(t, 100.0, rep.Forms[0].AbandonmentRate)
	assert.Equal(t, 0.0, rep.Forms[0].ConversionRate)
	require.Equal(t, 1, rep.HighAbandonment.Count)
	assert.Equal(t, "f1", rep.HighAbandonment.Forms[0].ID)
	assert.Zero(t, rep.LowAbandonment.Count)
	assert.Equal(t, ">= 70%", rep.HighAbandonment.Threshold)
	assert.Equal(t, 1, rep.Insights.FormsNeedingAttention)
}

func TestZeroViewsYieldsZeroRates(t *testing.T) {
	fs := Stats(models.Form{ID: "f", Submissions: 3, Abandoned: 2}, window.LastDays(now, DefaultWindowDays))
	assert.Zero(t, fs.ConversionRate)
	assert.Zero(t, fs.AbandonmentRate)
}

func TestOverallRatesUseSummedTotals(t *testing.T) {
	rep := Analyze([]models.Form{
		{ID: "a", Views: 10, Submissions: 10, Abandoned: 0},
		{ID: "b", Views: 90, Submissions: 0, Abandoned: 90},
	}, now, DefaultConfig())

	assert.Equal(t, 100, rep.Summary.TotalViews)
	assert.Equal(t, 10, rep.Summary.TotalSubmissions)
	assert.InDelta(t, 10.0, rep.Summary.OverallConversionRate, 1e-9)
	assert.InDelta(t, 90.0, rep.Summary.OverallAbandonmentRate, 1e-9)
	// la media por formulario seria 50%
	assert.InDelta(t, 50.0, rep.Insights.AvgAbandonmentRate, 1e-9)
}

func TestCategoriesAndBestPerformer(t *testing.T) {
	rep := Analyze([]models.Form{
		{ID: "mid", Views: 100, Abandoned: 50},
		{ID: "low2", Views: 100, Abandoned: 20},
		{ID: "low1", Views: 100, Abandoned: 5},
		{ID: "high1", Views: 100, Abandoned: 70},
		{ID: "high2", Views: 100, Abandoned: 95},
		{ID: "empty"},
	}, now, DefaultConfig())

	ids := func(fs []FormStats) []string {
		var out []string
		for _, f := range fs {
			out = append(out, f.ID)
		}
		return out
	}
	assert.Equal(t, []string{"high2", "high1"}, ids(rep.HighAbandonment.Forms))
	assert.Equal(t, []string{"empty", "low1", "low2"}, ids(rep.LowAbandonment.Forms))
	require.NotNil(t, rep.Insights.BestPerformingForm)
	assert.Equal(t, "low1", rep.Insights.BestPerformingForm.ID)
	assert.Equal(t, 6, rep.Summary.TotalForms)
}

func TestCustomThresholds(t *testing.T) {
	rep := Analyze([]models.Form{{ID: "x", Views: 10, Abandoned: 6}}, now, Config{HighAbandonment: models.Float(60), LowAbandonment: models.Float(10)})
	assert.Equal(t, 1, rep.HighAbandonment.Count)
	assert.Equal(t, "<= 10%", rep.LowAbandonment.Threshold)
}

func TestFormsWithoutIDAreSkipped(t *testing.T) {
	rep := Analyze([]models.Form{
		{Name: "orphan", Views: 1000, Abandoned: 1000},
		{ID: "ok", Views: 10, Submissions: 5, Abandoned: 5},
	}, now, DefaultConfig())
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 1, rep.Summary.TotalForms)
	assert.Equal(t, 10, rep.Summary.TotalViews)
	assert.Zero(t, rep.HighAbandonment.Count)
}

func TestZeroLowThresholdIsKept(t *testing.T) {
	in := []models.Form{
		{ID: "perfect", Views: 10, Submissions: 10},
		{ID: "some", Views: 10, Submissions: 9, Abandoned: 1},
	}
	rep := Analyze(in, now, Config{LowAbandonment: models.Float(0)})
	assert.Equal(t, "<= 0%", rep.LowAbandonment.Threshold)
	require.Len(t, rep.LowAbandonment.Forms, 1)
	assert.Equal(t, "perfect", rep.LowAbandonment.Forms[0].ID)
	assert.Equal(t, ">= 70%", rep.HighAbandonment.Threshold)

	rep = Analyze(in, now, Config{})
	assert.Equal(t, "<= 20%", rep.LowAbandonment.Threshold)
	assert.Len(t, rep.LowAbandonment.Forms, 2)
}

func TestActiveClassification(t *testing.T) {
	rep := Analyze([]models.Form{
		{ID: "recent", Views: 5, LastActivity: daysAgo(10)},
		{ID: "stale", Views: 5, LastActivity: daysAgo(120)},
		{ID: "never", Views: 5},
		{ID: "touched-no-traffic", LastActivity: daysAgo(1)},
	}, now, DefaultConfig())

	require.Len(t, rep.Active, 1)
	assert.Equal(t, "recent", rep.Active[0].ID)
	assert.Len(t, rep.Inactive, 3)
	assert.InDelta(t, 25.0, rep.Summary.ActivePercentage, 1e-9)
}

func TestActivityIsMonotonic(t *testing.T) {
	f := models.Form{ID: "f", Views: 3, LastActivity: daysAgo(200)}
	w := window.LastDays(now, DefaultWindowDays)
	assert.False(t, Stats(f, w).IsActive)

	f.Views++
	f.LastActivity = daysAgo(2)
	assert.True(t, Stats(f, w).IsActive)
}

func TestConfigWindowDays(t *testing.T) {
	f := []models.Form{{ID: "f", Views: 1, LastActivity: daysAgo(20)}}
	assert.Len(t, Analyze(f, now, Config{WindowDays: 30}).Active, 1)
	assert.Len(t, Analyze(f, now, Config{WindowDays: 7}).Active, 0)
}

func TestEmptyInput(t *testing.T) {
	rep := Analyze(nil, now, DefaultConfig())
	assert.Zero(t, rep.Summary.TotalForms)
	assert.Zero(t, rep.Summary.ActivePercentage)
	assert.Nil(t, rep.Insights.BestPerformingForm)
	assert.NotNil(t, rep.HighAbandonment.Forms)
}
