package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/pardot-insights/internal/campaigns"
	"github.com/AngelCh415/pardot-insights/internal/forms"
	"github.com/AngelCh415/pardot-insights/internal/metrics"
	"github.com/AngelCh415/pardot-insights/internal/models"
	"github.com/AngelCh415/pardot-insights/internal/prospects"
	"github.com/AngelCh415/pardot-insights/internal/window"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("CST", -6*3600))

func TestShapeErrorOnNilInput(t *testing.T) {
	var se *ShapeError
	_, err := UTM(nil)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, TableUTM, se.Table)

	for _, name := range Tables {
		_, err := Sources{}.Table(name)
		assert.True(t, errors.As(err, &se), name)
	}
	_, err = Sources{}.Table("nope")
	assert.Error(t, err)
	assert.False(t, errors.As(err, &se))
}

func TestEmailRowsKeepFullPrecision(t *testing.T) {
	sends := []models.EmailSend{{ID: "e1", Name: "Launch", SentAt: now,
		Stats: models.EmailStats{Sent: 3, Delivered: 3, Opens: 1}}}
	tbl, err := Email(metrics.AnalyzeEmail(sends, window.Unbounded(), 5))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.InDelta(t, 100.0/3, tbl.Rows[0]["open_rate"], 1e-12)
	assert.Equal(t, "2024-06-01T18:00:00Z", tbl.Rows[0]["sent_at"])
	for _, c := range tbl.Columns {
		assert.Contains(t, tbl.Rows[0], c)
	}
}

func TestCampaignScoreDefaultsToZero(t *testing.T) {
	score := 7.5
	rep := campaigns.AnalyzeActivity([]models.Campaign{
		{ID: "a", UpdatedAt: now, EmailSends: []models.EmailSend{{ID: "e", SentAt: now}}, EngagementScore: &score},
		{ID: "b"},
	}, now, 6)
	tbl, err := Campaigns(rep)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, 7.5, tbl.Rows[0]["engagement_score"])
	assert.Equal(t, "active", tbl.Rows[0]["status"])
	assert.Equal(t, 0.0, tbl.Rows[1]["engagement_score"])
	assert.Equal(t, "", tbl.Rows[1]["last_activity"])
}

func TestProspectTables(t *testing.T) {
	rep, err := prospects.Analyze(context.Background(), []models.Prospect{
		{ID: "1", Email: "a@x.com", Score: models.Int(10)},
		{ID: "2", Email: "A@x.com"},
	}, now, prospects.DefaultConfig())
	require.NoError(t, err)
	s := Sources{Prospects: rep}

	dup, err := s.Table(TableDuplicates)
	require.NoError(t, err)
	require.Len(t, dup.Rows, 2)
	assert.Equal(t, "a@x.com", dup.Rows[0]["duplicate_email"])
	assert.Equal(t, 2, dup.Rows[0]["group_size"])

	ina, err := s.Table(TableInactive)
	require.NoError(t, err)
	assert.Equal(t, "Never", ina.Rows[0]["days_since_activity"])

	miss, err := s.Table(TableMissing)
	require.NoError(t, err)
	assert.Equal(t, "firstName, lastName, jobTitle", miss.Rows[0]["missing_fields"])

	sc, err := s.Table(TableScoring)
	require.NoError(t, err)
	require.Len(t, sc.Rows, 1)
	assert.Equal(t, 10, sc.Rows[0]["score"])
	assert.Equal(t, "", sc.Rows[0]["grade"])
}

func TestAbandonmentTable(t *testing.T) {
	rep := forms.Analyze([]models.Form{
		{ID: "hi", Views: 100, Submissions: 10, Abandoned: 90},
		{ID: "lo", Views: 100, Submissions: 90, Abandoned: 10},
		{ID: "mid", Views: 100, Submissions: 50, Abandoned: 50},
	}, now, forms.DefaultConfig())
	tbl, err := Abandonment(rep)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "high_abandonment", tbl.Rows[0]["category"])
	assert.Equal(t, "hi", tbl.Rows[0]["id"])
	assert.Equal(t, "low_abandonment", tbl.Rows[1]["category"])
}

func TestSummaryOnlyCoversPresentSections(t *testing.T) {
	tbl, err := Summary(Sources{Programs: campaigns.AnalyzePrograms([]models.EngagementProgram{{ID: "p", Status: "Running"}})})
	require.NoError(t, err)
	for _, r := range tbl.Rows {
		assert.Equal(t, "engagement_programs", r["section"])
	}
	assert.Len(t, tbl.Rows, 3)
}

func TestWriteCSV(t *testing.T) {
	tbl := &Table{
		Name:    "x",
		Columns: []string{"name", "rate", "n", "ok", "empty"},
		Rows:    []Row{{"name": "a, \"b\"", "rate": 21.052631578947366, "n": 3, "ok": true}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, tbl.Columns, recs[0])
	assert.Equal(t, []string{"a, \"b\"", "21.052631578947366", "3", "true", ""}, recs[1])

	var se *ShapeError
	assert.True(t, errors.As(WriteCSV(&buf, nil), &se))
}
