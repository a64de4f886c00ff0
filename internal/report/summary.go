package report

import (
	"errors"
	"fmt"

	"github.com/AngelCh415/pardot-insights/internal/campaigns"
	"github.com/AngelCh415/pardot-insights/internal/forms"
	"github.com/AngelCh415/pardot-insights/internal/landing"
	"github.com/AngelCh415/pardot-insights/internal/metrics"
	"github.com/AngelCh415/pardot-insights/internal/prospects"
)

var ErrUnknownTable = errors.New("report: unknown table")

// Sources bundles the analyzer outputs a caller has at hand. Nil fields mean
// the analysis was not run.
type Sources struct {
	Email     *metrics.EmailReport
	Forms     *forms.Report
	Landing   *landing.Report
	Prospects *prospects.Report
	UTM       *campaigns.UTMReport
	Campaigns *campaigns.ActivityReport
	Programs  *campaigns.ProgramsReport
}

// Table shapes the named table from s.
func (s Sources) Table(name string) (*Table, error) {
	switch name {
	case TableSummary:
		return Summary(s)
	case TableEmail:
		return Email(s.Email)
	case TableForms:
		return Forms(s.Forms)
	case TableAbandonment:
		return Abandonment(s.Forms)
	case TableLanding:
		return Landing(s.Landing)
	case TableDuplicates, TableInactive, TableMissing, TableScoring:
		if s.Prospects == nil {
			return nil, &ShapeError{Table: name}
		}
		switch name {
		case TableDuplicates:
			return Duplicates(&s.Prospects.Duplicates)
		case TableInactive:
			return Inactive(&s.Prospects.Inactive)
		case TableMissing:
			return Missing(&s.Prospects.MissingFields)
		default:
			return Scoring(&s.Prospects.ScoringIssues)
		}
	case TableUTM:
		return UTM(s.UTM)
	case TableCampaigns:
		return Campaigns(s.Campaigns)
	case TablePrograms:
		return Programs(s.Programs)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownTable, name)
}

// Summary is the executive overview: one (section, metric, value) row per
// headline figure of every analysis present.
func Summary(s Sources) (*Table, error) {
	if s.Email == nil && s.Forms == nil && s.Landing == nil && s.Prospects == nil &&
		s.UTM == nil && s.Campaigns == nil && s.Programs == nil {
		return nil, &ShapeError{Table: TableSummary}
	}
	t := newTable(TableSummary, "section", "metric", "value")
	add := func(section, metric string, v any) {
		t.Rows = append(t.Rows, Row{"section": section, "metric": metric, "value": v})
	}
	if e := s.Email; e != nil {
		add("email", "total_sent", e.Summary.TotalSent)
		add("email", "total_delivered", e.Summary.TotalDelivered)
		add("email", "delivery_rate", e.Summary.DeliveryRate)
		add("email", "open_rate", e.Summary.OpenRate)
		add("email", "click_rate", e.Summary.ClickRate)
		add("email", "bounce_rate", e.Summary.BounceRate)
		add("email", "unsubscribe_rate", e.Summary.UnsubscribeRate)
		add("email", "skipped", e.Skipped)
	}
	if f := s.Forms; f != nil {
		add("forms", "total_forms", f.Summary.TotalForms)
		add("forms", "active_forms", f.Summary.ActiveCount)
		add("forms", "overall_conversion_rate", f.Summary.OverallConversionRate)
		add("forms", "overall_abandonment_rate", f.Summary.OverallAbandonmentRate)
		add("forms", "high_abandonment_forms", f.HighAbandonment.Count)
		add("forms", "skipped", f.Skipped)
	}
	if l := s.Landing; l != nil {
		add("landing_pages", "total_pages", l.Summary.TotalPages)
		add("landing_pages", "active_pages", l.Summary.ActiveCount)
		add("landing_pages", "active_percentage", l.Summary.ActivePercentage)
		add("landing_pages", "skipped", l.Skipped)
	}
	if p := s.Prospects; p != nil {
		add("prospects", "total_prospects", p.TotalProspects)
		add("prospects", "duplicate_groups", p.Duplicates.Count)
		add("prospects", "inactive_prospects", p.Inactive.Count)
		add("prospects", "missing_fields", p.MissingFields.Count)
		add("prospects", "scoring_issues", p.ScoringIssues.Count)
		add("prospects", "grading_coverage", p.Grading.GradingCoverage)
		add("prospects", "skipped", p.Skipped)
	}
	if u := s.UTM; u != nil {
		add("utm", "prospects_analyzed", u.TotalProspectsAnalyzed)
		add("utm", "prospects_with_issues", u.ProspectsWithUTMIssues)
	}
	if c := s.Campaigns; c != nil {
		add("campaigns", "total_campaigns", c.TotalCampaignsAnalyzed)
		add("campaigns", "active_campaigns", c.ActiveCampaignsCount)
		add("campaigns", "inactive_campaigns", c.InactiveCampaignsCount)
		add("campaigns", "skipped", c.Skipped)
	}
	if p := s.Programs; p != nil {
		add("engagement_programs", "total_programs", p.TotalPrograms)
		add("engagement_programs", "running", p.Running)
		add("engagement_programs", "paused", p.Paused)
	}
	return t, nil
}
