package report

import (
	"strings"

	"github.com/AngelCh415/pardot-insights/internal/campaigns"
	"github.com/AngelCh415/pardot-insights/internal/forms"
	"github.com/AngelCh415/pardot-insights/internal/landing"
	"github.com/AngelCh415/pardot-insights/internal/metrics"
	"github.com/AngelCh415/pardot-insights/internal/prospects"
)

func Email(rep *metrics.EmailReport) (*Table, error) {
	if rep == nil {
		return nil, &ShapeError{Table: TableEmail}
	}
	t := newTable(TableEmail,
		"id", "name", "subject", "sent_at",
		"sent", "delivered", "opens", "clicks", "bounces", "hard_bounces", "soft_bounces", "unsubscribes",
		"delivery_rate", "open_rate", "click_rate", "bounce_rate", "unsubscribe_rate")
	for _, s := range rep.Sends {
		t.Rows = append(t.Rows, Row{
			"id":               s.ID,
			"name":             s.Name,
			"subject":          s.Subject,
			"sent_at":          ISO(s.SentAt),
			"sent":             s.Stats.Sent,
			"delivered":        s.Stats.Delivered,
			"opens":            s.Stats.Opens,
			"clicks":           s.Stats.Clicks,
			"bounces":          s.Stats.Bounces,
			"hard_bounces":     s.Stats.HardBounces,
			"soft_bounces":     s.Stats.SoftBounces,
			"unsubscribes":     s.Stats.Unsubscribes,
			"delivery_rate":    s.DeliveryRate,
			"open_rate":        s.OpenRate,
			"click_rate":       s.ClickRate,
			"bounce_rate":      s.BounceRate,
			"unsubscribe_rate": s.UnsubscribeRate,
		})
	}
	return t, nil
}

var formColumns = []string{
	"id", "name", "views", "submissions", "abandoned",
	"conversion_rate", "abandonment_rate", "is_active", "last_activity",
}

func formRow(f forms.FormStats) Row {
	return Row{
		"id":               f.ID,
		"name":             f.Name,
		"views":            f.Views,
		"submissions":      f.Submissions,
		"abandoned":        f.Abandoned,
		"conversion_rate":  f.ConversionRate,
		"abandonment_rate": f.AbandonmentRate,
		"is_active":        f.IsActive,
		"last_activity":    ISOPtr(f.LastActivity),
	}
}

func Forms(rep *forms.Report) (*Table, error) {
	if rep == nil {
		return nil, &ShapeError{Table: TableForms}
	}
	t := newTable(TableForms, formColumns...)
	for _, f := range rep.Forms {
		t.Rows = append(t.Rows, formRow(f))
	}
	return t, nil
}

// Abandonment lists the forms of both abandonment categories, high first.
func Abandonment(rep *forms.Report) (*Table, error) {
	if rep == nil {
		return nil, &ShapeError{Table: TableAbandonment}
	}
	t := newTable(TableAbandonment, append([]string{"category", "threshold"}, formColumns...)...)
	add := func(name string, c forms.Category) {
		for _, f := range c.Forms {
			r := formRow(f)
			r["category"] = name
			r["threshold"] = c.Threshold
			t.Rows = append(t.Rows, r)
		}
	}
	add("high_abandonment", rep.HighAbandonment)
	add("low_abandonment", rep.LowAbandonment)
	return t, nil
}

func Landing(rep *landing.Report) (*Table, error) {
	if rep == nil {
		return nil, &ShapeError{Table: TableLanding}
	}
	t := newTable(TableLanding,
		"id", "name", "url", "views", "clicks", "submissions",
		"total_activities", "recent_activities", "is_active", "last_activity")
	for _, group := range [][]landing.PageStats{rep.Active, rep.Inactive} {
		for _, p := range group {
			t.Rows = append(t.Rows, Row{
				"id":                p.ID,
				"name":              p.Name,
				"url":               p.URL,
				"views":             p.Views,
				"clicks":            p.Clicks,
				"submissions":       p.Submissions,
				"total_activities":  p.TotalActivities,
				"recent_activities": p.RecentActivities,
				"is_active":         p.IsActive,
				"last_activity":     ISOPtr(p.LastActivity),
			})
		}
	}
	return t, nil
}

func refRow(r prospects.Ref) Row {
	return Row{
		"id":         r.ID,
		"email":      r.Email,
		"first_name": r.FirstName,
		"last_name":  r.LastName,
		"created_at": ISO(r.CreatedAt),
	}
}

var refColumns = []string{"id", "email", "first_name", "last_name", "created_at"}

// Duplicates emits one row per member prospect, tagged with its group.
func Duplicates(res *prospects.DuplicatesResult) (*Table, error) {
	if res == nil {
		return nil, &ShapeError{Table: TableDuplicates}
	}
	t := newTable(TableDuplicates, append([]string{"duplicate_email", "group_size"}, refColumns...)...)
	for _, g := range res.Groups {
		for _, p := range g.Prospects {
			r := refRow(p)
			r["duplicate_email"] = g.Email
			r["group_size"] = g.Count
			t.Rows = append(t.Rows, r)
		}
	}
	return t, nil
}

func Inactive(res *prospects.InactiveResult) (*Table, error) {
	if res == nil {
		return nil, &ShapeError{Table: TableInactive}
	}
	t := newTable(TableInactive, append(refColumns, "last_activity_at", "days_since_activity")...)
	for _, p := range res.Prospects {
		r := refRow(p.Ref)
		r["last_activity_at"] = ISOPtr(p.LastActivityAt)
		r["days_since_activity"] = p.DaysSinceActivity.String()
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

func Missing(res *prospects.MissingResult) (*Table, error) {
	if res == nil {
		return nil, &ShapeError{Table: TableMissing}
	}
	t := newTable(TableMissing, append(refColumns, "missing_fields")...)
	for _, p := range res.Prospects {
		r := refRow(p.Ref)
		r["missing_fields"] = strings.Join(p.MissingFields, ", ")
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

func Scoring(res *prospects.ScoringResult) (*Table, error) {
	if res == nil {
		return nil, &ShapeError{Table: TableScoring}
	}
	t := newTable(TableScoring, append(refColumns, "score", "grade", "last_activity_at", "rule", "issue")...)
	for _, is := range res.Issues {
		r := refRow(is.Ref)
		r["score"] = ""
		if is.Score != nil {
			r["score"] = *is.Score
		}
		r["grade"] = ""
		if is.Grade != nil {
			r["grade"] = *is.Grade
		}
		r["last_activity_at"] = ISOPtr(is.LastActivityAt)
		r["rule"] = is.Rule
		r["issue"] = is.Issue
		t.Rows = append(t.Rows, r)
	}
	return t, nil
}

func UTM(rep *campaigns.UTMReport) (*Table, error) {
	if rep == nil {
		return nil, &ShapeError{Table: TableUTM}
	}
	t := newTable(TableUTM, "id", "email", "missing_fields", "invalid_fields")
	for _, is := range rep.Issues {
		t.Rows = append(t.Rows, Row{
			"id":             is.ID,
			"email":          is.Email,
			"missing_fields": strings.Join(is.MissingFields, ", "),
			"invalid_fields": strings.Join(is.InvalidFields, ", "),
		})
	}
	return t, nil
}

// Campaigns lists active then inactive campaigns. A missing engagement score
// is exported as 0.
func Campaigns(rep *campaigns.ActivityReport) (*Table, error) {
	if rep == nil {
		return nil, &ShapeError{Table: TableCampaigns}
	}
	t := newTable(TableCampaigns,
		"id", "name", "status", "created_at", "updated_at", "engagement_score",
		"recent_prospects", "recent_emails", "recent_form_submissions", "last_activity")
	for _, group := range [][]campaigns.CampaignStatus{rep.ActiveCampaigns, rep.InactiveCampaigns} {
		for _, c := range group {
			score := 0.0
			if c.EngagementScore != nil {
				score = *c.EngagementScore
			}
			status := "inactive"
			if c.IsActive {
				status = "active"
			}
			t.Rows = append(t.Rows, Row{
				"id":                      c.ID,
				"name":                    c.Name,
				"status":                  status,
				"created_at":              ISO(c.CreatedAt),
				"updated_at":              ISO(c.UpdatedAt),
				"engagement_score":        score,
				"recent_prospects":        c.RecentProspects,
				"recent_emails":           c.RecentEmails,
				"recent_form_submissions": c.RecentFormSubmissions,
				"last_activity":           ISOPtr(c.LastActivity),
			})
		}
	}
	return t, nil
}

func Programs(rep *campaigns.ProgramsReport) (*Table, error) {
	if rep == nil {
		return nil, &ShapeError{Table: TablePrograms}
	}
	t := newTable(TablePrograms, "id", "name", "status", "created_at")
	for _, p := range rep.Programs {
		t.Rows = append(t.Rows, Row{
			"id":         p.ID,
			"name":       p.Name,
			"status":     string(p.Status),
			"created_at": ISO(p.CreatedAt),
		})
	}
	return t, nil
}
