package campaigns

import (
	"sort"
	"time"

	"github.com/AngelCh415/pardot-insights/internal/activity"
	"github.com/AngelCh415/pardot-insights/internal/models"
	"github.com/AngelCh415/pardot-insights/internal/window"
)

const DefaultWindowMonths = 6

type CampaignStatus struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	EngagementScore       *float64   `json:"engagement_score,omitempty"`
	IsActive              bool       `json:"is_active"`
	RecentProspects       int        `json:"recent_prospects"`
	RecentEmails          int        `json:"recent_emails"`
	RecentFormSubmissions int        `json:"recent_form_submissions"`
	LastActivity          *time.Time `json:"last_activity"`
}

type ActivityReport struct {
	MonthsAnalyzed         int               `json:"months_analyzed"`
	Window                 window.DateWindow `json:"window"`
	TotalCampaignsAnalyzed int               `json:"total_campaigns_analyzed"`
	ActiveCampaignsCount   int               `json:"active_campaigns_count"`
	InactiveCampaignsCount int               `json:"inactive_campaigns_count"`
	ActiveCampaigns        []CampaignStatus  `json:"active_campaigns"`
	InactiveCampaigns      []CampaignStatus  `json:"inactive_campaigns"`
	Skipped                int               `json:"skipped"`
}

// Subject flattens a campaign's related prospects, sends and form submissions
// into activity events.
func Subject(c models.Campaign) activity.Subject {
	s := activity.Subject{Kind: activity.KindCampaign, ID: c.ID}
	for _, p := range c.Prospects {
		s.Events = append(s.Events, activity.Event{At: p.CreatedAt, Weight: 1})
	}
	for _, e := range c.EmailSends {
		s.Events = append(s.Events, activity.Event{At: e.SentAt, Weight: 1})
	}
	for _, f := range c.Forms {
		if f.LastActivity != nil {
			s.Events = append(s.Events, activity.Event{At: *f.LastActivity, Weight: f.Submissions})
		}
	}
	return s
}

// Classify reports one campaign's status against w, counting each related
// entity kind separately.
func Classify(c models.Campaign, w window.DateWindow) CampaignStatus {
	st := activity.Classify(w, Subject(c))
	cs := CampaignStatus{
		ID:              c.ID,
		Name:            c.Name,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		EngagementScore: c.EngagementScore,
		IsActive:        st.Active,
		LastActivity:    st.LastActivity,
	}
	for _, p := range c.Prospects {
		if w.Contains(p.CreatedAt) {
			cs.RecentProspects++
		}
	}
	for _, e := range c.EmailSends {
		if w.Contains(e.SentAt) {
			cs.RecentEmails++
		}
	}
	for _, f := range c.Forms {
		if f.LastActivity != nil && f.Submissions > 0 && w.Contains(*f.LastActivity) {
			cs.RecentFormSubmissions += f.Submissions
		}
	}
	return cs
}

// AnalyzeActivity classifies campaigns over the trailing months ending at now.
func AnalyzeActivity(campaigns []models.Campaign, now time.Time, months int) *ActivityReport {
	if months <= 0 {
		months = DefaultWindowMonths
	}
	w := window.LastMonths(now, months)
	rep := &ActivityReport{
		MonthsAnalyzed:    months,
		Window:            w,
		ActiveCampaigns:   []CampaignStatus{},
		InactiveCampaigns: []CampaignStatus{},
	}
	for _, c := range campaigns {
		if c.Validate() != nil {
			rep.Skipped++
			continue
		}
		cs := Classify(c, w)
		if cs.IsActive {
			rep.ActiveCampaigns = append(rep.ActiveCampaigns, cs)
		} else {
			rep.InactiveCampaigns = append(rep.InactiveCampaigns, cs)
		}
	}

	// activas: más recientes primero
	sort.SliceStable(rep.ActiveCampaigns, func(i, j int) bool {
		a, b := rep.ActiveCampaigns[i], rep.ActiveCampaigns[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	sort.SliceStable(rep.InactiveCampaigns, func(i, j int) bool {
		a, b := rep.InactiveCampaigns[i], rep.InactiveCampaigns[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	rep.TotalCampaignsAnalyzed = len(rep.ActiveCampaigns) + len(rep.InactiveCampaigns)
	rep.ActiveCampaignsCount = len(rep.ActiveCampaigns)
	rep.InactiveCampaignsCount = len(rep.InactiveCampaigns)
	return rep
}
