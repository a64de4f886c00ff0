package ingest

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/AngelCh415/pardot-insights/internal/models"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// flexTime accepts the timestamp spellings seen upstream; null, "" and
// unparseable values decode as the zero time.
type flexTime struct{ time.Time }

func (t *flexTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if v, err := time.Parse(l, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return nil
}

func (t flexTime) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

type utmWire struct {
	Source   *string `json:"utm_source"`
	Medium   *string `json:"utm_medium"`
	Campaign *string `json:"utm_campaign"`
	Term     *string `json:"utm_term"`
	Content  *string `json:"utm_content"`
}

type prospectWire struct {
	ID             flexID   `json:"id"`
	Email          string   `json:"email"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	JobTitle       string   `json:"jobTitle"`
	Country        string   `json:"country"`
	Score          *int     `json:"score"`
	Grade          *string  `json:"grade"`
	CreatedAt      flexTime `json:"createdAt"`
	LastActivityAt flexTime `json:"lastActivityAt"`
	CampaignID     flexID   `json:"campaignId"`
	utmWire
	Nested *models.UTM `json:"utm"`
}

type emailWire struct {
	ID      flexID            `json:"id"`
	Name    string            `json:"name"`
	Subject string            `json:"subject"`
	SentAt  flexTime          `json:"sentAt"`
	Stats   models.EmailStats `json:"stats"`
}

type formWire struct {
	ID                flexID   `json:"id"`
	Name              string   `json:"name"`
	IsActive          bool     `json:"isActive"`
	Views             int      `json:"views"`
	UniqueViews       int      `json:"uniqueViews"`
	Submissions       int      `json:"submissions"`
	UniqueSubmissions int      `json:"uniqueSubmissions"`
	Abandoned         *int     `json:"abandoned"`
	Clicks            int      `json:"clicks"`
	Conversions       int      `json:"conversions"`
	CreatedAt         flexTime `json:"createdAt"`
	LastActivity      flexTime `json:"lastActivity"`
}

type landingWire struct {
	ID                  flexID   `json:"id"`
	Name                string   `json:"name"`
	URL                 string   `json:"url"`
	Views               int      `json:"views"`
	Clicks              int      `json:"clicks"`
	Submissions         int      `json:"submissions"`
	RecentActivityCount int      `json:"recentActivityCount"`
	TotalActivityCount  int      `json:"totalActivityCount"`
	LastActivityAt      flexTime `json:"lastActivityAt"`
}

type campaignWire struct {
	ID              flexID         `json:"id"`
	Name            string         `json:"name"`
	CreatedAt       flexTime       `json:"createdAt"`
	UpdatedAt       flexTime       `json:"updatedAt"`
	EngagementScore *float64       `json:"engagementScore"`
	Prospects       []prospectWire `json:"prospects"`
	EmailSends      []emailWire    `json:"emailSends"`
	Forms           []formWire     `json:"forms"`
}

type programWire struct {
	ID        flexID   `json:"id"`
	Name      string   `json:"name"`
	Status    string   `json:"status"`
	CreatedAt flexTime `json:"createdAt"`
}

type snapshotWire struct {
	ID           string         `json:"id"`
	EmailSends   []emailWire    `json:"emailSends"`
	Forms        []formWire     `json:"forms"`
	LandingPages []landingWire  `json:"landingPages"`
	Prospects    []prospectWire `json:"prospects"`
	Campaigns    []campaignWire `json:"campaigns"`
	Programs     []programWire  `json:"programs"`
}

// flexID takes numeric or string identifiers.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

func (w prospectWire) model() models.Prospect {
	return models.Prospect{
		ID:             string(w.ID),
		Email:          w.Email,
		FirstName:      w.FirstName,
		LastName:       w.LastName,
		JobTitle:       w.JobTitle,
		Country:        w.Country,
		Score:          w.Score,
		Grade:          w.Grade,
		CreatedAt:      w.CreatedAt.Time,
		LastActivityAt: w.LastActivityAt.ptr(),
		CampaignID:     string(w.CampaignID),
		UTM:            w.utm(),
	}
}

// utm prefers the flat utm_* fields and falls back to a nested utm object.
func (w prospectWire) utm() models.UTM {
	u := models.UTM{Source: w.Source, Medium: w.Medium, Campaign: w.Campaign, Term: w.Term, Content: w.Content}
	if n := w.Nested; n != nil {
		u.Source = coalesce(u.Source, n.Source)
		u.Medium = coalesce(u.Medium, n.Medium)
		u.Campaign = coalesce(u.Campaign, n.Campaign)
		u.Term = coalesce(u.Term, n.Term)
		u.Content = coalesce(u.Content, n.Content)
	}
	return u
}

func coalesce(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}

func (w emailWire) model() models.EmailSend {
	return models.EmailSend{ID: string(w.ID), Name: w.Name, Subject: w.Subject, Stats: w.Stats, SentAt: w.SentAt.Time}
}

// model fills abandoned as views - submissions when upstream omits it.
func (w formWire) model() models.Form {
	abandoned := max0(w.Views - w.Submissions)
	if w.Abandoned != nil {
		abandoned = *w.Abandoned
	}
	return models.Form{
		ID:                string(w.ID),
		Name:              w.Name,
		IsActive:          w.IsActive,
		Views:             w.Views,
		UniqueViews:       w.UniqueViews,
		Submissions:       w.Submissions,
		UniqueSubmissions: w.UniqueSubmissions,
		Abandoned:         abandoned,
		Clicks:            w.Clicks,
		Conversions:       w.Conversions,
		CreatedAt:         w.CreatedAt.Time,
		LastActivity:      w.LastActivity.ptr(),
	}
}

func (w landingWire) model() models.LandingPage {
	return models.LandingPage{
		ID:                  string(w.ID),
		Name:                w.Name,
		URL:                 strings.TrimSpace(w.URL),
		Views:               w.Views,
		Clicks:              w.Clicks,
		Submissions:         w.Submissions,
		RecentActivityCount: w.RecentActivityCount,
		TotalActivityCount:  w.TotalActivityCount,
		LastActivityAt:      w.LastActivityAt.ptr(),
	}
}

func (w campaignWire) model() models.Campaign {
	c := models.Campaign{
		ID:              string(w.ID),
		Name:            w.Name,
		CreatedAt:       w.CreatedAt.Time,
		UpdatedAt:       w.UpdatedAt.Time,
		EngagementScore: w.EngagementScore,
		Prospects:       mapSlice(w.Prospects, prospectWire.model),
		EmailSends:      mapSlice(w.EmailSends, emailWire.model),
		Forms:           mapSlice(w.Forms, formWire.model),
	}
	return c
}

func (w programWire) model() models.EngagementProgram {
	return models.EngagementProgram{
		ID:        string(w.ID),
		Name:      w.Name,
		Status:    models.ParseProgramStatus(w.Status),
		CreatedAt: w.CreatedAt.Time,
	}
}

func mapSlice[W, M any](in []W, f func(W) M) []M {
	if len(in) == 0 {
		return nil
	}
	out := make([]M, 0, len(in))
	for _, w := range in {
		out = append(out, f(w))
	}
	return out
}

func max0(i int) int {
	if i < 0 {
		return 0
	}
	return i
}
