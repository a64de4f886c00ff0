package models

import (
	"strings"
	"time"
)

type UTM struct {
	Source   *string `json:"source,omitempty"`
	Medium   *string `json:"medium,omitempty"`
	Campaign *string `json:"campaign,omitempty"`
	Term     *string `json:"term,omitempty"`
	Content  *string `json:"content,omitempty"`
}

type Prospect struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	JobTitle       string     `json:"jobTitle"`
	Country        string     `json:"country,omitempty"`
	Score          *int       `json:"score,omitempty"`
	Grade          *string    `json:"grade,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
	CampaignID     string     `json:"campaignId,omitempty"`
	UTM            UTM        `json:"utm"`
}

// Validate checks the identity invariant: id and email are never both absent.
func (p Prospect) Validate() error {
	if strings.TrimSpace(p.ID) == "" && strings.TrimSpace(p.Email) == "" {
		return &MalformedRecordError{Kind: "prospect", Reason: "missing id and email"}
	}
	return nil
}

type EmailStats struct {
	Sent         int `json:"sent"`
	Delivered    int `json:"delivered"`
	Opens        int `json:"opens"`
	Clicks       int `json:"clicks"`
	Bounces      int `json:"bounces"`
	HardBounces  int `json:"hardBounces"`
	SoftBounces  int `json:"softBounces"`
	Unsubscribes int `json:"unsubscribes"`
}

type EmailSend struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Subject string     `json:"subject,omitempty"`
	Stats   EmailStats `json:"stats"`
	SentAt  time.Time  `json:"sentAt"`
}

func (e EmailSend) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return &MalformedRecordError{Kind: "email", Reason: "missing id"}
	}
	return nil
}

type Form struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	IsActive          bool       `json:"isActive"` // flag del upstream, solo informativo
	Views             int        `json:"views"`
	UniqueViews       int        `json:"uniqueViews"`
	Submissions       int        `json:"submissions"`
	UniqueSubmissions int        `json:"uniqueSubmissions"`
	Abandoned         int        `json:"abandoned"`
	Clicks            int        `json:"clicks"`
	Conversions       int        `json:"conversions"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastActivity      *time.Time `json:"lastActivity,omitempty"`
}

func (f Form) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return &MalformedRecordError{Kind: "form", Reason: "missing id"}
	}
	return nil
}

type LandingPage struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	URL                 string     `json:"url,omitempty"`
	Views               int        `json:"views"`
	Clicks              int        `json:"clicks"`
	Submissions         int        `json:"submissions"`
	RecentActivityCount int        `json:"recentActivityCount"`
	TotalActivityCount  int        `json:"totalActivityCount"`
	LastActivityAt      *time.Time `json:"lastActivityAt,omitempty"`
}

func (p LandingPage) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return &MalformedRecordError{Kind: "landing page", Reason: "missing id"}
	}
	return nil
}

type Campaign struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	EngagementScore *float64    `json:"engagementScore,omitempty"`
	Prospects       []Prospect  `json:"prospects,omitempty"`
	EmailSends      []EmailSend `json:"emailSends,omitempty"`
	Forms           []Form      `json:"forms,omitempty"`
}

func (c Campaign) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return &MalformedRecordError{Kind: "campaign", Reason: "missing id"}
	}
	return nil
}

type ProgramStatus string

const (
	ProgramRunning ProgramStatus = "Running"
	ProgramPaused  ProgramStatus = "Paused"
	ProgramUnknown ProgramStatus = "Unknown"
)

// ParseProgramStatus maps any upstream spelling to the three known statuses.
func ParseProgramStatus(s string) ProgramStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running", "active", "started":
		return ProgramRunning
	case "paused":
		return ProgramPaused
	default:
		return ProgramUnknown
	}
}

type EngagementProgram struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Status    ProgramStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Snapshot is one read-only set of entities fetched for an analysis request.
type Snapshot struct {
	ID           string              `json:"id"`
	FetchedAt    time.Time           `json:"fetchedAt"`
	EmailSends   []EmailSend         `json:"emailSends"`
	Forms        []Form              `json:"forms"`
	LandingPages []LandingPage       `json:"landingPages"`
	Prospects    []Prospect          `json:"prospects"`
	Campaigns    []Campaign          `json:"campaigns"`
	Programs     []EngagementProgram `json:"programs"`
}

// Str returns a pointer to s; handy for nullable string fields.
func Str(s string) *string { return &s }

// Int returns a pointer to i.
func Int(i int) *int { return &i }
func Float(f float64) *float64 { return &f }

// Time returns a pointer to t.
func Time(t time.Time) *time.Time { return &t }
