// Package activity holds the single "has recent related activity" rule shared by
// forms, landing pages and campaigns.
package activity

import (
	"time"

	"github.com/AngelCh415/pardot-insights/internal/window"
)

type Kind int

const (
	KindForm Kind = iota + 1
	KindLandingPage
	KindCampaign
)

func (k Kind) String() string {
	switch k {
	case KindForm:
		return "form"
	case KindLandingPage:
		return "landing_page"
	case KindCampaign:
		return "campaign"
	}
	return "unknown"
}

// Event is one timestamped unit of related activity. Weight is how many
// activities it stands for; events with Weight <= 0 carry no activity.
type Event struct {
	At     time.Time
	Weight int
}

// Subject is an entity reduced to its related activity.
type Subject struct {
	Kind   Kind
	ID     string
	Events []Event
}

type Status struct {
	Active       bool
	Recent       int
	Total        int
	LastActivity *time.Time
}

// Classify applies the rule: active iff at least one weighted event lies in w.
func Classify(w window.DateWindow, s Subject) Status {
	var st Status
	for _, ev := range s.Events {
		if ev.Weight <= 0 {
			continue
		}
		st.Total += ev.Weight
		if st.LastActivity == nil || ev.At.After(*st.LastActivity) {
			at := ev.At
			st.LastActivity = &at
		}
		if w.Contains(ev.At) {
			st.Recent += ev.Weight
		}
	}
	st.Active = st.Recent > 0
	return st
}
