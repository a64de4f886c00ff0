package metrics

import (
	"sort"
	"time"

	"github.com/AngelCh415/pardot-insights/internal/models"
	"github.com/AngelCh415/pardot-insights/internal/window"
)

// EmailSummary holds totals and rates for a set of sends. Rates are percentages
// at full precision; rounding is left to presentation.
type EmailSummary struct {
	Sends             int     `json:"sends"`
	TotalSent         int     `json:"total_sent"`
	TotalDelivered    int     `json:"total_delivered"`
	TotalOpens        int     `json:"total_opens"`
	TotalClicks       int     `json:"total_clicks"`
	TotalBounces      int     `json:"total_bounces"`
	TotalHardBounces  int     `json:"total_hard_bounces"`
	TotalSoftBounces  int     `json:"total_soft_bounces"`
	TotalUnsubscribes int     `json:"total_unsubscribes"`
	DeliveryRate      float64 `json:"delivery_rate"`
	OpenRate          float64 `json:"open_rate"`
	ClickRate         float64 `json:"click_rate"`
	BounceRate        float64 `json:"bounce_rate"`
	UnsubscribeRate   float64 `json:"unsubscribe_rate"`
}

type SendRates struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Subject         string            `json:"subject"`
	SentAt          time.Time         `json:"sent_at"`
	Stats           models.EmailStats `json:"stats"`
	DeliveryRate    float64           `json:"delivery_rate"`
	OpenRate        float64           `json:"open_rate"`
	ClickRate       float64           `json:"click_rate"`
	BounceRate      float64           `json:"bounce_rate"`
	UnsubscribeRate float64           `json:"unsubscribe_rate"`
}

type EmailReport struct {
	Window  window.DateWindow `json:"window"`
	Summary EmailSummary      `json:"summary"`
	Sends   []SendRates       `json:"sends"`
	Top     []SendRates       `json:"top_performers"`
	Skipped int               `json:"skipped"`
}

// FilterSends keeps the sends whose SentAt lies in w, in input order.
func FilterSends(sends []models.EmailSend, w window.DateWindow) []models.EmailSend {
	if w.Unbounded() {
		return sends
	}
	out := make([]models.EmailSend, 0, len(sends))
	for _, s := range sends {
		if w.Contains(s.SentAt) {
			out = append(out, s)
		}
	}
	return out
}

func Aggregate(sends []models.EmailSend) EmailSummary {
	sum := EmailSummary{Sends: len(sends)}
	for _, s := range sends {
		st := s.Stats
		sum.TotalSent += max0(st.Sent)
		sum.TotalDelivered += max0(st.Delivered)
		sum.TotalOpens += max0(st.Opens)
		sum.TotalClicks += max0(st.Clicks)
		sum.TotalBounces += max0(st.Bounces)
		sum.TotalHardBounces += max0(st.HardBounces)
		sum.TotalSoftBounces += max0(st.SoftBounces)
		sum.TotalUnsubscribes += max0(st.Unsubscribes)
	}
	sum.DeliveryRate = Pct(sum.TotalDelivered, sum.TotalSent)
	sum.OpenRate = Pct(sum.TotalOpens, sum.TotalDelivered)
	sum.ClickRate = Pct(sum.TotalClicks, sum.TotalDelivered)
	sum.BounceRate = Pct(sum.TotalBounces, sum.TotalSent)
	sum.UnsubscribeRate = Pct(sum.TotalUnsubscribes, sum.TotalDelivered)
	return sum
}

// RecordRates applies the aggregate formulas to a single send.
func RecordRates(s models.EmailSend) SendRates {
	agg := Aggregate([]models.EmailSend{s})
	return SendRates{
		ID:              s.ID,
		Name:            s.Name,
		Subject:         s.Subject,
		SentAt:          s.SentAt,
		Stats:           s.Stats,
		DeliveryRate:    agg.DeliveryRate,
		OpenRate:        agg.OpenRate,
		ClickRate:       agg.ClickRate,
		BounceRate:      agg.BounceRate,
		UnsubscribeRate: agg.UnsubscribeRate,
	}
}

// TopPerformers ranks sends by opens+clicks, ties broken by ID.
func TopPerformers(sends []models.EmailSend, n int) []SendRates {
	ranked := append([]models.EmailSend(nil), sends...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ei := max0(ranked[i].Stats.Opens) + max0(ranked[i].Stats.Clicks)
		ej := max0(ranked[j].Stats.Opens) + max0(ranked[j].Stats.Clicks)
		if ei != ej {
			return ei > ej
		}
		return ranked[i].ID < ranked[j].ID
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]SendRates, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, RecordRates(s))
	}
	return out
}

// AnalyzeEmail builds the email section for sends already restricted to w.
// Sends without an id are left out of every figure and counted in Skipped.
func AnalyzeEmail(sends []models.EmailSend, w window.DateWindow, topN int) *EmailReport {
	valid := make([]models.EmailSend, 0, len(sends))
	for _, s := range sends {
		if s.Validate() != nil {
			continue
		}
		valid = append(valid, s)
	}
	rep := &EmailReport{
		Window:  w,
		Summary: Aggregate(valid),
		Sends:   make([]SendRates, 0, len(valid)),
		Top:     TopPerformers(valid, topN),
		Skipped: len(sends) - len(valid),
	}
	for _, s := range valid {
		rep.Sends = append(rep.Sends, RecordRates(s))
	}
	return rep
}
