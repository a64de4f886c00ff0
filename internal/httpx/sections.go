package httpx

import "github.com/AngelCh415/pardot-insights/internal/engine"

func sectionOf(res *engine.Result, name string) (any, bool) {
	switch name {
	case "email":
		return res.Email, true
	case "forms":
		return res.Forms, true
	case "landing_pages":
		return res.Landing, true
	case "prospects":
		return res.Prospects, true
	case "duplicates":
		return res.Prospects.Duplicates, true
	case "inactive_prospects":
		return res.Prospects.Inactive, true
	case "missing_fields":
		return res.Prospects.MissingFields, true
	case "scoring_issues":
		return res.Prospects.ScoringIssues, true
	case "grading":
		return res.Prospects.Grading, true
	case "utm":
		return res.UTM, true
	case "campaigns":
		return res.Campaigns, true
	case "engagement_programs":
		return res.Programs, true
	}
	return nil, false
}

// truncate caps every detail list at n entries; counts stay untouched. The
// cached result is never modified, only shallow copies of it.
func truncate(res *engine.Result, n int) *engine.Result {
	if n <= 0 {
		return res
	}
	out := *res
	if res.Email != nil {
		e := *res.Email
		e.Sends = head(e.Sends, n)
		out.Email = &e
	}
	if res.Prospects != nil {
		p := *res.Prospects
		p.Duplicates.Groups = head(p.Duplicates.Groups, n)
		p.Inactive.Prospects = head(p.Inactive.Prospects, n)
		p.MissingFields.Prospects = head(p.MissingFields.Prospects, n)
		p.ScoringIssues.Issues = head(p.ScoringIssues.Issues, n)
		out.Prospects = &p
	}
	if res.UTM != nil {
		u := *res.UTM
		u.Issues = head(u.Issues, n)
		out.UTM = &u
	}
	if res.Campaigns != nil {
		c := *res.Campaigns
		c.ActiveCampaigns = head(c.ActiveCampaigns, n)
		c.InactiveCampaigns = head(c.InactiveCampaigns, n)
		out.Campaigns = &c
	}
	return &out
}

func head[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
