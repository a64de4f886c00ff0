package prospects

import (
	"strings"

	"github.com/AngelCh415/pardot-insights/internal/models"
)

type MissingFieldsProspect struct {
	Ref
	MissingFields []string `json:"missingFields"`
}

type MissingResult struct {
	Count          int                     `json:"count"`
	RequiredFields []string                `json:"required_fields"`
	Prospects      []MissingFieldsProspect `json:"details"`
	Skipped        int                     `json:"skipped"`
}

// FindMissingFields lists prospects with at least one blank required field.
// Unknown field names are ignored.
func FindMissingFields(prospects []models.Prospect, required []string) MissingResult {
	res := MissingResult{RequiredFields: required, Prospects: []MissingFieldsProspect{}}
	for _, p := range prospects {
		if !valid(p) {
			res.Skipped++
			continue
		}
		var missing []string
		for _, f := range required {
			has, known := hasField(p, f)
			if known && !has {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			res.Prospects = append(res.Prospects, MissingFieldsProspect{Ref: refOf(p), MissingFields: missing})
		}
	}
	res.Count = len(res.Prospects)
	return res
}

// KnownField reports whether name can be used in a required-field set.
func KnownField(name string) bool {
	_, known := hasField(models.Prospect{}, name)
	return known
}

func hasField(p models.Prospect, name string) (has, known bool) {
	switch name {
	case "id":
		return !blank(p.ID), true
	case "email":
		return !blank(p.Email), true
	case "firstName":
		return !blank(p.FirstName), true
	case "lastName":
		return !blank(p.LastName), true
	case "jobTitle":
		return !blank(p.JobTitle), true
	case "country":
		return !blank(p.Country), true
	case "campaignId":
		return !blank(p.CampaignID), true
	case "grade":
		return present(p.Grade), true
	case "score":
		return p.Score != nil, true
	}
	return false, false
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
