package campaigns

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/AngelCh415/pardot-insights/internal/metrics"
	"github.com/AngelCh415/pardot-insights/internal/models"
)

const (
	FieldSource   = "utm_source"
	FieldMedium   = "utm_medium"
	FieldCampaign = "utm_campaign"
	FieldTerm     = "utm_term"
	FieldContent  = "utm_content"
)

var AllUTMFields = []string{FieldSource, FieldMedium, FieldCampaign, FieldTerm, FieldContent}

var validUTMValue = regexp.MustCompile(`^[A-Za-z0-9._~+%-]+$`)

type UTMConfig struct {
	// RequiredFields defaults to every UTM field.
	RequiredFields []string
	// Sources and Mediums, when set, are the canonical vocabularies.
	Sources []string
	Mediums []string
}

type UTMIssue struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	MissingFields []string `json:"missing_fields"`
	InvalidFields []string `json:"invalid_fields"`
}

type UTMReport struct {
	TotalProspectsAnalyzed int            `json:"total_prospects_analyzed"`
	ProspectsWithUTMIssues int            `json:"prospects_with_utm_issues"`
	CleanProspects         int            `json:"clean_prospects"`
	Summary                string         `json:"summary"`
	Issues                 []UTMIssue     `json:"utm_issues"`
	SourceBreakdown        map[string]int `json:"source_breakdown"`
	MediumBreakdown        map[string]int `json:"medium_breakdown"`
	Skipped                int            `json:"skipped"`
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func vocab(xs []string) map[string]struct{} {
	if len(xs) == 0 {
		return nil
	}
	out := map[string]struct{}{}
	for _, x := range xs {
		if x = norm(x); x != "" {
			out[x] = struct{}{}
		}
	}
	return out
}

func utmValue(u models.UTM, field string) *string {
	switch field {
	case FieldSource:
		return u.Source
	case FieldMedium:
		return u.Medium
	case FieldCampaign:
		return u.Campaign
	case FieldTerm:
		return u.Term
	case FieldContent:
		return u.Content
	}
	return nil
}

// ValidateUTM returns the missing and invalid UTM fields of one prospect.
func ValidateUTM(p models.Prospect, cfg UTMConfig) (missing, invalid []string) {
	return validateUTM(p.UTM, requiredFields(cfg), vocab(cfg.Sources), vocab(cfg.Mediums))
}

func requiredFields(cfg UTMConfig) []string {
	if len(cfg.RequiredFields) == 0 {
		return AllUTMFields
	}
	return cfg.RequiredFields
}

func validateUTM(u models.UTM, required []string, sources, mediums map[string]struct{}) (missing, invalid []string) {
	req := map[string]bool{}
	for _, f := range required {
		req[f] = true
	}
	for _, f := range AllUTMFields {
		v := utmValue(u, f)
		if v == nil {
			if req[f] {
				missing = append(missing, f)
			}
			continue
		}
		val := strings.TrimSpace(*v)
		switch {
		case val == "", !validUTMValue.MatchString(val):
			invalid = append(invalid, f)
		case f == FieldSource && sources != nil && !inVocab(sources, val):
			invalid = append(invalid, f)
		case f == FieldMedium && mediums != nil && !inVocab(mediums, val):
			invalid = append(invalid, f)
		}
	}
	return missing, invalid
}

func inVocab(v map[string]struct{}, s string) bool {
	_, ok := v[norm(s)]
	return ok
}

// AnalyzeUTM validates every well-formed prospect; malformed ones are counted
// in Skipped.
func AnalyzeUTM(prospects []models.Prospect, cfg UTMConfig) *UTMReport {
	rep := &UTMReport{Issues: []UTMIssue{}, SourceBreakdown: map[string]int{}, MediumBreakdown: map[string]int{}}
	required := requiredFields(cfg)
	sources, mediums := vocab(cfg.Sources), vocab(cfg.Mediums)

	for _, p := range prospects {
		if err := p.Validate(); err != nil {
			rep.Skipped++
			continue
		}
		rep.TotalProspectsAnalyzed++
		if p.UTM.Source != nil && strings.TrimSpace(*p.UTM.Source) != "" {
			rep.SourceBreakdown[norm(*p.UTM.Source)]++
		}
		if p.UTM.Medium != nil && strings.TrimSpace(*p.UTM.Medium) != "" {
			rep.MediumBreakdown[norm(*p.UTM.Medium)]++
		}

		missing, invalid := validateUTM(p.UTM, required, sources, mediums)
		if len(missing) == 0 && len(invalid) == 0 {
			continue
		}
		rep.Issues = append(rep.Issues, UTMIssue{
			ID:            p.ID,
			Email:         p.Email,
			MissingFields: nonNil(missing),
			InvalidFields: nonNil(invalid),
		})
	}

	sort.SliceStable(rep.Issues, func(i, j int) bool { return rep.Issues[i].ID < rep.Issues[j].ID })
	rep.ProspectsWithUTMIssues = len(rep.Issues)
	rep.CleanProspects = rep.TotalProspectsAnalyzed - rep.ProspectsWithUTMIssues
	rep.Summary = utmSummary(rep)
	return rep
}

func utmSummary(rep *UTMReport) string {
	if rep.TotalProspectsAnalyzed == 0 {
		return "No prospects were available for UTM analysis."
	}
	if rep.ProspectsWithUTMIssues == 0 {
		return fmt.Sprintf("All %d prospects have complete and valid UTM parameters.", rep.TotalProspectsAnalyzed)
	}
	return fmt.Sprintf("%d of %d prospects (%.1f%%) have missing or invalid UTM parameters.",
		rep.ProspectsWithUTMIssues, rep.TotalProspectsAnalyzed,
		metrics.Round1(metrics.Pct(rep.ProspectsWithUTMIssues, rep.TotalProspectsAnalyzed)))
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
