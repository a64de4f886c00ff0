package prospects

import (
	"sort"
	"strings"

	"github.com/AngelCh415/pardot-insights/internal/models"
)

type DuplicateGroup struct {
	Email     string `json:"email"`
	Count     int    `json:"count"`
	Prospects []Ref  `json:"prospects"`
}

type DuplicatesResult struct {
	Count   int              `json:"count"`
	Groups  []DuplicateGroup `json:"details"`
	Skipped int              `json:"skipped"`
}

// NormalizeEmail is the grouping key: trimmed and lower-cased.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// FindDuplicates groups prospects sharing a normalized email. Groups come out by
// count desc then email; members by id, so input order never matters.
func FindDuplicates(prospects []models.Prospect) DuplicatesResult {
	res := DuplicatesResult{Groups: []DuplicateGroup{}}
	byEmail := map[string][]Ref{}
	for _, p := range prospects {
		if !valid(p) {
			res.Skipped++
			continue
		}
		email := NormalizeEmail(p.Email)
		if email == "" {
			continue
		}
		byEmail[email] = append(byEmail[email], refOf(p))
	}

	for email, refs := range byEmail {
		if len(refs) < 2 {
			continue
		}
		sort.SliceStable(refs, func(i, j int) bool {
			if refs[i].ID != refs[j].ID {
				return refs[i].ID < refs[j].ID
			}
			return refs[i].Email < refs[j].Email
		})
		res.Groups = append(res.Groups, DuplicateGroup{Email: email, Count: len(refs), Prospects: refs})
	}

	// orden determinista
	sort.Slice(res.Groups, func(i, j int) bool {
		if res.Groups[i].Count != res.Groups[j].Count {
			return res.Groups[i].Count > res.Groups[j].Count
		}
		return res.Groups[i].Email < res.Groups[j].Email
	})
	res.Count = len(res.Groups)
	return res
}
