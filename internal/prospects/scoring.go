package prospects

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AngelCh415/pardot-insights/internal/models"
)

const (
	RuleInconsistentScoring = "inconsistent scoring"
	RuleOutOfRangeScore     = "out of range score"
	RuleInvalidGrade        = "invalid grade"
	RuleStaleHighScore      = "stale high score"
)

type ScoringIssue struct {
	Ref
	Score          *int       `json:"score"`
	Grade          *string    `json:"grade"`
	LastActivityAt *time.Time `json:"lastActivityAt"`
	Rule           string     `json:"rule"`
	Issue          string     `json:"issue"`
}

type ScoringResult struct {
	Count        int            `json:"count"`
	Prospects    int            `json:"prospects"`
	ScoreCeiling int            `json:"score_ceiling"`
	Issues       []ScoringIssue `json:"details"`
	Skipped      int            `json:"skipped"`
}

// FindScoringIssues emits one entry per rule fired, so a prospect can appear
// several times. Count is the number of entries, Prospects the distinct ones.
func FindScoringIssues(prospects []models.Prospect, now time.Time, cfg Config) ScoringResult {
	cfg = cfg.withDefaults()
	res := ScoringResult{ScoreCeiling: cfg.ScoreCeiling, Issues: []ScoringIssue{}}

	grades := map[string]struct{}{}
	for _, g := range cfg.Grades {
		grades[normGrade(g)] = struct{}{}
	}

	for _, p := range prospects {
		if !valid(p) {
			res.Skipped++
			continue
		}
		before := len(res.Issues)
		add := func(rule, issue string) {
			res.Issues = append(res.Issues, ScoringIssue{
				Ref:            refOf(p),
				Score:          p.Score,
				Grade:          p.Grade,
				LastActivityAt: p.LastActivityAt,
				Rule:           rule,
				Issue:          issue,
			})
		}

		hasGrade := present(p.Grade)
		switch {
		case p.Score != nil && !hasGrade:
			add(RuleInconsistentScoring, "inconsistent scoring: score present but grade missing")
		case p.Score == nil && hasGrade:
			add(RuleInconsistentScoring, "inconsistent scoring: grade present but score missing")
		}

		if p.Score != nil && (*p.Score < 0 || *p.Score > cfg.ScoreCeiling) {
			add(RuleOutOfRangeScore, fmt.Sprintf("out of range score: %d outside 0..%d", *p.Score, cfg.ScoreCeiling))
		}

		if hasGrade && len(grades) > 0 {
			if _, ok := grades[normGrade(*p.Grade)]; !ok {
				add(RuleInvalidGrade, fmt.Sprintf("invalid grade: %q is not an accepted grade", *p.Grade))
			}
		}

		if cfg.StaleScore.Enabled && p.Score != nil {
			if issue, ok := staleScore(p, now, cfg.StaleScore); ok {
				add(RuleStaleHighScore, issue)
			}
		}

		if len(res.Issues) > before {
			res.Prospects++
		}
	}

	sort.SliceStable(res.Issues, func(i, j int) bool { return res.Issues[i].ID < res.Issues[j].ID })
	res.Count = len(res.Issues)
	return res
}

func staleScore(p models.Prospect, now time.Time, cfg StaleScoreConfig) (string, bool) {
	score := *p.Score
	if p.LastActivityAt == nil {
		if score > cfg.NoActivityScore {
			return "stale high score: high score but no activity recorded", true
		}
		return "", false
	}
	if score > cfg.HighScore {
		if idle := daysBetween(*p.LastActivityAt, now); idle > cfg.MaxIdleDays {
			return fmt.Sprintf("stale high score: high score but no activity in %d days", idle), true
		}
	}
	return "", false
}

func normGrade(g string) string { return strings.ToUpper(strings.TrimSpace(g)) }
