package prospects

import (
	"strings"

	"github.com/AngelCh415/pardot-insights/internal/metrics"
	"github.com/AngelCh415/pardot-insights/internal/models"
)

type GradingAnalysis struct {
	TotalProspects    int                `json:"total_prospects"`
	GradedProspects   int                `json:"graded_prospects"`
	UngradedProspects int                `json:"ungraded_prospects"`
	GradingCoverage   float64            `json:"grading_coverage"`
	GradeDistribution map[string]int     `json:"grade_distribution"`
	GradePercentages  map[string]float64 `json:"grade_percentages"`
	Skipped           int                `json:"skipped"`
}

// AnalyzeGrading computes grade coverage over the well-formed prospects.
func AnalyzeGrading(prospects []models.Prospect) GradingAnalysis {
	ga := GradingAnalysis{GradeDistribution: map[string]int{}, GradePercentages: map[string]float64{}}
	for _, p := range prospects {
		if !valid(p) {
			ga.Skipped++
			continue
		}
		ga.TotalProspects++
		if present(p.Grade) {
			ga.GradedProspects++
			ga.GradeDistribution[strings.TrimSpace(*p.Grade)]++
		}
	}
	ga.UngradedProspects = ga.TotalProspects - ga.GradedProspects
	ga.GradingCoverage = metrics.Pct(ga.GradedProspects, ga.TotalProspects)
	for g, n := range ga.GradeDistribution {
		ga.GradePercentages[g] = metrics.Pct(n, ga.GradedProspects)
	}
	return ga
}
