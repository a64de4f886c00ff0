// Package prospects runs the prospect database health checks: duplicates,
// inactivity, missing required fields and scoring anomalies.
package prospects

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/pardot-insights/internal/models"
)

const (
	DefaultInactiveDays = 90
	DefaultScoreCeiling = 100
)

// DefaultRequiredFields is the canonical required-field set for the missing
// fields check.
var DefaultRequiredFields = []string{"firstName", "lastName", "email", "jobTitle"}

type StaleScoreConfig struct {
	Enabled bool
	// a score above NoActivityScore with no recorded activity is flagged
	NoActivityScore int
	// a score above HighScore idle for more than MaxIdleDays is flagged
	HighScore   int
	MaxIdleDays int
}

type Config struct {
	InactiveDays   int
	RequiredFields []string
	ScoreCeiling   int
	// Grades, when set, is the accepted grade vocabulary.
	Grades     []string
	StaleScore StaleScoreConfig
}

func DefaultConfig() Config {
	return Config{
		InactiveDays:   DefaultInactiveDays,
		RequiredFields: append([]string(nil), DefaultRequiredFields...),
		ScoreCeiling:   DefaultScoreCeiling,
		StaleScore:     StaleScoreConfig{NoActivityScore: 50, HighScore: 75, MaxIdleDays: 30},
	}
}

func (c Config) withDefaults() Config {
	if c.InactiveDays <= 0 {
		c.InactiveDays = DefaultInactiveDays
	}
	if len(c.RequiredFields) == 0 {
		c.RequiredFields = DefaultRequiredFields
	}
	if c.ScoreCeiling <= 0 {
		c.ScoreCeiling = DefaultScoreCeiling
	}
	return c
}

// Ref is the identifying slice of a prospect carried in every result list.
type Ref struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

func refOf(p models.Prospect) Ref {
	return Ref{ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName, CreatedAt: p.CreatedAt}
}

type Report struct {
	TotalProspects int              `json:"total_prospects"`
	Skipped        int              `json:"skipped"`
	Duplicates     DuplicatesResult `json:"duplicates"`
	Inactive       InactiveResult   `json:"inactive_prospects"`
	MissingFields  MissingResult    `json:"missing_fields"`
	ScoringIssues  ScoringResult    `json:"scoring_issues"`
	Grading        GradingAnalysis  `json:"grading_analysis"`
}

// Analyze runs the detectors concurrently; they only read the shared slice.
func Analyze(ctx context.Context, prospects []models.Prospect, now time.Time, cfg Config) (*Report, error) {
	cfg = cfg.withDefaults()
	rep := &Report{TotalProspects: len(prospects)}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.Duplicates = FindDuplicates(prospects)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.Inactive = FindInactive(prospects, now, cfg.InactiveDays)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.MissingFields = FindMissingFields(prospects, cfg.RequiredFields)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.ScoringIssues = FindScoringIssues(prospects, now, cfg)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep.Grading = AnalyzeGrading(prospects)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	rep.Skipped = rep.Duplicates.Skipped
	return rep, nil
}

// valid reports whether p can be analyzed; malformed records are skipped.
func valid(p models.Prospect) bool { return p.Validate() == nil }

func present(s *string) bool { return s != nil && !blank(*s) }
