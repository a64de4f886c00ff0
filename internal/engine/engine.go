// Package engine runs every analyzer family over one snapshot with a single
// resolved date window.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/pardot-insights/internal/campaigns"
	"github.com/AngelCh415/pardot-insights/internal/config"
	"github.com/AngelCh415/pardot-insights/internal/forms"
	"github.com/AngelCh415/pardot-insights/internal/landing"
	"github.com/AngelCh415/pardot-insights/internal/metrics"
	"github.com/AngelCh415/pardot-insights/internal/models"
	"github.com/AngelCh415/pardot-insights/internal/prospects"
	"github.com/AngelCh415/pardot-insights/internal/report"
	"github.com/AngelCh415/pardot-insights/internal/window"
)

var ErrNoNow = errors.New("engine: reference time is required")

type Settings struct {
	TopPerformers  int
	Forms          forms.Config
	Landing        landing.Config
	Prospects      prospects.Config
	CampaignMonths int
	UTM            campaigns.UTMConfig
}

// SettingsFrom maps the configured thresholds onto the analyzer configs.
func SettingsFrom(a config.Analysis) Settings {
	p := a.Prospects
	return Settings{
		TopPerformers: a.Email.TopPerformers,
		Forms: forms.Config{
			WindowDays:      a.Forms.WindowDays,
			HighAbandonment: a.Forms.HighAbandonment,
			LowAbandonment:  a.Forms.LowAbandonment,
		},
		Landing: landing.Config{WindowMonths: a.Landing.WindowMonths},
		Prospects: prospects.Config{
			InactiveDays:   p.InactiveDays,
			RequiredFields: p.RequiredFields,
			ScoreCeiling:   p.ScoreCeiling,
			Grades:         p.Grades,
			StaleScore: prospects.StaleScoreConfig{
				Enabled:         p.StaleScore.Enabled,
				NoActivityScore: p.StaleScore.NoActivityScore,
				HighScore:       p.StaleScore.HighScore,
				MaxIdleDays:     p.StaleScore.MaxIdleDays,
			},
		},
		CampaignMonths: a.Campaigns.WindowMonths,
		UTM: campaigns.UTMConfig{
			RequiredFields: a.Campaigns.UTMRequiredFields,
			Sources:        a.Campaigns.UTMSources,
			Mediums:        a.Campaigns.UTMMediums,
		},
	}
}

type Params struct {
	Filter window.Filter
	Now    time.Time
	// CampaignMonths overrides Settings.CampaignMonths when > 0.
	CampaignMonths int
	Settings       Settings
}

type Result struct {
	SnapshotID  string                    `json:"snapshot_id"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Window      window.DateWindow         `json:"window"`
	Email       *metrics.EmailReport      `json:"email"`
	Forms       *forms.Report             `json:"forms"`
	Landing     *landing.Report           `json:"landing_pages"`
	Prospects   *prospects.Report         `json:"prospects"`
	UTM         *campaigns.UTMReport      `json:"utm"`
	Campaigns   *campaigns.ActivityReport `json:"campaigns"`
	Programs    *campaigns.ProgramsReport `json:"engagement_programs"`
}

// Sources exposes the result to the report shaper.
func (r *Result) Sources() report.Sources {
	return report.Sources{
		Email:     r.Email,
		Forms:     r.Forms,
		Landing:   r.Landing,
		Prospects: r.Prospects,
		UTM:       r.UTM,
		Campaigns: r.Campaigns,
		Programs:  r.Programs,
	}
}

type Engine struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log}
}

// Analyze resolves the window once and runs the analyzer families concurrently.
// The email section honours the requested window; the classifiers use their own
// trailing windows anchored at the same Now.
func (e *Engine) Analyze(ctx context.Context, snap *models.Snapshot, p Params) (*Result, error) {
	if p.Now.IsZero() {
		return nil, ErrNoNow
	}
	if snap == nil {
		snap = &models.Snapshot{}
	}
	w, err := window.Resolve(p.Filter, p.Now)
	if err != nil {
		return nil, fmt.Errorf("resolve window: %w", err)
	}
	start := time.Now()
	s := p.Settings
	months := s.CampaignMonths
	if p.CampaignMonths > 0 {
		months = p.CampaignMonths
	}

	res := &Result{SnapshotID: snap.ID, GeneratedAt: p.Now, Window: w}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Email = metrics.AnalyzeEmail(metrics.FilterSends(snap.EmailSends, w), w, s.TopPerformers)
		return ctx.Err()
	})
	g.Go(func() error {
		res.Forms = forms.Analyze(snap.Forms, p.Now, s.Forms)
		return ctx.Err()
	})
	g.Go(func() error {
		res.Landing = landing.Analyze(snap.LandingPages, p.Now, s.Landing)
		return ctx.Err()
	})
	g.Go(func() error {
		rep, err := prospects.Analyze(ctx, snap.Prospects, p.Now, s.Prospects)
		if err != nil {
			return fmt.Errorf("prospects: %w", err)
		}
		res.Prospects = rep
		return nil
	})
	g.Go(func() error {
		res.UTM = campaigns.AnalyzeUTM(snap.Prospects, s.UTM)
		res.Campaigns = campaigns.AnalyzeActivity(snap.Campaigns, p.Now, months)
		res.Programs = campaigns.AnalyzePrograms(snap.Programs)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.log.Debug("analysis complete",
		slog.String("snapshot", snap.ID),
		slog.String("window", w.String()),
		slog.Int("emails", len(res.Email.Sends)),
		slog.Int("forms", len(snap.Forms)),
		slog.Int("prospects", len(snap.Prospects)),
		slog.Int("campaigns", len(snap.Campaigns)),
		slog.Duration("took", time.Since(start)))
	return res, nil
}
