package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SnapshotURL string
	SinkURL     string
	SinkSecret  string
	Port        string
	HTTPTimeout time.Duration
	CacheTTL    time.Duration
	LogLevel    slog.Level
	Analysis    Analysis
}

type EmailSettings struct {
	TopPerformers int `yaml:"top_performers"`
}

type FormSettings struct {
	WindowDays      int      `yaml:"window_days"`
	HighAbandonment *float64 `yaml:"high_abandonment"`
	LowAbandonment  *float64 `yaml:"low_abandonment"`
}

type LandingSettings struct {
	WindowMonths int `yaml:"window_months"`
}

type StaleScoreSettings struct {
	Enabled         bool `yaml:"enabled"`
	NoActivityScore int  `yaml:"no_activity_score"`
	HighScore       int  `yaml:"high_score"`
	MaxIdleDays     int  `yaml:"max_idle_days"`
}

type ProspectSettings struct {
	InactiveDays   int                `yaml:"inactive_days"`
	RequiredFields []string           `yaml:"required_fields"`
	ScoreCeiling   int                `yaml:"score_ceiling"`
	Grades         []string           `yaml:"grades"`
	StaleScore     StaleScoreSettings `yaml:"stale_score"`
}

type CampaignSettings struct {
	WindowMonths      int      `yaml:"window_months"`
	UTMRequiredFields []string `yaml:"utm_required_fields"`
	UTMSources        []string `yaml:"utm_sources"`
	UTMMediums        []string `yaml:"utm_mediums"`
}

// Analysis holds every analyzer threshold. Zero values fall back to the
// analyzer defaults, except the form thresholds where only nil does.
type Analysis struct {
	Email     EmailSettings    `yaml:"email"`
	Forms     FormSettings     `yaml:"forms"`
	Landing   LandingSettings  `yaml:"landing"`
	Prospects ProspectSettings `yaml:"prospects"`
	Campaigns CampaignSettings `yaml:"campaigns"`
}

func DefaultAnalysis() Analysis {
	high, low := 70.0, 20.0
	return Analysis{
		Email:   EmailSettings{TopPerformers: 5},
		Forms:   FormSettings{WindowDays: 90, HighAbandonment: &high, LowAbandonment: &low},
		Landing: LandingSettings{WindowMonths: 3},
		Prospects: ProspectSettings{
			InactiveDays:   90,
			RequiredFields: []string{"firstName", "lastName", "email", "jobTitle"},
			ScoreCeiling:   100,
			StaleScore:     StaleScoreSettings{NoActivityScore: 50, HighScore: 75, MaxIdleDays: 30},
		},
		Campaigns: CampaignSettings{WindowMonths: 6},
	}
}

// LoadAnalysis reads a YAML override file on top of the defaults. An empty
// path or a missing file yields the defaults.
func LoadAnalysis(path string) (Analysis, error) {
	a := DefaultAnalysis()
	if path == "" {
		return a, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return a, nil
		}
		return a, fmt.Errorf("read analysis config: %w", err)
	}
	if err := yaml.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("parse analysis config: %w", err)
	}
	return a, nil
}

func FromEnv() (Config, error) {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	an, err := LoadAnalysis(os.Getenv("ANALYSIS_CONFIG"))
	if err != nil {
		return Config{}, err
	}
	return Config{
		SnapshotURL: os.Getenv("SNAPSHOT_URL"),
		SinkURL:     os.Getenv("SINK_URL"),
		SinkSecret:  os.Getenv("SINK_SECRET"),
		Port:        envOr("PORT", "8080"),
		HTTPTimeout: envSeconds("HTTP_TIMEOUT_SECONDS", 15*time.Second),
		CacheTTL:    envSeconds("CACHE_TTL_SECONDS", 5*time.Minute),
		LogLevel:    lvl,
		Analysis:    an,
	}, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envSeconds(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
