package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScoringWeights are the relative weights of the fit score sub-scores.
// Each sub-score is normalized to 0-100 before weighting, so the weighted
// total stays within 0-100 regardless of the weight values.
type ScoringWeights struct {
	ActivityDensity float64 `yaml:"activityDensity"`
	Proximity       float64 `yaml:"proximity"`
	CoverageGap     float64 `yaml:"coverageGap"`
	Population      float64 `yaml:"population"`
	ContactHistory  float64 `yaml:"contactHistory"`
}

// Sum returns the total of all weights.
func (w ScoringWeights) Sum() float64 {
	return w.ActivityDensity + w.Proximity + w.CoverageGap + w.Population + w.ContactHistory
}

// OutreachSettings is the process-wide outreach and scoring configuration.
// Loaded once at startup; never mutated at runtime.
type OutreachSettings struct {
	// FollowUpOffsetDays is the wait in days before cadence steps 2, 3 and 4
	// become eligible after the previous step was sent.
	FollowUpOffsetDays []int `yaml:"followUpOffsetDays"`
	// ExhaustAfterDays is the window after the final step during which a
	// response can still arrive before the prospect is considered exhausted.
	ExhaustAfterDays int `yaml:"exhaustAfterDays"`
	// MaxSteps is the number of cadence steps.
	MaxSteps int `yaml:"maxSteps"`
	// BatchSize caps the number of prospects a single batch send accepts.
	BatchSize int `yaml:"batchSize"`
	// MaxConcurrency bounds parallel per-prospect sends within a batch.
	MaxConcurrency int `yaml:"maxConcurrency"`
	// SendRatePerMinute paces outbound email dispatch.
	SendRatePerMinute int `yaml:"sendRatePerMinute"`
	// ActivityRadiusKm is the radius used when counting cleanup events near
	// a prospect for scoring.
	ActivityRadiusKm float64 `yaml:"activityRadiusKm"`
	// CoverageRadiusKm is the clustering radius for geographic gap analysis.
	CoverageRadiusKm float64 `yaml:"coverageRadiusKm"`
	// MinClusterEvents is the minimum cleanup events a cluster needs before
	// it qualifies as a gap.
	MinClusterEvents int `yaml:"minClusterEvents"`
	// Weights are the fit score sub-score weights.
	Weights ScoringWeights `yaml:"weights"`
}

// DefaultOutreachSettings returns the built-in settings used when no
// settings file is configured.
func DefaultOutreachSettings() OutreachSettings {
	return OutreachSettings{
		FollowUpOffsetDays: []int{3, 5, 7},
		ExhaustAfterDays:   7,
		MaxSteps:           4,
		BatchSize:          100,
		MaxConcurrency:     4,
		SendRatePerMinute:  30,
		ActivityRadiusKm:   25,
		CoverageRadiusKm:   15,
		MinClusterEvents:   3,
		Weights: ScoringWeights{
			ActivityDensity: 0.30,
			Proximity:       0.20,
			CoverageGap:     0.25,
			Population:      0.15,
			ContactHistory:  0.10,
		},
	}
}

// LoadOutreachSettings reads settings from a YAML file, falling back to the
// defaults when path is empty. Partial files override only the fields they
// set.
func LoadOutreachSettings(path string) (OutreachSettings, error) {
	settings := DefaultOutreachSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return OutreachSettings{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return OutreachSettings{}, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return OutreachSettings{}, err
	}
	return settings, nil
}

// Validate checks the settings for internal consistency.
func (s OutreachSettings) Validate() error {
	if s.MaxSteps < 1 {
		return fmt.Errorf("maxSteps must be at least 1")
	}
	if len(s.FollowUpOffsetDays) != s.MaxSteps-1 {
		return fmt.Errorf("followUpOffsetDays must have %d entries, got %d", s.MaxSteps-1, len(s.FollowUpOffsetDays))
	}
	for i, days := range s.FollowUpOffsetDays {
		if days < 1 {
			return fmt.Errorf("followUpOffsetDays[%d] must be positive", i)
		}
	}
	if s.ExhaustAfterDays < 1 {
		return fmt.Errorf("exhaustAfterDays must be positive")
	}
	if s.BatchSize < 1 || s.MaxConcurrency < 1 || s.SendRatePerMinute < 1 {
		return fmt.Errorf("batchSize, maxConcurrency and sendRatePerMinute must be positive")
	}
	if s.ActivityRadiusKm <= 0 || s.CoverageRadiusKm <= 0 {
		return fmt.Errorf("activityRadiusKm and coverageRadiusKm must be positive")
	}
	if s.Weights.Sum() <= 0 {
		return fmt.Errorf("scoring weights must not all be zero")
	}
	return nil
}
