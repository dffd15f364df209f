package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"jobfit/internal/errors"
	"jobfit/internal/types"
)

// Band maps the lower bound of an overall-score interval to a recommendation
// category. Comparison is >= on Min; bands must partition [0,1].
type Band struct {
	Name types.Recommendation `json:"name" mapstructure:"name"`
	Min  float64              `json:"min" mapstructure:"min"`
}

// Config carries every knob the scoring engine consumes. It is an explicit
// value passed in at session start, never ambient state, so a stored config
// snapshot replays to an identical record.
type Config struct {
	SimilarityThreshold float64 `json:"similarityThreshold" mapstructure:"similarityThreshold"`

	// Per-tag weights inside the skill sub-score
	RequiredSkillWeight  float64 `json:"requiredSkillWeight" mapstructure:"requiredSkillWeight"`
	PreferredSkillWeight float64 `json:"preferredSkillWeight" mapstructure:"preferredSkillWeight"`

	// Sub-score weights for the overall score; must sum to 1
	SkillsWeight     float64 `json:"skillsWeight" mapstructure:"skillsWeight"`
	ExperienceWeight float64 `json:"experienceWeight" mapstructure:"experienceWeight"`
	EducationWeight  float64 `json:"educationWeight" mapstructure:"educationWeight"`
	SeniorityWeight  float64 `json:"seniorityWeight" mapstructure:"seniorityWeight"`

	ExperienceCapMonths     int     `json:"experienceCapMonths" mapstructure:"experienceCapMonths"`
	EducationPartialCredit  float64 `json:"educationPartialCredit" mapstructure:"educationPartialCredit"`
	SeniorityAdjacentCredit float64 `json:"seniorityAdjacentCredit" mapstructure:"seniorityAdjacentCredit"`

	Bands []Band `json:"bands" mapstructure:"bands"`

	// ReferenceDate closes open-ended ("present") experience periods so a
	// stored session replays byte-identically. Set by the orchestrator at
	// session start and persisted in the audit bundle.
	ReferenceDate time.Time `json:"referenceDate" mapstructure:"referenceDate"`
}

// DefaultConfig returns the documented default scoring configuration.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold:     0.75,
		RequiredSkillWeight:     0.7,
		PreferredSkillWeight:    0.3,
		SkillsWeight:            0.40,
		ExperienceWeight:        0.30,
		EducationWeight:         0.15,
		SeniorityWeight:         0.15,
		ExperienceCapMonths:     60,
		EducationPartialCredit:  0.5,
		SeniorityAdjacentCredit: 0.5,
		Bands: []Band{
			{Name: types.RecommendationNotFit, Min: 0.0},
			{Name: types.RecommendationBorderline, Min: 0.45},
			{Name: types.RecommendationFit, Min: 0.65},
			{Name: types.RecommendationStrongFit, Min: 0.80},
		},
	}
}

// Validate rejects invalid weights, thresholds, and band layouts. Called at
// startup; a configuration error is never surfaced mid-session.
func (c Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("similarity threshold %.2f outside [0,1]", c.SimilarityThreshold), nil)
	}
	if c.RequiredSkillWeight <= 0 || c.PreferredSkillWeight < 0 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"required skill weight must be positive and preferred weight non-negative", nil)
	}
	if c.RequiredSkillWeight < c.PreferredSkillWeight {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"required skill weight must be at least the preferred skill weight", nil)
	}

	sum := c.SkillsWeight + c.ExperienceWeight + c.EducationWeight + c.SeniorityWeight
	if c.SkillsWeight < 0 || c.ExperienceWeight < 0 || c.EducationWeight < 0 || c.SeniorityWeight < 0 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "sub-score weights must be non-negative", nil)
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("sub-score weights sum to %.4f, expected 1.0", sum), nil)
	}

	if c.ExperienceCapMonths <= 0 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "experience cap must be positive", nil)
	}
	if c.EducationPartialCredit < 0 || c.EducationPartialCredit > 1 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "education partial credit outside [0,1]", nil)
	}
	if c.SeniorityAdjacentCredit < 0 || c.SeniorityAdjacentCredit > 1 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "seniority adjacent credit outside [0,1]", nil)
	}

	return c.validateBands()
}

// validateBands checks the recommendation bands partition [0,1]: the lowest
// band starts at 0 and lower bounds are strictly increasing, so every score
// maps to exactly one category with no gaps or overlaps.
func (c Config) validateBands() error {
	if len(c.Bands) == 0 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "at least one recommendation band is required", nil)
	}

	bands := make([]Band, len(c.Bands))
	copy(bands, c.Bands)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Min < bands[j].Min })

	if bands[0].Min != 0 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("lowest band %q starts at %.2f, must start at 0 to cover [0,1]", bands[0].Name, bands[0].Min), nil)
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].Min == bands[i-1].Min {
			return errors.NewConfigError(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("bands %q and %q overlap at %.2f", bands[i-1].Name, bands[i].Name, bands[i].Min), nil)
		}
		if bands[i].Min > 1 {
			return errors.NewConfigError(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("band %q lower bound %.2f exceeds 1", bands[i].Name, bands[i].Min), nil)
		}
	}
	return nil
}

// Recommend maps an overall score to its band using >= on the lower bound.
func (c Config) Recommend(overall float64) types.Recommendation {
	bands := make([]Band, len(c.Bands))
	copy(bands, c.Bands)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Min < bands[j].Min })

	rec := bands[0].Name
	for _, b := range bands {
		if overall >= b.Min {
			rec = b.Name
		}
	}
	return rec
}

// Snapshot renders the config for the persisted audit bundle.
func (c Config) Snapshot() map[string]any {
	bands := make([]map[string]any, 0, len(c.Bands))
	for _, b := range c.Bands {
		bands = append(bands, map[string]any{"name": string(b.Name), "min": b.Min})
	}
	return map[string]any{
		"similarityThreshold":     c.SimilarityThreshold,
		"requiredSkillWeight":     c.RequiredSkillWeight,
		"preferredSkillWeight":    c.PreferredSkillWeight,
		"skillsWeight":            c.SkillsWeight,
		"experienceWeight":        c.ExperienceWeight,
		"educationWeight":         c.EducationWeight,
		"seniorityWeight":         c.SeniorityWeight,
		"experienceCapMonths":     c.ExperienceCapMonths,
		"educationPartialCredit":  c.EducationPartialCredit,
		"seniorityAdjacentCredit": c.SeniorityAdjacentCredit,
		"bands":                   bands,
		"referenceDate":           c.ReferenceDate.Format("2006-01"),
	}
}
