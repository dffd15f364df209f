package scoring

import (
	"testing"

	"jobfit/internal/types"
)

func TestValidateBands(t *testing.T) {
	tests := []struct {
		name      string
		bands     []Band
		expectErr bool
	}{
		{
			name: "default partition is valid",
			bands: []Band{
				{Name: types.RecommendationNotFit, Min: 0.0},
				{Name: types.RecommendationBorderline, Min: 0.45},
				{Name: types.RecommendationFit, Min: 0.65},
				{Name: types.RecommendationStrongFit, Min: 0.80},
			},
		},
		{
			name: "gap at zero rejected",
			bands: []Band{
				{Name: types.RecommendationBorderline, Min: 0.2},
				{Name: types.RecommendationFit, Min: 0.6},
			},
			expectErr: true,
		},
		{
			name: "duplicate lower bound rejected",
			bands: []Band{
				{Name: types.RecommendationNotFit, Min: 0.0},
				{Name: types.RecommendationFit, Min: 0.5},
				{Name: types.RecommendationStrongFit, Min: 0.5},
			},
			expectErr: true,
		},
		{
			name: "bound above one rejected",
			bands: []Band{
				{Name: types.RecommendationNotFit, Min: 0.0},
				{Name: types.RecommendationStrongFit, Min: 1.2},
			},
			expectErr: true,
		},
		{
			name:      "no bands rejected",
			bands:     nil,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Bands = tt.bands
			err := cfg.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SkillsWeight = 0.5
	if err := cfg.Validate(); err == nil {
		t.Error("weights not summing to 1 should fail validation")
	}

	cfg = DefaultConfig()
	cfg.RequiredSkillWeight = 0.2
	cfg.PreferredSkillWeight = 0.8
	if err := cfg.Validate(); err == nil {
		t.Error("preferred weight above required weight should fail validation")
	}
}

func TestRecommend(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		score float64
		want  types.Recommendation
	}{
		{0.0, types.RecommendationNotFit},
		{0.44, types.RecommendationNotFit},
		{0.45, types.RecommendationBorderline},
		{0.64, types.RecommendationBorderline},
		{0.65, types.RecommendationFit},
		{0.80, types.RecommendationStrongFit},
		{1.0, types.RecommendationStrongFit},
	}

	for _, tt := range tests {
		if got := cfg.Recommend(tt.score); got != tt.want {
			t.Errorf("Recommend(%.2f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

// Every score in [0,1] must land in exactly one band.
func TestRecommendCoversUnitInterval(t *testing.T) {
	cfg := DefaultConfig()
	for i := 0; i <= 100; i++ {
		score := float64(i) / 100
		if cfg.Recommend(score) == "" {
			t.Fatalf("score %.2f mapped to no band", score)
		}
	}
}
