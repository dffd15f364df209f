package config

import (
	"testing"
	"time"
)

func defaultScoringConfig() ScoringConfig {
	return ScoringConfig{
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
		Bands: []BandConfig{
			{Name: "not-fit", Min: 0.0},
			{Name: "borderline", Min: 0.45},
			{Name: "fit", Min: 0.65},
			{Name: "strong-fit", Min: 0.80},
		},
	}
}

func TestScoringEngineConfig(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	sc := defaultScoringConfig()
	cfg, err := sc.EngineConfig(now)
	if err != nil {
		t.Fatalf("EngineConfig: %v", err)
	}

	// Empty referenceDate stamps the first of the current month
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.ReferenceDate.Equal(want) {
		t.Errorf("expected reference date %v, got %v", want, cfg.ReferenceDate)
	}
	if len(cfg.Bands) != 4 {
		t.Errorf("expected 4 bands, got %d", len(cfg.Bands))
	}
}

func TestScoringEngineConfigExplicitReferenceDate(t *testing.T) {
	sc := defaultScoringConfig()
	sc.ReferenceDate = "2024-03"

	cfg, err := sc.EngineConfig(time.Now())
	if err != nil {
		t.Fatalf("EngineConfig: %v", err)
	}

	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.ReferenceDate.Equal(want) {
		t.Errorf("expected reference date %v, got %v", want, cfg.ReferenceDate)
	}
}

func TestScoringEngineConfigRejectsBadInput(t *testing.T) {
	t.Run("invalid reference date", func(t *testing.T) {
		sc := defaultScoringConfig()
		sc.ReferenceDate = "March 2024"
		if _, err := sc.EngineConfig(time.Now()); err == nil {
			t.Error("expected error for unparseable reference date")
		}
	})

	t.Run("band gap", func(t *testing.T) {
		sc := defaultScoringConfig()
		sc.Bands = []BandConfig{{Name: "fit", Min: 0.5}}
		if _, err := sc.EngineConfig(time.Now()); err == nil {
			t.Error("expected error for bands not covering [0,1]")
		}
	})

	t.Run("weights not summing to one", func(t *testing.T) {
		sc := defaultScoringConfig()
		sc.SkillsWeight = 0.9
		if _, err := sc.EngineConfig(time.Now()); err == nil {
			t.Error("expected error for weight sum above 1")
		}
	})
}

func TestValidateRejectsMissingAPIKey(t *testing.T) {
	config := &Config{
		AI: AIConfig{Timeout: 60 * time.Second},
		Server: ServerConfig{
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
		},
		App: AppConfig{
			DefaultFormat:    "json",
			SupportedFormats: []string{"json"},
		},
		Scoring: defaultScoringConfig(),
	}

	if err := config.Validate(); err == nil {
		t.Error("expected validation failure without API key")
	}

	config.AI.APIKey = "key"
	if err := config.Validate(); err != nil {
		t.Errorf("unexpected validation failure: %v", err)
	}
}

func TestLoadConfigAppliesVaultSecrets(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JOBFIT_AI_APIKEY", "env-key")
	t.Setenv("JOBFIT_VAULT_ENABLED", "true")

	// Vault enabled without a token must abort loading: secrets it would
	// serve take precedence, so silently skipping it would hand out the
	// wrong credentials.
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected LoadConfig to fail when vault is enabled without a token")
	}
}

func TestGetOperationConfigFallbacks(t *testing.T) {
	timeout := 60 * time.Second
	config := &Config{
		AI: AIConfig{
			Provider:       "gemini",
			Model:          "gemini-2.0-flash",
			Timeout:        timeout,
			APIKey:         "global-key",
			MaxRetries:     3,
			RetryBaseDelay: 500 * time.Millisecond,
			Temperature:    0.2,
		},
	}

	op := config.GetParseResumeConfig()
	if op.Provider != "gemini" || op.Model != "gemini-2.0-flash" || op.APIKey != "global-key" {
		t.Errorf("global fallbacks not applied: %+v", op)
	}
	if op.Timeout == nil || *op.Timeout != timeout {
		t.Error("timeout fallback not applied")
	}
	if op.MaxRetries == nil || *op.MaxRetries != 3 {
		t.Error("maxRetries fallback not applied")
	}
	if op.RetryBaseDelay == nil || *op.RetryBaseDelay != 500*time.Millisecond {
		t.Error("retryBaseDelay fallback not applied")
	}

	// Operation-specific values win over globals
	opModel := "gemini-2.5-pro"
	config.AI.Summarize.Model = opModel
	sum := config.GetSummarizeConfig()
	if sum.Model != opModel {
		t.Errorf("expected operation model %q, got %q", opModel, sum.Model)
	}
}
