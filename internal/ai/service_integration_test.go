package ai

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"jobfit/internal/config"
	"jobfit/internal/errors"
	"jobfit/internal/types"
)

// Helper functions to create pointers for test values
func timePtr(d time.Duration) *time.Duration { return &d }
func intPtr(i int) *int                      { return &i }
func float32Ptr(f float32) *float32          { return &f }
func boolPtr(b bool) *bool                   { return &b }

var testLogger = errors.NewLogger(slog.LevelDebug)

func testOperationConfig() *config.OperationAIConfig {
	return &config.OperationAIConfig{
		Provider:         "gemini",
		Model:            "test-model",
		Timeout:          timePtr(30 * time.Second),
		APIKey:           "test-key",
		MaxRetries:       intPtr(1),
		RetryBaseDelay:   timePtr(500 * time.Millisecond),
		Temperature:      float32Ptr(0.5),
		UseSystemPrompts: boolPtr(true),
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.8,
		},
	}
}

func TestNewServiceUnsupportedProvider(t *testing.T) {
	cfg := testOperationConfig()
	cfg.Provider = "openai"

	_, err := NewService(cfg, "parseResume", testLogger)
	if err == nil {
		t.Fatal("Expected error for unsupported provider")
	}
	if errors.TypeOf(err) != errors.ErrorTypeConfig {
		t.Errorf("Expected config error, got %v", errors.TypeOf(err))
	}
}

func TestCircuitBreakerIntegrationWithServices(t *testing.T) {
	service, err := NewService(testOperationConfig(), "parseResume", testLogger)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	if service.config.CircuitBreaker.MaxRequests != 5 {
		t.Errorf("Expected circuit breaker max requests 5, got %d", service.config.CircuitBreaker.MaxRequests)
	}
	if service.config.CircuitBreaker.FailureThreshold != 0.8 {
		t.Errorf("Expected circuit breaker failure threshold 0.8, got %f", service.config.CircuitBreaker.FailureThreshold)
	}

	geminiProvider, ok := service.Provider.(*GeminiProvider)
	if !ok {
		t.Fatal("Service provider is not of type *GeminiProvider")
	}

	stats := geminiProvider.GetCircuitBreakerStats()

	aiOpsStats, ok := stats["ai_operations"].(map[string]any)
	if !ok {
		t.Fatal("AI operations stats should exist and be a map")
	}
	if name, _ := aiOpsStats["name"].(string); name != "AI-parseResume" {
		t.Errorf("Expected circuit breaker name 'AI-parseResume', got '%s'", name)
	}

	modelOpsStats, ok := stats["model_operations"].(map[string]any)
	if !ok {
		t.Fatal("Model operations stats should exist and be a map")
	}
	if name, _ := modelOpsStats["name"].(string); name != "AI-Model-parseResume" {
		t.Errorf("Expected model circuit breaker name 'AI-Model-parseResume', got '%s'", name)
	}

	if overallHealthy, _ := stats["overall_healthy"].(bool); !overallHealthy {
		t.Error("Circuit breaker should be healthy initially")
	}
}

func TestResolvePromptPriority(t *testing.T) {
	tests := []struct {
		name     string
		loaded   string
		config   string
		fallback string
		want     string
	}{
		{"loaded wins", "from-file", "from-config", "default", "from-file"},
		{"config when no file", "", "from-config", "default", "from-config"},
		{"default when nothing set", "", "", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolvePrompt(tt.loaded, tt.config, tt.fallback)
			if got != tt.want {
				t.Errorf("resolvePrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarizePromptIncludesRevisionFeedback(t *testing.T) {
	provider := &GeminiProvider{config: testOperationConfig()}

	record := types.FitAnalysisRecord{
		ID:             "rec-1",
		OverallScore:   0.72,
		Recommendation: types.RecommendationFit,
	}

	t.Run("initial summary", func(t *testing.T) {
		_, userPrompt, err := provider.getPromptsForSummarize(SummarizeInput{Record: record})
		if err != nil {
			t.Fatalf("getPromptsForSummarize: %v", err)
		}
		if !strings.Contains(userPrompt, `"rec-1"`) {
			t.Error("Prompt should contain the serialized record")
		}
		if strings.Contains(userPrompt, "revision request") {
			t.Error("Initial summary prompt should not mention revision")
		}
	})

	t.Run("revision pass", func(t *testing.T) {
		_, userPrompt, err := provider.getPromptsForSummarize(SummarizeInput{
			Record:          record,
			PriorSummary:    "The candidate is a fit.",
			RevisionComment: "Lead with the missing skills.",
		})
		if err != nil {
			t.Fatalf("getPromptsForSummarize: %v", err)
		}
		if !strings.Contains(userPrompt, "Lead with the missing skills.") {
			t.Error("Revision prompt should contain the reviewer feedback")
		}
		if !strings.Contains(userPrompt, "The candidate is a fit.") {
			t.Error("Revision prompt should contain the prior summary")
		}
	})
}
