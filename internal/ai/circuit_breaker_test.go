package ai

import (
	"testing"
	"time"

	"jobfit/internal/config"

	"google.golang.org/genai"
)

func TestIndependentCircuitBreakerConfigurations(t *testing.T) {
	// Each operation gets its own circuit breaker with its own settings

	parseResumeConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.5-pro",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}

	parseJobConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.7,
		},
	}

	summarizeConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.5-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      4,
			Interval:         90 * time.Second,
			Timeout:          75 * time.Second,
			MinRequests:      5,
			FailureThreshold: 0.5,
		},
	}

	parseResumeCB := NewAICircuitBreaker("parseResume", parseResumeConfig, nil)
	parseJobCB := NewAICircuitBreaker("parseJob", parseJobConfig, nil)
	summarizeCB := NewAICircuitBreaker("summarize", summarizeConfig, nil)

	tests := []struct {
		name         string
		cb           *AICircuitBreaker
		expectedName string
	}{
		{"ParseResumeCircuitBreaker", parseResumeCB, "AI-parseResume"},
		{"ParseJobCircuitBreaker", parseJobCB, "AI-parseJob"},
		{"SummarizeCircuitBreaker", summarizeCB, "AI-summarize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.cb.GetStats()

			name, ok := stats["name"].(string)
			if !ok {
				t.Fatal("Circuit breaker name not found")
			}
			if name != tt.expectedName {
				t.Errorf("Expected circuit breaker name '%s', got '%s'", tt.expectedName, name)
			}

			state, ok := stats["state"].(string)
			if !ok {
				t.Fatal("Circuit breaker state not found")
			}
			if state != "closed" {
				t.Errorf("Expected initial state 'closed', got '%s'", state)
			}

			enabled, ok := stats["enabled"].(bool)
			if !ok {
				t.Fatal("Circuit breaker enabled status not found")
			}
			if !enabled {
				t.Error("Circuit breaker should be enabled")
			}
		})
	}

	t.Run("IndependentInstances", func(t *testing.T) {
		if parseResumeCB == parseJobCB || parseResumeCB == summarizeCB || parseJobCB == summarizeCB {
			t.Error("Each operation should get its own circuit breaker instance")
		}
	})

	t.Run("IndependentHealthStates", func(t *testing.T) {
		if !parseResumeCB.IsHealthy() || !parseJobCB.IsHealthy() || !summarizeCB.IsHealthy() {
			t.Error("All circuit breakers should be healthy initially")
		}
	})
}

func TestCircuitBreakerDisabled(t *testing.T) {
	disabledConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled: false,
		},
	}

	cb := NewAICircuitBreaker("disabled", disabledConfig, nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	// A nil breaker executes calls directly and reports healthy
	if !cb.IsHealthy() {
		t.Error("Nil circuit breaker should report healthy")
	}

	stats := cb.GetStats()
	if enabled, _ := stats["enabled"].(bool); enabled {
		t.Error("Nil circuit breaker stats should report disabled")
	}

	executed := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		executed = true
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Direct execution failed: %v", err)
	}
	if !executed {
		t.Error("Nil circuit breaker should execute the function directly")
	}
}

func TestModelCircuitBreakerDisabled(t *testing.T) {
	disabledConfig := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled: false,
		},
	}

	cb := NewModelCircuitBreaker("disabled", disabledConfig, nil)
	if cb != nil {
		t.Fatal("Model circuit breaker should be nil when disabled")
	}
	if !cb.IsModelHealthy() {
		t.Error("Nil model circuit breaker should report healthy")
	}
}
