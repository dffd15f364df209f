package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.retryBaseDelay", 500*time.Millisecond)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.useSystemPrompts", true)

	// AI Configuration - ParseResume operation defaults
	v.SetDefault("ai.parseResume.provider", "gemini")
	v.SetDefault("ai.parseResume.model", "")
	v.SetDefault("ai.parseResume.timeout", 75*time.Second) // Resumes run long
	v.SetDefault("ai.parseResume.apiKey", "")
	v.SetDefault("ai.parseResume.maxRetries", 2)
	v.SetDefault("ai.parseResume.temperature", 0.1) // Extraction wants consistency
	v.SetDefault("ai.parseResume.useSystemPrompts", true)

	// AI Configuration - ParseJob operation defaults
	v.SetDefault("ai.parseJob.provider", "gemini")
	v.SetDefault("ai.parseJob.model", "")
	v.SetDefault("ai.parseJob.timeout", 60*time.Second)
	v.SetDefault("ai.parseJob.apiKey", "")
	v.SetDefault("ai.parseJob.maxRetries", 2)
	v.SetDefault("ai.parseJob.temperature", 0.1)
	v.SetDefault("ai.parseJob.useSystemPrompts", true)

	// AI Configuration - Summarize operation defaults
	v.SetDefault("ai.summarize.provider", "gemini")
	v.SetDefault("ai.summarize.model", "")
	v.SetDefault("ai.summarize.timeout", 60*time.Second)
	v.SetDefault("ai.summarize.apiKey", "")
	v.SetDefault("ai.summarize.maxRetries", 3)
	v.SetDefault("ai.summarize.temperature", 0.4) // Narrative text tolerates variety
	v.SetDefault("ai.summarize.useSystemPrompts", true)

	// Circuit Breaker Configuration defaults for all operations
	v.SetDefault("ai.parseResume.circuitBreaker.enabled", true)
	v.SetDefault("ai.parseResume.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.parseResume.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.parseResume.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.parseResume.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.parseResume.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("ai.parseJob.circuitBreaker.enabled", true)
	v.SetDefault("ai.parseJob.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.parseJob.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.parseJob.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.parseJob.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.parseJob.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("ai.summarize.circuitBreaker.enabled", true)
	v.SetDefault("ai.summarize.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.summarize.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.summarize.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.summarize.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.summarize.circuitBreaker.failureThreshold", 0.6)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	// TLS Configuration defaults
	v.SetDefault("server.tls.mode", "disabled") // disabled, server, mutual
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")           // TLS 1.2 minimum
	v.SetDefault("server.tls.cipherSuites", []string{})    // Use Go defaults
	v.SetDefault("server.tls.clientAuthPolicy", "require") // require, request, verify
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB
	v.SetDefault("app.reportDir", "reports")

	// Scoring Configuration
	v.SetDefault("scoring.similarityThreshold", 0.75)
	v.SetDefault("scoring.requiredSkillWeight", 0.7)
	v.SetDefault("scoring.preferredSkillWeight", 0.3)
	v.SetDefault("scoring.skillsWeight", 0.40)
	v.SetDefault("scoring.experienceWeight", 0.30)
	v.SetDefault("scoring.educationWeight", 0.15)
	v.SetDefault("scoring.seniorityWeight", 0.15)
	v.SetDefault("scoring.experienceCapMonths", 60)
	v.SetDefault("scoring.educationPartialCredit", 0.5)
	v.SetDefault("scoring.seniorityAdjacentCredit", 0.5)
	v.SetDefault("scoring.referenceDate", "")
	v.SetDefault("scoring.bands", []map[string]any{
		{"name": "not-fit", "min": 0.0},
		{"name": "borderline", "min": 0.45},
		{"name": "fit", "min": 0.65},
		{"name": "strong-fit", "min": 0.80},
	})

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "jobfit")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackModelInfo", true)
	v.SetDefault("observability.customMetrics.pipeline.enabled", true)
	v.SetDefault("observability.customMetrics.pipeline.trackStageDurations", true)
	v.SetDefault("observability.customMetrics.pipeline.trackRevisions", true)
	v.SetDefault("observability.customMetrics.pipeline.trackRecommendation", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}
