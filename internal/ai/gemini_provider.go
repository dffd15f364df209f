package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"jobfit/internal/config"
	jobfitErrors "jobfit/internal/errors"
	"jobfit/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	httpClient     *http.Client
	config         *config.OperationAIConfig
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *jobfitErrors.Logger
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *jobfitErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, jobfitErrors.NewConfigError(jobfitErrors.ErrCodeInvalidConfig,
			"Failed to create Gemini client", err)
	}

	// Initialize circuit breakers with operation-specific configuration
	circuitBreaker := NewAICircuitBreaker(operationType, cfg, logger)
	modelBreaker := NewModelCircuitBreaker(operationType, cfg, logger)

	return &GeminiProvider{
		client: client,
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		circuitBreaker: circuitBreaker,
		modelBreaker:   modelBreaker,
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, getAIModelCheckTimeout())
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)

		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(float64(*g.config.RetryBaseDelay) * math.Pow(2, float64(attempt-1)))
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !g.isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (g *GeminiProvider) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Network errors (timeouts, connection refused) are retryable
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// executeAIOperation is a generic helper to run AI operations with common tracing, circuit breaker, and parsing logic.
func executeAIOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	operationName string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("jobfit.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, jobfitErrors.NewTransientError(jobfitErrors.ErrCodeAIServiceFailed,
			"Failed to generate content for "+operationName, err)
	}

	if err := json.Unmarshal([]byte(result.Text()), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, jobfitErrors.NewExtractionError(jobfitErrors.ErrCodeExtractionFailed,
			"Failed to parse AI response for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// resumePayload is the wire shape of a parse_resume response. Skills arrive
// as name/evidence pairs because structured output cannot express maps.
type resumePayload struct {
	Summary    string                  `json:"summary"`
	Skills     []skillEvidencePayload  `json:"skills"`
	Experience []types.ExperienceEntry `json:"experience"`
	Education  []types.EducationEntry  `json:"education"`
}

type skillEvidencePayload struct {
	Name     string `json:"name"`
	Evidence string `json:"evidence"`
}

type jobSkillPayload struct {
	Name     string `json:"name"`
	Tag      string `json:"tag"`
	Evidence string `json:"evidence"`
}

// jobPayload is the wire shape of a parse_job response
type jobPayload struct {
	Company             string            `json:"company"`
	Title               string            `json:"title"`
	Skills              []jobSkillPayload `json:"skills"`
	MinExperienceMonths int               `json:"minExperienceMonths"`
	ExperienceEvidence  string            `json:"experienceEvidence"`
	MinEducation        string            `json:"minEducation"`
	EducationEvidence   string            `json:"educationEvidence"`
	Seniority           string            `json:"seniority"`
	SeniorityEvidence   string            `json:"seniorityEvidence"`
}

type summaryPayload struct {
	Summary string `json:"summary"`
}

// ParseResume implements AIProvider for resume extraction
func (g *GeminiProvider) ParseResume(ctx context.Context, redactedText string) (types.ParsedResume, *TokenUsage, error) {
	systemPrompt, userPrompt := g.getPromptsForParseResume(redactedText)
	genaiConfig := g.buildResumeSchema()

	payload, tokenUsage, err := executeAIOperation[resumePayload](
		g,
		ctx,
		"parse_resume",
		userPrompt,
		systemPrompt,
		genaiConfig,
		attribute.Int("input.resume_length", len(redactedText)),
	)
	if err != nil {
		return types.ParsedResume{}, nil, err
	}

	if len(payload.Skills) == 0 && len(payload.Experience) == 0 {
		return types.ParsedResume{}, nil, jobfitErrors.NewExtractionError(jobfitErrors.ErrCodeExtractionFailed,
			"Resume extraction returned neither skills nor experience", nil)
	}

	resume := types.ParsedResume{
		Summary:    payload.Summary,
		Experience: payload.Experience,
		Education:  payload.Education,
		SourceText: redactedText,
	}
	for _, s := range payload.Skills {
		if s.Name == "" {
			continue
		}
		resume.Skills = append(resume.Skills, s.Name)
		if s.Evidence != "" {
			if resume.SkillEvidence == nil {
				resume.SkillEvidence = make(map[string]string)
			}
			resume.SkillEvidence[s.Name] = s.Evidence
		}
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.skills_count", len(resume.Skills)),
			attribute.Int("output.experience_count", len(resume.Experience)),
		)
	}

	return resume, tokenUsage, nil
}

// ParseJob implements AIProvider for job posting extraction
func (g *GeminiProvider) ParseJob(ctx context.Context, jobText string) (types.ParsedJob, *TokenUsage, error) {
	systemPrompt, userPrompt := g.getPromptsForParseJob(jobText)
	genaiConfig := g.buildJobSchema()

	payload, tokenUsage, err := executeAIOperation[jobPayload](
		g,
		ctx,
		"parse_job",
		userPrompt,
		systemPrompt,
		genaiConfig,
		attribute.Int("input.job_length", len(jobText)),
	)
	if err != nil {
		return types.ParsedJob{}, nil, err
	}

	if len(payload.Skills) == 0 {
		return types.ParsedJob{}, nil, jobfitErrors.NewExtractionError(jobfitErrors.ErrCodeExtractionFailed,
			"Job extraction returned no skill requirements", nil)
	}

	job := types.ParsedJob{
		Company:             payload.Company,
		Title:               payload.Title,
		MinExperienceMonths: payload.MinExperienceMonths,
		ExperienceEvidence:  payload.ExperienceEvidence,
		MinEducation:        payload.MinEducation,
		EducationEvidence:   payload.EducationEvidence,
		Seniority:           payload.Seniority,
		SeniorityEvidence:   payload.SeniorityEvidence,
		SourceText:          jobText,
	}
	for _, s := range payload.Skills {
		if s.Name == "" {
			continue
		}
		tag := types.SkillTag(s.Tag)
		if tag != types.SkillTagRequired && tag != types.SkillTagPreferred {
			tag = types.SkillTagRequired
		}
		job.Skills = append(job.Skills, types.RequiredSkill{Name: s.Name, Tag: tag})
		if s.Evidence != "" {
			if job.SkillEvidence == nil {
				job.SkillEvidence = make(map[string]string)
			}
			job.SkillEvidence[s.Name] = s.Evidence
		}
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.skills_count", len(job.Skills)),
			attribute.Int("output.min_experience_months", job.MinExperienceMonths),
		)
	}

	return job, tokenUsage, nil
}

// Summarize implements AIProvider for summary generation and revision
func (g *GeminiProvider) Summarize(ctx context.Context, input SummarizeInput) (string, *TokenUsage, error) {
	systemPrompt, userPrompt, err := g.getPromptsForSummarize(input)
	if err != nil {
		return "", nil, err
	}
	genaiConfig := g.buildSummarySchema()

	payload, tokenUsage, err := executeAIOperation[summaryPayload](
		g,
		ctx,
		"summarize",
		userPrompt,
		systemPrompt,
		genaiConfig,
		attribute.String("record.recommendation", string(input.Record.Recommendation)),
		attribute.Bool("revision", input.RevisionComment != ""),
	)
	if err != nil {
		return "", nil, err
	}

	if payload.Summary == "" {
		return "", nil, jobfitErrors.NewExtractionError(jobfitErrors.ErrCodeExtractionFailed,
			"Summary generation returned empty text", nil)
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Int("output.summary_length", len(payload.Summary)))
	}

	return payload.Summary, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()

	return stats
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// buildResumeSchema creates the structured output schema for parse_resume
func (g *GeminiProvider) buildResumeSchema() *genai.GenerateContentConfig {
	genaiConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {Type: genai.TypeString},
				"skills": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":     {Type: genai.TypeString},
							"evidence": {Type: genai.TypeString},
						},
						Required: []string{"name", "evidence"},
					},
				},
				"experience": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"title":        {Type: genai.TypeString},
							"organization": {Type: genai.TypeString},
							"start":        {Type: genai.TypeString},
							"end":          {Type: genai.TypeString},
							"description":  {Type: genai.TypeString},
							"evidence":     {Type: genai.TypeString},
						},
						Required: []string{"title", "organization", "start", "evidence"},
					},
				},
				"education": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"degree":      {Type: genai.TypeString},
							"institution": {Type: genai.TypeString},
							"field":       {Type: genai.TypeString},
							"year":        {Type: genai.TypeInteger},
							"evidence":    {Type: genai.TypeString},
						},
						Required: []string{"degree", "institution", "evidence"},
					},
				},
			},
			Required: []string{"skills", "experience", "education"},
		},
	}

	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	return genaiConfig
}

// buildJobSchema creates the structured output schema for parse_job
func (g *GeminiProvider) buildJobSchema() *genai.GenerateContentConfig {
	genaiConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"company": {Type: genai.TypeString},
				"title":   {Type: genai.TypeString},
				"skills": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"name":     {Type: genai.TypeString},
							"tag":      {Type: genai.TypeString, Enum: []string{"required", "preferred"}},
							"evidence": {Type: genai.TypeString},
						},
						Required: []string{"name", "tag", "evidence"},
					},
				},
				"minExperienceMonths": {Type: genai.TypeInteger},
				"experienceEvidence":  {Type: genai.TypeString},
				"minEducation":        {Type: genai.TypeString},
				"educationEvidence":   {Type: genai.TypeString},
				"seniority":           {Type: genai.TypeString},
				"seniorityEvidence":   {Type: genai.TypeString},
			},
			Required: []string{"skills", "minExperienceMonths"},
		},
	}

	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	return genaiConfig
}

// buildSummarySchema creates the structured output schema for summarize
func (g *GeminiProvider) buildSummarySchema() *genai.GenerateContentConfig {
	genaiConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {Type: genai.TypeString},
			},
			Required: []string{"summary"},
		},
	}

	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	return genaiConfig
}

// getPromptsForParseResume returns system and user prompts for resume extraction
func (g *GeminiProvider) getPromptsForParseResume(redactedText string) (string, string) {
	systemPrompt := g.getSystemPrompt("parseResume")
	userPrompt := g.getUserPrompt("parseResume")

	return systemPrompt, fmt.Sprintf(userPrompt, redactedText)
}

// getPromptsForParseJob returns system and user prompts for job extraction
func (g *GeminiProvider) getPromptsForParseJob(jobText string) (string, string) {
	systemPrompt := g.getSystemPrompt("parseJob")
	userPrompt := g.getUserPrompt("parseJob")

	return systemPrompt, fmt.Sprintf(userPrompt, jobText)
}

// getPromptsForSummarize returns system and user prompts for summary generation.
// The analysis payload is the record serialized with job context; revision
// passes append the prior summary and the reviewer's comment.
func (g *GeminiProvider) getPromptsForSummarize(input SummarizeInput) (string, string, error) {
	systemPrompt := g.getSystemPrompt("summarize")
	userPrompt := g.getUserPrompt("summarize")

	analysis := struct {
		JobTitle   string                  `json:"jobTitle,omitempty"`
		JobCompany string                  `json:"jobCompany,omitempty"`
		Record     types.FitAnalysisRecord `json:"record"`
	}{
		JobTitle:   input.JobTitle,
		JobCompany: input.JobCompany,
		Record:     input.Record,
	}

	payload, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", "", jobfitErrors.NewInternalError(jobfitErrors.ErrCodeAIServiceFailed,
			"Failed to serialize analysis record for summarization", err)
	}

	formatted := fmt.Sprintf(userPrompt, string(payload))

	if input.RevisionComment != "" {
		formatted += fmt.Sprintf(`

**This is a revision request.** Rewrite the summary below according to the reviewer's feedback. Change tone, emphasis, and structure only; every score and the recommendation stay exactly as given.

**Previous Summary:**
-----
%s
-----

**Reviewer Feedback:**
-----
%s
-----`, input.PriorSummary, input.RevisionComment)
	}

	return systemPrompt, formatted, nil
}

// getSystemPrompt returns the appropriate system prompt
func (g *GeminiProvider) getSystemPrompt(promptType string) string {
	loadedPrompts, configPrompts := g.getPrompts(promptType)
	var configSystemPrompts *config.SystemPrompts
	if configPrompts != nil {
		configSystemPrompts = &configPrompts.SystemPrompts
	} else {
		configSystemPrompts = &config.SystemPrompts{}
	}

	switch promptType {
	case "parseResume":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.ParseResume,
			configSystemPrompts.ParseResume,
			DefaultSystemPrompts.ParseResume,
		)
	case "parseJob":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.ParseJob,
			configSystemPrompts.ParseJob,
			DefaultSystemPrompts.ParseJob,
		)
	case "summarize":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.Summarize,
			configSystemPrompts.Summarize,
			DefaultSystemPrompts.Summarize,
		)
	default:
		return ""
	}
}

// getUserPrompt returns the appropriate user prompt template
func (g *GeminiProvider) getUserPrompt(promptType string) string {
	loadedPrompts, configPrompts := g.getPrompts(promptType)
	var configUserPrompts *config.UserPrompts
	if configPrompts != nil {
		configUserPrompts = &configPrompts.UserPrompts
	} else {
		configUserPrompts = &config.UserPrompts{}
	}

	switch promptType {
	case "parseResume":
		return resolvePrompt(
			loadedPrompts.UserPrompts.ParseResume,
			configUserPrompts.ParseResume,
			DefaultUserPrompts.ParseResume,
		)
	case "parseJob":
		return resolvePrompt(
			loadedPrompts.UserPrompts.ParseJob,
			configUserPrompts.ParseJob,
			DefaultUserPrompts.ParseJob,
		)
	case "summarize":
		return resolvePrompt(
			loadedPrompts.UserPrompts.Summarize,
			configUserPrompts.Summarize,
			DefaultUserPrompts.Summarize,
		)
	default:
		return ""
	}
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// getAIModelCheckTimeout returns the timeout for model availability checks
func getAIModelCheckTimeout() time.Duration {
	return 10 * time.Second
}

// getPrompts returns the appropriate prompts for the operation, prioritizing loaded content over config
func (g *GeminiProvider) getPrompts(operationType string) (config.OperationLoadedPrompts, *config.PromptConfig) {
	loadedPrompts := config.GetPromptsForOperation(operationType)
	configPrompts := &g.config.CustomPrompts
	return loadedPrompts, configPrompts
}

// resolvePrompt selects the prompt string by priority: a prompt loaded from
// a file wins, then one set directly in configuration, then the default.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
