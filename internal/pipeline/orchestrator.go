package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobfit/internal/ai"
	"jobfit/internal/errors"
	"jobfit/internal/match"
	"jobfit/internal/observability"
	"jobfit/internal/redact"
	"jobfit/internal/scoring"
	"jobfit/internal/types"
)

// Stage names used in error reporting and metrics
const (
	StageIngest    = "ingest"
	StageRedact    = "redact"
	StageParse     = "parse"
	StageAnalyze   = "analyze"
	StageSummarize = "summarize"
	StageRevise    = "revise"
)

// SourceLoader fetches raw document text from a URL or file
type SourceLoader interface {
	Load(ctx context.Context, source string) (string, error)
}

// Redactor strips identifying fields from resume text before it crosses the
// trust boundary. A redaction failure is fatal to the session; the pipeline
// never proceeds with unredacted text.
type Redactor interface {
	Redact(ctx context.Context, text string) (string, types.CandidateDetail, error)
}

// ResumeParser extracts a structured resume from redacted text
type ResumeParser interface {
	ParseResume(ctx context.Context, redactedText string) (types.ParsedResume, *ai.TokenUsage, error)
}

// JobParser extracts a structured job description from raw text
type JobParser interface {
	ParseJob(ctx context.Context, jobText string) (types.ParsedJob, *ai.TokenUsage, error)
}

// Summarizer renders a fit analysis record as narrative text. It receives the
// already-computed record, never the raw documents, so generated prose cannot
// diverge from the recorded scores.
type Summarizer interface {
	Summarize(ctx context.Context, input ai.SummarizeInput) (string, *ai.TokenUsage, error)
}

// Collaborators are the external capabilities one analysis session depends on
type Collaborators struct {
	Loader       SourceLoader
	Redactor     Redactor
	ResumeParser ResumeParser
	JobParser    JobParser
	Summarizer   Summarizer
}

// RetryPolicy bounds orchestrator-level retries of external-collaborator
// calls. Only transient failures and malformed extractions are retried.
type RetryPolicy struct {
	ParseAttempts     int
	SummarizeAttempts int
	BaseDelay         time.Duration
}

// DefaultRetryPolicy matches the documented defaults
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		ParseAttempts:     2,
		SummarizeAttempts: 3,
		BaseDelay:         500 * time.Millisecond,
	}
}

// Orchestrator sequences one analysis session through its stages, calling
// collaborators at the right points and enforcing that later stages cannot
// mutate earlier artifacts. Concurrent sessions share no mutable state.
type Orchestrator struct {
	collab  Collaborators
	matcher *match.Matcher
	engine  *scoring.Engine
	retry   RetryPolicy
	logger  *errors.Logger
	obs     *observability.ObservabilityManager
	metrics *observability.Metrics
}

// NewOrchestrator wires the collaborators to the pure local components. The
// scoring engine config was validated at startup, so construction here never
// surfaces a configuration error mid-session.
func NewOrchestrator(collab Collaborators, engine *scoring.Engine, retry RetryPolicy, logger *errors.Logger, obs *observability.ObservabilityManager) *Orchestrator {
	matcher := match.NewMatcher(nil, engine.Config().SimilarityThreshold)

	var metrics *observability.Metrics
	if obs != nil {
		metrics = obs.GetMetrics()
	}

	return &Orchestrator{
		collab:  collab,
		matcher: matcher,
		engine:  engine,
		retry:   retry,
		logger:  logger,
		obs:     obs,
		metrics: metrics,
	}
}

// AnalyzeInput names the two documents for one session
type AnalyzeInput struct {
	ResumeSource string
	JobSource    string
}

// Analyze runs one session from ingestion through the first summary. The
// returned session holds the immutable record and summary sequence; token
// usage is aggregated across all external calls.
func (o *Orchestrator) Analyze(ctx context.Context, input AnalyzeInput) (*Session, *ai.TokenUsage, error) {
	session := NewSession()
	usage := &ai.TokenUsage{}

	if o.metrics != nil {
		o.metrics.RecordSessionStarted(ctx, o.obs)
	}
	o.logger.Info("Analysis session started",
		"session_id", session.ID,
		"resume_source", input.ResumeSource,
		"job_source", input.JobSource)

	err := o.runPipeline(ctx, session, input, usage)
	if o.metrics != nil {
		o.metrics.RecordSessionCompleted(ctx, err == nil, o.obs)
	}
	if err != nil {
		o.logger.LogError(err, "Analysis session failed", "session_id", session.ID, "state", string(session.State()))
		return session, usage, err
	}

	o.logger.Info("Analysis session completed",
		"session_id", session.ID,
		"record_id", session.Record().ID,
		"recommendation", string(session.Record().Recommendation))
	return session, usage, nil
}

func (o *Orchestrator) runPipeline(ctx context.Context, session *Session, input AnalyzeInput, usage *ai.TokenUsage) error {
	// Raw and redacted text live only on this stack frame; the session
	// retains nothing a later stage could use to bypass redaction.
	rawResume, rawJob, err := o.ingest(ctx, session, input)
	if err != nil {
		return err
	}

	redactedResume, err := o.redactStage(ctx, session, rawResume)
	if err != nil {
		return err
	}

	resume, job, err := o.parseStage(ctx, session, redactedResume, rawJob, usage)
	if err != nil {
		return err
	}

	if err := o.analyzeStage(ctx, session, resume, job); err != nil {
		return err
	}

	return o.summarizeStage(ctx, session, usage)
}

// ingest fetches both documents. Within a session the stages are strictly
// ordered, so the two loads run sequentially as well.
func (o *Orchestrator) ingest(ctx context.Context, session *Session, input AnalyzeInput) (string, string, error) {
	if err := o.checkCancelled(ctx, session, StageIngest); err != nil {
		return "", "", err
	}

	start := time.Now()
	rawResume, err := o.collab.Loader.Load(ctx, input.ResumeSource)
	if err != nil {
		session.markFailed()
		return "", "", stageErr(err, StageIngest)
	}
	rawJob, err := o.collab.Loader.Load(ctx, input.JobSource)
	if err != nil {
		session.markFailed()
		return "", "", stageErr(err, StageIngest)
	}
	o.recordStage(ctx, StageIngest, start)

	if err := session.setIngested(); err != nil {
		return "", "", err
	}
	return rawResume, rawJob, nil
}

// redactStage runs redaction on the resume only; job postings are not
// assumed to carry personal data.
func (o *Orchestrator) redactStage(ctx context.Context, session *Session, rawResume string) (string, error) {
	if err := o.checkCancelled(ctx, session, StageRedact); err != nil {
		return "", err
	}

	start := time.Now()
	redacted, candidate, err := o.collab.Redactor.Redact(ctx, rawResume)
	if err != nil {
		session.markFailed()
		return "", stageErr(err, StageRedact)
	}
	o.recordStage(ctx, StageRedact, start)

	if err := session.setRedacted(candidate); err != nil {
		return "", err
	}
	return redacted, nil
}

func (o *Orchestrator) parseStage(ctx context.Context, session *Session, redactedResume, rawJob string, usage *ai.TokenUsage) (types.ParsedResume, types.ParsedJob, error) {
	if err := o.checkCancelled(ctx, session, StageParse); err != nil {
		return types.ParsedResume{}, types.ParsedJob{}, err
	}

	start := time.Now()

	var resume types.ParsedResume
	err := o.withRetry(ctx, StageParse, o.retry.ParseAttempts, func() error {
		parsed, tokens, err := o.collab.ResumeParser.ParseResume(ctx, redactedResume)
		if err != nil {
			return err
		}
		resume = parsed
		addTokenUsage(usage, tokens)
		return nil
	})
	if err != nil {
		session.markFailed()
		return types.ParsedResume{}, types.ParsedJob{}, stageErr(err, StageParse)
	}

	var job types.ParsedJob
	err = o.withRetry(ctx, StageParse, o.retry.ParseAttempts, func() error {
		parsed, tokens, err := o.collab.JobParser.ParseJob(ctx, rawJob)
		if err != nil {
			return err
		}
		job = parsed
		addTokenUsage(usage, tokens)
		return nil
	})
	if err != nil {
		session.markFailed()
		return types.ParsedResume{}, types.ParsedJob{}, stageErr(err, StageParse)
	}
	o.recordStage(ctx, StageParse, start)

	// The parsed forms anchor evidence checks against the exact text the
	// extractor saw.
	resume.CandidateID = session.Candidate().ID
	resume.SourceText = redactedResume
	job.JobID = uuid.New().String()
	job.SourceText = rawJob

	if err := session.setParsed(resume, job); err != nil {
		return types.ParsedResume{}, types.ParsedJob{}, err
	}
	return resume, job, nil
}

// analyzeStage runs the pure local components. Failures here are programming
// or evidence errors, fatal with no retry.
func (o *Orchestrator) analyzeStage(ctx context.Context, session *Session, resume types.ParsedResume, job types.ParsedJob) error {
	if err := o.checkCancelled(ctx, session, StageAnalyze); err != nil {
		return err
	}

	start := time.Now()
	matches := o.matcher.Match(job.Skills, resume.Skills)

	record, err := o.engine.Score(resume, job, matches)
	if err != nil {
		session.markFailed()
		return stageErr(err, StageAnalyze)
	}

	// Identifier and timestamp are assigned here, not by the engine, so the
	// scoring computation itself stays replayable byte for byte.
	record.ID = uuid.New().String()
	record.CreatedAt = time.Now().UTC()
	o.recordStage(ctx, StageAnalyze, start)

	if err := session.setAnalyzed(record, o.engine.Config().Snapshot()); err != nil {
		return err
	}

	if o.metrics != nil {
		o.metrics.RecordRecommendation(ctx, string(record.Recommendation), o.obs)
	}
	return nil
}

// summarizeStage produces the sequence-0 summary. From here on cancellation
// is disallowed: the record exists, so the session either reaches a summary
// or is explicitly marked abandoned.
func (o *Orchestrator) summarizeStage(ctx context.Context, session *Session, usage *ai.TokenUsage) error {
	start := time.Now()

	var text string
	err := o.withRetry(ctx, StageSummarize, o.retry.SummarizeAttempts, func() error {
		job := session.Job()
		out, tokens, err := o.collab.Summarizer.Summarize(ctx, ai.SummarizeInput{
			Record:     session.Record(),
			JobTitle:   job.Title,
			JobCompany: job.Company,
		})
		if err != nil {
			return err
		}
		text = out
		addTokenUsage(usage, tokens)
		return nil
	})
	if err != nil {
		session.markAbandoned(fmt.Sprintf("summarization failed: %v", err))
		return stageErr(err, StageSummarize)
	}
	o.recordStage(ctx, StageSummarize, start)

	if _, err := session.setSummarized(text); err != nil {
		return err
	}
	if o.metrics != nil {
		o.metrics.RecordSummaryGenerated(ctx, false, o.obs)
	}
	return nil
}

// checkCancelled honors context cancellation between stages. Valid only
// before a record exists; the session is cancelled and partial artifacts
// discarded.
func (o *Orchestrator) checkCancelled(ctx context.Context, session *Session, stage string) error {
	if ctx.Err() == nil {
		return nil
	}
	if err := session.Cancel(); err != nil {
		return err
	}
	return errors.NewValidationError(errors.ErrCodeSessionCancelled,
		"session cancelled before analysis", ctx.Err()).WithStage(stage)
}

// withRetry retries fn with exponential backoff for transient external
// failures and malformed extractions. Everything else surfaces immediately.
func (o *Orchestrator) withRetry(ctx context.Context, stage string, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !errors.IsRetryable(lastErr) || attempt == attempts {
			return lastErr
		}

		delay := o.retry.BaseDelay << (attempt - 1)
		o.logger.Warn("Stage call failed, retrying",
			"stage", stage,
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay.String(),
			"error", lastErr.Error())

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}
	return lastErr
}

func (o *Orchestrator) recordStage(ctx context.Context, stage string, start time.Time) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordStageDuration(ctx, stage, time.Since(start), o.obs)
}

// stageErr stamps the failing stage onto structured errors so every fatal
// condition names both stage and cause.
func stageErr(err error, stage string) error {
	if appErr, ok := err.(*errors.AppError); ok {
		if appErr.Stage == "" {
			return appErr.WithStage(stage)
		}
		return appErr
	}
	return errors.NewInternalError("STAGE_FAILED", "unexpected stage failure", err).WithStage(stage)
}

func addTokenUsage(total, delta *ai.TokenUsage) {
	if total == nil || delta == nil {
		return
	}
	total.InputTokens += delta.InputTokens
	total.OutputTokens += delta.OutputTokens
	total.TotalTokens += delta.TotalTokens
}

// LocalRedactor adapts the in-process regex redactor, which cannot fail, to
// the collaborator interface.
type LocalRedactor struct {
	redactor *redact.Redactor
}

// NewLocalRedactor creates the default redaction collaborator
func NewLocalRedactor() *LocalRedactor {
	return &LocalRedactor{redactor: redact.NewRedactor()}
}

func (lr *LocalRedactor) Redact(_ context.Context, text string) (string, types.CandidateDetail, error) {
	redacted, detail := lr.redactor.Redact(text)
	return redacted, detail, nil
}
