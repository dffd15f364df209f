package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"jobfit/internal/ai"
	jobfitErrors "jobfit/internal/errors"
	"jobfit/internal/ingest"
	"jobfit/internal/observability"
	"jobfit/internal/pipeline"
	"jobfit/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// Source keys used for documents supplied inline in the request body
const (
	inlineResumeSource = "request:resume"
	inlineJobSource    = "request:job"
)

// requestLoader serves documents supplied inline in the request body and
// delegates everything else (file paths, URLs) to the shared loader.
type requestLoader struct {
	inline   map[string]string
	delegate pipeline.SourceLoader
}

func (rl *requestLoader) Load(ctx context.Context, source string) (string, error) {
	if text, ok := rl.inline[source]; ok {
		return text, nil
	}
	return rl.delegate.Load(ctx, source)
}

// newOrchestrator assembles a pipeline for one request. AI services are
// created per request so each operation picks up its own configuration,
// while the scoring engine, registry, and store are shared.
func (s *Server) newOrchestrator(om *observability.ObservabilityManager, inline map[string]string) (*pipeline.Orchestrator, error) {
	parseResumeConfig := s.AppConfig.GetParseResumeConfig()
	resumeService, err := ai.NewService(&parseResumeConfig, "parseResume", s.Logger)
	if err != nil {
		return nil, err
	}

	parseJobConfig := s.AppConfig.GetParseJobConfig()
	jobService, err := ai.NewService(&parseJobConfig, "parseJob", s.Logger)
	if err != nil {
		return nil, err
	}

	summarizeConfig := s.AppConfig.GetSummarizeConfig()
	summarizeService, err := ai.NewService(&summarizeConfig, "summarize", s.Logger)
	if err != nil {
		return nil, err
	}

	collab := pipeline.Collaborators{
		Loader: &requestLoader{
			inline:   inline,
			delegate: ingest.NewLoader(s.AppConfig.App.MaxFileSize, s.Logger),
		},
		Redactor:     pipeline.NewLocalRedactor(),
		ResumeParser: resumeService.Provider,
		JobParser:    jobService.Provider,
		Summarizer:   summarizeService.Provider,
	}

	return pipeline.NewOrchestrator(collab, s.Engine, pipeline.DefaultRetryPolicy(), s.Logger, om), nil
}

// createAnalyzeHandler runs a full analysis session and returns the report
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobfit.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		inline := make(map[string]string)
		resumeSource := strings.TrimSpace(req.ResumeSource)
		if strings.TrimSpace(req.ResumeText) != "" {
			resumeSource = inlineResumeSource
			inline[inlineResumeSource] = req.ResumeText
		}
		jobSource := strings.TrimSpace(req.JobSource)
		if strings.TrimSpace(req.JobText) != "" {
			jobSource = inlineJobSource
			inline[inlineJobSource] = req.JobText
		}

		if resumeSource == "" {
			err := fmt.Errorf("missing resume")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume", "resumeSource or resumeText field is required", http.StatusBadRequest)
			return
		}
		if jobSource == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job description", "jobSource or jobText field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Bool("request.inline_resume", resumeSource == inlineResumeSource),
			attribute.Bool("request.inline_job", jobSource == inlineJobSource),
			attribute.String("operation", "analyze"),
		)

		orch, err := s.newOrchestrator(om, inline)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var session *pipeline.Session
		err = metrics.TrackAIOperationWithTokens(ctx, "analyze", func(ctx context.Context) *observability.AIOperationResult {
			result, tokenUsage, runErr := orch.Analyze(ctx, pipeline.AnalyzeInput{
				ResumeSource: resumeSource,
				JobSource:    jobSource,
			})
			session = result
			return &observability.AIOperationResult{
				Error:      runErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", string(jobfitErrors.TypeOf(err))))
			writeErrorResponse(w, "Analysis failed", err.Error(), statusForError(err))
			return
		}

		s.Registry.Register(session)
		report := session.Report()
		if _, saveErr := s.Store.Save(report); saveErr != nil {
			// Report persistence failing does not invalidate the analysis
			s.Logger.LogError(saveErr, "Failed to persist analysis report",
				"session_id", session.ID)
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("session.id", session.ID),
			attribute.String("recommendation", string(report.Record.Recommendation)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createRevisionHandler regenerates the summary for a live session
func (s *Server) createRevisionHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobfit.api")
		ctx, span := tracer.Start(ctx, "api.revise")
		defer span.End()

		sessionID := r.PathValue("id")
		span.SetAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("operation", "revise"),
		)

		session, ok := s.Registry.Get(sessionID)
		if !ok {
			err := fmt.Errorf("unknown session %s", sessionID)
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "not_found"))
			writeErrorResponse(w, "Session not found", "No live session with that id; revisions require an active session", http.StatusNotFound)
			return
		}

		var req RevisionRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		orch, err := s.newOrchestrator(om, nil)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics := om.GetMetrics()
		var summary types.Summary
		err = metrics.TrackAIOperationWithTokens(ctx, "summarize", func(ctx context.Context) *observability.AIOperationResult {
			result, tokenUsage, runErr := orch.Revise(ctx, session, types.RevisionRequest{Comment: req.Comment})
			summary = result
			return &observability.AIOperationResult{
				Error:      runErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", string(jobfitErrors.TypeOf(err))))
			writeErrorResponse(w, "Revision failed", err.Error(), statusForError(err))
			return
		}

		if _, saveErr := s.Store.Save(session.Report()); saveErr != nil {
			s.Logger.LogError(saveErr, "Failed to persist revised report",
				"session_id", session.ID)
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("summary.sequence", summary.Sequence),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(summary); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createGetSessionHandler returns the report for a live or persisted session
func (s *Server) createGetSessionHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("jobfit.api")
		_, span := tracer.Start(r.Context(), "api.get_session")
		defer span.End()

		sessionID := r.PathValue("id")
		span.SetAttributes(attribute.String("session.id", sessionID))

		var report types.AnalysisReport
		if session, ok := s.Registry.Get(sessionID); ok {
			report = session.Report()
		} else {
			loaded, err := s.Store.Load(sessionID)
			if err != nil {
				span.RecordError(err)
				span.SetAttributes(attribute.String("error.type", "not_found"))
				writeErrorResponse(w, "Session not found", err.Error(), http.StatusNotFound)
				return
			}
			report = loaded
		}

		span.SetAttributes(attribute.Bool("success", true))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// statusForError maps the error taxonomy onto HTTP status codes
func statusForError(err error) int {
	switch jobfitErrors.TypeOf(err) {
	case jobfitErrors.ErrorTypeValidation, jobfitErrors.ErrorTypeRevision, jobfitErrors.ErrorTypeIO:
		return http.StatusBadRequest
	case jobfitErrors.ErrorTypeEvidence, jobfitErrors.ErrorTypeExtraction:
		return http.StatusUnprocessableEntity
	case jobfitErrors.ErrorTypeTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limited responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordRateLimitHit(r.Context(), om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
