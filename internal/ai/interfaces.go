package ai

import (
	"context"

	"jobfit/internal/types"
)

// AIProvider is the extraction and narration collaborator. Implementations
// return token usage alongside results; callers can ignore it if not needed.
type AIProvider interface {
	ParseResume(ctx context.Context, redactedText string) (types.ParsedResume, *TokenUsage, error)
	ParseJob(ctx context.Context, jobText string) (types.ParsedJob, *TokenUsage, error)
	Summarize(ctx context.Context, input SummarizeInput) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// SummarizeInput carries everything the summarizer may reference. The record
// is a fixed input: the summarizer narrates it, it never changes it. Source
// documents are deliberately absent; the summarizer works from the computed
// record and job labels alone, so no implementation can quote text the
// scoring stages did not admit as evidence.
type SummarizeInput struct {
	Record     types.FitAnalysisRecord
	JobTitle   string
	JobCompany string

	// Set on revision passes only
	PriorSummary    string
	RevisionComment string
}
