package pipeline

import (
	"context"
	"strings"

	"jobfit/internal/ai"
	"jobfit/internal/errors"
	"jobfit/internal/types"
)

// Revise produces one more summary for the session's record from recruiter
// feedback. The record and every numeric score in it are byte-identical
// inputs across all revisions; this path never touches the skill matcher or
// the scoring engine. An invalid comment is rejected locally and the session
// stays usable.
func (o *Orchestrator) Revise(ctx context.Context, session *Session, request types.RevisionRequest) (types.Summary, *ai.TokenUsage, error) {
	usage := &ai.TokenUsage{}

	if strings.TrimSpace(request.Comment) == "" {
		return types.Summary{}, usage, errors.NewRevisionError(errors.ErrCodeInvalidComment,
			"revision comment must not be empty", nil).WithStage(StageRevise)
	}

	switch session.State() {
	case StateSummarized, StateRevised:
	default:
		return types.Summary{}, usage, errors.NewValidationError(errors.ErrCodeInvalidTransition,
			"session has no summary to revise", nil).WithStage(StageRevise)
	}

	record := session.Record()
	job := session.Job()
	prior := session.latestSummaryText()

	var text string
	err := o.withRetry(ctx, StageRevise, o.retry.SummarizeAttempts, func() error {
		out, tokens, err := o.collab.Summarizer.Summarize(ctx, ai.SummarizeInput{
			Record:          record,
			JobTitle:        job.Title,
			JobCompany:      job.Company,
			PriorSummary:    prior,
			RevisionComment: request.Comment,
		})
		if err != nil {
			return err
		}
		text = out
		addTokenUsage(usage, tokens)
		return nil
	})

	if o.metrics != nil {
		o.metrics.RecordRevision(ctx, err == nil, o.obs)
	}
	if err != nil {
		return types.Summary{}, usage, stageErr(err, StageRevise)
	}

	summary, err := session.addRevision(text, request.Comment)
	if err != nil {
		return types.Summary{}, usage, err
	}
	if o.metrics != nil {
		o.metrics.RecordSummaryGenerated(ctx, true, o.obs)
	}

	o.logger.Info("Revision completed",
		"session_id", session.ID,
		"record_id", record.ID,
		"sequence", summary.Sequence)
	return summary, usage, nil
}
