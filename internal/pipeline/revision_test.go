package pipeline

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"jobfit/internal/errors"
	"jobfit/internal/types"
)

func analyzedSession(t *testing.T, h *testHarness) *Session {
	t.Helper()
	session, _, err := h.orch.Analyze(context.Background(), analyzeInput())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return session
}

func revisionRequest(comment string) types.RevisionRequest {
	return types.RevisionRequest{Comment: comment, RequestedAt: time.Now()}
}

func TestReviseAppendsStrictlyIncreasingSequences(t *testing.T) {
	h := newTestHarness(t)
	session := analyzedSession(t, h)

	// Identical comments are legitimate: regeneration may vary in wording,
	// each submission gets its own sequence number.
	first, _, err := h.orch.Revise(context.Background(), session, revisionRequest("shorter please"))
	if err != nil {
		t.Fatalf("first revision failed: %v", err)
	}
	second, _, err := h.orch.Revise(context.Background(), session, revisionRequest("shorter please"))
	if err != nil {
		t.Fatalf("second revision failed: %v", err)
	}

	if first.Sequence != 1 || second.Sequence != 2 {
		t.Errorf("Expected sequences 1 and 2, got %d and %d", first.Sequence, second.Sequence)
	}
	if session.State() != StateRevised {
		t.Errorf("Expected state %s, got %s", StateRevised, session.State())
	}
	if first.RevisionComment != "shorter please" {
		t.Errorf("Expected comment recorded on summary, got %q", first.RevisionComment)
	}
}

func TestReviseNeverRecomputesTheRecord(t *testing.T) {
	h := newTestHarness(t)
	session := analyzedSession(t, h)

	before := session.Record()
	parseCalls := h.resumes.calls + h.jobs.calls

	for i := 0; i < 3; i++ {
		if _, _, err := h.orch.Revise(context.Background(), session, revisionRequest("emphasize leadership")); err != nil {
			t.Fatalf("revision %d failed: %v", i, err)
		}
	}

	if got := h.resumes.calls + h.jobs.calls; got != parseCalls {
		t.Errorf("Revision re-invoked parsing: %d calls before, %d after", parseCalls, got)
	}
	if !reflect.DeepEqual(before, session.Record()) {
		t.Error("Record changed across revisions")
	}
	for _, summary := range session.Summaries() {
		if summary.RecordID != before.ID {
			t.Errorf("Summary %d references record %q, want %q", summary.Sequence, summary.RecordID, before.ID)
		}
	}
}

func TestRevisePassesPriorSummaryAndComment(t *testing.T) {
	h := newTestHarness(t)
	session := analyzedSession(t, h)

	initial := session.Summaries()[0]
	if _, _, err := h.orch.Revise(context.Background(), session, revisionRequest("warmer tone")); err != nil {
		t.Fatalf("Revise failed: %v", err)
	}

	inputs := h.summarizer.inputs
	last := inputs[len(inputs)-1]
	if last.RevisionComment != "warmer tone" {
		t.Errorf("Expected comment forwarded, got %q", last.RevisionComment)
	}
	if last.PriorSummary != initial.Text {
		t.Errorf("Expected prior summary %q as context, got %q", initial.Text, last.PriorSummary)
	}
	if last.Record.ID != session.Record().ID {
		t.Error("Expected the unchanged record as summarizer input")
	}
}

func TestReviseRejectsEmptyComment(t *testing.T) {
	h := newTestHarness(t)
	session := analyzedSession(t, h)

	for _, comment := range []string{"", "   ", "\n\t"} {
		_, _, err := h.orch.Revise(context.Background(), session, revisionRequest(comment))
		if err == nil {
			t.Fatalf("Expected rejection of comment %q", comment)
		}
		if errors.TypeOf(err) != errors.ErrorTypeRevision {
			t.Errorf("Expected revision error, got %s", errors.TypeOf(err))
		}
	}

	// The session remains usable after local rejection
	if session.State() != StateSummarized {
		t.Errorf("Expected state unchanged at %s, got %s", StateSummarized, session.State())
	}
	if _, _, err := h.orch.Revise(context.Background(), session, revisionRequest("valid comment")); err != nil {
		t.Errorf("Expected session usable after rejected comment, got %v", err)
	}
}

func TestReviseRequiresSummary(t *testing.T) {
	h := newTestHarness(t)

	_, _, err := h.orch.Revise(context.Background(), NewSession(), revisionRequest("anything"))
	if err == nil {
		t.Fatal("Expected rejection for a session with no summary")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeInvalidTransition {
		t.Errorf("Expected %s, got %v", errors.ErrCodeInvalidTransition, err)
	}
}

func TestReviseRetriesTransientFailure(t *testing.T) {
	h := newTestHarness(t)
	session := analyzedSession(t, h)

	h.summarizer.errs = []error{
		errors.NewTransientError(errors.ErrCodeAIServiceFailed, "model timeout", nil),
	}
	summary, _, err := h.orch.Revise(context.Background(), session, revisionRequest("tighten"))
	if err != nil {
		t.Fatalf("Expected retry to recover, got %v", err)
	}
	if summary.Sequence != 1 {
		t.Errorf("Expected sequence 1, got %d", summary.Sequence)
	}
}

func TestConcurrentRevisions(t *testing.T) {
	h := newTestHarness(t)
	session := analyzedSession(t, h)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := h.orch.Revise(context.Background(), session, revisionRequest("parallel feedback")); err != nil {
				t.Errorf("concurrent revision failed: %v", err)
			}
		}()
	}
	wg.Wait()

	summaries := session.Summaries()
	if len(summaries) != workers+1 {
		t.Fatalf("Expected %d summaries, got %d", workers+1, len(summaries))
	}

	seen := make(map[int]bool)
	recordID := session.Record().ID
	for _, s := range summaries {
		if seen[s.Sequence] {
			t.Errorf("Duplicate sequence %d under concurrent revision", s.Sequence)
		}
		seen[s.Sequence] = true
		if s.RecordID != recordID {
			t.Errorf("Summary %d bound to %q, want %q", s.Sequence, s.RecordID, recordID)
		}
	}
}
