package pipeline

import (
	"sync"
	"testing"

	"jobfit/internal/errors"
	"jobfit/internal/types"
)

func TestSessionLifecycleTransitions(t *testing.T) {
	s := NewSession()

	if s.State() != StateNew {
		t.Fatalf("Expected new session in state %s, got %s", StateNew, s.State())
	}
	if s.ID == "" {
		t.Fatal("Expected session ID to be assigned")
	}

	if err := s.setIngested(); err != nil {
		t.Fatalf("setIngested failed: %v", err)
	}
	if err := s.setRedacted(types.CandidateDetail{ID: "cand-1"}); err != nil {
		t.Fatalf("setRedacted failed: %v", err)
	}
	if err := s.setParsed(types.ParsedResume{CandidateID: "cand-1"}, types.ParsedJob{JobID: "job-1"}); err != nil {
		t.Fatalf("setParsed failed: %v", err)
	}
	if err := s.setAnalyzed(types.FitAnalysisRecord{ID: "rec-1"}, map[string]any{"skillsWeight": 0.4}); err != nil {
		t.Fatalf("setAnalyzed failed: %v", err)
	}
	if _, err := s.setSummarized("initial summary"); err != nil {
		t.Fatalf("setSummarized failed: %v", err)
	}

	if s.State() != StateSummarized {
		t.Errorf("Expected state %s, got %s", StateSummarized, s.State())
	}
	if s.Record().ID != "rec-1" {
		t.Errorf("Expected record rec-1, got %q", s.Record().ID)
	}
}

func TestSessionRejectsSkippedStages(t *testing.T) {
	tests := []struct {
		name string
		run  func(s *Session) error
	}{
		{"parse before redact", func(s *Session) error {
			_ = s.setIngested()
			return s.setParsed(types.ParsedResume{}, types.ParsedJob{})
		}},
		{"analyze before parse", func(s *Session) error {
			_ = s.setIngested()
			_ = s.setRedacted(types.CandidateDetail{})
			return s.setAnalyzed(types.FitAnalysisRecord{}, nil)
		}},
		{"summarize from new", func(s *Session) error {
			_, err := s.setSummarized("text")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(NewSession())
			if err == nil {
				t.Fatal("Expected transition error, got nil")
			}
			appErr, ok := err.(*errors.AppError)
			if !ok || appErr.Code != errors.ErrCodeInvalidTransition {
				t.Errorf("Expected %s, got %v", errors.ErrCodeInvalidTransition, err)
			}
		})
	}
}

func TestSessionRejectsRewind(t *testing.T) {
	s := NewSession()
	_ = s.setIngested()
	_ = s.setRedacted(types.CandidateDetail{})
	_ = s.setParsed(types.ParsedResume{}, types.ParsedJob{})

	if err := s.advance(StateIngested); err == nil {
		t.Error("Expected rewind to ingested to be rejected")
	}
	if err := s.advance(StateRedacted); err == nil {
		t.Error("Expected rewind to redacted to be rejected")
	}
	if s.State() != StateParsed {
		t.Errorf("Expected state unchanged at %s, got %s", StateParsed, s.State())
	}
}

func TestSessionCancelBeforeAnalysisDiscardsArtifacts(t *testing.T) {
	s := NewSession()
	_ = s.setIngested()
	_ = s.setRedacted(types.CandidateDetail{ID: "cand-1", Email: "x@y.z"})
	_ = s.setParsed(types.ParsedResume{CandidateID: "cand-1", Skills: []string{"go"}}, types.ParsedJob{JobID: "job-1"})

	if err := s.Cancel(); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if s.State() != StateCancelled {
		t.Errorf("Expected state %s, got %s", StateCancelled, s.State())
	}
	if s.Candidate().ID != "" || len(s.Resume().Skills) != 0 || s.Job().JobID != "" {
		t.Error("Expected partial artifacts discarded on cancellation")
	}
}

func TestSessionCancelAfterAnalysisRejected(t *testing.T) {
	s := NewSession()
	_ = s.setIngested()
	_ = s.setRedacted(types.CandidateDetail{})
	_ = s.setParsed(types.ParsedResume{}, types.ParsedJob{})
	_ = s.setAnalyzed(types.FitAnalysisRecord{ID: "rec-1"}, nil)

	if err := s.Cancel(); err == nil {
		t.Fatal("Expected cancellation after analysis to be rejected")
	}
	if s.Record().ID != "rec-1" {
		t.Error("Expected record preserved after rejected cancellation")
	}
}

func TestSummarySequenceAllocationUnderConcurrency(t *testing.T) {
	s := NewSession()
	_ = s.setIngested()
	_ = s.setRedacted(types.CandidateDetail{})
	_ = s.setParsed(types.ParsedResume{}, types.ParsedJob{})
	_ = s.setAnalyzed(types.FitAnalysisRecord{ID: "rec-1"}, nil)
	if _, err := s.setSummarized("seq zero"); err != nil {
		t.Fatalf("setSummarized failed: %v", err)
	}

	const revisions = 20
	var wg sync.WaitGroup
	for i := 0; i < revisions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.addRevision("revised text", "tighten it up"); err != nil {
				t.Errorf("addRevision failed: %v", err)
			}
		}()
	}
	wg.Wait()

	summaries := s.Summaries()
	if len(summaries) != revisions+1 {
		t.Fatalf("Expected %d summaries, got %d", revisions+1, len(summaries))
	}

	seen := make(map[int]bool)
	for _, sum := range summaries {
		if seen[sum.Sequence] {
			t.Errorf("Duplicate sequence number %d", sum.Sequence)
		}
		seen[sum.Sequence] = true
		if sum.RecordID != "rec-1" {
			t.Errorf("Summary %d bound to record %q, want rec-1", sum.Sequence, sum.RecordID)
		}
	}
	for i := 0; i <= revisions; i++ {
		if !seen[i] {
			t.Errorf("Missing sequence number %d", i)
		}
	}
}

func TestSessionReportCarriesAbandonedState(t *testing.T) {
	s := NewSession()
	_ = s.setIngested()
	_ = s.setRedacted(types.CandidateDetail{ID: "cand-1"})
	_ = s.setParsed(types.ParsedResume{CandidateID: "cand-1"}, types.ParsedJob{JobID: "job-1"})
	_ = s.setAnalyzed(types.FitAnalysisRecord{ID: "rec-1"}, map[string]any{"skillsWeight": 0.4})
	s.markAbandoned("summarization failed")

	report := s.Report()
	if !report.Abandoned || report.AbandonedReason != "summarization failed" {
		t.Errorf("Expected abandoned report, got %+v", report)
	}
	if report.Record.ID != "rec-1" {
		t.Error("Expected record preserved in abandoned report")
	}
	if report.SessionID != s.ID {
		t.Errorf("Expected session ID %s, got %s", s.ID, report.SessionID)
	}
}

func TestRestoreSessionResumesRevisionWorkflow(t *testing.T) {
	restored, err := RestoreSession(sampleReport())
	if err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}

	if restored.State() != StateRevised {
		t.Errorf("Expected state %s for a report with revisions, got %s", StateRevised, restored.State())
	}
	if restored.Record().ID != "rec-1" {
		t.Error("Expected stored record carried over unchanged")
	}

	summary, err := restored.addRevision("tightened once more", "tighter")
	if err != nil {
		t.Fatalf("Expected restored session to accept revisions: %v", err)
	}
	if summary.Sequence != 2 {
		t.Errorf("Expected sequence to continue at 2, got %d", summary.Sequence)
	}
	if summary.RecordID != "rec-1" {
		t.Errorf("Expected revision bound to stored record, got %q", summary.RecordID)
	}
}

func TestRestoreSessionWithSingleSummary(t *testing.T) {
	report := sampleReport()
	report.Summaries = report.Summaries[:1]

	restored, err := RestoreSession(report)
	if err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}
	if restored.State() != StateSummarized {
		t.Errorf("Expected state %s, got %s", StateSummarized, restored.State())
	}
}

func TestRestoreSessionRequiresSummary(t *testing.T) {
	report := sampleReport()
	report.Summaries = nil

	_, err := RestoreSession(report)
	if err == nil {
		t.Fatal("Expected error for a report with no summaries")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeInvalidTransition {
		t.Errorf("Expected %s, got %v", errors.ErrCodeInvalidTransition, err)
	}
}
