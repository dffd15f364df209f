package pipeline

import (
	"testing"
	"time"

	"jobfit/internal/errors"
	"jobfit/internal/types"
)

func sampleReport() types.AnalysisReport {
	return types.AnalysisReport{
		SessionID: "session-123",
		Candidate: types.CandidateDetail{ID: "cand-1", Email: "x@example.com"},
		Resume:    types.ParsedResume{CandidateID: "cand-1", Skills: []string{"go"}, SourceText: "go developer"},
		Job:       types.ParsedJob{JobID: "job-1", Skills: []types.RequiredSkill{{Name: "go", Tag: types.SkillTagRequired}}, SourceText: "go needed"},
		Record: types.FitAnalysisRecord{
			ID:           "rec-1",
			CandidateID:  "cand-1",
			JobID:        "job-1",
			OverallScore: 0.82,
			CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Summaries: []types.Summary{
			{ID: "sum-0", RecordID: "rec-1", Text: "Strong candidate.", Sequence: 0},
			{ID: "sum-1", RecordID: "rec-1", Text: "Strong candidate, shorter.", RevisionComment: "shorter", Sequence: 1},
		},
		ScoringConfig: map[string]any{"skillsWeight": 0.4},
		GeneratedAt:   time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := NewStore(t.TempDir(), testLogger)

	path, err := store.Save(sampleReport())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if path == "" {
		t.Fatal("Expected a path for the saved report")
	}

	loaded, err := store.Load("session-123")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Record.ID != "rec-1" || loaded.Record.OverallScore != 0.82 {
		t.Errorf("Record did not survive the round trip: %+v", loaded.Record)
	}
	if len(loaded.Summaries) != 2 || loaded.Summaries[1].Sequence != 1 {
		t.Errorf("Summaries did not survive the round trip: %+v", loaded.Summaries)
	}
	if loaded.Candidate.Email != "x@example.com" {
		t.Error("Candidate detail missing from loaded report")
	}
}

func TestStoreLoadMissingReport(t *testing.T) {
	store := NewStore(t.TempDir(), testLogger)

	_, err := store.Load("nope")
	if err == nil {
		t.Fatal("Expected error for missing report")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeFileNotFound {
		t.Errorf("Expected %s, got %v", errors.ErrCodeFileNotFound, err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	s := NewSession()
	reg.Register(s)

	got, ok := reg.Get(s.ID)
	if !ok || got != s {
		t.Fatal("Expected registered session to be retrievable")
	}
	if reg.Count() != 1 {
		t.Errorf("Expected count 1, got %d", reg.Count())
	}

	if _, ok := reg.Get("missing"); ok {
		t.Error("Expected lookup miss for unknown session")
	}

	reg.Remove(s.ID)
	if _, ok := reg.Get(s.ID); ok {
		t.Error("Expected session removed")
	}
}
