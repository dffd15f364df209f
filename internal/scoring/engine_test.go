package scoring

import (
	"math"
	"reflect"
	"testing"
	"time"

	"jobfit/internal/errors"
	"jobfit/internal/types"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ReferenceDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return cfg
}

func testResume() types.ParsedResume {
	return types.ParsedResume{
		CandidateID: "cand-1",
		Skills:      []string{"Python", "Kubernetes"},
		SkillEvidence: map[string]string{
			"Python":     "expert in Python and distributed systems",
			"Kubernetes": "operated Kubernetes clusters in production",
		},
		Experience: []types.ExperienceEntry{
			{
				Title:        "Senior Engineer",
				Organization: "Acme",
				Start:        "2019-01",
				End:          "2024-01",
				Evidence:     "Senior Engineer at Acme from 2019 to 2024",
			},
		},
		Education: []types.EducationEntry{
			{
				Degree:      "BSc Computer Science",
				Institution: "State University",
				Evidence:    "BSc Computer Science, State University",
			},
		},
		SourceText: "Jane Doe, expert in Python and distributed systems. " +
			"Senior Engineer at Acme from 2019 to 2024. " +
			"Also operated Kubernetes clusters in production. " +
			"BSc Computer Science, State University.",
	}
}

func testJob() types.ParsedJob {
	return types.ParsedJob{
		JobID: "job-1",
		Skills: []types.RequiredSkill{
			{Name: "python", Tag: types.SkillTagRequired},
			{Name: "docker", Tag: types.SkillTagPreferred},
		},
		SkillEvidence: map[string]string{
			"python": "strong Python skills required",
		},
		MinExperienceMonths: 24,
		ExperienceEvidence:  "at least 2 years of experience",
		MinEducation:        "bachelor",
		EducationEvidence:   "bachelor's degree in a technical field",
		Seniority:           "senior",
		SeniorityEvidence:   "looking for a senior engineer",
		SourceText: "We need strong Python skills required, at least 2 years of experience, " +
			"a bachelor's degree in a technical field. Overall we are looking for a senior engineer.",
	}
}

// Skill matches as the matcher would produce them for the documents above:
// python matched exactly, docker not matched.
func testMatches() types.SkillMatchResult {
	return types.SkillMatchResult{Matches: []types.SkillMatch{
		{
			JobSkill:       types.RequiredSkill{Name: "python", Tag: types.SkillTagRequired},
			CandidateSkill: "Python",
			Kind:           types.MatchKindExact,
			Similarity:     1.0,
		},
		{
			JobSkill:   types.RequiredSkill{Name: "docker", Tag: types.SkillTagPreferred},
			Kind:       types.MatchKindNone,
			Similarity: 0,
		},
	}}
}

func TestScoreSkillWeighting(t *testing.T) {
	// One matched required skill (weight 0.7) and one unmatched preferred
	// skill (weight 0.3) yield a skill score of 0.7/1.0 = 0.70.
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	record, err := engine.Score(testResume(), testJob(), testMatches())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if math.Abs(record.SkillScore-0.70) > 1e-9 {
		t.Errorf("expected skill score 0.70, got %f", record.SkillScore)
	}
	if record.ExperienceScore != 1.0 {
		t.Errorf("60 months against a 24-month minimum should score 1.0, got %f", record.ExperienceScore)
	}
	if record.EducationScore != 1.0 {
		t.Errorf("bachelor vs bachelor requirement should score 1.0, got %f", record.EducationScore)
	}
	if record.SeniorityScore != 1.0 {
		t.Errorf("senior candidate vs senior job should score 1.0, got %f", record.SeniorityScore)
	}

	want := 0.40*0.70 + 0.30*1.0 + 0.15*1.0 + 0.15*1.0
	if math.Abs(record.OverallScore-want) > 1e-9 {
		t.Errorf("expected overall %f, got %f", want, record.OverallScore)
	}
	if record.Recommendation != types.RecommendationStrongFit {
		t.Errorf("overall %.3f should map to strong-fit, got %s", record.OverallScore, record.Recommendation)
	}
}

func TestScoreDeterminism(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	first, err := engine.Score(testResume(), testJob(), testMatches())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := engine.Score(testResume(), testJob(), testMatches())
		if err != nil {
			t.Fatalf("Score run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different record", i)
		}
	}
}

func TestScoreEvidenceAttached(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	record, err := engine.Score(testResume(), testJob(), testMatches())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if len(record.Evidence) == 0 {
		t.Fatal("record carries no evidence")
	}
	for _, ev := range record.Evidence {
		source := testResume().SourceText
		if ev.SourceDocument == "job" {
			source = testJob().SourceText
		}
		if got := source[ev.Offset : ev.Offset+len(ev.Text)]; got != ev.Text {
			t.Errorf("evidence offset %d does not locate %q in %s document", ev.Offset, ev.Text, ev.SourceDocument)
		}
	}
}

func TestScoreUnsupportedClaimIsFatal(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	resume := testResume()
	resume.SkillEvidence["Python"] = "ten years of Python mastery" // not in SourceText

	_, err = engine.Score(resume, testJob(), testMatches())
	if err == nil {
		t.Fatal("expected unsupported claim error")
	}
	if errors.TypeOf(err) != errors.ErrorTypeEvidence {
		t.Errorf("expected evidence error type, got %s", errors.TypeOf(err))
	}
	if errors.IsRetryable(err) {
		t.Error("unsupported claim must not be retryable")
	}
}

func TestScoreEducationLevels(t *testing.T) {
	tests := []struct {
		name         string
		degree       string
		minEducation string
		want         float64
	}{
		{"meets requirement", "BSc Computer Science", "bachelor", 1.0},
		{"exceeds requirement", "PhD in Physics", "bachelor", 1.0},
		{"one level below earns partial credit", "Associate of Arts", "bachelor", 0.5},
		{"two levels below earns nothing", "High School Diploma", "master", 0},
		{"no requirement earns full credit", "", "", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(testConfig())
			if err != nil {
				t.Fatalf("NewEngine: %v", err)
			}

			resume := testResume()
			resume.Education = nil
			if tt.degree != "" {
				resume.Education = []types.EducationEntry{{
					Degree:   tt.degree,
					Evidence: "BSc Computer Science, State University",
				}}
			}
			job := testJob()
			job.MinEducation = tt.minEducation
			if tt.minEducation == "" {
				job.EducationEvidence = ""
			}

			record, err := engine.Score(resume, job, testMatches())
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if record.EducationScore != tt.want {
				t.Errorf("expected education score %f, got %f", tt.want, record.EducationScore)
			}
		})
	}
}

func TestScoreSeniorityBands(t *testing.T) {
	tests := []struct {
		name     string
		months   int
		title    string
		jobLevel string
		want     float64
	}{
		{"matching band", 80, "Engineer", "senior", 1.0},
		{"adjacent band earns partial credit", 48, "Engineer", "senior", 0.5},
		{"two bands apart earns nothing", 12, "Engineer", "senior", 0},
		{"title bump closes the gap", 48, "Lead Engineer", "senior", 1.0},
		{"no job constraint earns full credit", 12, "Engineer", "", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(testConfig())
			if err != nil {
				t.Fatalf("NewEngine: %v", err)
			}

			start := testConfig().ReferenceDate.AddDate(0, -tt.months, 0)
			resume := testResume()
			resume.Experience = []types.ExperienceEntry{{
				Title:    tt.title,
				Start:    start.Format("2006-01"),
				Evidence: "Senior Engineer at Acme from 2019 to 2024",
			}}
			job := testJob()
			job.MinExperienceMonths = 0
			job.ExperienceEvidence = ""
			job.Seniority = tt.jobLevel
			if tt.jobLevel == "" {
				job.SeniorityEvidence = ""
			}

			record, err := engine.Score(resume, job, testMatches())
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if record.SeniorityScore != tt.want {
				t.Errorf("expected seniority score %f, got %f", tt.want, record.SeniorityScore)
			}
		})
	}
}

func TestDegreeLevelOrdering(t *testing.T) {
	labels := []string{"high school diploma", "Associate of Science", "Bachelor of Arts", "MSc Engineering", "PhD"}
	prev := eduNone
	for _, label := range labels {
		lvl := DegreeLevel(label)
		if lvl <= prev {
			t.Errorf("degree %q level %d not above previous %d", label, lvl, prev)
		}
		prev = lvl
	}
	if DegreeLevel("certificate of attendance") != eduNone {
		t.Error("unrecognized label should rank as no formal qualification")
	}
}
