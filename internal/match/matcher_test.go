package match

import (
	"reflect"
	"testing"

	"jobfit/internal/types"
)

func TestMatchExactAndMissing(t *testing.T) {
	// Required skills python (required) and docker (preferred) against a
	// candidate listing Python and Kubernetes: python matches exactly with
	// similarity 1.0, docker finds nothing above threshold.
	matcher := NewMatcher(TrigramCosine, 0.75)

	required := []types.RequiredSkill{
		{Name: "python", Tag: types.SkillTagRequired},
		{Name: "docker", Tag: types.SkillTagPreferred},
	}
	candidate := []string{"Python", "Kubernetes"}

	result := matcher.Match(required, candidate)
	if len(result.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(result.Matches))
	}

	py := result.Matches[0]
	if py.Kind != types.MatchKindExact || py.Similarity != 1.0 || py.CandidateSkill != "Python" {
		t.Errorf("python: expected exact match on Python with 1.0, got %+v", py)
	}

	dk := result.Matches[1]
	if dk.Kind != types.MatchKindNone || dk.Similarity != 0 {
		t.Errorf("docker: expected no match with similarity 0, got %+v", dk)
	}
}

func TestMatchNormalization(t *testing.T) {
	matcher := NewMatcher(TrigramCosine, 0.75)

	required := []types.RequiredSkill{{Name: "  Machine   Learning ", Tag: types.SkillTagRequired}}
	result := matcher.Match(required, []string{"machine learning"})

	if result.Matches[0].Kind != types.MatchKindExact {
		t.Errorf("expected whitespace/case-normalized exact match, got %+v", result.Matches[0])
	}
}

func TestMatchEmptyRequired(t *testing.T) {
	matcher := NewMatcher(TrigramCosine, 0.75)

	result := matcher.Match(nil, []string{"Python"})
	if len(result.Matches) != 0 {
		t.Errorf("empty required list should yield empty result, got %d matches", len(result.Matches))
	}
}

func TestMatchTieBreakLexicographic(t *testing.T) {
	// A similarity function that ties for every candidate; the matcher must
	// pick the lexicographically first skill regardless of input order.
	tied := func(a, b string) float64 { return 0.9 }
	matcher := NewMatcher(tied, 0.75)

	required := []types.RequiredSkill{{Name: "golang", Tag: types.SkillTagRequired}}

	first := matcher.Match(required, []string{"zig", "ada", "nim"})
	second := matcher.Match(required, []string{"nim", "zig", "ada"})

	if first.Matches[0].CandidateSkill != "ada" {
		t.Errorf("expected lexicographically first candidate 'ada', got %q", first.Matches[0].CandidateSkill)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("match result depends on candidate ordering: %+v vs %+v", first, second)
	}
}

func TestMatchThresholdIsInclusive(t *testing.T) {
	// A similarity exactly at the threshold must be accepted; one just
	// below it must not.
	at := func(a, b string) float64 { return 0.75 }
	below := func(a, b string) float64 { return 0.7499 }

	required := []types.RequiredSkill{{Name: "golang", Tag: types.SkillTagRequired}}

	accepted := NewMatcher(at, 0.75).Match(required, []string{"go"})
	if accepted.Matches[0].Kind != types.MatchKindSemantic {
		t.Errorf("expected semantic match at exactly the threshold, got %+v", accepted.Matches[0])
	}

	rejected := NewMatcher(below, 0.75).Match(required, []string{"go"})
	if rejected.Matches[0].Kind != types.MatchKindNone {
		t.Errorf("expected no match just below the threshold, got %+v", rejected.Matches[0])
	}
}

func TestMatchDeterminism(t *testing.T) {
	matcher := NewMatcher(TrigramCosine, 0.75)

	required := []types.RequiredSkill{
		{Name: "kubernetes", Tag: types.SkillTagRequired},
		{Name: "terraform", Tag: types.SkillTagPreferred},
	}
	candidate := []string{"Kubernetes administration", "Terraform", "Ansible"}

	a := matcher.Match(required, candidate)
	b := matcher.Match(required, candidate)
	if !reflect.DeepEqual(a, b) {
		t.Error("two invocations with identical inputs produced different results")
	}
}

func TestTrigramCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want func(sim float64) bool
	}{
		{"identical", "python", "python", func(s float64) bool { return s == 1.0 }},
		{"identical after normalization", "Python ", "python", func(s float64) bool { return s == 1.0 }},
		{"related strings score high", "postgresql", "postgres", func(s float64) bool { return s > 0.6 }},
		{"unrelated strings score low", "docker", "accounting", func(s float64) bool { return s < 0.3 }},
		{"empty input", "", "python", func(s float64) bool { return s == 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := TrigramCosine(tt.a, tt.b)
			if !tt.want(sim) {
				t.Errorf("TrigramCosine(%q, %q) = %f", tt.a, tt.b, sim)
			}
			if sim < 0 || sim > 1 {
				t.Errorf("similarity out of [0,1]: %f", sim)
			}
		})
	}
}
