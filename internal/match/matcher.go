package match

import (
	"sort"

	"jobfit/internal/types"
)

// Matcher performs lexical then semantic comparison of a job's required
// skills against a candidate's stated skills. It is a pure function of its
// inputs plus the fixed similarity function; that purity is what makes the
// overall fit score reproducible.
type Matcher struct {
	similarity SimilarityFunc
	threshold  float64
}

// NewMatcher creates a matcher with the given similarity function and
// semantic-match threshold. The threshold is inclusive: a similarity exactly
// equal to it counts as a semantic match, so raising the threshold never
// silently discards pairs that scored right at the old value. A nil
// similarity function falls back to TrigramCosine.
func NewMatcher(similarity SimilarityFunc, threshold float64) *Matcher {
	if similarity == nil {
		similarity = TrigramCosine
	}
	return &Matcher{similarity: similarity, threshold: threshold}
}

// Match evaluates every required skill against the candidate skill list.
// An empty required list yields an empty result set, not an error.
func (m *Matcher) Match(required []types.RequiredSkill, candidateSkills []string) types.SkillMatchResult {
	result := types.SkillMatchResult{Matches: make([]types.SkillMatch, 0, len(required))}

	// Candidate skills sorted by normalized form up front so the semantic
	// tie-break is independent of input ordering.
	sorted := make([]string, len(candidateSkills))
	copy(sorted, candidateSkills)
	sort.Slice(sorted, func(i, j int) bool {
		return Normalize(sorted[i]) < Normalize(sorted[j])
	})

	for _, req := range required {
		result.Matches = append(result.Matches, m.matchOne(req, sorted))
	}
	return result
}

func (m *Matcher) matchOne(req types.RequiredSkill, sortedCandidates []string) types.SkillMatch {
	reqNorm := Normalize(req.Name)

	// Lexical pass: exact match after normalization
	for _, cand := range sortedCandidates {
		if Normalize(cand) == reqNorm {
			return types.SkillMatch{
				JobSkill:       req,
				CandidateSkill: cand,
				Kind:           types.MatchKindExact,
				Similarity:     1.0,
			}
		}
	}

	// Semantic pass: best similarity above threshold. Candidates are already
	// in lexicographic order, so keeping the first strictly-greater score
	// resolves ties toward the lexicographically first skill.
	best := ""
	bestSim := 0.0
	for _, cand := range sortedCandidates {
		sim := m.similarity(reqNorm, Normalize(cand))
		if sim > bestSim {
			best = cand
			bestSim = sim
		}
	}

	if best != "" && bestSim >= m.threshold {
		return types.SkillMatch{
			JobSkill:       req,
			CandidateSkill: best,
			Kind:           types.MatchKindSemantic,
			Similarity:     bestSim,
		}
	}

	return types.SkillMatch{
		JobSkill:   req,
		Kind:       types.MatchKindNone,
		Similarity: 0,
	}
}
