package scoring

import (
	"strings"

	"jobfit/internal/types"
)

// Ordinal degree levels. Labels are matched by keyword so the extraction
// collaborator does not have to emit a fixed vocabulary.
const (
	eduNone = iota
	eduHighSchool
	eduAssociate
	eduBachelor
	eduMaster
	eduDoctorate
)

var degreeKeywords = []struct {
	level    int
	keywords []string
}{
	{eduDoctorate, []string{"phd", "ph.d", "doctor", "doctorate", "dphil"}},
	{eduMaster, []string{"master", "msc", "m.sc", "mba", "m.a.", "meng", "m.eng"}},
	{eduBachelor, []string{"bachelor", "bsc", "b.sc", "b.a.", "beng", "b.eng", "undergraduate degree"}},
	{eduAssociate, []string{"associate", "diploma", "a.a."}},
	{eduHighSchool, []string{"high school", "secondary school", "ged"}},
}

// DegreeLevel maps a free-text degree label to its ordinal level.
// Unrecognized labels rank as no formal qualification.
func DegreeLevel(label string) int {
	l := strings.ToLower(label)
	for _, d := range degreeKeywords {
		for _, kw := range d.keywords {
			if strings.Contains(l, kw) {
				return d.level
			}
		}
	}
	return eduNone
}

// highestDegree returns the index and level of the candidate's best entry,
// or (-1, eduNone) when the resume lists no education.
func highestDegree(entries []types.EducationEntry) (int, int) {
	bestIdx, bestLevel := -1, eduNone
	for i, e := range entries {
		if lvl := DegreeLevel(e.Degree); lvl > bestLevel {
			bestIdx, bestLevel = i, lvl
		}
	}
	return bestIdx, bestLevel
}

// educationScore compares the candidate's highest degree to the job's
// requirement on the ordinal scale. Meeting or exceeding earns full credit,
// one level below earns the configured partial credit, anything lower earns
// none. A job with no stated requirement scores full credit.
func (c Config) educationScore(candidateLevel, requiredLevel int) float64 {
	if requiredLevel <= eduNone {
		return 1.0
	}
	switch {
	case candidateLevel >= requiredLevel:
		return 1.0
	case candidateLevel == requiredLevel-1:
		return c.EducationPartialCredit
	default:
		return 0
	}
}
