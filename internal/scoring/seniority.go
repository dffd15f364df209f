package scoring

import (
	"strings"

	"jobfit/internal/types"
)

// Seniority bands on an ordinal scale
const (
	seniorityJunior = iota
	seniorityMid
	senioritySenior
)

const (
	midMinMonths    = 36
	seniorMinMonths = 72
)

var seniorTitleKeywords = []string{"senior", "staff", "principal", "lead", "head of", "director", "architect"}

// SeniorityBand parses a job's stated seniority label. Unknown or empty
// labels return -1, meaning the job does not constrain seniority.
func SeniorityBand(label string) int {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "junior", "entry", "entry-level", "associate":
		return seniorityJunior
	case "mid", "mid-level", "intermediate":
		return seniorityMid
	case "senior", "staff", "principal", "lead":
		return senioritySenior
	default:
		return -1
	}
}

// inferSeniority derives the candidate's band from total tenure, bumped one
// band when any role title carries a senior marker. Tenure sets the floor so
// an inflated title alone cannot reach senior from junior.
func inferSeniority(months int, entries []types.ExperienceEntry) int {
	band := seniorityJunior
	switch {
	case months >= seniorMinMonths:
		band = senioritySenior
	case months >= midMinMonths:
		band = seniorityMid
	}

	if band < senioritySenior {
		for _, e := range entries {
			title := strings.ToLower(e.Title)
			for _, kw := range seniorTitleKeywords {
				if strings.Contains(title, kw) {
					return band + 1
				}
			}
		}
	}
	return band
}

// titledEntryIndex returns the index of the first entry whose title carries a
// senior marker, or -1.
func titledEntryIndex(entries []types.ExperienceEntry) int {
	for i, e := range entries {
		title := strings.ToLower(e.Title)
		for _, kw := range seniorTitleKeywords {
			if strings.Contains(title, kw) {
				return i
			}
		}
	}
	return -1
}

// seniorityScore compares candidate and job bands: exact match earns full
// credit, adjacent bands the configured partial credit, a two-band gap none.
// A job without a seniority constraint scores full credit.
func (c Config) seniorityScore(candidateBand, jobBand int) float64 {
	if jobBand < 0 {
		return 1.0
	}
	diff := candidateBand - jobBand
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 1.0
	case 1:
		return c.SeniorityAdjacentCredit
	default:
		return 0
	}
}
