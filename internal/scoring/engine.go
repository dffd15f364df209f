package scoring

import (
	"fmt"

	"jobfit/internal/errors"
	"jobfit/internal/evidence"
	"jobfit/internal/types"
)

const stageAnalyze = "analyze"

// Engine computes a FitAnalysisRecord from parsed documents and a skill match
// result. It performs no I/O and holds no mutable state: identical inputs and
// config always yield the identical record (minus ID and timestamp, which the
// orchestrator assigns).
type Engine struct {
	cfg Config
}

// NewEngine validates the config once; a bad config never reaches Score.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's scoring configuration for audit snapshots.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score produces the fit analysis record for one candidate/job pair. Every
// sub-score that cites document text attaches verbatim evidence; a claim with
// no verbatim support fails the whole computation with an evidence error.
func (e *Engine) Score(resume types.ParsedResume, job types.ParsedJob, matches types.SkillMatchResult) (types.FitAnalysisRecord, error) {
	record := types.FitAnalysisRecord{
		CandidateID:  resume.CandidateID,
		JobID:        job.JobID,
		SkillMatches: matches,
		Evidence:     make([]types.EvidenceSnippet, 0, len(matches.Matches)+4),
	}

	skillScore, skillEvidence, err := e.scoreSkills(resume, job, matches)
	if err != nil {
		return types.FitAnalysisRecord{}, err
	}
	record.SkillScore = skillScore
	record.Evidence = append(record.Evidence, skillEvidence...)

	expScore, expEvidence, months, err := e.scoreExperience(resume, job)
	if err != nil {
		return types.FitAnalysisRecord{}, err
	}
	record.ExperienceScore = expScore
	record.Evidence = append(record.Evidence, expEvidence...)

	eduScore, eduEvidence, err := e.scoreEducation(resume, job)
	if err != nil {
		return types.FitAnalysisRecord{}, err
	}
	record.EducationScore = eduScore
	record.Evidence = append(record.Evidence, eduEvidence...)

	senScore, senEvidence, err := e.scoreSeniority(resume, job, months)
	if err != nil {
		return types.FitAnalysisRecord{}, err
	}
	record.SeniorityScore = senScore
	record.Evidence = append(record.Evidence, senEvidence...)

	record.OverallScore = e.cfg.SkillsWeight*record.SkillScore +
		e.cfg.ExperienceWeight*record.ExperienceScore +
		e.cfg.EducationWeight*record.EducationScore +
		e.cfg.SeniorityWeight*record.SeniorityScore
	record.Recommendation = e.cfg.Recommend(record.OverallScore)

	return record, nil
}

// scoreSkills is the weighted fraction of required skills matched: each
// matched skill contributes its tag weight times its similarity, over the sum
// of all tag weights. Matched skills must cite where the resume states them.
func (e *Engine) scoreSkills(resume types.ParsedResume, job types.ParsedJob, matches types.SkillMatchResult) (float64, []types.EvidenceSnippet, error) {
	if len(matches.Matches) == 0 {
		return 1.0, nil, nil
	}

	var earned, possible float64
	snippets := make([]types.EvidenceSnippet, 0, len(matches.Matches))

	for _, m := range matches.Matches {
		w := e.cfg.PreferredSkillWeight
		if m.JobSkill.Tag == types.SkillTagRequired {
			w = e.cfg.RequiredSkillWeight
		}
		possible += w

		if m.Kind == types.MatchKindNone {
			continue
		}
		earned += w * m.Similarity

		claim := fmt.Sprintf("candidate has skill %q matching required skill %q", m.CandidateSkill, m.JobSkill.Name)
		snippet, err := evidence.Extract(resume.SkillEvidence[m.CandidateSkill], "resume", resume.SourceText, claim)
		if err != nil {
			return 0, nil, unsupported(err, claim)
		}
		snippets = append(snippets, snippet)

		if jobSnip, ok := job.SkillEvidence[m.JobSkill.Name]; ok {
			s, err := evidence.Extract(jobSnip, "job", job.SourceText, fmt.Sprintf("job requires skill %q", m.JobSkill.Name))
			if err != nil {
				return 0, nil, unsupported(err, claim)
			}
			snippets = append(snippets, s)
		}
	}

	if possible == 0 {
		return 1.0, nil, nil
	}
	return earned / possible, snippets, nil
}

func (e *Engine) scoreExperience(resume types.ParsedResume, job types.ParsedJob) (float64, []types.EvidenceSnippet, int, error) {
	months, err := TotalExperienceMonths(resume.Experience, e.cfg.ReferenceDate)
	if err != nil {
		return 0, nil, 0, err
	}

	snippets := make([]types.EvidenceSnippet, 0, len(resume.Experience)+1)
	for _, entry := range resume.Experience {
		claim := fmt.Sprintf("candidate worked as %q at %q from %s", entry.Title, entry.Organization, entry.Start)
		s, err := evidence.Extract(entry.Evidence, "resume", resume.SourceText, claim)
		if err != nil {
			return 0, nil, 0, unsupported(err, claim)
		}
		snippets = append(snippets, s)
	}

	if job.ExperienceEvidence != "" {
		claim := fmt.Sprintf("job requires %d months of experience", job.MinExperienceMonths)
		s, err := evidence.Extract(job.ExperienceEvidence, "job", job.SourceText, claim)
		if err != nil {
			return 0, nil, 0, unsupported(err, claim)
		}
		snippets = append(snippets, s)
	}

	return e.cfg.experienceScore(months, job.MinExperienceMonths), snippets, months, nil
}

func (e *Engine) scoreEducation(resume types.ParsedResume, job types.ParsedJob) (float64, []types.EvidenceSnippet, error) {
	requiredLevel := DegreeLevel(job.MinEducation)
	bestIdx, candidateLevel := highestDegree(resume.Education)

	var snippets []types.EvidenceSnippet
	if bestIdx >= 0 && requiredLevel > eduNone {
		entry := resume.Education[bestIdx]
		claim := fmt.Sprintf("candidate holds %q from %q", entry.Degree, entry.Institution)
		s, err := evidence.Extract(entry.Evidence, "resume", resume.SourceText, claim)
		if err != nil {
			return 0, nil, unsupported(err, claim)
		}
		snippets = append(snippets, s)
	}
	if job.EducationEvidence != "" && requiredLevel > eduNone {
		claim := fmt.Sprintf("job requires education level %q", job.MinEducation)
		s, err := evidence.Extract(job.EducationEvidence, "job", job.SourceText, claim)
		if err != nil {
			return 0, nil, unsupported(err, claim)
		}
		snippets = append(snippets, s)
	}

	return e.cfg.educationScore(candidateLevel, requiredLevel), snippets, nil
}

func (e *Engine) scoreSeniority(resume types.ParsedResume, job types.ParsedJob, months int) (float64, []types.EvidenceSnippet, error) {
	jobBand := SeniorityBand(job.Seniority)
	candidateBand := inferSeniority(months, resume.Experience)

	var snippets []types.EvidenceSnippet
	if jobBand >= 0 {
		// The tenure claim reuses experience-entry evidence; a title bump
		// additionally cites the entry that carries the senior marker.
		if idx := titledEntryIndex(resume.Experience); idx >= 0 {
			entry := resume.Experience[idx]
			claim := fmt.Sprintf("candidate held senior-level title %q", entry.Title)
			s, err := evidence.Extract(entry.Evidence, "resume", resume.SourceText, claim)
			if err != nil {
				return 0, nil, unsupported(err, claim)
			}
			snippets = append(snippets, s)
		}
		if job.SeniorityEvidence != "" {
			claim := fmt.Sprintf("job targets %q seniority", job.Seniority)
			s, err := evidence.Extract(job.SeniorityEvidence, "job", job.SourceText, claim)
			if err != nil {
				return 0, nil, unsupported(err, claim)
			}
			snippets = append(snippets, s)
		}
	}

	return e.cfg.seniorityScore(candidateBand, jobBand), snippets, nil
}

// unsupported converts a missing-snippet failure into the fatal unsupported
// claim error that abandons the session.
func unsupported(cause error, claim string) error {
	return errors.NewEvidenceError(errors.ErrCodeUnsupportedClaim,
		fmt.Sprintf("claim %q has no verbatim supporting evidence", claim), cause).
		WithStage(stageAnalyze)
}
