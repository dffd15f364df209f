package types

import "time"

// SkillTag distinguishes must-have from nice-to-have skills in a job posting
type SkillTag string

const (
	SkillTagRequired  SkillTag = "required"
	SkillTagPreferred SkillTag = "preferred"
)

// RequiredSkill is one skill a job asks for, with its importance tag
type RequiredSkill struct {
	Name string   `json:"name"`
	Tag  SkillTag `json:"tag"`
}

// EvidenceSnippet is a verbatim quotation from a source document supporting a claim.
// Offset is the character offset of the first occurrence in the source document.
type EvidenceSnippet struct {
	Text           string `json:"text"`
	SourceDocument string `json:"sourceDocument"` // "resume" or "job"
	Claim          string `json:"claim"`
	Offset         int    `json:"offset"`
}

// ExperienceEntry represents one work experience entry from a resume.
// Start and End are "YYYY-MM" strings; an empty End means the role is ongoing.
type ExperienceEntry struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Start        string `json:"start"`
	End          string `json:"end,omitempty"`
	Description  string `json:"description,omitempty"`
	Evidence     string `json:"evidence"`
}

// EducationEntry represents one educational qualification from a resume
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Field       string `json:"field,omitempty"`
	Year        int    `json:"year,omitempty"`
	Evidence    string `json:"evidence"`
}

// ParsedResume is the structured form of a redacted resume.
// Produced once by the parsing collaborator; immutable thereafter.
type ParsedResume struct {
	CandidateID   string            `json:"candidateId"`
	Summary       string            `json:"summary,omitempty"`
	Skills        []string          `json:"skills"`
	SkillEvidence map[string]string `json:"skillEvidence,omitempty"` // skill -> verbatim snippet
	Experience    []ExperienceEntry `json:"experience"`
	Education     []EducationEntry  `json:"education"`
	SourceText    string            `json:"sourceText"` // redacted resume text evidence is checked against
}

// ParsedJob is the structured form of a job description.
// Immutable once produced.
type ParsedJob struct {
	JobID               string            `json:"jobId"`
	Company             string            `json:"company,omitempty"`
	Title               string            `json:"title,omitempty"`
	Skills              []RequiredSkill   `json:"skills"`
	SkillEvidence       map[string]string `json:"skillEvidence,omitempty"`
	MinExperienceMonths int               `json:"minExperienceMonths"`
	ExperienceEvidence  string            `json:"experienceEvidence,omitempty"`
	MinEducation        string            `json:"minEducation,omitempty"` // degree level label
	EducationEvidence   string            `json:"educationEvidence,omitempty"`
	Seniority           string            `json:"seniority,omitempty"` // junior / mid / senior
	SeniorityEvidence   string            `json:"seniorityEvidence,omitempty"`
	SourceText          string            `json:"sourceText"` // raw job text evidence is checked against
}

// MatchKind classifies how a required skill was matched
type MatchKind string

const (
	MatchKindExact    MatchKind = "exact"
	MatchKindSemantic MatchKind = "semantic"
	MatchKindNone     MatchKind = "none"
)

// SkillMatch is the outcome for a single required skill
type SkillMatch struct {
	JobSkill       RequiredSkill `json:"jobSkill"`
	CandidateSkill string        `json:"candidateSkill,omitempty"`
	Kind           MatchKind     `json:"kind"`
	Similarity     float64       `json:"similarity"`
}

// SkillMatchResult is the deterministic output of the skill matcher
type SkillMatchResult struct {
	Matches []SkillMatch `json:"matches"`
}

// Recommendation is the categorical outcome of a scoring run
type Recommendation string

const (
	RecommendationStrongFit  Recommendation = "strong-fit"
	RecommendationFit        Recommendation = "fit"
	RecommendationBorderline Recommendation = "borderline"
	RecommendationNotFit     Recommendation = "not-fit"
)

// FitAnalysisRecord is the immutable output of one scoring run and the unit
// of audit. Once created it is never mutated or recomputed; revisions bind
// new Summaries to the same record.
type FitAnalysisRecord struct {
	ID              string            `json:"id"`
	CandidateID     string            `json:"candidateId"`
	JobID           string            `json:"jobId"`
	SkillMatches    SkillMatchResult  `json:"skillMatches"`
	SkillScore      float64           `json:"skillScore"`
	ExperienceScore float64           `json:"experienceScore"`
	EducationScore  float64           `json:"educationScore"`
	SeniorityScore  float64           `json:"seniorityScore"`
	OverallScore    float64           `json:"overallScore"`
	Recommendation  Recommendation    `json:"recommendation"`
	Evidence        []EvidenceSnippet `json:"evidence"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// Summary is one narrative rendering of a FitAnalysisRecord. Sequence numbers
// start at 0 and are strictly increasing per record.
type Summary struct {
	ID              string    `json:"id"`
	RecordID        string    `json:"recordId"`
	Text            string    `json:"text"`
	RevisionComment string    `json:"revisionComment,omitempty"`
	Sequence        int       `json:"sequence"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// RevisionRequest carries recruiter feedback for an existing record.
// Ephemeral input; persisted only as Summary audit metadata.
type RevisionRequest struct {
	RecordID    string    `json:"recordId"`
	Comment     string    `json:"comment"`
	RequestedAt time.Time `json:"requestedAt"`
}

// CandidateDetail holds contact details captured during redaction, kept
// outside the scored artifacts so they never cross the trust boundary.
type CandidateDetail struct {
	ID       string   `json:"id"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	URLs     []string `json:"urls,omitempty"`
	Location string   `json:"location,omitempty"`
}

// AnalysisReport is the persistable audit bundle for one session: replaying
// Resume+Job+ScoringConfig through the scoring engine reproduces Record
// exactly, minus identifier and timestamp.
type AnalysisReport struct {
	SessionID       string            `json:"sessionId"`
	Candidate       CandidateDetail   `json:"candidate"`
	Resume          ParsedResume      `json:"resume"`
	Job             ParsedJob         `json:"job"`
	Record          FitAnalysisRecord `json:"record"`
	Summaries       []Summary         `json:"summaries"`
	ScoringConfig   map[string]any    `json:"scoringConfig"`
	Abandoned       bool              `json:"abandoned,omitempty"`
	AbandonedReason string            `json:"abandonedReason,omitempty"`
	GeneratedAt     time.Time         `json:"generatedAt"`
}
