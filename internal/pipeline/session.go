package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobfit/internal/errors"
	"jobfit/internal/types"
)

// State is one position in the analysis lifecycle
type State string

const (
	StateNew        State = "new"
	StateIngested   State = "ingested"
	StateRedacted   State = "redacted"
	StateParsed     State = "parsed"
	StateAnalyzed   State = "analyzed"
	StateSummarized State = "summarized"
	StateRevised    State = "revised"
	StateCancelled  State = "cancelled"
	StateFailed     State = "failed"
)

// transitions is the only legal forward movement through the lifecycle.
// There is no rewind: once analyzed, the record for this session is fixed,
// and a fresh analysis requires a fresh session.
var transitions = map[State][]State{
	StateNew:        {StateIngested},
	StateIngested:   {StateRedacted},
	StateRedacted:   {StateParsed},
	StateParsed:     {StateAnalyzed},
	StateAnalyzed:   {StateSummarized},
	StateSummarized: {StateRevised},
	StateRevised:    {StateRevised},
}

// Session holds every artifact of one analysis run. The orchestrator owns
// the lifecycle; after the record is created it is shared read-only by every
// summary, and summary sequence allocation is serialized on the session lock.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu              sync.Mutex
	state           State
	candidate       types.CandidateDetail
	resume          types.ParsedResume
	job             types.ParsedJob
	record          types.FitAnalysisRecord
	summaries       []types.Summary
	scoringSnapshot map[string]any
	abandoned       bool
	abandonedReason string
}

// NewSession creates an empty session with a fresh identifier
func NewSession() *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		state:     StateNew,
	}
}

// RestoreSession rebuilds a session from a persisted report so the revision
// workflow can continue against the stored record. The record is taken as-is,
// never recomputed. Reports without a summary cannot be restored: the session
// never reached a revisable state.
func RestoreSession(report types.AnalysisReport) (*Session, error) {
	if len(report.Summaries) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidTransition,
			fmt.Sprintf("report for session %s has no summary to revise", report.SessionID), nil)
	}

	state := StateSummarized
	for _, summary := range report.Summaries {
		if summary.Sequence > 0 {
			state = StateRevised
			break
		}
	}

	summaries := make([]types.Summary, len(report.Summaries))
	copy(summaries, report.Summaries)

	return &Session{
		ID:              report.SessionID,
		CreatedAt:       report.Record.CreatedAt,
		state:           state,
		candidate:       report.Candidate,
		resume:          report.Resume,
		job:             report.Job,
		record:          report.Record,
		summaries:       summaries,
		scoringSnapshot: report.ScoringConfig,
		abandoned:       report.Abandoned,
		abandonedReason: report.AbandonedReason,
	}, nil
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// advance moves the session to the next state, rejecting anything the
// transition table does not allow.
func (s *Session) advance(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(to)
}

func (s *Session) advanceLocked(to State) error {
	for _, allowed := range transitions[s.state] {
		if allowed == to {
			s.state = to
			return nil
		}
	}
	return errors.NewValidationError(errors.ErrCodeInvalidTransition,
		fmt.Sprintf("cannot move session from %s to %s", s.state, to), nil)
}

// Cancel discards the session if no record exists yet. Once analyzed, the
// session must complete to at least one summary or be explicitly abandoned,
// so the audit trail is never silently dropped.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateAnalyzed, StateSummarized, StateRevised:
		return errors.NewValidationError(errors.ErrCodeInvalidTransition,
			fmt.Sprintf("session in state %s has a fit analysis record and cannot be cancelled", s.state), nil)
	case StateCancelled:
		return nil
	}

	s.state = StateCancelled
	s.candidate = types.CandidateDetail{}
	s.resume = types.ParsedResume{}
	s.job = types.ParsedJob{}
	return nil
}

// markFailed records a fatal pre-analysis failure
func (s *Session) markFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
}

// markAbandoned flags a session whose record exists but which could not
// reach a summary. The record stays in the audit bundle.
func (s *Session) markAbandoned(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandoned = true
	s.abandonedReason = reason
}

// Abandoned reports whether the session was explicitly marked abandoned
func (s *Session) Abandoned() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.abandoned, s.abandonedReason
}

// setIngested stores nothing; raw text stays on the orchestrator's stack so
// unredacted content never outlives the stage that consumes it.
func (s *Session) setIngested() error {
	return s.advance(StateIngested)
}

func (s *Session) setRedacted(candidate types.CandidateDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advanceLocked(StateRedacted); err != nil {
		return err
	}
	s.candidate = candidate
	return nil
}

func (s *Session) setParsed(resume types.ParsedResume, job types.ParsedJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advanceLocked(StateParsed); err != nil {
		return err
	}
	s.resume = resume
	s.job = job
	return nil
}

func (s *Session) setAnalyzed(record types.FitAnalysisRecord, snapshot map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advanceLocked(StateAnalyzed); err != nil {
		return err
	}
	s.record = record
	s.scoringSnapshot = snapshot
	return nil
}

// setSummarized binds the first summary, sequence 0, to the record
func (s *Session) setSummarized(text string) (types.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advanceLocked(StateSummarized); err != nil {
		return types.Summary{}, err
	}
	summary := s.appendSummaryLocked(text, "")
	return summary, nil
}

// addRevision binds one more summary to the unchanged record. Sequence
// allocation happens under the session lock so concurrent revision requests
// never produce duplicate numbers.
func (s *Session) addRevision(text, comment string) (types.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advanceLocked(StateRevised); err != nil {
		return types.Summary{}, err
	}
	return s.appendSummaryLocked(text, comment), nil
}

func (s *Session) appendSummaryLocked(text, comment string) types.Summary {
	seq := 0
	for _, prior := range s.summaries {
		if prior.Sequence >= seq {
			seq = prior.Sequence + 1
		}
	}
	summary := types.Summary{
		ID:              uuid.New().String(),
		RecordID:        s.record.ID,
		Text:            text,
		RevisionComment: comment,
		Sequence:        seq,
		GeneratedAt:     time.Now().UTC(),
	}
	s.summaries = append(s.summaries, summary)
	return summary
}

// latestSummaryText returns the most recent summary's text for use as
// revision context.
func (s *Session) latestSummaryText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.summaries) == 0 {
		return ""
	}
	latest := s.summaries[0]
	for _, prior := range s.summaries[1:] {
		if prior.Sequence > latest.Sequence {
			latest = prior
		}
	}
	return latest.Text
}

// Record returns a copy of the immutable fit analysis record
func (s *Session) Record() types.FitAnalysisRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Summaries returns a copy of the summaries bound to this session's record
func (s *Session) Summaries() []types.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Summary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

// Candidate returns the contact details captured during redaction
func (s *Session) Candidate() types.CandidateDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidate
}

// Resume returns the parsed resume
func (s *Session) Resume() types.ParsedResume {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resume
}

// Job returns the parsed job description
func (s *Session) Job() types.ParsedJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job
}

// Report assembles the persistable audit bundle: replaying resume, job, and
// the scoring config snapshot through the scoring engine reproduces the
// record minus identifier and timestamp.
func (s *Session) Report() types.AnalysisReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]types.Summary, len(s.summaries))
	copy(summaries, s.summaries)

	return types.AnalysisReport{
		SessionID:       s.ID,
		Candidate:       s.candidate,
		Resume:          s.resume,
		Job:             s.job,
		Record:          s.record,
		Summaries:       summaries,
		ScoringConfig:   s.scoringSnapshot,
		Abandoned:       s.abandoned,
		AbandonedReason: s.abandonedReason,
		GeneratedAt:     time.Now().UTC(),
	}
}
