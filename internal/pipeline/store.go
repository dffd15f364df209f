package pipeline

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"jobfit/internal/common"
	"jobfit/internal/errors"
	"jobfit/internal/types"
)

// Store persists analysis reports as JSON files, one per session. Replaying
// a stored report's resume, job, and scoring config through the scoring
// engine reproduces its record minus identifier and timestamp.
type Store struct {
	dir    string
	files  *common.FileProcessor
	logger *errors.Logger
}

// NewStore creates a report store rooted at dir
func NewStore(dir string, logger *errors.Logger) *Store {
	return &Store{
		dir:    dir,
		files:  common.NewFileProcessor(logger),
		logger: logger,
	}
}

// Save writes the report and returns the path it was written to
func (st *Store) Save(report types.AnalysisReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.NewInternalError(errors.ErrCodeInvalidFormat,
			"Failed to serialize analysis report", err)
	}

	path := filepath.Join(st.dir, report.SessionID+".json")
	if err := st.files.WriteFile(path, string(data)); err != nil {
		return "", err
	}

	st.logger.Info("Analysis report persisted", "session_id", report.SessionID, "path", path)
	return path, nil
}

// Load reads a previously saved report by session ID
func (st *Store) Load(sessionID string) (types.AnalysisReport, error) {
	path := filepath.Join(st.dir, sessionID+".json")
	content, err := st.files.ReadFile(path)
	if err != nil {
		return types.AnalysisReport{}, err
	}

	var report types.AnalysisReport
	if err := json.Unmarshal([]byte(content), &report); err != nil {
		return types.AnalysisReport{}, errors.NewIOError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Analysis report %s is not valid JSON", sessionID), err)
	}
	return report, nil
}

// Registry is an in-memory index of live sessions, used by the HTTP surface
// to route revision requests and status lookups. Sessions share no mutable
// state with each other; the registry only maps identifiers to them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register adds a session to the registry
func (r *Registry) Register(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
}

// Get looks up a session by ID
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

// Remove drops a session from the registry
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
