package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/passage-cli/passage/internal/domain/config"
)

// Store handles persistence of sessions as JSON files, one per session.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a store under the default passage home directory.
func NewStore() (*Store, error) {
	home, err := config.HomeDir()
	if err != nil {
		return nil, err
	}
	return &Store{dir: filepath.Join(home, "sessions")}, nil
}

// NewStoreWithDir creates a store rooted at a custom directory.
func NewStoreWithDir(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the session to disk.
func (s *Store) Save(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path(sess.ID), data, 0644)
}

// Load reads a session by ID.
func (s *Store) Load(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, config.NewUserError(config.ErrCodeSessionNotFound, "session not found").
				WithContext(id).
				WithSuggestion("run 'passage sessions list' to see saved sessions")
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, config.NewUserError(config.ErrCodeSessionCorrupt, "session file is not valid JSON").
			WithContext(s.path(id)).
			WithUnderlying(err)
	}
	if sess.Data == nil {
		sess.Data = make(map[string]any)
	}
	if sess.StepErrors == nil {
		sess.StepErrors = make(map[string]string)
	}
	return &sess, nil
}

// List returns all saved sessions, most recently updated first.
func (s *Store) List() ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sessions []*Session
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			// Corrupt files are skipped, not fatal for listing.
			continue
		}
		sessions = append(sessions, &sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// Delete removes a session by ID.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return config.NewUserError(config.ErrCodeSessionNotFound, "session not found").
			WithContext(id)
	}
	return err
}

// Latest returns the most recently updated incomplete session for a flow,
// or nil when none exists.
func (s *Store) Latest(flowName string) (*Session, error) {
	sessions, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, sess := range sessions {
		if sess.FlowName == flowName && !sess.Completed {
			return sess, nil
		}
	}
	return nil, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
