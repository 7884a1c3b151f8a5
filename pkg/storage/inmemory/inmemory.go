// Package inmemory provides a map-backed note store for tests and
// ephemeral deployments.
package inmemory

import (
	"context"
	"errors"
	"sync"

	"github.com/pinholabs/sitelog/pkg/note"
	"github.com/pinholabs/sitelog/pkg/storage"
)

// Store implements storage.Store using an in-memory map. Reads hand out
// copies so callers cannot mutate stored notes.
type Store struct {
	// mu guards both maps and the id counter. Holding the write lock across
	// the uniqueness check and the insert is what makes Append atomic.
	mu sync.RWMutex

	// byFingerprint indexes notes by their content fingerprint.
	byFingerprint map[string]*note.Note

	// ordered holds notes in append order, oldest first.
	ordered []*note.Note

	// nextID is the next global sequence id to assign.
	nextID int64
}

// NewStore creates a new in-memory note store.
func NewStore() *Store {
	return &Store{
		byFingerprint: make(map[string]*note.Note),
		nextID:        1,
	}
}

// FindByFingerprint returns the note with the given fingerprint.
func (s *Store) FindByFingerprint(_ context.Context, fingerprint string) (*note.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.byFingerprint[fingerprint]
	if !ok {
		return nil, storage.NotFoundError{Fingerprint: fingerprint}
	}

	found := *n
	return &found, nil
}

// Append stores a note, assigning the next global id. The fingerprint
// uniqueness check happens under the write lock so concurrent identical
// submissions cannot both succeed.
func (s *Store) Append(_ context.Context, n *note.Note) (*note.Note, error) {
	if n == nil {
		return nil, errors.New("cannot store nil note")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byFingerprint[n.Fingerprint]; ok {
		return nil, storage.DuplicateError{Fingerprint: n.Fingerprint}
	}

	stored := *n
	stored.ID = s.nextID
	s.nextID++

	s.byFingerprint[stored.Fingerprint] = &stored
	s.ordered = append(s.ordered, &stored)

	return &stored, nil
}

// List returns notes matching the query, most recent first.
func (s *Store) List(_ context.Context, query storage.Query) ([]*note.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*note.Note
	for i := len(s.ordered) - 1; i >= 0; i-- {
		if query.ProjectID != "" && s.ordered[i].ProjectID != query.ProjectID {
			continue
		}
		n := *s.ordered[i]
		result = append(result, &n)
		if query.Limit > 0 && len(result) >= query.Limit {
			break
		}
	}

	return result, nil
}

// CountNotes returns the number of notes in scope.
func (s *Store) CountNotes(_ context.Context, projectID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if projectID == "" {
		return len(s.ordered), nil
	}

	count := 0
	for _, n := range s.ordered {
		if n.ProjectID == projectID {
			count++
		}
	}

	return count, nil
}

// CountByCategory returns a mapping of category to note count in scope.
func (s *Store) CountByCategory(_ context.Context, projectID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, n := range s.ordered {
		if projectID != "" && n.ProjectID != projectID {
			continue
		}
		counts[n.Category]++
	}

	return counts, nil
}

// CountLessonsLearned returns the number of lesson-learned notes in scope.
func (s *Store) CountLessonsLearned(_ context.Context, projectID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.ordered {
		if projectID != "" && n.ProjectID != projectID {
			continue
		}
		if n.LessonLearned {
			count++
		}
	}

	return count, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

var _ storage.Store = (*Store)(nil)
