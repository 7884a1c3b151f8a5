// Package storage defines the note store contract shared by all backends.
package storage

import (
	"context"

	"github.com/pinholabs/sitelog/pkg/note"
)

// Store defines the interface for persisting and querying notes in a
// storage backend.
//
// Every backend must enforce fingerprint uniqueness atomically with Append:
// a race between two identical submissions results in exactly one stored
// note and one DuplicateError, never two rows.
type Store interface {
	// FindByFingerprint returns the note with the given fingerprint, or
	// NotFoundError if no such note exists.
	FindByFingerprint(ctx context.Context, fingerprint string) (*note.Note, error)

	// Append stores a new note, assigning it the next global sequence id.
	// Returns DuplicateError if a note with the same fingerprint already
	// exists, including when the duplicate was inserted between a caller's
	// pre-check and the write.
	Append(ctx context.Context, n *note.Note) (*note.Note, error)

	// List returns notes matching the query, most recent first.
	List(ctx context.Context, query Query) ([]*note.Note, error)

	// CountNotes returns the number of notes in scope. An empty projectID
	// counts across all projects.
	CountNotes(ctx context.Context, projectID string) (int, error)

	// CountByCategory returns a mapping of category to note count in scope.
	CountByCategory(ctx context.Context, projectID string) (map[string]int, error)

	// CountLessonsLearned returns the number of lesson-learned notes in scope.
	CountLessonsLearned(ctx context.Context, projectID string) (int, error)

	// Close closes the store and releases any resources.
	Close() error
}

// Query defines filter parameters for List.
type Query struct {
	// ProjectID limits results to one project. Empty means all projects.
	ProjectID string

	// Limit caps the number of returned notes. Zero means no limit.
	Limit int
}
