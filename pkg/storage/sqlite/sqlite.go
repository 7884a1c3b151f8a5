// Package sqlite provides a SQLite-backed note store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pinholabs/sitelog/pkg/note"
	"github.com/pinholabs/sitelog/pkg/storage"
)

// schema creates the notes table. The UNIQUE index on fingerprint is the
// write-time enforcement of the at-most-one-note-per-fingerprint invariant;
// ids are a global AUTOINCREMENT sequence so they are never reused.
const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp        TEXT NOT NULL,
	category         TEXT NOT NULL,
	context          TEXT NOT NULL,
	key_change       TEXT NOT NULL,
	original_message TEXT NOT NULL,
	project_id       TEXT NOT NULL,
	lesson_learned   INTEGER NOT NULL DEFAULT 0,
	fingerprint      TEXT NOT NULL UNIQUE
);

CREATE INDEX IF NOT EXISTS idx_notes_project  ON notes(project_id);
CREATE INDEX IF NOT EXISTS idx_notes_category ON notes(category);
`

// Store implements storage.Store using SQLite via mattn/go-sqlite3.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite-backed note store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// FindByFingerprint returns the note with the given fingerprint.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) (*note.Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, category, context, key_change, original_message,
		       project_id, lesson_learned, fingerprint
		FROM notes WHERE fingerprint = ?`, fingerprint)

	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Fingerprint: fingerprint}
	}
	if err != nil {
		return nil, fmt.Errorf("querying note: %w", err)
	}

	return n, nil
}

// Append inserts a note. The UNIQUE constraint on fingerprint re-verifies
// uniqueness at write time, so a duplicate inserted by a concurrent writer
// between a caller's pre-check and this insert still maps to DuplicateError.
func (s *Store) Append(ctx context.Context, n *note.Note) (*note.Note, error) {
	if n == nil {
		return nil, errors.New("cannot store nil note")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (timestamp, category, context, key_change,
		                   original_message, project_id, lesson_learned, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Timestamp.UTC().Format(time.RFC3339), n.Category, n.Context, n.KeyChange,
		n.OriginalMessage, n.ProjectID, boolToInt(n.LessonLearned), n.Fingerprint,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.DuplicateError{Fingerprint: n.Fingerprint}
		}
		return nil, fmt.Errorf("inserting note: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted id: %w", err)
	}

	stored := *n
	stored.ID = id
	return &stored, nil
}

// List returns notes matching the query, most recent first.
func (s *Store) List(ctx context.Context, query storage.Query) ([]*note.Note, error) {
	q := `
		SELECT id, timestamp, category, context, key_change, original_message,
		       project_id, lesson_learned, fingerprint
		FROM notes`
	var args []any

	if query.ProjectID != "" {
		q += " WHERE project_id = ?"
		args = append(args, query.ProjectID)
	}
	q += " ORDER BY id DESC"
	if query.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var notes []*note.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

// CountNotes returns the number of notes in scope.
func (s *Store) CountNotes(ctx context.Context, projectID string) (int, error) {
	q := "SELECT COUNT(*) FROM notes"
	var args []any
	if projectID != "" {
		q += " WHERE project_id = ?"
		args = append(args, projectID)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting notes: %w", err)
	}

	return count, nil
}

// CountByCategory returns a mapping of category to note count in scope.
func (s *Store) CountByCategory(ctx context.Context, projectID string) (map[string]int, error) {
	q := "SELECT category, COUNT(*) FROM notes"
	var args []any
	if projectID != "" {
		q += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	q += " GROUP BY category"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("counting by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		counts[category] = count
	}

	return counts, rows.Err()
}

// CountLessonsLearned returns the number of lesson-learned notes in scope.
func (s *Store) CountLessonsLearned(ctx context.Context, projectID string) (int, error) {
	q := "SELECT COUNT(*) FROM notes WHERE lesson_learned = 1"
	var args []any
	if projectID != "" {
		q += " AND project_id = ?"
		args = append(args, projectID)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting lessons learned: %w", err)
	}

	return count, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for scanNote.
type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*note.Note, error) {
	var n note.Note
	var ts string
	var lesson int

	err := row.Scan(&n.ID, &ts, &n.Category, &n.Context, &n.KeyChange,
		&n.OriginalMessage, &n.ProjectID, &lesson, &n.Fingerprint)
	if err != nil {
		return nil, err
	}

	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", ts, err)
	}

	n.Timestamp = parsed
	n.LessonLearned = lesson != 0
	return &n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if an error is a SQLite UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ storage.Store = (*Store)(nil)
