// Package ingest implements duplicate-safe note ingestion: validation,
// fingerprinting, summarizer enrichment with graceful degradation, and the
// append into the note store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pinholabs/sitelog/pkg/eventstream"
	"github.com/pinholabs/sitelog/pkg/llm"
	"github.com/pinholabs/sitelog/pkg/note"
	"github.com/pinholabs/sitelog/pkg/project"
	"github.com/pinholabs/sitelog/pkg/storage"
)

const (
	// FallbackContext is stored when the summarizer is unavailable or its
	// reply cannot be parsed.
	FallbackContext = "Information recorded in the system"

	// ConfirmationMessage is returned on successful ingestion.
	ConfirmationMessage = "Information recorded successfully."

	// DuplicateMessage is the user-facing rejection for duplicate content.
	DuplicateMessage = "This information has already been recorded."
)

// Submission is one raw note submission.
type Submission struct {
	ProjectID     string
	Category      string
	OccurredAt    time.Time
	Message       string
	LessonLearned bool
}

// ValidationError reports a missing or empty required field. It is returned
// before any store access is attempted.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return "missing required field: " + e.Field
}

// Service turns raw submissions into stored notes.
type Service struct {
	store      storage.Store
	summarizer llm.Summarizer
	projects   *project.Directory
	events     eventstream.Publisher
	logger     *zap.Logger
}

// NewService creates an ingestion service. A nil summarizer disables
// enrichment entirely; every note then carries the fallback context.
func NewService(store storage.Store, summarizer llm.Summarizer, projects *project.Directory, events eventstream.Publisher, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		summarizer: summarizer,
		projects:   projects,
		events:     events,
		logger:     logger,
	}
}

// Submit validates, deduplicates, enriches, and appends a note.
//
// The duplicate pre-check runs before the summarizer call so enrichment is
// never paid for content that will be rejected, and a retried submission
// cannot double-count. The store's own uniqueness constraint covers the
// window between the pre-check and the append: a race still yields exactly
// one stored note, with the loser receiving the same DuplicateError.
func (s *Service) Submit(ctx context.Context, sub Submission) (string, error) {
	if err := s.validate(sub); err != nil {
		return "", err
	}

	fingerprint := note.Fingerprint(sub.ProjectID, sub.Category, sub.Message)

	_, err := s.store.FindByFingerprint(ctx, fingerprint)
	if err == nil {
		return "", storage.DuplicateError{Fingerprint: fingerprint}
	}
	var notFound storage.NotFoundError
	if !errors.As(err, &notFound) {
		return "", fmt.Errorf("checking for duplicate: %w", err)
	}

	summary, degraded := s.enrich(ctx, sub.Message)

	n := &note.Note{
		Timestamp:       sub.OccurredAt,
		Category:        sub.Category,
		Context:         summary.Context,
		KeyChange:       summary.KeyChange,
		OriginalMessage: sub.Message,
		ProjectID:       sub.ProjectID,
		LessonLearned:   sub.LessonLearned,
		Fingerprint:     fingerprint,
	}

	stored, err := s.store.Append(ctx, n)
	if err != nil {
		var dup storage.DuplicateError
		if errors.As(err, &dup) {
			return "", dup
		}
		return "", fmt.Errorf("appending note: %w", err)
	}

	s.publish(ctx, stored, degraded)

	return ConfirmationMessage, nil
}

func (s *Service) validate(sub Submission) error {
	if sub.ProjectID == "" {
		return ValidationError{Field: "project_id"}
	}
	if _, ok := s.projects.Lookup(sub.ProjectID); !ok {
		return ValidationError{Field: "project_id"}
	}
	if sub.Category == "" {
		return ValidationError{Field: "category"}
	}
	if sub.Message == "" {
		return ValidationError{Field: "message"}
	}
	if sub.OccurredAt.IsZero() {
		return ValidationError{Field: "timestamp"}
	}

	return nil
}

// enrich asks the summarizer for a context/key-change pair. Any failure
// degrades to the fallback enrichment; it is logged but never surfaced to
// the caller as an error.
func (s *Service) enrich(ctx context.Context, message string) (llm.Summary, bool) {
	fallback := llm.Summary{
		Context:   FallbackContext,
		KeyChange: note.TruncateKeyChange(message),
	}

	if s.summarizer == nil {
		return fallback, true
	}

	summary, err := s.summarizer.Summarize(ctx, message)
	if err != nil {
		s.logger.Warn("summarizer unavailable, using fallback enrichment",
			zap.Error(err),
		)
		return fallback, true
	}

	if summary.Context == "" {
		summary.Context = FallbackContext
	}
	if summary.KeyChange == "" {
		summary.KeyChange = note.TruncateKeyChange(message)
	}

	return *summary, false
}

// publish emits a note.recorded event. Delivery failures are logged only;
// the note is already persisted.
func (s *Service) publish(ctx context.Context, stored *note.Note, degraded bool) {
	if s.events == nil {
		return
	}

	event := &eventstream.NoteRecordedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeNoteRecorded,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Degraded:      degraded,
		Note:          *stored,
	}

	if err := s.events.PublishNoteRecorded(ctx, event); err != nil {
		s.logger.Warn("failed to publish note event",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}
