// Package eventstream defines transport-neutral events emitted after a note
// is persisted, and the Publisher contract for shipping them to a stream
// backend. Publishing is best effort: ingestion never fails because an event
// could not be delivered.
package eventstream

import (
	"time"

	"github.com/pinholabs/sitelog/pkg/note"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeNoteRecorded is emitted after a note is persisted.
	EventTypeNoteRecorded = "sitelog.note.recorded"
)

// NoteRecordedEvent is a transport-neutral event payload for a persisted note.
type NoteRecordedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	// Degraded is true when the summarizer fell back to default enrichment.
	Degraded bool `json:"degraded,omitempty"`

	Note note.Note `json:"note"`
}
