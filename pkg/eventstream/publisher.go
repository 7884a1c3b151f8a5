package eventstream

import "context"

// Publisher publishes note events to an event stream backend.
type Publisher interface {
	PublishNoteRecorded(ctx context.Context, event *NoteRecordedEvent) error
	Close() error
}
