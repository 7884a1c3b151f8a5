package testutils

import (
	"context"
	"fmt"

	"github.com/pinholabs/sitelog/pkg/eventstream"
)

// CapturePublisher is a test publisher that accumulates published events.
type CapturePublisher struct {
	// Events accumulates all events passed to PublishNoteRecorded.
	Events []*eventstream.NoteRecordedEvent

	// Fail causes PublishNoteRecorded to return an error.
	Fail bool
}

// NewCapturePublisher creates a new capturing publisher.
func NewCapturePublisher() *CapturePublisher {
	return &CapturePublisher{
		Events: make([]*eventstream.NoteRecordedEvent, 0),
	}
}

func (p *CapturePublisher) PublishNoteRecorded(_ context.Context, event *eventstream.NoteRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if p.Fail {
		return fmt.Errorf("mock publish failure")
	}

	p.Events = append(p.Events, event)
	return nil
}

func (p *CapturePublisher) Close() error {
	return nil
}
