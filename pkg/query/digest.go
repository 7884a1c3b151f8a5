package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/pinholabs/sitelog/pkg/note"
	"github.com/pinholabs/sitelog/pkg/storage"
)

// schemaDigest is the static description of the note entity sent to the
// answerer alongside the data samples.
const schemaDigest = `PROJECT NOTE DATABASE:

TABLE: notes
- id: unique identifier
- timestamp: date and time the information pertains to
- category: category of the information
- context: short context of the information
- key_change: the most important change
- original_message: verbatim submitted text
- project_id: ID of the owning project
- lesson_learned: whether the note is a lesson learned`

// sampleDigest renders up to note.SampleLimit notes in scope for the
// answerer prompt.
func (s *Service) sampleDigest(ctx context.Context, projectID string) (string, error) {
	notes, err := s.store.List(ctx, storage.Query{
		ProjectID: projectID,
		Limit:     note.SampleLimit,
	})
	if err != nil {
		return "", fmt.Errorf("listing sample notes: %w", err)
	}

	if len(notes) == 0 {
		return "No notes found for analysis.", nil
	}

	total, err := s.store.CountNotes(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("counting notes: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "DATA SAMPLES (%d notes):\n\n", total)

	for i, n := range notes {
		fmt.Fprintf(&b, "NOTE %d:\n", i+1)
		fmt.Fprintf(&b, "  Project: %s\n", n.ProjectID)
		fmt.Fprintf(&b, "  Category: %s\n", n.Category)
		fmt.Fprintf(&b, "  Context: %s\n", n.Context)
		fmt.Fprintf(&b, "  Key change: %s\n", n.KeyChange)
		fmt.Fprintf(&b, "  Lesson learned: %s\n", yesNo(n.LessonLearned))
		fmt.Fprintf(&b, "  Date: %s\n\n", n.Timestamp.Format("2006-01-02 15:04"))
	}

	return b.String(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
