// Package export renders the note collection as CSV for download and
// offline analysis. Export is a pure read of the store; nothing in the core
// depends on its success.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pinholabs/sitelog/pkg/note"
)

// Header is the CSV column set, in write order.
var Header = []string{
	"id", "timestamp", "category", "context", "key_change",
	"original_message", "project_id", "lesson_learned",
}

// WriteCSV writes the notes as CSV, header first.
func WriteCSV(w io.Writer, notes []*note.Note) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, n := range notes {
		record := []string{
			strconv.FormatInt(n.ID, 10),
			n.Timestamp.UTC().Format(time.RFC3339),
			n.Category,
			n.Context,
			n.KeyChange,
			n.OriginalMessage,
			n.ProjectID,
			yesNo(n.LessonLearned),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename builds the timestamped export file name, project-scoped when a
// project id is given.
func Filename(projectID string, now time.Time) string {
	stamp := now.Format("20060102_150405")
	if projectID != "" {
		return fmt.Sprintf("notes_project_%s_%s.csv", projectID, stamp)
	}
	return fmt.Sprintf("notes_all_%s.csv", stamp)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
