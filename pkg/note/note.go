// Package note defines the core Note entity and the content fingerprint
// used to deduplicate submissions.
package note

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// KeyChangeLimit is the maximum length, in characters, of a fallback
	// key_change derived by truncating the original message. Callers may
	// rely on this constant.
	KeyChangeLimit = 100

	// SampleLimit is the maximum number of notes included in the data digest
	// sent to the answerer. Callers may rely on this constant.
	SampleLimit = 5
)

// Note is one persisted user submission, scoped to a project.
// Notes are append-only: they are never updated or deleted.
type Note struct {
	// ID is a store-assigned global sequence number (monotonic, never reused).
	ID int64 `json:"id"`

	// Timestamp is the caller-supplied point in time the information pertains
	// to, not necessarily the creation time.
	Timestamp time.Time `json:"timestamp"`

	// Category is the label the submitter filed the note under
	// (e.g. "Materials", "HVAC", "Lessons learned").
	Category string `json:"category"`

	// Context is a short summarizer-derived description of the note.
	Context string `json:"context"`

	// KeyChange is the summarizer-derived key change, or a truncation of the
	// original message when enrichment was unavailable.
	KeyChange string `json:"key_change"`

	// OriginalMessage is the verbatim user text.
	OriginalMessage string `json:"original_message"`

	// ProjectID identifies the owning project.
	ProjectID string `json:"project_id"`

	// LessonLearned marks the note as a retrospective insight rather than
	// a routine record.
	LessonLearned bool `json:"lesson_learned"`

	// Fingerprint is the content hash of (project_id, category, message),
	// unique across the entire note collection.
	Fingerprint string `json:"fingerprint"`
}

// Fingerprint computes the deterministic content hash used for duplicate
// detection. The input triple is joined with underscores, trimmed, and
// lower-cased before hashing, so the fingerprint is invariant to letter case
// and leading/trailing whitespace.
func Fingerprint(projectID, category, message string) string {
	content := strings.ToLower(strings.TrimSpace(projectID + "_" + category + "_" + message))
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// TruncateKeyChange derives a fallback key_change from the original message:
// the first KeyChangeLimit characters with a trailing ellipsis, appended only
// when truncation actually occurred. Counting runes keeps multibyte messages
// intact and never cuts a character in half.
func TruncateKeyChange(message string) string {
	if utf8.RuneCountInString(message) <= KeyChangeLimit {
		return message
	}
	return string([]rune(message)[:KeyChangeLimit]) + "..."
}
