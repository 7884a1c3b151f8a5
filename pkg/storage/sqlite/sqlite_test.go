package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pinholabs/sitelog/pkg/note"
	"github.com/pinholabs/sitelog/pkg/storage"
	"github.com/pinholabs/sitelog/pkg/storage/sqlite"
)

func TestSQLiteStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQLite Store Suite")
}

func sqliteTestNote(projectID, category, message string) *note.Note {
	return &note.Note{
		Timestamp:       time.Date(2026, 8, 14, 10, 30, 0, 0, time.UTC),
		Category:        category,
		Context:         "test context",
		KeyChange:       "test key change",
		OriginalMessage: message,
		ProjectID:       projectID,
		Fingerprint:     note.Fingerprint(projectID, category, message),
	}
}

var _ = Describe("Store", func() {
	var (
		store *sqlite.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		store, err = sqlite.NewStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("NewStore", func() {
		It("creates a store with a file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "notes.db")

			s, err := sqlite.NewStore(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Append and FindByFingerprint", func() {
		It("stores and retrieves a note", func() {
			n := sqliteTestNote("1", "general", "concrete pour delayed")

			stored, err := store.Append(ctx, n)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ID).To(Equal(int64(1)))

			found, err := store.FindByFingerprint(ctx, n.Fingerprint)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(stored.ID))
			Expect(found.Category).To(Equal("general"))
			Expect(found.OriginalMessage).To(Equal("concrete pour delayed"))
			Expect(found.Timestamp.Equal(n.Timestamp)).To(BeTrue())
		})

		It("round-trips the lesson learned flag", func() {
			n := sqliteTestNote("1", "execution", "stage rebar early")
			n.LessonLearned = true

			_, err := store.Append(ctx, n)
			Expect(err).NotTo(HaveOccurred())

			found, err := store.FindByFingerprint(ctx, n.Fingerprint)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.LessonLearned).To(BeTrue())
		})

		It("returns NotFoundError for an unknown fingerprint", func() {
			_, err := store.FindByFingerprint(ctx, "nonexistent")
			Expect(err).To(HaveOccurred())

			var notFound storage.NotFoundError
			Expect(err).To(BeAssignableToTypeOf(notFound))
		})

		It("maps a UNIQUE violation to DuplicateError", func() {
			_, err := store.Append(ctx, sqliteTestNote("1", "general", "same content"))
			Expect(err).NotTo(HaveOccurred())

			_, err = store.Append(ctx, sqliteTestNote("1", "general", "same content"))
			Expect(err).To(HaveOccurred())

			var dup storage.DuplicateError
			Expect(err).To(BeAssignableToTypeOf(dup))

			count, err := store.CountNotes(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("rejects nil notes", func() {
			_, err := store.Append(ctx, nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("nil note"))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			_, err := store.Append(ctx, sqliteTestNote("1", "general", "first"))
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Append(ctx, sqliteTestNote("1", "planning", "second"))
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Append(ctx, sqliteTestNote("2", "general", "third"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns all notes most recent first", func() {
			notes, err := store.List(ctx, storage.Query{})
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(HaveLen(3))
			Expect(notes[0].OriginalMessage).To(Equal("third"))
			Expect(notes[2].OriginalMessage).To(Equal("first"))
		})

		It("filters by project and applies the limit", func() {
			notes, err := store.List(ctx, storage.Query{ProjectID: "1", Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(HaveLen(1))
			Expect(notes[0].OriginalMessage).To(Equal("second"))
		})
	})

	Describe("counts", func() {
		BeforeEach(func() {
			lesson := sqliteTestNote("1", "execution", "lesson content")
			lesson.LessonLearned = true
			_, err := store.Append(ctx, lesson)
			Expect(err).NotTo(HaveOccurred())

			_, err = store.Append(ctx, sqliteTestNote("1", "general", "note a"))
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Append(ctx, sqliteTestNote("2", "general", "note b"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("counts notes globally and per project", func() {
			total, err := store.CountNotes(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(3))

			scoped, err := store.CountNotes(ctx, "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(scoped).To(Equal(2))
		})

		It("counts by category in scope", func() {
			counts, err := store.CountByCategory(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(counts).To(HaveKeyWithValue("general", 2))
			Expect(counts).To(HaveKeyWithValue("execution", 1))

			scoped, err := store.CountByCategory(ctx, "2")
			Expect(err).NotTo(HaveOccurred())
			Expect(scoped).To(Equal(map[string]int{"general": 1}))
		})

		It("counts lessons learned in scope", func() {
			count, err := store.CountLessonsLearned(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))

			none, err := store.CountLessonsLearned(ctx, "2")
			Expect(err).NotTo(HaveOccurred())
			Expect(none).To(Equal(0))
		})
	})
})
