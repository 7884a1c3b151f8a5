package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pinholabs/sitelog/pkg/note"
	"github.com/pinholabs/sitelog/pkg/storage"
	"github.com/pinholabs/sitelog/pkg/storage/inmemory"
)

func TestInMemoryStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "InMemory Store Suite")
}

func testNote(projectID, category, message string) *note.Note {
	return &note.Note{
		Timestamp:       time.Now(),
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
		store *inmemory.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewStore()
	})

	AfterEach(func() {
		store.Close()
	})

	Describe("Append", func() {
		It("stores a note and assigns a sequence id", func() {
			stored, err := store.Append(ctx, testNote("1", "general", "first"))
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ID).To(Equal(int64(1)))

			second, err := store.Append(ctx, testNote("1", "general", "second"))
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal(int64(2)))
		})

		It("rejects a duplicate fingerprint", func() {
			n := testNote("1", "general", "same content")
			_, err := store.Append(ctx, n)
			Expect(err).NotTo(HaveOccurred())

			_, err = store.Append(ctx, testNote("1", "general", "same content"))
			Expect(err).To(HaveOccurred())

			var dup storage.DuplicateError
			Expect(err).To(BeAssignableToTypeOf(dup))

			count, err := store.CountNotes(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("does not reuse the id of a rejected duplicate", func() {
			_, err := store.Append(ctx, testNote("1", "general", "first"))
			Expect(err).NotTo(HaveOccurred())

			_, err = store.Append(ctx, testNote("1", "general", "first"))
			Expect(err).To(HaveOccurred())

			stored, err := store.Append(ctx, testNote("1", "general", "second"))
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ID).To(Equal(int64(2)))
		})

		It("rejects nil notes", func() {
			_, err := store.Append(ctx, nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("nil note"))
		})

		It("stores exactly one note under concurrent identical appends", func() {
			const workers = 16

			var wg sync.WaitGroup
			errs := make(chan error, workers)

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := store.Append(ctx, testNote("1", "general", "raced content"))
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			successes := 0
			duplicates := 0
			for err := range errs {
				if err == nil {
					successes++
					continue
				}
				var dup storage.DuplicateError
				Expect(err).To(BeAssignableToTypeOf(dup))
				duplicates++
			}

			Expect(successes).To(Equal(1))
			Expect(duplicates).To(Equal(workers - 1))

			count, err := store.CountNotes(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})
	})

	Describe("FindByFingerprint", func() {
		It("finds a stored note", func() {
			n := testNote("1", "general", "findable")
			stored, err := store.Append(ctx, n)
			Expect(err).NotTo(HaveOccurred())

			found, err := store.FindByFingerprint(ctx, n.Fingerprint)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(stored.ID))
			Expect(found.OriginalMessage).To(Equal("findable"))
		})

		It("returns NotFoundError for an unknown fingerprint", func() {
			_, err := store.FindByFingerprint(ctx, "nonexistent")
			Expect(err).To(HaveOccurred())

			var notFound storage.NotFoundError
			Expect(err).To(BeAssignableToTypeOf(notFound))
		})

		It("is unaffected by caller mutation of a returned note", func() {
			n := testNote("1", "general", "immutable")
			_, err := store.Append(ctx, n)
			Expect(err).NotTo(HaveOccurred())

			found, err := store.FindByFingerprint(ctx, n.Fingerprint)
			Expect(err).NotTo(HaveOccurred())
			found.OriginalMessage = "tampered"
			found.LessonLearned = true

			again, err := store.FindByFingerprint(ctx, n.Fingerprint)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.OriginalMessage).To(Equal("immutable"))
			Expect(again.LessonLearned).To(BeFalse())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for i := 0; i < 5; i++ {
				_, err := store.Append(ctx, testNote("1", "general", fmt.Sprintf("project one %d", i)))
				Expect(err).NotTo(HaveOccurred())
			}
			for i := 0; i < 3; i++ {
				_, err := store.Append(ctx, testNote("2", "planning", fmt.Sprintf("project two %d", i)))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns all notes most recent first", func() {
			notes, err := store.List(ctx, storage.Query{})
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(HaveLen(8))
			Expect(notes[0].OriginalMessage).To(Equal("project two 2"))
			Expect(notes[7].OriginalMessage).To(Equal("project one 0"))
		})

		It("filters by project", func() {
			notes, err := store.List(ctx, storage.Query{ProjectID: "2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(HaveLen(3))
			for _, n := range notes {
				Expect(n.ProjectID).To(Equal("2"))
			}
		})

		It("caps results at the limit", func() {
			notes, err := store.List(ctx, storage.Query{Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(HaveLen(2))
			Expect(notes[0].OriginalMessage).To(Equal("project two 2"))
			Expect(notes[1].OriginalMessage).To(Equal("project two 1"))
		})

		It("combines project filter and limit", func() {
			notes, err := store.List(ctx, storage.Query{ProjectID: "1", Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(HaveLen(2))
			Expect(notes[0].OriginalMessage).To(Equal("project one 4"))
		})

		It("returns empty for an unknown project", func() {
			notes, err := store.List(ctx, storage.Query{ProjectID: "999"})
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(BeEmpty())
		})

		It("is unaffected by caller mutation of listed notes", func() {
			notes, err := store.List(ctx, storage.Query{Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(notes).To(HaveLen(1))
			notes[0].Category = "tampered"

			again, err := store.List(ctx, storage.Query{Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(again[0].Category).To(Equal("planning"))
		})
	})

	Describe("counts", func() {
		BeforeEach(func() {
			lessons := testNote("1", "execution", "lesson content")
			lessons.LessonLearned = true
			_, err := store.Append(ctx, lessons)
			Expect(err).NotTo(HaveOccurred())

			_, err = store.Append(ctx, testNote("1", "general", "note a"))
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Append(ctx, testNote("1", "general", "note b"))
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Append(ctx, testNote("2", "general", "note c"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("counts notes globally and per project", func() {
			total, err := store.CountNotes(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(4))

			scoped, err := store.CountNotes(ctx, "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(scoped).To(Equal(3))
		})

		It("counts by category", func() {
			counts, err := store.CountByCategory(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(counts).To(HaveKeyWithValue("general", 3))
			Expect(counts).To(HaveKeyWithValue("execution", 1))

			scoped, err := store.CountByCategory(ctx, "2")
			Expect(err).NotTo(HaveOccurred())
			Expect(scoped).To(HaveKeyWithValue("general", 1))
			Expect(scoped).NotTo(HaveKey("execution"))
		})

		It("counts lessons learned", func() {
			count, err := store.CountLessonsLearned(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))

			none, err := store.CountLessonsLearned(ctx, "2")
			Expect(err).NotTo(HaveOccurred())
			Expect(none).To(Equal(0))
		})
	})
})
