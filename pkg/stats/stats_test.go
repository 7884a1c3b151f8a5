package stats_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pinholabs/sitelog/pkg/note"
	"github.com/pinholabs/sitelog/pkg/stats"
	"github.com/pinholabs/sitelog/pkg/storage/inmemory"
)

func TestStats(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Stats Suite")
}

var _ = Describe("Collect", func() {
	var (
		ctx   context.Context
		store *inmemory.Store
	)

	seed := func(projectID, category, message string, lesson bool) {
		_, err := store.Append(ctx, &note.Note{
			Timestamp:       time.Now(),
			Category:        category,
			Context:         "ctx",
			KeyChange:       "kc",
			OriginalMessage: message,
			ProjectID:       projectID,
			LessonLearned:   lesson,
			Fingerprint:     note.Fingerprint(projectID, category, message),
		})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewStore()
	})

	AfterEach(func() {
		store.Close()
	})

	It("aggregates across all projects", func() {
		seed("1", "general", "note a", false)
		seed("1", "general", "note b", false)
		seed("2", "planning", "note c", true)

		result, err := stats.Collect(ctx, store, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Scope).To(Equal("all projects"))
		Expect(result.Total).To(Equal(3))
		Expect(result.LessonsLearned).To(Equal(1))
		Expect(result.ByCategory).To(Equal([]stats.CategoryCount{
			{Category: "general", Count: 2},
			{Category: "planning", Count: 1},
		}))
	})

	It("scopes to a project", func() {
		seed("1", "general", "note a", false)
		seed("2", "planning", "note c", true)

		result, err := stats.Collect(ctx, store, "2")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Scope).To(Equal("2"))
		Expect(result.Total).To(Equal(1))
		Expect(result.LessonsLearned).To(Equal(1))
		Expect(result.ByCategory).To(Equal([]stats.CategoryCount{
			{Category: "planning", Count: 1},
		}))
	})

	It("orders tied categories alphabetically", func() {
		seed("1", "planning", "note a", false)
		seed("1", "general", "note b", false)

		result, err := stats.Collect(ctx, store, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.ByCategory).To(Equal([]stats.CategoryCount{
			{Category: "general", Count: 1},
			{Category: "planning", Count: 1},
		}))
	})

	It("returns zeroes for an empty scope", func() {
		result, err := stats.Collect(ctx, store, "9")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Total).To(Equal(0))
		Expect(result.ByCategory).To(BeEmpty())
		Expect(result.LessonsLearned).To(Equal(0))
	})
})
