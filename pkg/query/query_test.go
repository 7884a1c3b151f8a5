package query_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/pinholabs/sitelog/pkg/note"
	"github.com/pinholabs/sitelog/pkg/query"
	"github.com/pinholabs/sitelog/pkg/storage/inmemory"
	testutils "github.com/pinholabs/sitelog/pkg/utils/test"
)

func TestQuery(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Query Suite")
}

func queryTestNote(projectID, category, message string, lesson bool) *note.Note {
	return &note.Note{
		Timestamp:       time.Date(2026, 8, 14, 10, 30, 0, 0, time.UTC),
		Category:        category,
		Context:         "test context",
		KeyChange:       "test key change",
		OriginalMessage: message,
		ProjectID:       projectID,
		LessonLearned:   lesson,
		Fingerprint:     note.Fingerprint(projectID, category, message),
	}
}

var _ = Describe("Service", func() {
	var (
		ctx      context.Context
		store    *inmemory.Store
		answerer *testutils.MockAnswerer
		service  *query.Service
	)

	seed := func(projectID, category, message string, lesson bool) {
		_, err := store.Append(ctx, queryTestNote(projectID, category, message, lesson))
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewStore()
		answerer = testutils.NewMockAnswerer("an open-ended answer")
		service = query.NewService(store, answerer, zap.NewNop())
	})

	AfterEach(func() {
		store.Close()
	})

	Describe("total count rule", func() {
		It("counts all notes", func() {
			seed("1", "general", "note a", false)
			seed("1", "general", "note b", false)
			seed("2", "planning", "note c", false)

			answer := service.Answer(ctx, "How many messages are recorded?", "")
			Expect(answer).To(Equal("There are 3 notes in total."))
			Expect(answerer.Calls).To(Equal(0))
		})

		It("scopes the count to a project", func() {
			seed("1", "general", "note a", false)
			seed("2", "planning", "note c", false)

			answer := service.Answer(ctx, "how many notes do we have?", "1")
			Expect(answer).To(Equal("There is 1 note in this project."))
		})

		It("answers zero for an empty store", func() {
			answer := service.Answer(ctx, "how many messages?", "")
			Expect(answer).To(Equal("There are 0 notes in total."))
		})
	})

	Describe("category breakdown rule", func() {
		It("lists categories ordered by count descending", func() {
			seed("1", "planning", "note a", false)
			seed("1", "general", "note b", false)
			seed("1", "general", "note c", false)

			answer := service.Answer(ctx, "Which categories exist?", "")
			Expect(answer).To(Equal("Distribution by category:\n- general: 2 notes\n- planning: 1 notes\n"))
			Expect(answerer.Calls).To(Equal(0))
		})

		It("breaks count ties alphabetically", func() {
			seed("1", "planning", "note a", false)
			seed("1", "general", "note b", false)

			answer := service.Answer(ctx, "how many categories are there?", "")
			Expect(answer).To(Equal("Distribution by category:\n- general: 1 notes\n- planning: 1 notes\n"))
		})

		It("reports an empty scope", func() {
			answer := service.Answer(ctx, "which categories exist?", "7")
			Expect(answer).To(Equal("There are no notes in this project yet."))
		})
	})

	Describe("lessons learned rule", func() {
		It("uses the singular form for one lesson", func() {
			seed("1", "execution", "lesson content", true)
			seed("1", "general", "regular note", false)

			answer := service.Answer(ctx, "How many Lessons Learned exist in this project?", "1")
			Expect(answer).To(Equal("There is 1 Lessons Learned in this project."))
			Expect(answerer.Calls).To(Equal(0))
		})

		It("uses the plural form otherwise", func() {
			seed("1", "execution", "lesson one", true)
			seed("1", "execution", "lesson two", true)

			answer := service.Answer(ctx, "how many lessons learned?", "")
			Expect(answer).To(Equal("There are 2 Lessons Learned in total."))
		})
	})

	Describe("category occurrence rule", func() {
		It("counts notes filed under the named category", func() {
			seed("1", "general", "note a", false)
			seed("1", "general", "note b", false)
			seed("1", "planning", "note c", false)

			answer := service.Answer(ctx, `How many times does the category general appear?`, "")
			Expect(answer).To(Equal(`The category "general" appears 2 times in total.`))
			Expect(answerer.Calls).To(Equal(0))
		})

		It("strips punctuation around the category token", func() {
			seed("1", "general", "note a", false)

			answer := service.Answer(ctx, `how many times does category "general"?`, "")
			Expect(answer).To(Equal(`The category "general" appears 1 time in total.`))
		})

		It("matches the category case-insensitively", func() {
			seed("1", "General", "note a", false)

			answer := service.Answer(ctx, "how many times does category general appear?", "")
			Expect(answer).To(Equal(`The category "general" appears 1 time in total.`))
		})

		It("answers zero for an unknown category", func() {
			seed("1", "general", "note a", false)

			answer := service.Answer(ctx, "how many times does category hvac appear?", "")
			Expect(answer).To(Equal(`The category "hvac" appears 0 times in total.`))
		})

		It("declines to the answerer when no token follows the marker", func() {
			seed("1", "general", "note a", false)

			answer := service.Answer(ctx, "how many times did we discuss this category", "")
			Expect(answer).To(Equal("an open-ended answer"))
			Expect(answerer.Calls).To(Equal(1))
		})
	})

	Describe("answerer fallback", func() {
		It("delegates unmatched questions with schema and samples", func() {
			seed("1", "general", "note a", false)

			answer := service.Answer(ctx, "What went wrong last week?", "")
			Expect(answer).To(Equal("an open-ended answer"))
			Expect(answerer.Calls).To(Equal(1))
			Expect(answerer.LastQuestion).To(Equal("What went wrong last week?"))
			Expect(answerer.LastSchema).To(ContainSubstring("TABLE: notes"))
			Expect(answerer.LastSamples).To(ContainSubstring("DATA SAMPLES (1 notes)"))
			Expect(answerer.LastSamples).To(ContainSubstring("Category: general"))
		})

		It("caps the digest at the sample limit", func() {
			for i := 0; i < note.SampleLimit+3; i++ {
				seed("1", "general", "note number "+string(rune('a'+i)), false)
			}

			_ = service.Answer(ctx, "summarize recent activity", "")
			Expect(answerer.LastSamples).To(ContainSubstring("NOTE 5:"))
			Expect(answerer.LastSamples).NotTo(ContainSubstring("NOTE 6:"))
		})

		It("sends an empty digest marker when no notes exist", func() {
			_ = service.Answer(ctx, "anything interesting?", "")
			Expect(answerer.LastSamples).To(Equal("No notes found for analysis."))
		})

		It("apologizes when the answerer fails", func() {
			answerer.Fail = true

			answer := service.Answer(ctx, "what happened?", "")
			Expect(answer).To(Equal(query.ApologyMessage))
		})

		It("apologizes when no answerer is configured", func() {
			service = query.NewService(store, nil, zap.NewNop())

			answer := service.Answer(ctx, "what happened?", "")
			Expect(answer).To(Equal(query.ApologyMessage))
		})
	})
})
