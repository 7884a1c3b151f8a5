package note_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pinholabs/sitelog/pkg/note"
)

func TestNote(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Note Suite")
}

var _ = Describe("Fingerprint", func() {
	It("is deterministic for identical input", func() {
		a := note.Fingerprint("1", "general", "Concrete pour delayed")
		b := note.Fingerprint("1", "general", "Concrete pour delayed")
		Expect(a).To(Equal(b))
	})

	It("is a 64-character hex string", func() {
		fp := note.Fingerprint("1", "general", "some message")
		Expect(fp).To(HaveLen(64))
		Expect(fp).To(MatchRegexp("^[0-9a-f]+$"))
	})

	It("is invariant to letter case", func() {
		a := note.Fingerprint("1", "General", "Concrete POUR delayed")
		b := note.Fingerprint("1", "general", "concrete pour delayed")
		Expect(a).To(Equal(b))
	})

	It("is invariant to leading and trailing whitespace", func() {
		a := note.Fingerprint("  1", "general", "concrete pour delayed  ")
		b := note.Fingerprint("1", "general", "concrete pour delayed")
		Expect(a).To(Equal(b))
	})

	It("differs when the project changes", func() {
		a := note.Fingerprint("1", "general", "same message")
		b := note.Fingerprint("2", "general", "same message")
		Expect(a).NotTo(Equal(b))
	})

	It("differs when the category changes", func() {
		a := note.Fingerprint("1", "general", "same message")
		b := note.Fingerprint("1", "planning", "same message")
		Expect(a).NotTo(Equal(b))
	})

	It("differs when the message changes", func() {
		a := note.Fingerprint("1", "general", "message one")
		b := note.Fingerprint("1", "general", "message two")
		Expect(a).NotTo(Equal(b))
	})
})

var _ = Describe("TruncateKeyChange", func() {
	It("returns short messages unchanged", func() {
		Expect(note.TruncateKeyChange("short message")).To(Equal("short message"))
	})

	It("returns a message at exactly the limit unchanged", func() {
		msg := strings.Repeat("a", note.KeyChangeLimit)
		Expect(note.TruncateKeyChange(msg)).To(Equal(msg))
	})

	It("truncates long messages and appends an ellipsis", func() {
		msg := strings.Repeat("a", note.KeyChangeLimit+50)
		got := note.TruncateKeyChange(msg)
		Expect(got).To(HaveLen(note.KeyChangeLimit + 3))
		Expect(got).To(HavePrefix(strings.Repeat("a", note.KeyChangeLimit)))
		Expect(got).To(HaveSuffix("..."))
	})

	It("does not append an ellipsis one byte over nothing", func() {
		msg := strings.Repeat("a", note.KeyChangeLimit+1)
		got := note.TruncateKeyChange(msg)
		Expect(got).To(Equal(strings.Repeat("a", note.KeyChangeLimit) + "..."))
	})

	It("counts characters rather than bytes for multibyte messages", func() {
		msg := strings.Repeat("ã", note.KeyChangeLimit-40)
		Expect(len(msg)).To(BeNumerically(">", note.KeyChangeLimit))
		Expect(note.TruncateKeyChange(msg)).To(Equal(msg))
	})

	It("truncates multibyte messages without splitting a character", func() {
		msg := "a" + strings.Repeat("ã", note.KeyChangeLimit+20)
		got := note.TruncateKeyChange(msg)
		Expect(utf8.ValidString(got)).To(BeTrue())
		Expect(utf8.RuneCountInString(got)).To(Equal(note.KeyChangeLimit + 3))
		Expect(got).To(Equal("a" + strings.Repeat("ã", note.KeyChangeLimit-1) + "..."))
	})
})
