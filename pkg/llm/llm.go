// Package llm defines the contracts for the external language-model
// collaborators: the summarizer that enriches incoming notes and the
// answerer that handles free-text questions.
//
// Both collaborators are untrusted: callers catch every failure at the
// boundary and degrade instead of propagating it.
package llm

import "context"

// Summary is the short context/key-change pair derived from a note's
// original message.
type Summary struct {
	Context   string `json:"context"`
	KeyChange string `json:"key_change"`
}

// Summarizer produces a Summary from free text.
type Summarizer interface {
	// Summarize derives a short context and key change from the message.
	// Implementations must honor ctx cancellation and apply a bounded
	// timeout to any network call.
	Summarize(ctx context.Context, message string) (*Summary, error)
}

// Answerer produces a free-text answer to an open-ended question given a
// schema description and data samples.
type Answerer interface {
	// Ask returns a textual answer to the question based on the provided
	// schema and sample digests.
	Ask(ctx context.Context, question, schema, samples string) (string, error)
}
