package testutils

import (
	"context"
	"fmt"

	"github.com/pinholabs/sitelog/pkg/llm"
)

// MockSummarizer is a test summarizer that records calls and returns
// configurable results.
type MockSummarizer struct {
	// Summary is returned for every call when Fail is false.
	Summary llm.Summary

	// Fail causes Summarize to return an error.
	Fail bool

	// Calls counts how many times Summarize was invoked.
	Calls int

	// LastMessage is the message from the most recent call.
	LastMessage string
}

// NewMockSummarizer creates a mock that returns the given context/key-change
// pair.
func NewMockSummarizer(context, keyChange string) *MockSummarizer {
	return &MockSummarizer{
		Summary: llm.Summary{Context: context, KeyChange: keyChange},
	}
}

func (m *MockSummarizer) Summarize(_ context.Context, message string) (*llm.Summary, error) {
	m.Calls++
	m.LastMessage = message

	if m.Fail {
		return nil, fmt.Errorf("mock summarizer failure")
	}

	summary := m.Summary
	return &summary, nil
}
