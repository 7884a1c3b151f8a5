package testutils

import (
	"context"
	"fmt"
)

// MockAnswerer is a test answerer that records calls and returns a
// configurable answer.
type MockAnswerer struct {
	// Answer is returned for every call when Fail is false.
	Answer string

	// Fail causes Ask to return an error.
	Fail bool

	// Calls counts how many times Ask was invoked.
	Calls int

	// LastQuestion, LastSchema, and LastSamples capture the arguments from
	// the most recent call.
	LastQuestion string
	LastSchema   string
	LastSamples  string
}

// NewMockAnswerer creates a mock that returns the given answer text.
func NewMockAnswerer(answer string) *MockAnswerer {
	return &MockAnswerer{Answer: answer}
}

func (m *MockAnswerer) Ask(_ context.Context, question, schema, samples string) (string, error) {
	m.Calls++
	m.LastQuestion = question
	m.LastSchema = schema
	m.LastSamples = samples

	if m.Fail {
		return "", fmt.Errorf("mock answerer failure")
	}

	return m.Answer, nil
}
