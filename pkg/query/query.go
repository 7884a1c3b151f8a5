// Package query answers natural-language questions about the note
// collection. A small ordered rule set handles the common aggregate
// questions deterministically; everything else is delegated to the external
// answerer with a schema-and-samples digest.
package query

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pinholabs/sitelog/pkg/llm"
	"github.com/pinholabs/sitelog/pkg/storage"
)

// ApologyMessage is returned when the answerer fails or an internal error
// prevents computing an answer. Answer never fails outward.
const ApologyMessage = "Sorry, I could not process your question at the moment."

// Service answers questions about stored notes.
type Service struct {
	store    storage.Store
	answerer llm.Answerer
	logger   *zap.Logger
	rules    []rule
}

// NewService creates a query service. A nil answerer limits the service to
// the deterministic rules; unmatched questions then get the apology text.
func NewService(store storage.Store, answerer llm.Answerer, logger *zap.Logger) *Service {
	s := &Service{
		store:    store,
		answerer: answerer,
		logger:   logger,
	}
	s.rules = defaultRules()

	return s
}

// Answer responds to a question, optionally scoped to one project. The rule
// set is evaluated in order against the lower-cased question; the first
// matching rule computes its aggregate directly against the store. When no
// rule matches, the question is forwarded to the answerer. All failures are
// converted into the apology text.
func (s *Service) Answer(ctx context.Context, question, projectID string) string {
	lowered := strings.ToLower(question)

	for _, r := range s.rules {
		if !r.match(lowered) {
			continue
		}

		answer, handled, err := r.run(ctx, s, lowered, projectID)
		if err != nil {
			s.logger.Warn("rule evaluation failed",
				zap.String("rule", r.name),
				zap.Error(err),
			)
			return ApologyMessage
		}
		if handled {
			return answer
		}
		// A rule may decline after matching (e.g. no category token could
		// be extracted); evaluation continues down the chain.
	}

	return s.fallback(ctx, question, projectID)
}

// fallback builds the schema and sample digests and delegates to the
// answerer.
func (s *Service) fallback(ctx context.Context, question, projectID string) string {
	if s.answerer == nil {
		return ApologyMessage
	}

	samples, err := s.sampleDigest(ctx, projectID)
	if err != nil {
		s.logger.Warn("failed to build sample digest", zap.Error(err))
		return ApologyMessage
	}

	answer, err := s.answerer.Ask(ctx, question, schemaDigest, samples)
	if err != nil {
		s.logger.Warn("answerer unavailable", zap.Error(err))
		return ApologyMessage
	}

	return answer
}

// scopeSuffix renders the trailing scope phrase used by the canned answers.
func scopeSuffix(projectID string) string {
	if projectID != "" {
		return "in this project"
	}
	return "in total"
}
