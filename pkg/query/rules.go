package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// rule is one entry in the prioritized rule list. match runs against the
// lower-cased question; run computes the answer. A rule may match and still
// decline (handled=false), in which case evaluation falls through to later
// rules and ultimately the answerer.
type rule struct {
	name  string
	match func(q string) bool
	run   func(ctx context.Context, s *Service, q, projectID string) (answer string, handled bool, err error)
}

// defaultRules returns the rule chain in evaluation order. The chain exists
// to avoid answerer latency and cost for the handful of extremely common
// questions; the answerer fallback remains the general-purpose path.
func defaultRules() []rule {
	return []rule{
		{
			name: "total-count",
			match: func(q string) bool {
				return strings.Contains(q, "how many") &&
					(strings.Contains(q, "messages") || strings.Contains(q, "notes"))
			},
			run: runTotalCount,
		},
		{
			name: "category-breakdown",
			match: func(q string) bool {
				return strings.Contains(q, "categories") &&
					(strings.Contains(q, "how many") || strings.Contains(q, "exist"))
			},
			run: runCategoryBreakdown,
		},
		{
			name: "lessons-learned-count",
			match: func(q string) bool {
				return strings.Contains(q, "lessons learned")
			},
			run: runLessonsLearnedCount,
		},
		{
			name: "category-occurrence",
			match: func(q string) bool {
				return strings.Contains(q, "how many times") && strings.Contains(q, "category")
			},
			run: runCategoryOccurrence,
		},
	}
}

func runTotalCount(ctx context.Context, s *Service, _, projectID string) (string, bool, error) {
	count, err := s.store.CountNotes(ctx, projectID)
	if err != nil {
		return "", false, err
	}

	if count == 1 {
		return fmt.Sprintf("There is 1 note %s.", scopeSuffix(projectID)), true, nil
	}
	return fmt.Sprintf("There are %d notes %s.", count, scopeSuffix(projectID)), true, nil
}

func runCategoryBreakdown(ctx context.Context, s *Service, _, projectID string) (string, bool, error) {
	counts, err := s.store.CountByCategory(ctx, projectID)
	if err != nil {
		return "", false, err
	}

	if len(counts) == 0 {
		return fmt.Sprintf("There are no notes %s yet.", scopeSuffix(projectID)), true, nil
	}

	type categoryCount struct {
		category string
		count    int
	}

	ordered := make([]categoryCount, 0, len(counts))
	for category, count := range counts {
		ordered = append(ordered, categoryCount{category, count})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].category < ordered[j].category
	})

	var b strings.Builder
	b.WriteString("Distribution by category:\n")
	for _, cc := range ordered {
		fmt.Fprintf(&b, "- %s: %d notes\n", cc.category, cc.count)
	}

	return b.String(), true, nil
}

func runLessonsLearnedCount(ctx context.Context, s *Service, _, projectID string) (string, bool, error) {
	count, err := s.store.CountLessonsLearned(ctx, projectID)
	if err != nil {
		return "", false, err
	}

	if count == 1 {
		return fmt.Sprintf("There is 1 Lessons Learned %s.", scopeSuffix(projectID)), true, nil
	}
	return fmt.Sprintf("There are %d Lessons Learned %s.", count, scopeSuffix(projectID)), true, nil
}

// runCategoryOccurrence extracts the token positionally following the word
// "category" in the tokenized question and counts notes filed under it.
// When no token can be extracted, the rule declines and the question falls
// through to the answerer.
func runCategoryOccurrence(ctx context.Context, s *Service, q, projectID string) (string, bool, error) {
	target := tokenAfter(q, "category")
	if target == "" {
		return "", false, nil
	}

	counts, err := s.store.CountByCategory(ctx, projectID)
	if err != nil {
		return "", false, err
	}

	count := 0
	for category, c := range counts {
		if strings.EqualFold(category, target) {
			count += c
		}
	}

	if count == 1 {
		return fmt.Sprintf("The category %q appears 1 time %s.", target, scopeSuffix(projectID)), true, nil
	}
	return fmt.Sprintf("The category %q appears %d times %s.", target, count, scopeSuffix(projectID)), true, nil
}

// tokenAfter returns the word following the first occurrence of marker in
// the tokenized question, stripped of surrounding punctuation.
func tokenAfter(q, marker string) string {
	tokens := strings.Fields(q)
	for i, token := range tokens {
		if strings.Trim(token, `"'?.,!`) == marker && i+1 < len(tokens) {
			return strings.Trim(tokens[i+1], `"'?.,!`)
		}
	}

	return ""
}
