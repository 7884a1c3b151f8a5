// Package stats aggregates note statistics for the stats endpoint and CLI.
package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/pinholabs/sitelog/pkg/storage"
)

// CategoryCount is one category's note count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats holds aggregate note statistics for a scope.
type Stats struct {
	Scope          string          `json:"scope"`
	Total          int             `json:"total"`
	ByCategory     []CategoryCount `json:"by_category"`
	LessonsLearned int             `json:"lessons_learned"`
}

// Collect computes statistics for the given scope. An empty projectID
// aggregates across all projects.
func Collect(ctx context.Context, store storage.Store, projectID string) (*Stats, error) {
	total, err := store.CountNotes(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("counting notes: %w", err)
	}

	counts, err := store.CountByCategory(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("counting by category: %w", err)
	}

	lessons, err := store.CountLessonsLearned(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("counting lessons learned: %w", err)
	}

	byCategory := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		byCategory = append(byCategory, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(byCategory, func(i, j int) bool {
		if byCategory[i].Count != byCategory[j].Count {
			return byCategory[i].Count > byCategory[j].Count
		}
		return byCategory[i].Category < byCategory[j].Category
	})

	scope := "all projects"
	if projectID != "" {
		scope = projectID
	}

	return &Stats{
		Scope:          scope,
		Total:          total,
		ByCategory:     byCategory,
		LessonsLearned: lessons,
	}, nil
}
