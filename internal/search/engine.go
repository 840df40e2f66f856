// Package search is the pure filter/sort engine behind every list screen.
// It is generic over anything exposing the Item contract, so links and
// notes share one implementation. Applying the same query to the same
// collection always yields the same result; nothing in here has side
// effects.
package search

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Item is the minimal shape the engine operates on.
type Item interface {
	SearchID() string
	SearchTitle() string
	// SearchTexts returns the ordered candidate fields for text matching.
	SearchTexts() []string
	// SearchCategory returns "" for uncategorized items.
	SearchCategory() string
	// SearchNotes returns "" when the item has no notes.
	SearchNotes() string
	SearchCreatedAt() time.Time
}

// SortKey selects exactly one ordering. The zero value is SortNewest.
type SortKey int

const (
	SortNewest SortKey = iota
	SortOldest
	SortTitleAsc
	SortTitleDesc
	SortCategory
)

// DisplayName returns the user-facing label for a sort key.
func (k SortKey) DisplayName() string {
	switch k {
	case SortOldest:
		return "Oldest First"
	case SortTitleAsc:
		return "Title A-Z"
	case SortTitleDesc:
		return "Title Z-A"
	case SortCategory:
		return "Category"
	default:
		return "Newest First"
	}
}

// Next cycles to the following sort key, wrapping around.
func (k SortKey) Next() SortKey {
	if k == SortCategory {
		return SortNewest
	}
	return k + 1
}

// AllCategories is the sentinel facet value meaning "no category filter".
const AllCategories = "All"

// DateRange is an inclusive [Start, End] interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Filters is the predicate set applied after text search.
type Filters struct {
	Category  string     // "" or AllCategories disables the filter
	DateRange *DateRange // nil disables the filter
	HasNotes  *bool      // nil disables the filter
}

// Active reports whether any filter is set.
func (f Filters) Active() bool {
	return (f.Category != "" && f.Category != AllCategories) ||
		f.DateRange != nil ||
		f.HasNotes != nil
}

// Query bundles everything the engine needs for one recomputation.
type Query struct {
	Text    string
	Filters Filters
	Sort    SortKey
}

// Active reports whether the query narrows the collection at all.
func (q Query) Active() bool {
	return strings.TrimSpace(q.Text) != "" || q.Filters.Active()
}

// Apply runs text search, filtering and sorting over the collection and
// returns a new slice. The input is never mutated; relative order of items
// with equal sort keys is preserved.
func Apply[T Item](items []T, q Query) []T {
	result := filterText(items, q.Text)
	result = filterCategory(result, q.Filters.Category)
	result = filterDateRange(result, q.Filters.DateRange)
	result = filterHasNotes(result, q.Filters.HasNotes)
	return sortItems(result, q.Sort)
}

// filterText retains items where ANY candidate field contains the
// lowercased query as a substring. An empty or whitespace-only query
// passes everything through unchanged.
func filterText[T Item](items []T, query string) []T {
	if strings.TrimSpace(query) == "" {
		result := make([]T, len(items))
		copy(result, items)
		return result
	}

	query = strings.ToLower(query)
	result := []T{}
	for _, item := range items {
		for _, text := range item.SearchTexts() {
			if strings.Contains(strings.ToLower(text), query) {
				result = append(result, item)
				break
			}
		}
	}
	return result
}

func filterCategory[T Item](items []T, category string) []T {
	if category == "" || category == AllCategories {
		return items
	}

	result := []T{}
	for _, item := range items {
		if item.SearchCategory() == category {
			result = append(result, item)
		}
	}
	return result
}

func filterDateRange[T Item](items []T, r *DateRange) []T {
	if r == nil {
		return items
	}

	result := []T{}
	for _, item := range items {
		created := item.SearchCreatedAt()
		if !created.Before(r.Start) && !created.After(r.End) {
			result = append(result, item)
		}
	}
	return result
}

func filterHasNotes[T Item](items []T, hasNotes *bool) []T {
	if hasNotes == nil {
		return items
	}

	result := []T{}
	for _, item := range items {
		got := strings.TrimSpace(item.SearchNotes()) != ""
		if got == *hasNotes {
			result = append(result, item)
		}
	}
	return result
}

// sortItems applies exactly one ordering, stable for equal keys. Title and
// category comparisons are collation-aware; an empty category sorts first.
func sortItems[T Item](items []T, key SortKey) []T {
	c := collate.New(language.Und)

	switch key {
	case SortOldest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SearchCreatedAt().Before(items[j].SearchCreatedAt())
		})
	case SortTitleAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return c.CompareString(items[i].SearchTitle(), items[j].SearchTitle()) < 0
		})
	case SortTitleDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return c.CompareString(items[i].SearchTitle(), items[j].SearchTitle()) > 0
		})
	case SortCategory:
		sort.SliceStable(items, func(i, j int) bool {
			return c.CompareString(items[i].SearchCategory(), items[j].SearchCategory()) < 0
		})
	default: // SortNewest
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SearchCreatedAt().After(items[j].SearchCreatedAt())
		})
	}

	return items
}

// Facets returns the distinct non-empty category values across the FULL
// collection, sorted, with AllCategories prepended. It always reflects the
// unfiltered dataset so the filter UI never loses options.
func Facets[T Item](items []T) []string {
	seen := map[string]bool{}
	categories := []string{}
	for _, item := range items {
		category := item.SearchCategory()
		if category == "" || seen[category] {
			continue
		}
		seen[category] = true
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return append([]string{AllCategories}, categories...)
}
