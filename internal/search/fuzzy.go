package search

import (
	"github.com/quirbit/qb/internal/model"
	"github.com/sahilm/fuzzy"
)

// FuzzyResult represents a fuzzy search match.
type FuzzyResult struct {
	Link           *model.Link
	MatchedIndexes []int
	Score          int
}

// linkTitles implements fuzzy.Source for a link slice.
type linkTitles []*model.Link

func (lt linkTitles) String(i int) string {
	return lt[i].Title
}

func (lt linkTitles) Len() int {
	return len(lt)
}

// FuzzyLinks searches all links by title using fuzzy matching.
// Returns results sorted by match score (best first). This powers the
// quick-open picker only; list filtering uses Apply.
func FuzzyLinks(links []model.Link, query string) []FuzzyResult {
	if query == "" {
		return nil
	}

	// Build slice of link pointers
	titles := make(linkTitles, len(links))
	for i := range links {
		titles[i] = &links[i]
	}

	// Run fuzzy matching
	matches := fuzzy.FindFrom(query, titles)

	// Convert to FuzzyResult
	results := make([]FuzzyResult, len(matches))
	for i, m := range matches {
		results[i] = FuzzyResult{
			Link:           titles[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
