package ai

import (
	"fmt"
	"strings"

	"github.com/quirbit/qb/internal/model"
)

const maxSampleTitles = 3

// BuildContext generates a compressed representation of the user's
// categories with sample link titles, suitable as AI context.
func BuildContext(categories []string, links []model.Link) string {
	var sb strings.Builder

	sb.WriteString("Available categories (with sample links):\n")

	for _, category := range categories {
		sb.WriteString(category)
		sb.WriteString("\n")

		titles := sampleTitles(links, category)
		if len(titles) > 0 {
			sb.WriteString("  - ")
			sb.WriteString(strings.Join(titles, ", "))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// sampleTitles returns up to maxSampleTitles quoted titles from the category.
func sampleTitles(links []model.Link, category string) []string {
	var titles []string
	for _, l := range links {
		if l.Category != category {
			continue
		}
		titles = append(titles, fmt.Sprintf("%q", l.Title))
		if len(titles) == maxSampleTitles {
			break
		}
	}
	return titles
}
