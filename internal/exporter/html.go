package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/quirbit/qb/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/qb-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("qb-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports links to Netscape bookmark HTML format, grouped by
// category. Each category becomes one folder; categories are written in
// sorted order, links within a category keep their given order.
func ExportHTML(links []model.Link) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	byCategory := map[string][]model.Link{}
	var categories []string
	for _, l := range links {
		category := l.Category
		if category == "" {
			category = model.FallbackCategory
		}
		if _, ok := byCategory[category]; !ok {
			categories = append(categories, category)
		}
		byCategory[category] = append(byCategory[category], l)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Fprintf(&b, "    <DT><H3>%s</H3>\n", html.EscapeString(category))
		b.WriteString("    <DL><p>\n")
		for _, l := range byCategory[category] {
			fmt.Fprintf(&b,
				"        <DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
				html.EscapeString(l.URL),
				l.CreatedAt.Unix(),
				html.EscapeString(l.Title),
			)
		}
		b.WriteString("    </DL><p>\n")
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}
