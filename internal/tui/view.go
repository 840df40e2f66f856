package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/quirbit/qb/internal/search"
)

// View implements tea.Model.
func (a App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("qb"))
	b.WriteString("\n\n")

	// Search line
	if a.mode == ModeSearch {
		b.WriteString(a.input.View())
		b.WriteString("\n\n")
	} else if a.query.Active() {
		b.WriteString(a.styles.Status.Render(a.querySummary()))
		b.WriteString("\n\n")
	}

	// Link list
	if len(a.visible) == 0 {
		b.WriteString(a.styles.Empty.Render("No links"))
		b.WriteString("\n")
	} else {
		known := a.categories.List()
		for i, link := range a.visible {
			style := a.styles.Item
			if i == a.cursor {
				style = a.styles.ItemSelected
			}

			b.WriteString(style.Render(link.Title))
			b.WriteString("  ")
			b.WriteString(a.styles.Category.Render("[" + link.DisplayCategory(known) + "]"))
			b.WriteString("\n")

			b.WriteString("   ")
			b.WriteString(a.styles.URL.Render(link.URL))
			b.WriteString("  ")
			b.WriteString(a.styles.Date.Render(relativeTime(link.CreatedAt)))
			b.WriteString("\n")
		}
	}

	// Footer
	b.WriteString(a.styles.Help.Render(a.footer()))

	if a.mode == ModeConfirmDelete {
		b.WriteString("\n")
		b.WriteString(a.styles.Error.Render("Delete link? (y/n)"))
	} else if a.status != "" {
		b.WriteString("\n")
		if a.failed {
			b.WriteString(a.styles.Error.Render(a.status))
		} else {
			b.WriteString(a.styles.Status.Render(a.status))
		}
	}

	return a.styles.App.Render(b.String())
}

// querySummary describes the active query in one line.
func (a App) querySummary() string {
	var parts []string
	if strings.TrimSpace(a.query.Text) != "" {
		parts = append(parts, fmt.Sprintf("search: %q", a.query.Text))
	}
	if c := a.query.Filters.Category; c != "" && c != search.AllCategories {
		parts = append(parts, "category: "+c)
	}
	if a.query.Filters.HasNotes != nil {
		if *a.query.Filters.HasNotes {
			parts = append(parts, "with notes")
		} else {
			parts = append(parts, "without notes")
		}
	}
	return strings.Join(parts, "  ")
}

// footer renders counts, sort mode and key hints.
func (a App) footer() string {
	total := len(a.links.Links())
	return fmt.Sprintf("%d/%d  %s  ·  j/k move  / search  f category  s sort  n notes  Y yank  o open  d delete  q quit",
		len(a.visible), total, a.query.Sort.DisplayName())
}

// relativeTime formats a timestamp relative to now.
func relativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}

	if t.Year() != time.Now().Year() {
		return t.Format("Jan 2, 2006")
	}
	return t.Format("Jan 2")
}
