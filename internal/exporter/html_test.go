package exporter

import (
	"strings"
	"testing"
	"time"

	"github.com/quirbit/qb/internal/importer"
	"github.com/quirbit/qb/internal/model"
)

func TestExportHTML_Structure(t *testing.T) {
	links := []model.Link{
		{
			ID:        "l1",
			Title:     "GitHub",
			URL:       "https://github.com",
			Category:  "Development",
			CreatedAt: time.Unix(1700000000, 0),
		},
		{
			ID:        "l2",
			Title:     "Recipe",
			URL:       "https://example.com/bread",
			Category:  "Cooking",
			CreatedAt: time.Unix(1700000100, 0),
		},
	}

	out := ExportHTML(links)

	if !strings.Contains(out, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("expected Netscape doctype")
	}
	if !strings.Contains(out, "<H3>Development</H3>") {
		t.Error("expected Development folder")
	}
	if !strings.Contains(out, "<H3>Cooking</H3>") {
		t.Error("expected Cooking folder")
	}
	if !strings.Contains(out, `HREF="https://github.com"`) {
		t.Error("expected GitHub link")
	}
	if !strings.Contains(out, `ADD_DATE="1700000000"`) {
		t.Error("expected ADD_DATE timestamp")
	}

	// Folders appear in sorted order
	if strings.Index(out, "Cooking") > strings.Index(out, "Development") {
		t.Error("expected categories in sorted order")
	}
}

func TestExportHTML_UncategorizedFallsBack(t *testing.T) {
	links := []model.Link{
		{ID: "l1", Title: "Loose", URL: "https://example.com", Category: "", CreatedAt: time.Now()},
	}

	out := ExportHTML(links)
	if !strings.Contains(out, "<H3>"+model.FallbackCategory+"</H3>") {
		t.Errorf("expected fallback folder, got:\n%s", out)
	}
}

func TestExportHTML_EscapesSpecialCharacters(t *testing.T) {
	links := []model.Link{
		{
			ID:        "l1",
			Title:     "Tips & <Tricks>",
			URL:       "https://example.com?a=1&b=2",
			Category:  "Other",
			CreatedAt: time.Now(),
		},
	}

	out := ExportHTML(links)
	if !strings.Contains(out, "Tips &amp; &lt;Tricks&gt;") {
		t.Errorf("expected escaped title, got:\n%s", out)
	}
	if strings.Contains(out, "a=1&b=2\"") {
		t.Error("expected escaped URL ampersand")
	}
}

func TestExportHTML_RoundTrip(t *testing.T) {
	original := []model.Link{
		{
			ID:        "l1",
			Title:     "GitHub",
			URL:       "https://github.com",
			Category:  "Development",
			CreatedAt: time.Unix(1700000000, 0),
		},
		{
			ID:        "l2",
			Title:     "Bread",
			URL:       "https://example.com/bread",
			Category:  "Cooking",
			CreatedAt: time.Unix(1700000100, 0),
		},
	}

	out := ExportHTML(original)

	imported, err := importer.ParseHTMLLinks(strings.NewReader(out), "u1")
	if err != nil {
		t.Fatalf("failed to re-import: %v", err)
	}
	if len(imported) != len(original) {
		t.Fatalf("expected %d links after round trip, got %d", len(original), len(imported))
	}

	byTitle := map[string]model.Link{}
	for _, l := range imported {
		byTitle[l.Title] = l
	}
	for _, want := range original {
		got, ok := byTitle[want.Title]
		if !ok {
			t.Errorf("link %q lost in round trip", want.Title)
			continue
		}
		if got.URL != want.URL {
			t.Errorf("URL mismatch for %q: %q vs %q", want.Title, got.URL, want.URL)
		}
		if got.Category != want.Category {
			t.Errorf("category mismatch for %q: %q vs %q", want.Title, got.Category, want.Category)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("timestamp mismatch for %q: %v vs %v", want.Title, got.CreatedAt, want.CreatedAt)
		}
	}
}
