package storage_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/quirbit/qb/internal/model"
	"github.com/quirbit/qb/internal/storage"
)

func newTestBackend(t *testing.T) *storage.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "qb.db")

	s, err := storage.NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func signIn(t *testing.T, s *storage.SQLite, email string) model.Session {
	t.Helper()
	session, err := s.SignIn(email)
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}
	return session
}

func TestSQLite_SignIn(t *testing.T) {
	s := newTestBackend(t)

	first, err := s.SignIn("Alice@Example.com")
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}
	if first.UserID == "" {
		t.Fatal("expected a user ID")
	}
	if first.Email != "alice@example.com" {
		t.Errorf("expected lowercased email, got %q", first.Email)
	}

	// Signing in again with different casing resolves to the same profile
	second, err := s.SignIn("  alice@example.com ")
	if err != nil {
		t.Fatalf("failed to sign in again: %v", err)
	}
	if second.UserID != first.UserID {
		t.Errorf("expected same user ID, got %q and %q", first.UserID, second.UserID)
	}

	other := signIn(t, s, "bob@example.com")
	if other.UserID == first.UserID {
		t.Error("expected distinct profiles for distinct emails")
	}
}

func TestSQLite_DefaultCategoriesSeeded(t *testing.T) {
	s := newTestBackend(t)

	names, err := s.DefaultCategories()
	if err != nil {
		t.Fatalf("failed to load default categories: %v", err)
	}

	want := []string{"Blog", "Tutorial", "Video", "Article", "Other"}
	if len(names) != len(want) {
		t.Fatalf("expected %d defaults, got %d: %v", len(want), len(names), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("position %d: expected %q, got %q", i, name, names[i])
		}
	}
}

func TestSQLite_CategoriesOwnerScoped(t *testing.T) {
	s := newTestBackend(t)
	alice := signIn(t, s, "alice@example.com")
	bob := signIn(t, s, "bob@example.com")

	if err := s.InsertCategory(model.NewCategory(model.NewCategoryParams{
		OwnerID: alice.UserID,
		Name:    "Recipes",
	})); err != nil {
		t.Fatalf("failed to insert category: %v", err)
	}

	got, err := s.CategoriesForOwner(alice.UserID)
	if err != nil {
		t.Fatalf("failed to load categories: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Recipes" {
		t.Errorf("expected [Recipes], got %v", got)
	}

	other, err := s.CategoriesForOwner(bob.UserID)
	if err != nil {
		t.Fatalf("failed to load categories: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no categories for other owner, got %v", other)
	}
}

func TestSQLite_UpdateCategoryName(t *testing.T) {
	s := newTestBackend(t)
	session := signIn(t, s, "alice@example.com")

	if err := s.InsertCategory(model.NewCategory(model.NewCategoryParams{
		OwnerID: session.UserID,
		Name:    "Recipes",
	})); err != nil {
		t.Fatalf("failed to insert category: %v", err)
	}

	if err := s.UpdateCategoryName(session.UserID, "Recipes", "Cooking"); err != nil {
		t.Fatalf("failed to rename category: %v", err)
	}

	got, err := s.CategoriesForOwner(session.UserID)
	if err != nil {
		t.Fatalf("failed to load categories: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Cooking" {
		t.Errorf("expected [Cooking], got %v", got)
	}

	err = s.UpdateCategoryName(session.UserID, "Missing", "Anything")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound renaming a missing category, got %v", err)
	}
}

func TestSQLite_ColorUpsert(t *testing.T) {
	s := newTestBackend(t)
	session := signIn(t, s, "alice@example.com")

	entry := model.CategoryColor{
		OwnerID:   session.UserID,
		Name:      "Blog",
		Color:     "#FF0000",
		UpdatedAt: time.Now(),
	}
	if err := s.UpsertColor(entry); err != nil {
		t.Fatalf("failed to upsert color: %v", err)
	}

	// Second upsert for the same (owner, name) replaces, never duplicates
	entry.Color = "#00FF00"
	if err := s.UpsertColor(entry); err != nil {
		t.Fatalf("failed to upsert color again: %v", err)
	}

	colors, err := s.ColorsForOwner(session.UserID)
	if err != nil {
		t.Fatalf("failed to load colors: %v", err)
	}
	if len(colors) != 1 {
		t.Fatalf("expected 1 color row, got %d", len(colors))
	}
	if colors[0].Color != "#00FF00" {
		t.Errorf("expected #00FF00, got %q", colors[0].Color)
	}
}

func TestSQLite_RenameAndDeleteColor(t *testing.T) {
	s := newTestBackend(t)
	session := signIn(t, s, "alice@example.com")

	if err := s.UpsertColor(model.CategoryColor{
		OwnerID:   session.UserID,
		Name:      "Recipes",
		Color:     "#AABBCC",
		UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("failed to upsert color: %v", err)
	}

	if err := s.RenameColor(session.UserID, "Recipes", "Cooking"); err != nil {
		t.Fatalf("failed to rename color: %v", err)
	}

	colors, err := s.ColorsForOwner(session.UserID)
	if err != nil {
		t.Fatalf("failed to load colors: %v", err)
	}
	if len(colors) != 1 || colors[0].Name != "Cooking" {
		t.Errorf("expected color re-keyed to Cooking, got %v", colors)
	}

	// Renaming a name without a color entry is a no-op, not an error
	if err := s.RenameColor(session.UserID, "Missing", "Elsewhere"); err != nil {
		t.Errorf("expected no error renaming a missing color, got %v", err)
	}

	if err := s.DeleteColor(session.UserID, "Cooking"); err != nil {
		t.Fatalf("failed to delete color: %v", err)
	}
	colors, err = s.ColorsForOwner(session.UserID)
	if err != nil {
		t.Fatalf("failed to load colors: %v", err)
	}
	if len(colors) != 0 {
		t.Errorf("expected no colors after delete, got %v", colors)
	}
}

func TestSQLite_LinksNewestFirst(t *testing.T) {
	s := newTestBackend(t)
	session := signIn(t, s, "alice@example.com")

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i, title := range []string{"oldest", "middle", "newest"} {
		link := model.Link{
			ID:        model.GenerateUUID(),
			OwnerID:   session.UserID,
			Title:     title,
			URL:       "https://example.com/" + title,
			Category:  "Blog",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.InsertLink(link); err != nil {
			t.Fatalf("failed to insert link %q: %v", title, err)
		}
	}

	links, err := s.LinksForOwner(session.UserID)
	if err != nil {
		t.Fatalf("failed to load links: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	if links[0].Title != "newest" || links[2].Title != "oldest" {
		t.Errorf("expected newest-first order, got %q, %q, %q",
			links[0].Title, links[1].Title, links[2].Title)
	}
}

func TestSQLite_LinkNotesRoundTrip(t *testing.T) {
	s := newTestBackend(t)
	session := signIn(t, s, "alice@example.com")

	notes := "read before Friday"
	withNotes := model.NewLink(model.NewLinkParams{
		OwnerID:  session.UserID,
		Title:    "with notes",
		URL:      "https://example.com/a",
		Category: "Blog",
		Notes:    &notes,
	})
	withoutNotes := model.NewLink(model.NewLinkParams{
		OwnerID:  session.UserID,
		Title:    "without notes",
		URL:      "https://example.com/b",
		Category: "Blog",
	})
	for _, l := range []model.Link{withNotes, withoutNotes} {
		if err := s.InsertLink(l); err != nil {
			t.Fatalf("failed to insert link: %v", err)
		}
	}

	links, err := s.LinksForOwner(session.UserID)
	if err != nil {
		t.Fatalf("failed to load links: %v", err)
	}

	byID := map[string]model.Link{}
	for _, l := range links {
		byID[l.ID] = l
	}
	if got := byID[withNotes.ID]; got.Notes == nil || *got.Notes != notes {
		t.Errorf("expected notes %q preserved, got %v", notes, got.Notes)
	}
	if got := byID[withoutNotes.ID]; got.Notes != nil {
		t.Errorf("expected nil notes, got %q", *got.Notes)
	}
}

func TestSQLite_UpdateLink(t *testing.T) {
	s := newTestBackend(t)
	session := signIn(t, s, "alice@example.com")

	link := model.NewLink(model.NewLinkParams{
		OwnerID:  session.UserID,
		Title:    "original",
		URL:      "https://example.com",
		Category: "Blog",
	})
	if err := s.InsertLink(link); err != nil {
		t.Fatalf("failed to insert link: %v", err)
	}

	title := "updated"
	notes := "now with notes"
	err := s.UpdateLink(session.UserID, link.ID, model.LinkUpdate{
		Title: &title,
		Notes: &notes,
	})
	if err != nil {
		t.Fatalf("failed to update link: %v", err)
	}

	links, err := s.LinksForOwner(session.UserID)
	if err != nil {
		t.Fatalf("failed to load links: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	got := links[0]
	if got.Title != "updated" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
	if got.Category != "Blog" {
		t.Errorf("expected category untouched, got %q", got.Category)
	}
	if got.Notes == nil || *got.Notes != notes {
		t.Errorf("expected notes %q, got %v", notes, got.Notes)
	}

	err = s.UpdateLink(session.UserID, "missing-id", model.LinkUpdate{Title: &title})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing link, got %v", err)
	}

	// Other owners cannot reach the row
	other := signIn(t, s, "bob@example.com")
	err = s.UpdateLink(other.UserID, link.ID, model.LinkUpdate{Title: &title})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign owner, got %v", err)
	}
}

func TestSQLite_DeleteLink(t *testing.T) {
	s := newTestBackend(t)
	session := signIn(t, s, "alice@example.com")

	link := model.NewLink(model.NewLinkParams{
		OwnerID:  session.UserID,
		Title:    "doomed",
		URL:      "https://example.com",
		Category: "Blog",
	})
	if err := s.InsertLink(link); err != nil {
		t.Fatalf("failed to insert link: %v", err)
	}

	if err := s.DeleteLink(session.UserID, link.ID); err != nil {
		t.Fatalf("failed to delete link: %v", err)
	}

	links, err := s.LinksForOwner(session.UserID)
	if err != nil {
		t.Fatalf("failed to load links: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("expected no links after delete, got %d", len(links))
	}

	err = s.DeleteLink(session.UserID, link.ID)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestSQLite_RenameLinkCategory(t *testing.T) {
	s := newTestBackend(t)
	alice := signIn(t, s, "alice@example.com")
	bob := signIn(t, s, "bob@example.com")

	for _, l := range []model.Link{
		model.NewLink(model.NewLinkParams{OwnerID: alice.UserID, Title: "a", URL: "https://a.example.com", Category: "Recipes"}),
		model.NewLink(model.NewLinkParams{OwnerID: alice.UserID, Title: "b", URL: "https://b.example.com", Category: "Recipes"}),
		model.NewLink(model.NewLinkParams{OwnerID: alice.UserID, Title: "c", URL: "https://c.example.com", Category: "Blog"}),
		model.NewLink(model.NewLinkParams{OwnerID: bob.UserID, Title: "d", URL: "https://d.example.com", Category: "Recipes"}),
	} {
		if err := s.InsertLink(l); err != nil {
			t.Fatalf("failed to insert link: %v", err)
		}
	}

	n, err := s.RenameLinkCategory(alice.UserID, "Recipes", "Cooking")
	if err != nil {
		t.Fatalf("failed to rename link category: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 links renamed, got %d", n)
	}

	links, err := s.LinksForOwner(alice.UserID)
	if err != nil {
		t.Fatalf("failed to load links: %v", err)
	}
	for _, l := range links {
		if l.Category == "Recipes" {
			t.Errorf("link %q still carries the old category", l.Title)
		}
	}

	// Other owners' links keep the old name
	bobLinks, err := s.LinksForOwner(bob.UserID)
	if err != nil {
		t.Fatalf("failed to load links: %v", err)
	}
	if len(bobLinks) != 1 || bobLinks[0].Category != "Recipes" {
		t.Errorf("expected other owner's links untouched, got %v", bobLinks)
	}
}

func TestSQLite_SubmissionRateLimit(t *testing.T) {
	s := newTestBackend(t)
	alice := signIn(t, s, "alice@example.com")
	bob := signIn(t, s, "bob@example.com")

	for i := 0; i < 30; i++ {
		link := model.NewLink(model.NewLinkParams{
			OwnerID:  alice.UserID,
			Title:    "bulk",
			URL:      "https://example.com",
			Category: "Blog",
		})
		if err := s.InsertLink(link); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	err := s.InsertLink(model.NewLink(model.NewLinkParams{
		OwnerID:  alice.UserID,
		Title:    "one too many",
		URL:      "https://example.com",
		Category: "Blog",
	}))
	if !errors.Is(err, storage.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on 31st insert, got %v", err)
	}

	// The limit is per owner
	err = s.InsertLink(model.NewLink(model.NewLinkParams{
		OwnerID:  bob.UserID,
		Title:    "fine",
		URL:      "https://example.com",
		Category: "Blog",
	}))
	if err != nil {
		t.Errorf("expected other owner to insert freely, got %v", err)
	}
}

func TestSQLite_NotesCRUD(t *testing.T) {
	s := newTestBackend(t)
	session := signIn(t, s, "alice@example.com")

	note := model.NewNote(model.NewNoteParams{
		OwnerID: session.UserID,
		Title:   "groceries",
		Content: "milk, eggs",
	})
	if err := s.InsertNote(note); err != nil {
		t.Fatalf("failed to insert note: %v", err)
	}

	content := "milk, eggs, bread"
	if err := s.UpdateNote(session.UserID, note.ID, model.NoteUpdate{Content: &content}); err != nil {
		t.Fatalf("failed to update note: %v", err)
	}

	notes, err := s.NotesForOwner(session.UserID)
	if err != nil {
		t.Fatalf("failed to load notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
	if notes[0].Title != "groceries" || notes[0].Content != content {
		t.Errorf("unexpected note after update: %+v", notes[0])
	}

	if err := s.DeleteNote(session.UserID, note.ID); err != nil {
		t.Fatalf("failed to delete note: %v", err)
	}
	err = s.DeleteNote(session.UserID, note.ID)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "qb.db")

	s, err := storage.NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	session := signIn(t, s, "alice@example.com")
	link := model.NewLink(model.NewLinkParams{
		OwnerID:  session.UserID,
		Title:    "persisted",
		URL:      "https://example.com",
		Category: "Blog",
	})
	if err := s.InsertLink(link); err != nil {
		t.Fatalf("failed to insert link: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	reopened, err := storage.NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen backend: %v", err)
	}
	defer reopened.Close()

	links, err := reopened.LinksForOwner(session.UserID)
	if err != nil {
		t.Fatalf("failed to load links: %v", err)
	}
	if len(links) != 1 || links[0].Title != "persisted" {
		t.Errorf("expected persisted link after reopen, got %v", links)
	}
}
