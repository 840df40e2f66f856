package store_test

import (
	"errors"
	"testing"

	"github.com/quirbit/qb/internal/model"
	"github.com/quirbit/qb/internal/storage"
	"github.com/quirbit/qb/internal/store"
)

func newLinkStore(t *testing.T, backend *storage.SQLite) *store.LinkStore {
	t.Helper()
	return store.NewLinkStore(store.LinkStoreParams{Backend: backend})
}

func TestLinkStore_Unauthenticated(t *testing.T) {
	s := newLinkStore(t, newTestBackend(t))

	if err := s.Load(); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated from Load, got %v", err)
	}
	if _, err := s.Add("t", "https://example.com", "Blog", nil); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated from Add, got %v", err)
	}
	if err := s.Edit("id", model.LinkUpdate{}); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated from Edit, got %v", err)
	}
	if err := s.Delete("id"); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated from Delete, got %v", err)
	}
	if got := s.Links(); len(got) != 0 {
		t.Errorf("expected empty cache, got %d links", len(got))
	}
}

func TestLinkStore_AddAndLoad(t *testing.T) {
	backend := newTestBackend(t)
	s := newLinkStore(t, backend)
	s.SetSession(signIn(t, backend, "alice@example.com"))

	added, err := s.Add("Example", "example.com/page", "Blog", nil)
	if err != nil {
		t.Fatalf("failed to add link: %v", err)
	}
	if added.URL != "https://example.com/page" {
		t.Errorf("expected normalized URL, got %q", added.URL)
	}
	if added.ID == "" {
		t.Error("expected a generated ID")
	}

	// The cache reflects the add without a reload
	links := s.Links()
	if len(links) != 1 || links[0].ID != added.ID {
		t.Errorf("expected cached link, got %v", links)
	}

	// A fresh store sees it after Load
	fresh := newLinkStore(t, backend)
	fresh.SetSession(signIn(t, backend, "alice@example.com"))
	if err := fresh.Load(); err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if got := fresh.Links(); len(got) != 1 || got[0].Title != "Example" {
		t.Errorf("expected persisted link after load, got %v", got)
	}
}

func TestLinkStore_AddPrepends(t *testing.T) {
	backend := newTestBackend(t)
	s := newLinkStore(t, backend)
	s.SetSession(signIn(t, backend, "alice@example.com"))

	if _, err := s.Add("first", "https://a.example.com", "Blog", nil); err != nil {
		t.Fatalf("failed to add: %v", err)
	}
	if _, err := s.Add("second", "https://b.example.com", "Blog", nil); err != nil {
		t.Fatalf("failed to add: %v", err)
	}

	links := s.Links()
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].Title != "second" || links[1].Title != "first" {
		t.Errorf("expected newest first, got %q, %q", links[0].Title, links[1].Title)
	}
}

func TestLinkStore_Edit(t *testing.T) {
	backend := newTestBackend(t)
	s := newLinkStore(t, backend)
	s.SetSession(signIn(t, backend, "alice@example.com"))

	added, err := s.Add("original", "https://example.com", "Blog", nil)
	if err != nil {
		t.Fatalf("failed to add link: %v", err)
	}

	title := "renamed"
	notes := "useful"
	if err := s.Edit(added.ID, model.LinkUpdate{Title: &title, Notes: &notes}); err != nil {
		t.Fatalf("failed to edit link: %v", err)
	}

	// Cache and backend agree
	links := s.Links()
	if links[0].Title != "renamed" {
		t.Errorf("expected cached title updated, got %q", links[0].Title)
	}
	if links[0].Notes == nil || *links[0].Notes != "useful" {
		t.Errorf("expected cached notes updated, got %v", links[0].Notes)
	}
	if links[0].ID != added.ID || !links[0].CreatedAt.Equal(added.CreatedAt) {
		t.Error("expected ID and creation time untouched by edit")
	}

	stored, err := backend.LinksForOwner(added.OwnerID)
	if err != nil {
		t.Fatalf("failed to load links: %v", err)
	}
	if stored[0].Title != "renamed" {
		t.Errorf("expected stored title updated, got %q", stored[0].Title)
	}

	// Clearing notes via pointer-to-empty
	empty := ""
	if err := s.Edit(added.ID, model.LinkUpdate{Notes: &empty}); err != nil {
		t.Fatalf("failed to clear notes: %v", err)
	}
	if got := s.Links()[0].Notes; got != nil {
		t.Errorf("expected notes cleared, got %q", *got)
	}
}

func TestLinkStore_EditMissing(t *testing.T) {
	backend := newTestBackend(t)
	s := newLinkStore(t, backend)
	s.SetSession(signIn(t, backend, "alice@example.com"))

	title := "anything"
	err := s.Edit("missing-id", model.LinkUpdate{Title: &title})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLinkStore_Delete(t *testing.T) {
	backend := newTestBackend(t)
	s := newLinkStore(t, backend)
	s.SetSession(signIn(t, backend, "alice@example.com"))

	keep, err := s.Add("keep", "https://a.example.com", "Blog", nil)
	if err != nil {
		t.Fatalf("failed to add: %v", err)
	}
	doomed, err := s.Add("doomed", "https://b.example.com", "Blog", nil)
	if err != nil {
		t.Fatalf("failed to add: %v", err)
	}

	if err := s.Delete(doomed.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	links := s.Links()
	if len(links) != 1 || links[0].ID != keep.ID {
		t.Errorf("expected only the kept link, got %v", links)
	}
}

func TestLinkStore_RateLimited(t *testing.T) {
	backend := newTestBackend(t)
	s := newLinkStore(t, backend)
	s.SetSession(signIn(t, backend, "alice@example.com"))

	for i := 0; i < 30; i++ {
		if _, err := s.Add("bulk", "https://example.com", "Blog", nil); err != nil {
			t.Fatalf("add %d failed: %v", i, err)
		}
	}

	_, err := s.Add("one too many", "https://example.com", "Blog", nil)
	if !errors.Is(err, storage.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	// The refused link never reached the cache
	if got := s.Links(); len(got) != 30 {
		t.Errorf("expected 30 cached links, got %d", len(got))
	}
}

func TestLinkStore_SetSessionClearsCache(t *testing.T) {
	backend := newTestBackend(t)
	s := newLinkStore(t, backend)
	s.SetSession(signIn(t, backend, "alice@example.com"))

	if _, err := s.Add("mine", "https://example.com", "Blog", nil); err != nil {
		t.Fatalf("failed to add: %v", err)
	}

	s.SetSession(signIn(t, backend, "bob@example.com"))
	if got := s.Links(); len(got) != 0 {
		t.Errorf("expected cache cleared on session change, got %d links", len(got))
	}

	if err := s.Load(); err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if got := s.Links(); len(got) != 0 {
		t.Errorf("expected no links for the new owner, got %d", len(got))
	}
}
