package store_test

import (
	"errors"
	"testing"

	"github.com/quirbit/qb/internal/model"
	"github.com/quirbit/qb/internal/storage"
	"github.com/quirbit/qb/internal/store"
)

func newNoteStore(t *testing.T, backend *storage.SQLite) *store.NoteStore {
	t.Helper()
	return store.NewNoteStore(store.NoteStoreParams{Backend: backend})
}

func TestNoteStore_Unauthenticated(t *testing.T) {
	s := newNoteStore(t, newTestBackend(t))

	if err := s.Load(); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated from Load, got %v", err)
	}
	if _, err := s.Add("t", "c"); !errors.Is(err, store.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated from Add, got %v", err)
	}
}

func TestNoteStore_CRUD(t *testing.T) {
	backend := newTestBackend(t)
	s := newNoteStore(t, backend)
	s.SetSession(signIn(t, backend, "alice@example.com"))

	added, err := s.Add("groceries", "milk, eggs")
	if err != nil {
		t.Fatalf("failed to add note: %v", err)
	}
	if added.ID == "" {
		t.Error("expected a generated ID")
	}

	content := "milk, eggs, bread"
	if err := s.Edit(added.ID, model.NoteUpdate{Content: &content}); err != nil {
		t.Fatalf("failed to edit note: %v", err)
	}

	notes := s.Notes()
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
	if notes[0].Content != content {
		t.Errorf("expected updated content, got %q", notes[0].Content)
	}
	if notes[0].Title != "groceries" {
		t.Errorf("expected title untouched, got %q", notes[0].Title)
	}

	if err := s.Delete(added.ID); err != nil {
		t.Fatalf("failed to delete note: %v", err)
	}
	if got := s.Notes(); len(got) != 0 {
		t.Errorf("expected empty store after delete, got %d notes", len(got))
	}

	err = s.Delete(added.ID)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestNoteStore_LoadRefreshesCache(t *testing.T) {
	backend := newTestBackend(t)
	session := signIn(t, backend, "alice@example.com")

	s := newNoteStore(t, backend)
	s.SetSession(session)
	if _, err := s.Add("first", "a"); err != nil {
		t.Fatalf("failed to add note: %v", err)
	}

	// A second store sees changes made by the first after loading
	other := newNoteStore(t, backend)
	other.SetSession(session)
	if err := other.Load(); err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if got := other.Notes(); len(got) != 1 || got[0].Title != "first" {
		t.Errorf("expected loaded note, got %v", got)
	}
}
