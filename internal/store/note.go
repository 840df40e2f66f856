package store

import (
	"fmt"
	"sync"

	"github.com/quirbit/qb/internal/logger"
	"github.com/quirbit/qb/internal/model"
	"github.com/quirbit/qb/internal/storage"
)

// NoteStore provides owner-scoped CRUD over notes, mirroring LinkStore.
type NoteStore struct {
	backend storage.Backend
	log     logger.Logger

	mu      sync.Mutex
	session model.Session
	notes   []model.Note // newest first
}

// NoteStoreParams holds parameters for creating a NoteStore.
type NoteStoreParams struct {
	Backend storage.Backend
	Logger  logger.Logger
}

// NewNoteStore creates a NoteStore.
func NewNoteStore(params NoteStoreParams) *NoteStore {
	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &NoteStore{
		backend: params.Backend,
		log:     log,
	}
}

// SetSession switches the store to a new owner and clears the cache.
func (s *NoteStore) SetSession(session model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.notes = nil
}

// Load fetches all of the owner's notes and replaces the cache wholesale.
func (s *NoteStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = nil
	if !s.session.Valid() {
		return ErrNotAuthenticated
	}

	notes, err := s.backend.NotesForOwner(s.session.UserID)
	if err != nil {
		s.log.Error("load notes", logger.Error(err))
		return fmt.Errorf("load notes: %w", err)
	}

	s.notes = notes
	return nil
}

// Notes returns a copy of the cached notes, newest first.
func (s *NoteStore) Notes() []model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := make([]model.Note, len(s.notes))
	copy(notes, s.notes)
	return notes
}

// Add persists a new note and prepends it to the cache.
func (s *NoteStore) Add(title, content string) (model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Valid() {
		return model.Note{}, ErrNotAuthenticated
	}

	note := model.NewNote(model.NewNoteParams{
		OwnerID: s.session.UserID,
		Title:   title,
		Content: content,
	})

	if err := s.backend.InsertNote(note); err != nil {
		s.log.Error("add note", logger.Error(err))
		return model.Note{}, fmt.Errorf("add note: %w", err)
	}

	s.notes = append([]model.Note{note}, s.notes...)
	return note, nil
}

// Edit applies a partial update to the owner's matching note.
func (s *NoteStore) Edit(id string, update model.NoteUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Valid() {
		return ErrNotAuthenticated
	}

	if err := s.backend.UpdateNote(s.session.UserID, id, update); err != nil {
		s.log.Error("edit note", logger.String("id", id), logger.Error(err))
		return fmt.Errorf("edit note: %w", err)
	}

	for i := range s.notes {
		if s.notes[i].ID == id {
			update.Apply(&s.notes[i])
			break
		}
	}
	return nil
}

// Delete removes the owner's matching note from the backend and the cache.
func (s *NoteStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Valid() {
		return ErrNotAuthenticated
	}

	if err := s.backend.DeleteNote(s.session.UserID, id); err != nil {
		s.log.Error("delete note", logger.String("id", id), logger.Error(err))
		return fmt.Errorf("delete note: %w", err)
	}

	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			break
		}
	}
	return nil
}
