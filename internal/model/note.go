package model

import "time"

// Note represents a free-text note, scoped to one owner.
type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNoteParams holds parameters for creating a new Note.
type NewNoteParams struct {
	OwnerID string
	Title   string
	Content string
}

// NewNote creates a Note with generated UUID and timestamp.
func NewNote(params NewNoteParams) Note {
	return Note{
		ID:        GenerateUUID(),
		OwnerID:   params.OwnerID,
		Title:     params.Title,
		Content:   params.Content,
		CreatedAt: time.Now(),
	}
}

// NoteUpdate describes a partial update to a Note.
// Nil fields are left unchanged.
type NoteUpdate struct {
	Title   *string
	Content *string
}

// Apply merges the update into the given note.
func (u NoteUpdate) Apply(n *Note) {
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.Content != nil {
		n.Content = *u.Content
	}
}
