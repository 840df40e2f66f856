package model

import "time"

// The Search* methods below satisfy the search engine's Item contract for
// both Links and Notes, so one engine serves every list screen.

// SearchID returns the link's identifier.
func (l Link) SearchID() string { return l.ID }

// SearchTitle returns the link's title.
func (l Link) SearchTitle() string { return l.Title }

// SearchTexts returns the candidate fields for text matching, in order.
func (l Link) SearchTexts() []string {
	texts := []string{l.Title, l.URL}
	if l.Notes != nil {
		texts = append(texts, *l.Notes)
	}
	return texts
}

// SearchCategory returns the link's category name.
func (l Link) SearchCategory() string { return l.Category }

// SearchNotes returns the link's notes, or "" when absent.
func (l Link) SearchNotes() string {
	if l.Notes == nil {
		return ""
	}
	return *l.Notes
}

// SearchCreatedAt returns the link's creation time.
func (l Link) SearchCreatedAt() time.Time { return l.CreatedAt }

// SearchID returns the note's identifier.
func (n Note) SearchID() string { return n.ID }

// SearchTitle returns the note's title.
func (n Note) SearchTitle() string { return n.Title }

// SearchTexts returns the candidate fields for text matching, in order.
func (n Note) SearchTexts() []string { return []string{n.Title, n.Content} }

// SearchCategory returns ""; notes are uncategorized.
func (n Note) SearchCategory() string { return "" }

// SearchNotes returns ""; notes have no attached notes field.
func (n Note) SearchNotes() string { return "" }

// SearchCreatedAt returns the note's creation time.
func (n Note) SearchCreatedAt() time.Time { return n.CreatedAt }
