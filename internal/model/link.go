package model

import (
	"strings"
	"time"
)

// Link represents a saved URL with metadata, scoped to one owner.
type Link struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Category  string    `json:"category"`
	Notes     *string   `json:"notes"` // nil = no notes
	CreatedAt time.Time `json:"createdAt"`
}

// NewLinkParams holds parameters for creating a new Link.
type NewLinkParams struct {
	OwnerID  string
	Title    string
	URL      string
	Category string
	Notes    *string
}

// NewLink creates a Link with generated UUID and timestamp.
// The URL is normalized to always carry a scheme.
func NewLink(params NewLinkParams) Link {
	return Link{
		ID:        GenerateUUID(),
		OwnerID:   params.OwnerID,
		Title:     params.Title,
		URL:       NormalizeURL(params.URL),
		Category:  params.Category,
		Notes:     params.Notes,
		CreatedAt: time.Now(),
	}
}

// LinkUpdate describes a partial update to a Link.
// Nil fields are left unchanged. ID, OwnerID and CreatedAt are immutable.
type LinkUpdate struct {
	Title    *string
	URL      *string
	Category *string
	Notes    *string // pointer to empty string clears the notes
}

// Apply merges the update into the given link.
func (u LinkUpdate) Apply(l *Link) {
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.URL != nil {
		l.URL = NormalizeURL(*u.URL)
	}
	if u.Category != nil {
		l.Category = *u.Category
	}
	if u.Notes != nil {
		if *u.Notes == "" {
			l.Notes = nil
		} else {
			notes := *u.Notes
			l.Notes = &notes
		}
	}
}

// HasNotes reports whether the link carries non-empty notes.
func (l Link) HasNotes() bool {
	return l.Notes != nil && strings.TrimSpace(*l.Notes) != ""
}

// DisplayCategory returns the category name to present for this link.
// Links whose category no longer exists are shown under the fallback
// category. This is a presentation policy only; the stored row keeps its
// original category value.
func (l Link) DisplayCategory(known []string) string {
	if l.Category == "" {
		return FallbackCategory
	}
	for _, name := range known {
		if name == l.Category {
			return l.Category
		}
	}
	return FallbackCategory
}

// NormalizeURL ensures the URL carries a scheme, defaulting to https.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.Contains(raw, "://") {
		return "https://" + raw
	}
	return raw
}
