package storage

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/quirbit/qb/internal/model"
)

// ErrRateLimited is returned by InsertLink when the owner has exceeded the
// submission threshold. Callers are expected to surface it distinctly from
// generic failures.
var ErrRateLimited = errors.New("too many submissions, try again in a minute")

// ErrNotFound is returned when an owner-scoped row does not exist.
var ErrNotFound = errors.New("row not found")

// Backend is the persistence surface the stores talk to. Every query is
// scoped to an owner; no call ever returns another owner's rows.
type Backend interface {
	// SignIn resolves an email to a session, creating the profile row on
	// first sign-in.
	SignIn(email string) (model.Session, error)

	// DefaultCategories returns the shared default category list, readable
	// without a session.
	DefaultCategories() ([]string, error)

	CategoriesForOwner(ownerID string) ([]model.Category, error)
	InsertCategory(c model.Category) error
	UpdateCategoryName(ownerID, oldName, newName string) error
	DeleteCategory(ownerID, name string) error

	ColorsForOwner(ownerID string) ([]model.CategoryColor, error)
	UpsertColor(c model.CategoryColor) error
	RenameColor(ownerID, oldName, newName string) error
	DeleteColor(ownerID, name string) error

	// LinksForOwner returns the owner's links ordered by creation time
	// descending.
	LinksForOwner(ownerID string) ([]model.Link, error)
	InsertLink(l model.Link) error
	UpdateLink(ownerID, id string, update model.LinkUpdate) error
	DeleteLink(ownerID, id string) error
	// RenameLinkCategory bulk-updates the owner's links carrying oldName and
	// returns the number of rows changed.
	RenameLinkCategory(ownerID, oldName, newName string) (int, error)

	NotesForOwner(ownerID string) ([]model.Note, error)
	InsertNote(n model.Note) error
	UpdateNote(ownerID, id string, update model.NoteUpdate) error
	DeleteNote(ownerID, id string) error

	Close() error
}

// DefaultDataDir returns the application data directory: ~/.config/qb
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "qb"), nil
}

// DefaultSQLitePath returns the default database path: ~/.config/qb/qb.db
func DefaultSQLitePath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "qb.db"), nil
}

// DefaultLogPath returns the default log file path: ~/.config/qb/qb.log
func DefaultLogPath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "qb.log"), nil
}
