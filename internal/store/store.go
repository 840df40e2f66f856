// Package store holds the domain stores: owner-scoped CRUD with an
// in-memory cache on top of a storage backend. Remote failures never
// escape a store as a panic; every operation returns a normalized error
// and logs what it swallowed.
package store

import "errors"

var (
	// ErrNotAuthenticated is returned when an operation requires a session
	// and none is active. The backend is never called in that case.
	ErrNotAuthenticated = errors.New("not signed in")

	// ErrEmptyName is returned when a category name is empty after trimming.
	ErrEmptyName = errors.New("category name cannot be empty")

	// ErrDuplicateCategory is returned when a category name already exists
	// in either the default or the user-defined set.
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrDefaultCategory is returned when attempting to delete one of the
	// default categories.
	ErrDefaultCategory = errors.New("default categories cannot be deleted")
)
