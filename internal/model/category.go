package model

import "time"

// DefaultCategories is the fixed set of category names available to every
// user without explicit creation. Membership in this list is what makes a
// category "default"; there is no stored flag.
var DefaultCategories = []string{"Blog", "Tutorial", "Video", "Article", "Other"}

// FallbackCategory is where orphaned links are presented after their
// category is deleted.
const FallbackCategory = "Other"

// IsDefaultCategory reports whether name is one of the default categories.
// Comparison is exact; no case folding.
func IsDefaultCategory(name string) bool {
	for _, d := range DefaultCategories {
		if d == name {
			return true
		}
	}
	return false
}

// Category represents a user-defined category, scoped to one owner.
// Default categories are not Category rows; they live in a shared list
// readable by all users.
type Category struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewCategoryParams holds parameters for creating a new Category.
type NewCategoryParams struct {
	OwnerID string
	Name    string
}

// NewCategory creates a Category with generated UUID and timestamp.
func NewCategory(params NewCategoryParams) Category {
	return Category{
		ID:        GenerateUUID(),
		OwnerID:   params.OwnerID,
		Name:      params.Name,
		CreatedAt: time.Now(),
	}
}

// CategoryColor is a color assigned to a category name, keyed by
// (owner, name). The reference to the category is by name only.
type CategoryColor struct {
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	UpdatedAt time.Time `json:"updatedAt"`
}
