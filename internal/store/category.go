package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quirbit/qb/internal/logger"
	"github.com/quirbit/qb/internal/model"
	"github.com/quirbit/qb/internal/storage"
)

// CategoryStore owns the list of category names visible to the current
// user (defaults plus user-defined) and the color assigned to each.
//
// Renaming a default category never mutates the shared default row; a
// user-scoped category with the new name is created instead (shadowing).
// Deleting a category never touches links: orphaned links are a
// presentation concern, handled by model.Link.DisplayCategory.
type CategoryStore struct {
	backend  storage.Backend
	cache    *storage.LocalColorCache
	log      logger.Logger
	defaults []string

	mu      sync.Mutex
	session model.Session
	names   []string          // user-defined categories, sorted
	colors  map[string]string // category name -> color
}

// CategoryStoreParams holds parameters for creating a CategoryStore.
type CategoryStoreParams struct {
	Backend    storage.Backend
	LocalCache *storage.LocalColorCache
	Logger     logger.Logger
	Defaults   []string // optional, uses model.DefaultCategories if nil
}

// NewCategoryStore creates a CategoryStore. The default-category set is
// injected once here; no other code decides what "default" means.
func NewCategoryStore(params CategoryStoreParams) *CategoryStore {
	defaults := params.Defaults
	if defaults == nil {
		defaults = model.DefaultCategories
	}

	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &CategoryStore{
		backend:  params.Backend,
		cache:    params.LocalCache,
		log:      log,
		defaults: defaults,
		colors:   map[string]string{},
	}
}

// SetSession switches the store to a new owner and reloads its state.
// A zero session clears the user-defined set.
func (s *CategoryStore) SetSession(session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	s.names = nil
	s.colors = map[string]string{}

	if !session.Valid() {
		return nil
	}

	categories, err := s.backend.CategoriesForOwner(session.UserID)
	if err != nil {
		s.log.Error("load categories", logger.Error(err))
		return fmt.Errorf("load categories: %w", err)
	}
	for _, c := range categories {
		s.names = append(s.names, c.Name)
	}
	sort.Strings(s.names)

	colors, err := s.backend.ColorsForOwner(session.UserID)
	if err != nil {
		s.log.Error("load category colors", logger.Error(err))
		return fmt.Errorf("load category colors: %w", err)
	}
	for _, c := range colors {
		s.colors[c.Name] = c.Color
	}

	return nil
}

// List returns the sorted, deduplicated union of default and user-defined
// categories. Without a session it returns the default set alone.
func (s *CategoryStore) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *CategoryStore) listLocked() []string {
	seen := map[string]bool{}
	names := []string{}
	for _, name := range s.defaults {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range s.names {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// isDefault reports membership in the injected default set.
// Comparison is exact; no case folding.
func (s *CategoryStore) isDefault(name string) bool {
	for _, d := range s.defaults {
		if d == name {
			return true
		}
	}
	return false
}

// isUserCategory reports membership in the owner's user-defined set.
func (s *CategoryStore) isUserCategory(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// Create adds a user-defined category. The name is trimmed first; empty or
// already-present names fail without touching the backend.
func (s *CategoryStore) Create(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if s.isDefault(name) || s.isUserCategory(name) {
		return ErrDuplicateCategory
	}
	if !s.session.Valid() {
		return ErrNotAuthenticated
	}

	category := model.NewCategory(model.NewCategoryParams{
		OwnerID: s.session.UserID,
		Name:    name,
	})
	if err := s.backend.InsertCategory(category); err != nil {
		s.log.Error("create category", logger.String("name", name), logger.Error(err))
		return fmt.Errorf("create category: %w", err)
	}

	s.names = append(s.names, name)
	sort.Strings(s.names)
	return nil
}

// Rename changes a category's name and cascades the change to the owner's
// links and to the color entry keyed by the old name. Renaming a default
// category shadows it with a user-scoped row; the shared default stays
// untouched for other users.
func (s *CategoryStore) Rename(oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrEmptyName
	}
	if oldName == newName {
		return nil
	}
	if !s.session.Valid() {
		return ErrNotAuthenticated
	}
	if s.isDefault(newName) || s.isUserCategory(newName) {
		return ErrDuplicateCategory
	}

	owner := s.session.UserID

	if s.isDefault(oldName) {
		// Shadow the default with a user-scoped category
		category := model.NewCategory(model.NewCategoryParams{
			OwnerID: owner,
			Name:    newName,
		})
		if err := s.backend.InsertCategory(category); err != nil {
			s.log.Error("shadow default category",
				logger.String("old", oldName), logger.String("new", newName), logger.Error(err))
			return fmt.Errorf("rename category: %w", err)
		}
		s.names = append(s.names, newName)
		sort.Strings(s.names)
	} else {
		if err := s.backend.UpdateCategoryName(owner, oldName, newName); err != nil {
			s.log.Error("rename category",
				logger.String("old", oldName), logger.String("new", newName), logger.Error(err))
			return fmt.Errorf("rename category: %w", err)
		}
		for i, n := range s.names {
			if n == oldName {
				s.names[i] = newName
			}
		}
		sort.Strings(s.names)
	}

	// Cascade to the owner's links carrying the old name
	n, err := s.backend.RenameLinkCategory(owner, oldName, newName)
	if err != nil {
		s.log.Error("cascade rename to links",
			logger.String("old", oldName), logger.String("new", newName), logger.Error(err))
		return fmt.Errorf("rename category links: %w", err)
	}
	if n > 0 {
		s.log.Info("renamed link categories",
			logger.String("old", oldName), logger.String("new", newName), logger.Int("links", n))
	}

	// Re-key the color entry, if any
	if err := s.backend.RenameColor(owner, oldName, newName); err != nil {
		s.log.Error("cascade rename to color",
			logger.String("old", oldName), logger.String("new", newName), logger.Error(err))
		return fmt.Errorf("rename category color: %w", err)
	}
	if color, ok := s.colors[oldName]; ok {
		delete(s.colors, oldName)
		s.colors[newName] = color
	}

	return nil
}

// Delete removes a user-defined category and its color entry. Default
// categories cannot be deleted. Links carrying the name are left alone.
func (s *CategoryStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isDefault(name) {
		return ErrDefaultCategory
	}
	if !s.session.Valid() {
		return ErrNotAuthenticated
	}

	owner := s.session.UserID

	if err := s.backend.DeleteCategory(owner, name); err != nil {
		s.log.Error("delete category", logger.String("name", name), logger.Error(err))
		return fmt.Errorf("delete category: %w", err)
	}
	if err := s.backend.DeleteColor(owner, name); err != nil {
		s.log.Error("delete category color", logger.String("name", name), logger.Error(err))
		return fmt.Errorf("delete category color: %w", err)
	}

	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	delete(s.colors, name)
	return nil
}

// SetColor upserts the (owner, name) -> color mapping. The color string is
// stored as given; no format validation.
func (s *CategoryStore) SetColor(name, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Valid() {
		return ErrNotAuthenticated
	}

	entry := model.CategoryColor{
		OwnerID:   s.session.UserID,
		Name:      name,
		Color:     color,
		UpdatedAt: time.Now(),
	}
	if err := s.backend.UpsertColor(entry); err != nil {
		s.log.Error("set category color", logger.String("name", name), logger.Error(err))
		return fmt.Errorf("set category color: %w", err)
	}

	s.colors[name] = color
	return nil
}

// Colors returns a copy of the current name -> color mapping.
func (s *CategoryStore) Colors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	colors := make(map[string]string, len(s.colors))
	for name, color := range s.colors {
		colors[name] = color
	}
	return colors
}

// MigrateLegacyColors copies the owner's legacy on-disk color cache into
// the backend, at most once. If the backend already has any color rows for
// the owner the migration is skipped: "any rows exist" is treated as
// "already migrated", which also tolerates partial prior runs. A failed
// backend write leaves the local cache intact for retry on next load.
func (s *CategoryStore) MigrateLegacyColors() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Valid() {
		return ErrNotAuthenticated
	}
	if s.cache == nil {
		return nil
	}

	owner := s.session.UserID

	local, err := s.cache.Load(owner)
	if err != nil {
		s.log.Error("read legacy color cache", logger.Error(err))
		return fmt.Errorf("read legacy color cache: %w", err)
	}
	if len(local) == 0 {
		return nil
	}

	remote, err := s.backend.ColorsForOwner(owner)
	if err != nil {
		s.log.Error("check remote colors", logger.Error(err))
		return fmt.Errorf("check remote colors: %w", err)
	}
	if len(remote) > 0 {
		// Already migrated
		return nil
	}

	names := make([]string, 0, len(local))
	for name := range local {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := model.CategoryColor{
			OwnerID:   owner,
			Name:      name,
			Color:     local[name],
			UpdatedAt: time.Now(),
		}
		if err := s.backend.UpsertColor(entry); err != nil {
			s.log.Error("migrate color", logger.String("name", name), logger.Error(err))
			return fmt.Errorf("migrate color %q: %w", name, err)
		}
	}

	if err := s.cache.Delete(owner); err != nil {
		s.log.Error("delete legacy color cache", logger.Error(err))
		return fmt.Errorf("delete legacy color cache: %w", err)
	}

	for name, color := range local {
		s.colors[name] = color
	}
	s.log.Info("migrated legacy colors", logger.Int("count", len(local)))
	return nil
}
