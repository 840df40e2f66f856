package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/quirbit/qb/internal/logger"
	"github.com/quirbit/qb/internal/model"
	"github.com/quirbit/qb/internal/storage"
)

// LinkStore provides owner-scoped CRUD over links with a read-through
// in-memory cache. Successful mutations update the cache optimistically
// without a re-fetch; changes made elsewhere show up on the next Load.
type LinkStore struct {
	backend storage.Backend
	log     logger.Logger

	mu      sync.Mutex
	session model.Session
	links   []model.Link // newest first
}

// LinkStoreParams holds parameters for creating a LinkStore.
type LinkStoreParams struct {
	Backend storage.Backend
	Logger  logger.Logger
}

// NewLinkStore creates a LinkStore.
func NewLinkStore(params LinkStoreParams) *LinkStore {
	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &LinkStore{
		backend: params.Backend,
		log:     log,
	}
}

// SetSession switches the store to a new owner. The cache is cleared; call
// Load to populate it.
func (s *LinkStore) SetSession(session model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.links = nil
}

// Load fetches all of the owner's links, newest first, and replaces the
// cache wholesale. On failure the cache is left empty and the error is
// returned; there is no automatic retry.
func (s *LinkStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.links = nil
	if !s.session.Valid() {
		return ErrNotAuthenticated
	}

	links, err := s.backend.LinksForOwner(s.session.UserID)
	if err != nil {
		s.log.Error("load links", logger.Error(err))
		return fmt.Errorf("load links: %w", err)
	}

	s.links = links
	return nil
}

// Links returns a copy of the cached links, newest first.
func (s *LinkStore) Links() []model.Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := make([]model.Link, len(s.links))
	copy(links, s.links)
	return links
}

// Add persists a new link and prepends it to the cache. The title is
// stored as given; callers validate it before reaching the store. A
// rate-limited insert is reported distinctly via storage.ErrRateLimited.
func (s *LinkStore) Add(title, url, category string, notes *string) (model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Valid() {
		return model.Link{}, ErrNotAuthenticated
	}

	link := model.NewLink(model.NewLinkParams{
		OwnerID:  s.session.UserID,
		Title:    title,
		URL:      url,
		Category: category,
		Notes:    notes,
	})

	if err := s.backend.InsertLink(link); err != nil {
		if errors.Is(err, storage.ErrRateLimited) {
			s.log.Warn("link submission rate limited")
			return model.Link{}, fmt.Errorf("add link: %w", err)
		}
		s.log.Error("add link", logger.String("url", link.URL), logger.Error(err))
		return model.Link{}, fmt.Errorf("add link: %w", err)
	}

	s.links = append([]model.Link{link}, s.links...)
	return link, nil
}

// Edit applies a partial update to the owner's matching link and merges it
// into the cache. ID, owner and creation time are immutable.
func (s *LinkStore) Edit(id string, update model.LinkUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Valid() {
		return ErrNotAuthenticated
	}

	if err := s.backend.UpdateLink(s.session.UserID, id, update); err != nil {
		s.log.Error("edit link", logger.String("id", id), logger.Error(err))
		return fmt.Errorf("edit link: %w", err)
	}

	for i := range s.links {
		if s.links[i].ID == id {
			update.Apply(&s.links[i])
			break
		}
	}
	return nil
}

// Delete removes the owner's matching link from the backend and the cache.
func (s *LinkStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Valid() {
		return ErrNotAuthenticated
	}

	if err := s.backend.DeleteLink(s.session.UserID, id); err != nil {
		s.log.Error("delete link", logger.String("id", id), logger.Error(err))
		return fmt.Errorf("delete link: %w", err)
	}

	for i := range s.links {
		if s.links[i].ID == id {
			s.links = append(s.links[:i], s.links[i+1:]...)
			break
		}
	}
	return nil
}
