package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalColorCache is the deprecated on-disk store for category colors,
// one JSON file per owner. It is only read during migration into the
// backend and deleted once the migration has succeeded.
type LocalColorCache struct {
	dir string
}

// NewLocalColorCache creates a cache rooted at the given directory.
func NewLocalColorCache(dir string) *LocalColorCache {
	return &LocalColorCache{dir: dir}
}

// path returns the cache file for an owner: category_colors_<ownerID>.json
func (c *LocalColorCache) path(ownerID string) string {
	return filepath.Join(c.dir, fmt.Sprintf("category_colors_%s.json", ownerID))
}

// Load reads the owner's cached name -> color mapping.
// Returns an empty map if no cache file exists.
func (c *LocalColorCache) Load(ownerID string) (map[string]string, error) {
	data, err := os.ReadFile(c.path(ownerID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	colors := map[string]string{}
	if err := json.Unmarshal(data, &colors); err != nil {
		return nil, err
	}
	return colors, nil
}

// Save writes the owner's name -> color mapping.
// Creates the directory if it doesn't exist.
func (c *LocalColorCache) Save(ownerID string, colors map[string]string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(colors, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.path(ownerID), data, 0644)
}

// Delete removes the owner's cache file. Deleting a missing file is not an
// error.
func (c *LocalColorCache) Delete(ownerID string) error {
	err := os.Remove(c.path(ownerID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
