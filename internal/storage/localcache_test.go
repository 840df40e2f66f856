package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quirbit/qb/internal/storage"
)

func TestLocalColorCache_LoadMissing(t *testing.T) {
	cache := storage.NewLocalColorCache(t.TempDir())

	colors, err := cache.Load("owner-1")
	if err != nil {
		t.Fatalf("failed to load missing cache: %v", err)
	}
	if len(colors) != 0 {
		t.Errorf("expected empty map for missing cache, got %v", colors)
	}
}

func TestLocalColorCache_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	cache := storage.NewLocalColorCache(dir)

	want := map[string]string{"Blog": "#FF0000", "Recipes": "#00FF00"}
	if err := cache.Save("owner-1", want); err != nil {
		t.Fatalf("failed to save cache: %v", err)
	}

	got, err := cache.Load("owner-1")
	if err != nil {
		t.Fatalf("failed to load cache: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for name, color := range want {
		if got[name] != color {
			t.Errorf("expected %s -> %s, got %s", name, color, got[name])
		}
	}

	// Files are scoped per owner
	other, err := cache.Load("owner-2")
	if err != nil {
		t.Fatalf("failed to load other owner: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected empty cache for other owner, got %v", other)
	}
}

func TestLocalColorCache_Delete(t *testing.T) {
	dir := t.TempDir()
	cache := storage.NewLocalColorCache(dir)

	if err := cache.Save("owner-1", map[string]string{"Blog": "#FF0000"}); err != nil {
		t.Fatalf("failed to save cache: %v", err)
	}
	if err := cache.Delete("owner-1"); err != nil {
		t.Fatalf("failed to delete cache: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "category_colors_owner-1.json")); !os.IsNotExist(err) {
		t.Error("expected cache file to be removed")
	}

	// Deleting again is not an error
	if err := cache.Delete("owner-1"); err != nil {
		t.Errorf("expected no error deleting a missing cache, got %v", err)
	}
}

func TestLocalColorCache_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	cache := storage.NewLocalColorCache(dir)

	path := filepath.Join(dir, "category_colors_owner-1.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	if _, err := cache.Load("owner-1"); err == nil {
		t.Error("expected an error loading a corrupt cache file")
	}
}
