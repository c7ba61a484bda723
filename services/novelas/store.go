package novelas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"revius/models"
)

// CatalogStore is the persistence boundary for the novela catalog, so the
// merge logic works unchanged against a file, a memory fs in tests, or any
// other backend.
type CatalogStore interface {
	Load() (models.NovelaCatalog, error)
	Save(models.NovelaCatalog) error
}

// FileCatalogStore persists the catalog as one JSON file. Every save writes a
// backup of the previous file, then replaces the live file atomically via a
// temp file and rename.
type FileCatalogStore struct {
	fs   afero.Fs
	path string
}

// NewFileCatalogStore stores the catalog at path on the OS filesystem.
func NewFileCatalogStore(path string) *FileCatalogStore {
	return NewFileCatalogStoreFS(afero.NewOsFs(), path)
}

// NewFileCatalogStoreFS allows injecting the filesystem (memory-backed in
// tests).
func NewFileCatalogStoreFS(fs afero.Fs, path string) *FileCatalogStore {
	return &FileCatalogStore{fs: fs, path: path}
}

// Load reads the persisted catalog. A missing file yields an empty catalog,
// not an error.
func (s *FileCatalogStore) Load() (models.NovelaCatalog, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if os.IsNotExist(err) {
		return models.NovelaCatalog{Novelas: []models.NovelaRecord{}}, nil
	}
	if err != nil {
		return models.NovelaCatalog{}, fmt.Errorf("read catalog: %w", err)
	}

	var catalog models.NovelaCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return models.NovelaCatalog{}, fmt.Errorf("parse catalog %s: %w", s.path, err)
	}
	if catalog.Novelas == nil {
		catalog.Novelas = []models.NovelaRecord{}
	}
	return catalog, nil
}

// Save backs up the current file, then writes the new catalog to a temp file
// and renames it into place.
func (s *FileCatalogStore) Save(catalog models.NovelaCatalog) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}

	if prev, err := afero.ReadFile(s.fs, s.path); err == nil {
		if err := afero.WriteFile(s.fs, s.path+".bak", prev, 0o644); err != nil {
			return fmt.Errorf("write catalog backup: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write catalog temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}
