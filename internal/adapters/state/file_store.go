// Package state implements the job-scoped store that hands values from the
// pre-build phase to the post-build phase.
package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StateStore = (*FileStore)(nil)

// FileStore implements ports.StateStore using a flat JSON file.
// Every Set rewrites the file atomically.
type FileStore struct {
	path   string
	mu     sync.Mutex
	loaded bool
	values map[string]string
}

// NewFileStore creates a store backed by the file at the given path.
// The file is read on first use.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   filepath.Clean(path),
		values: make(map[string]string),
	}
}

// Path returns the location of the record.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value recorded under name, or "" if there is none.
func (s *FileStore) Get(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return "", err
	}
	return s.values[name], nil
}

// Set records value under name.
func (s *FileStore) Set(name, value string) error {
	if name == "" {
		return domain.ErrInvalidStateName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	s.values[name] = value
	return s.save()
}

// Clear removes the record file. A corrupt record is removed as well.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, domain.ErrStateWriteFailed.Error()), "path", s.path)
	}

	s.values = make(map[string]string)
	s.loaded = true
	return nil
}

// load reads the file once. A missing or empty file is an empty record.
// The caller holds mu.
func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.loaded = true
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrStateReadFailed.Error()), "path", s.path)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.values); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrStateUnmarshalFailed.Error()), "path", s.path)
		}
	}

	s.loaded = true
	return nil
}

// save writes the record. The caller holds mu.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStateWriteFailed.Error())
	}

	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStateWriteFailed.Error()), "path", s.path)
	}

	if err := renameio.WriteFile(s.path, data, domain.PrivateFilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStateWriteFailed.Error()), "path", s.path)
	}

	return nil
}
