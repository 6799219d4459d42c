package main

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/markbook/core/session"
	"github.com/trezcool/markbook/core/teacher"
)

// fileStorage keeps the logged in identity in a JSON file.
type fileStorage struct {
	path string
}

var _ session.Storage = (*fileStorage)(nil)

func newFileStorage(path string) *fileStorage {
	return &fileStorage{path: filepath.Clean(path)}
}

// defaultSessionFile is markbook/session.json under the user's config directory.
func defaultSessionFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locating config directory")
	}
	return filepath.Join(dir, "markbook", "session.json"), nil
}

func (s *fileStorage) Load() (teacher.Identity, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return teacher.Identity{}, false, nil
		}
		return teacher.Identity{}, false, errors.Wrap(err, "reading session")
	}
	var id teacher.Identity
	if err = json.Unmarshal(data, &id); err != nil {
		return teacher.Identity{}, false, errors.Wrap(err, "decoding session")
	}
	if id.TeacherID == "" {
		return teacher.Identity{}, false, nil
	}
	return id, true, nil
}

func (s *fileStorage) Save(id teacher.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating session directory")
	}
	return errors.Wrap(os.WriteFile(s.path, data, 0o600), "writing session")
}

func (s *fileStorage) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "removing session")
	}
	return nil
}
