package notify

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage keeps the captured images behind recorded transactions.
type Storage interface {
	// Save writes data under name and returns the path to read it back.
	Save(name string, data []byte) (string, error)
	Get(path string) ([]byte, error)
	Delete(path string) error
}

// LocalStorage implements Storage in a directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates basePath if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// resolve keeps every path inside the base directory.
func (l *LocalStorage) resolve(name string) string {
	return filepath.Join(l.basePath, filepath.Base(name))
}

func (l *LocalStorage) Save(name string, data []byte) (string, error) {
	name = filepath.Base(name)
	if err := os.WriteFile(l.resolve(name), data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return name, nil
}

func (l *LocalStorage) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(l.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

func (l *LocalStorage) Delete(path string) error {
	if err := os.Remove(l.resolve(path)); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
