package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a single-namespace Storage kept in one JSON document on disk.
// Used by the CLI, where one user owns the whole namespace just like a
// browser owns its localStorage.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a File storage at path. The parent directory is created
// on the first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the location of the backing file.
func (f *File) Path() string { return f.path }

func (f *File) GetItem(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.read()
	if err != nil {
		return "", err
	}
	return items[key], nil
}

func (f *File) SetItem(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.read()
	if err != nil {
		return err
	}
	items[key] = value
	return f.write(items)
}

func (f *File) RemoveItem(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return f.write(items)
}

// read loads the document; a missing file is an empty namespace.
func (f *File) read() (map[string]string, error) {
	items := make(map[string]string)
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	if len(b) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", f.path, err)
	}
	return items, nil
}

// write replaces the document via a temp file and rename so a crash never
// leaves a half-written token behind.
func (f *File) write(items map[string]string) error {
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(name, f.path)
}

var _ Storage = (*File)(nil)
