// Package kv is a small string key-value store kept in one JSON file,
// the local persistence of the session gate.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) (*File, error) {
	const op = "storage.kv.NewFile"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &File{path: path}, nil
}

// Get returns value by key. Missing key is not an error.
func (f *File) Get(key string) ([]byte, bool, error) {
	const op = "storage.kv.Get"

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	v, ok := entries[key]
	if !ok {
		return nil, false, nil
	}

	return []byte(v), true, nil
}

func (f *File) Set(key string, value []byte) error {
	const op = "storage.kv.Set"

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	entries[key] = string(value)

	if err := f.save(entries); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Delete removes key. Missing key is not an error.
func (f *File) Delete(key string) error {
	const op = "storage.kv.Delete"

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)

	if err := f.save(entries); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (f *File) load() (map[string]string, error) {
	entries := make(map[string]string)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corrupted store %s: %w", f.path, err)
	}

	return entries, nil
}

// save replaces the file atomically.
func (f *File) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.path)
}
