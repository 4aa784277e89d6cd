// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package keycache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Storage is a handle-addressed blob store. Load reports a missing
// handle as ErrNotFound.
type Storage interface {
	Load(ctx context.Context, handle string) ([]byte, error)
	Store(ctx context.Context, handle string, data []byte) error
	Delete(ctx context.Context, handle string) error
}

// MemoryStorage keeps entries in process memory. Useful for tests and
// one-shot harnesses.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStorage returns an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: map[string][]byte{}}
}

func (s *MemoryStorage) Load(_ context.Context, handle string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.entries[handle]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStorage) Store(_ context.Context, handle string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.entries[handle] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, handle string) error {
	s.mu.Lock()
	delete(s.entries, handle)
	s.mu.Unlock()
	return nil
}

// FileStorage keeps one file per handle under a directory, so cached
// keys survive across processes.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory if needed and returns the
// backend.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("keycache: create %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) path(handle string) string {
	return filepath.Join(s.dir, handle+".bin")
}

func (s *FileStorage) Load(_ context.Context, handle string) ([]byte, error) {
	data, err := os.ReadFile(s.path(handle))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("keycache: read %s: %w", handle, err)
	}
	return data, nil
}

func (s *FileStorage) Store(_ context.Context, handle string, data []byte) error {
	// Write-then-rename so a crashed run never leaves a torn entry.
	tmp := s.path(handle) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("keycache: write %s: %w", handle, err)
	}
	if err := os.Rename(tmp, s.path(handle)); err != nil {
		return fmt.Errorf("keycache: rename %s: %w", handle, err)
	}
	return nil
}

func (s *FileStorage) Delete(_ context.Context, handle string) error {
	err := os.Remove(s.path(handle))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
