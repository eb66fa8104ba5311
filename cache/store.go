package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/etnz/performance"
)

// MemoryStore keeps encoded snapshots in memory. It is safe for concurrent
// use. Snapshots are stored encoded, so callers never share values.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{data: make(map[string][]byte)} }

func (m *MemoryStore) Get(_ context.Context, key string) (*performance.PortfolioSnapshot, bool, error) {
	m.mu.RLock()
	data, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	s, err := Unmarshal(data)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, s *performance.PortfolioSnapshot) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = data
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored snapshots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// DirStore keeps one file per snapshot in a directory.
type DirStore struct {
	dir string
}

// NewDirStore returns a store in dir, created if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

func (d *DirStore) path(key string) string { return filepath.Join(d.dir, key+".msgpack") }

func (d *DirStore) Get(_ context.Context, key string) (*performance.PortfolioSnapshot, bool, error) {
	data, err := os.ReadFile(d.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cannot read cache entry: %w", err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Put writes to a temporary file first, so readers never see a partial entry.
func (d *DirStore) Put(_ context.Context, key string, s *performance.PortfolioSnapshot) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(d.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create cache entry: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("cannot write cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("cannot write cache entry: %w", err)
	}
	if err := os.Rename(f.Name(), d.path(key)); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("cannot commit cache entry: %w", err)
	}
	return nil
}
