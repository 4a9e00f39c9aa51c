package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when a named snapshot does not exist in a store.
var ErrNotFound = errors.New("session not found")

// Store persists snapshots as JSON files under one directory.
type Store struct {
	basePath  string
	snapshots map[string]*Snapshot
	mu        sync.RWMutex
}

// NewStore creates a store rooted at basePath.
func NewStore(basePath string) *Store {
	return &Store{
		basePath:  basePath,
		snapshots: make(map[string]*Snapshot),
	}
}

// Save writes a snapshot to disk and keeps it in the store.
func (s *Store) Save(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.path(snap.Name), data, 0644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.snapshots[snap.Name] = snap
	return nil
}

// Get returns a loaded snapshot by name.
func (s *Store) Get(name string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[name]
	if !ok {
		return nil, ErrNotFound
	}
	return snap, nil
}

// List returns the loaded snapshot names.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.snapshots))
	for name := range s.snapshots {
		names = append(names, name)
	}
	return names
}

// Delete removes a snapshot from the store and from disk.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[name]; !ok {
		return ErrNotFound
	}
	delete(s.snapshots, name)
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// LoadAll reads every snapshot file under the store's directory.
func (s *Store) LoadAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read session directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			return fmt.Errorf("read session %s: %w", entry.Name(), err)
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("unmarshal session %s: %w", entry.Name(), err)
		}
		s.snapshots[snap.Name] = &snap
	}
	return nil
}

func (s *Store) path(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	return filepath.Join(s.basePath, safe+".json")
}
