package dashboard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const snapshotVersion = "1"

// DefaultSnapshotPath is the fallback location for the dashboard snapshot.
const DefaultSnapshotPath = "finance_dashboard_state.json"

type snapshotDocument struct {
	Version string   `json:"version"`
	Widgets []Widget `json:"widgets"`
}

// FileSnapshotStore persists the widget configuration as a single JSON
// document. Writes go through a temp file and rename so a crash never
// leaves a torn snapshot behind.
type FileSnapshotStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSnapshotStore builds a store writing to path, or to
// DefaultSnapshotPath when path is empty.
func NewFileSnapshotStore(path string) *FileSnapshotStore {
	if path == "" {
		path = DefaultSnapshotPath
	}
	return &FileSnapshotStore{path: path}
}

// Load reads the snapshot. A missing file yields an empty widget set.
func (s *FileSnapshotStore) Load() ([]Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dashboard: read snapshot %s: %w", s.path, err)
	}
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("dashboard: parse snapshot %s: %w", s.path, err)
	}
	return doc.Widgets, nil
}

// Save writes the widget configuration. Fetched data is never persisted.
func (s *FileSnapshotStore) Save(widgets []Widget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := snapshotDocument{Version: snapshotVersion, Widgets: widgets}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("dashboard: encode snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("dashboard: create snapshot dir: %w", err)
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("dashboard: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("dashboard: replace snapshot: %w", err)
	}
	return nil
}

// MemorySnapshotStore keeps snapshots in memory, for tests and demos.
type MemorySnapshotStore struct {
	mu      sync.Mutex
	widgets []Widget
	saves   int
}

// NewMemorySnapshotStore builds an empty in-memory store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

func (s *MemorySnapshotStore) Load() ([]Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Widget, len(s.widgets))
	copy(out, s.widgets)
	return out, nil
}

func (s *MemorySnapshotStore) Save(widgets []Widget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widgets = make([]Widget, len(widgets))
	copy(s.widgets, widgets)
	s.saves++
	return nil
}

// Saves reports how many times Save ran.
func (s *MemorySnapshotStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
