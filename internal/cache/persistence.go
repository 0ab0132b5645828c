package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// JSONFile persists snapshots as a JSON document. Saves write a temp file and rename it over the old one.
type JSONFile struct {
	Path string
}

// NewJSONFile returns file persistence rooted at path
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

// Load reads the snapshot. A missing file is not an error.
func (f *JSONFile) Load() (Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewSnapshot(), nil
		}
		return Snapshot{}, fmt.Errorf("read cache file: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("parse cache file: %w", err)
	}
	snapshot.fillMissing()
	return snapshot, nil
}

// Save writes the snapshot atomically
func (f *JSONFile) Save(snapshot Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.Path), filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

// Memory keeps snapshots in process memory; used by tests and dry runs.
type Memory struct {
	mu       sync.Mutex
	snapshot Snapshot
	Saves    int
}

// NewMemory returns empty in-memory persistence
func NewMemory() *Memory {
	return &Memory{snapshot: NewSnapshot()}
}

// NewMemoryWith returns in-memory persistence preloaded with snapshot
func NewMemoryWith(snapshot Snapshot) *Memory {
	snapshot.fillMissing()
	return &Memory{snapshot: snapshot}
}

func (m *Memory) Load() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot, nil
}

func (m *Memory) Save(snapshot Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
	m.Saves++
	return nil
}
