package cache

import (
	"strings"
	"sync"

	"meloburn/internal/interfaces"
	"meloburn/internal/shared"
)

// Table names a mapping inside the store. The values double as JSON field names.
type Table string

const (
	ArtistsByTrack Table = "tracks"    // normalized title -> artist
	TracksByArtist Table = "artists"   // normalized artist -> title
	Albums         Table = "albums"    // normalized "artist_track" -> album
	AlbumArt       Table = "album_art" // normalized "artist_album" -> image URL
)

// Tables lists every table in persistence order
var Tables = []Table{TracksByArtist, ArtistsByTrack, Albums, AlbumArt}

// Snapshot is the persisted shape of the store
type Snapshot struct {
	Artists  map[string]string `json:"artists"`
	Tracks   map[string]string `json:"tracks"`
	Albums   map[string]string `json:"albums"`
	AlbumArt map[string]string `json:"album_art"`
}

// NewSnapshot returns a snapshot with all four tables allocated
func NewSnapshot() Snapshot {
	return Snapshot{
		Artists:  map[string]string{},
		Tracks:   map[string]string{},
		Albums:   map[string]string{},
		AlbumArt: map[string]string{},
	}
}

func (s *Snapshot) table(t Table) map[string]string {
	switch t {
	case TracksByArtist:
		return s.Artists
	case ArtistsByTrack:
		return s.Tracks
	case Albums:
		return s.Albums
	case AlbumArt:
		return s.AlbumArt
	}
	return nil
}

func (s *Snapshot) fillMissing() {
	if s.Artists == nil {
		s.Artists = map[string]string{}
	}
	if s.Tracks == nil {
		s.Tracks = map[string]string{}
	}
	if s.Albums == nil {
		s.Albums = map[string]string{}
	}
	if s.AlbumArt == nil {
		s.AlbumArt = map[string]string{}
	}
}

// Persistence loads and saves snapshots. Implementations decide where they live.
type Persistence interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// Store holds the four lookup tables. Keys are always normalized before use.
type Store struct {
	mu          sync.RWMutex
	data        Snapshot
	persistence Persistence
	logger      interfaces.LoggerService
}

// NewStore loads the persisted tables. A missing or unreadable snapshot starts the store empty.
func NewStore(persistence Persistence, logger interfaces.LoggerService) *Store {
	if logger == nil {
		logger = shared.NopLogger{}
	}
	if persistence == nil {
		persistence = NewMemory()
	}

	s := &Store{
		data:        NewSnapshot(),
		persistence: persistence,
		logger:      logger,
	}

	snapshot, err := persistence.Load()
	if err != nil {
		logger.Warning("Lookup cache could not be loaded, starting empty: %v", err)
		return s
	}
	snapshot.fillMissing()
	s.data = snapshot
	return s
}

// Key joins the normalized forms of parts with "_" the way composite keys are stored.
// It returns "" when any part normalizes to nothing, which makes the lookup uncacheable.
func Key(parts ...string) string {
	normalized := make([]string, 0, len(parts))
	for _, p := range parts {
		n := shared.Normalize(p)
		if n == "" {
			return ""
		}
		normalized = append(normalized, n)
	}
	return strings.Join(normalized, "_")
}

// Get returns the cached value for key in table t. key must already be normalized.
func (s *Store) Get(t Table, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data.table(t)[key]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Put stores value under key and persists the whole store.
// A persistence failure is logged; the in-memory value is kept.
func (s *Store) Put(t Table, key, value string) {
	if key == "" || value == "" {
		return
	}
	s.mu.Lock()
	s.data.table(t)[key] = value
	snapshot := s.copyLocked()
	s.mu.Unlock()

	if err := s.persistence.Save(snapshot); err != nil {
		s.logger.Warning("Failed to persist lookup cache: %v", err)
	}
}

// Len returns the number of entries in table t
func (s *Store) Len(t Table) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.table(t))
}

// Clear empties every table and persists the empty store
func (s *Store) Clear() error {
	s.mu.Lock()
	s.data = NewSnapshot()
	snapshot := s.copyLocked()
	s.mu.Unlock()
	return s.persistence.Save(snapshot)
}

// Snapshot returns a deep copy of the current tables
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() Snapshot {
	out := NewSnapshot()
	for _, t := range Tables {
		dst := out.table(t)
		for k, v := range s.data.table(t) {
			dst[k] = v
		}
	}
	return out
}
