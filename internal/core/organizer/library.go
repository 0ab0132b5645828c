package organizer

import (
	"math"
	"sort"

	"meloburn/internal/shared"
)

// Library groups analyzed tracks by artist and album in first-seen order
type Library struct {
	artists []*Artist
	index   map[string]*Artist
	tracks  int
}

// Artist is one top-level folder
type Artist struct {
	Name   string
	Albums []*Album
	index  map[string]*Album
}

// Album is one folder under an artist
type Album struct {
	Name   string
	Tracks []shared.TrackRecord
}

// NewLibrary returns an empty library
func NewLibrary() *Library {
	return &Library{index: make(map[string]*Artist)}
}

// Add files record under its artist and album
func (l *Library) Add(record shared.TrackRecord) {
	artist, ok := l.index[record.Artist]
	if !ok {
		artist = &Artist{Name: record.Artist, index: make(map[string]*Album)}
		l.index[record.Artist] = artist
		l.artists = append(l.artists, artist)
	}
	album, ok := artist.index[record.Album]
	if !ok {
		album = &Album{Name: record.Album}
		artist.index[record.Album] = album
		artist.Albums = append(artist.Albums, album)
	}
	album.Tracks = append(album.Tracks, record)
	l.tracks++
}

// Artists returns the artists in insertion order
func (l *Library) Artists() []*Artist {
	return l.artists
}

// TrackCount returns the number of tracks added
func (l *Library) TrackCount() int {
	return l.tracks
}

// AlbumCount returns the number of distinct artist/album pairs
func (l *Library) AlbumCount() int {
	n := 0
	for _, a := range l.artists {
		n += len(a.Albums)
	}
	return n
}

// SortedTracks orders tracks by track number, unnumbered last, then by title
func (a *Album) SortedTracks() []shared.TrackRecord {
	sorted := make([]shared.TrackRecord, len(a.Tracks))
	copy(sorted, a.Tracks)
	sort.SliceStable(sorted, func(i, j int) bool {
		ni, nj := sortNumber(sorted[i]), sortNumber(sorted[j])
		if ni != nj {
			return ni < nj
		}
		return sorted[i].Title < sorted[j].Title
	})
	return sorted
}

func sortNumber(t shared.TrackRecord) float64 {
	if t.HasTrackNumber() {
		return float64(t.TrackNumber)
	}
	return math.Inf(1)
}
