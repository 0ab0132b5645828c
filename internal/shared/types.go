package shared

import "time"

// Placeholder is the literal used for any artist, album or title that could not be resolved.
const Placeholder = "Unknown"

// Progress stage labels reported to ProgressFunc.
const (
	StageAnalyzing  = "Analyzing files"
	StageOrganizing = "Organizing files"
	StageCopying    = "Copying to volume"
)

// SupportedExtensions lists the lower-cased audio extensions the organizer picks up.
var SupportedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".aac":  true,
	".ogg":  true,
	".m4a":  true,
	".wma":  true,
}

// AudioInfo holds best-effort technical details about an audio file
type AudioInfo struct {
	Bitrate       int           // kbps
	SampleRate    int           // Hz
	Channels      int
	BitsPerSample int
	Duration      time.Duration
	Format        string // container label, e.g. "FLAC"
	Size          int64  // bytes
}

// RawTags holds the tag values read from a file before any cleanup.
// Empty strings and a zero TrackNumber mean the field was absent.
type RawTags struct {
	Artist      string
	Album       string
	Title       string
	Date        string
	Genre       string
	TrackNumber int
	Picture     []byte
}

// TrackRecord is the enriched description of one source audio file
type TrackRecord struct {
	SourcePath  string
	Artist      string
	Album       string
	Title       string
	Year        string
	Genre       string
	TrackNumber int // 0 means absent
	AlbumArt    []byte
	AudioInfo   AudioInfo
	Language    string
}

// HasTrackNumber reports whether the record carries a positive track number
func (t TrackRecord) HasTrackNumber() bool {
	return t.TrackNumber > 0
}

// ProgressFunc receives (current, total, stage) after every unit of work.
type ProgressFunc func(current, total int, stage string)

// Report calls fn if it is set.
func (fn ProgressFunc) Report(current, total int, stage string) {
	if fn != nil {
		fn(current, total, stage)
	}
}
