package interfaces

import (
	"context"

	"meloburn/internal/config"
	"meloburn/internal/shared"
)

// ArtistByTrackFinder is a provider that can name the artist of a track title
type ArtistByTrackFinder interface {
	// Name identifies the provider in logs and warnings
	Name() string

	// ArtistByTrack returns the artist for a title, "" when nothing matched
	ArtistByTrack(ctx context.Context, title string) (string, error)
}

// TrackByArtistFinder is a provider that can suggest a track title for an artist
type TrackByArtistFinder interface {
	Name() string
	TrackByArtist(ctx context.Context, artist string) (string, error)
}

// AlbumFinder is a provider that can name the album a track appears on
type AlbumFinder interface {
	Name() string
	AlbumByTrackArtist(ctx context.Context, track, artist string) (string, error)
}

// AlbumArtFinder is a provider that can locate a cover image URL
type AlbumArtFinder interface {
	Name() string
	AlbumArtURL(ctx context.Context, artist, album string) (string, error)
}

// ResolverService defines the cached, fallback-ordered lookups used during enrichment.
// Every method returns ok=false instead of an error when nothing usable was found.
type ResolverService interface {
	// ResolveArtistByTrack finds the artist for a title
	ResolveArtistByTrack(ctx context.Context, title string) (string, bool)

	// ResolveTrackByArtist finds a representative title for an artist
	ResolveTrackByArtist(ctx context.Context, artist string) (string, bool)

	// ResolveAlbumByTrackArtist finds the album of a track
	ResolveAlbumByTrackArtist(ctx context.Context, track, artist string) (string, bool)

	// ResolveAlbumArtURL finds a cover image URL for an album
	ResolveAlbumArtURL(ctx context.Context, artist, album string) (string, bool)

	// FetchBytes downloads a URL, typically a cover image
	FetchBytes(ctx context.Context, url string) ([]byte, bool)
}

// MetadataExtractor reads tags and technical info from an audio file
type MetadataExtractor interface {
	// Extract returns the raw tags and best-effort audio info. A non-nil error means
	// the tags could not be read; audio info is still filled as far as possible.
	Extract(ctx context.Context, path string) (shared.RawTags, shared.AudioInfo, error)
}

// TrackProcessor turns one source file into an enriched record
type TrackProcessor interface {
	// Process never fails for a single bad file; incomplete reports placeholder metadata.
	// The only error is cancellation.
	Process(ctx context.Context, path string) (record shared.TrackRecord, incomplete bool, err error)
}

// ImageService normalizes cover art before it is written to disk
type ImageService interface {
	// NormalizeCover re-encodes image bytes as JPEG, downscaling past the configured size
	NormalizeCover(data []byte) ([]byte, error)
}

// VolumeService defines the platform-specific operations on the target volume
type VolumeService interface {
	// Format wipes and re-creates a FAT32 filesystem on the volume
	Format(ctx context.Context, identifier string) error

	// Label renames the volume
	Label(ctx context.Context, identifier, name string) error

	// FreeSpace returns the bytes available at path
	FreeSpace(path string) (uint64, error)
}

// ConfigService defines the interface for configuration management
type ConfigService interface {
	// LoadConfig loads configuration from file
	LoadConfig(configFile string) (*config.Config, error)

	// SaveConfig saves configuration to file
	SaveConfig(configFile string, config *config.Config) error

	// ValidateConfig validates configuration settings
	ValidateConfig(config *config.Config) error

	// GetDefaultConfig returns a default configuration
	GetDefaultConfig() *config.Config

	// EnsureConfigExists creates a default config file if it doesn't exist
	EnsureConfigExists(configFile string) error
}

// LoggerService defines the interface for logging operations
type LoggerService interface {
	// Info logs an informational message
	Info(message string, args ...interface{})

	// Warning logs a warning message
	Warning(message string, args ...interface{})

	// Error logs an error message
	Error(message string, args ...interface{})

	// Debug logs a debug message
	Debug(message string, args ...interface{})

	// Success logs a success message
	Success(message string, args ...interface{})

	// SetDebugMode enables or disables debug logging
	SetDebugMode(enabled bool)
}

// WarningCollectorService defines the interface for warning collection
type WarningCollectorService interface {
	// AddProviderWarning records a provider call treated as "no result"
	AddProviderWarning(provider, lookup, details string)

	// AddTagReadWarning records a file whose tags could not be read
	AddTagReadWarning(path, details string)

	// AddIncompleteMetadataWarning records a file left with placeholder metadata
	AddIncompleteMetadataWarning(fileName string)

	// AddCoverArtWarning records a cover art failure
	AddCoverArtWarning(album, details string)

	// AddCopyFailedWarning records a copy failure
	AddCopyFailedWarning(path, details string)

	// AddVolumeWarning records a non-fatal volume operation failure
	AddVolumeWarning(volume, details string)

	// HasWarnings returns true if there are any warnings
	HasWarnings() bool

	// GetWarningCount returns the total number of warnings
	GetWarningCount() int

	// PrintSummary prints a formatted summary of all warnings
	PrintSummary()
}
