package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

const (
	RequestTimeout       = 10 * time.Second
	MusicBrainzCallDelay = time.Second
	DefaultCoverMaxSize  = 1000
	configRelPath        = "meloburn/config.toml"
	cacheRelPath         = "meloburn/cache.json"
)

// ProviderOptions configures the lookup providers
type ProviderOptions struct {
	LastFMAPIKey           string `toml:"lastfm_api_key"`
	DiscogsToken           string `toml:"discogs_token"`
	UserAgent              string `toml:"user_agent"`
	MusicBrainzUserAgent   string `toml:"musicbrainz_user_agent"`
	TimeoutSeconds         int    `toml:"timeout_seconds"`
	MusicBrainzDelayMillis int    `toml:"musicbrainz_delay_ms"`
}

// SpotifyOptions enables the optional Spotify provider when both fields are set
type SpotifyOptions struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// SubsonicOptions enables the optional Subsonic/Navidrome provider when URL is set
type SubsonicOptions struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// PathOptions holds file locations
type PathOptions struct {
	CacheFile  string `toml:"cache_file"`
	StagingDir string `toml:"staging_dir"`
}

// OrganizeOptions tunes the organizer
type OrganizeOptions struct {
	CoverMaxSize          int      `toml:"cover_max_size"`
	ExtraUnknownSentinels []string `toml:"extra_unknown_sentinels"`
}

// Config is the on-disk configuration
type Config struct {
	Providers ProviderOptions `toml:"providers"`
	Spotify   SpotifyOptions  `toml:"spotify"`
	Subsonic  SubsonicOptions `toml:"subsonic"`
	Paths     PathOptions     `toml:"paths"`
	Organize  OrganizeOptions `toml:"organize"`
	Debug     bool            `toml:"debug"`
}

// DefaultConfig returns a configuration with every default applied
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with their defaults
func (cfg *Config) ApplyDefaults() {
	if cfg.Providers.TimeoutSeconds <= 0 {
		cfg.Providers.TimeoutSeconds = int(RequestTimeout / time.Second)
	}
	if cfg.Providers.MusicBrainzDelayMillis <= 0 {
		cfg.Providers.MusicBrainzDelayMillis = int(MusicBrainzCallDelay / time.Millisecond)
	}
	if cfg.Organize.CoverMaxSize <= 0 {
		cfg.Organize.CoverMaxSize = DefaultCoverMaxSize
	}
	if cfg.Paths.CacheFile == "" {
		cfg.Paths.CacheFile = DefaultCachePath()
	}
	if cfg.Paths.StagingDir == "" {
		cfg.Paths.StagingDir = os.TempDir()
	}
}

// Validate checks the settings that cannot be defaulted
func (cfg *Config) Validate() error {
	if cfg.Providers.TimeoutSeconds <= 0 {
		return errors.New("providers.timeout_seconds must be positive")
	}
	if (cfg.Spotify.ClientID == "") != (cfg.Spotify.ClientSecret == "") {
		return errors.New("spotify.client_id and spotify.client_secret must be set together")
	}
	if cfg.Subsonic.URL != "" && cfg.Subsonic.Username == "" {
		return errors.New("subsonic.username is required when subsonic.url is set")
	}
	return nil
}

// Timeout returns the per-call provider timeout
func (cfg *Config) Timeout() time.Duration {
	return time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
}

// MusicBrainzDelay returns the pause enforced after each MusicBrainz call
func (cfg *Config) MusicBrainzDelay() time.Duration {
	return time.Duration(cfg.Providers.MusicBrainzDelayMillis) * time.Millisecond
}

// DefaultConfigPath returns the XDG config location, falling back to the working directory
func DefaultConfigPath() string {
	path, err := xdg.ConfigFile(configRelPath)
	if err != nil {
		return "config.toml"
	}
	return path
}

// DefaultCachePath returns the XDG cache location for the lookup cache
func DefaultCachePath() string {
	path, err := xdg.CacheFile(cacheRelPath)
	if err != nil {
		return filepath.Join(os.TempDir(), "meloburn_cache.json")
	}
	return path
}

// CreateDirIfNotExists creates a directory if it does not exist
func CreateDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// LoadConfig loads configuration from a TOML file
func LoadConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ApplyDefaults()
	return nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(filePath string, config *Config) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(filePath)
	if err := CreateDirIfNotExists(dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
