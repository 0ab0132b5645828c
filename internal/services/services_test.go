package services

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"meloburn/internal/config"
	"meloburn/internal/shared"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Paths.CacheFile = filepath.Join(t.TempDir(), "cache.json")
	cfg.Paths.StagingDir = t.TempDir()
	return cfg
}

func TestNewServiceContainer(t *testing.T) {
	cfg := testConfig(t)

	// Create HTTP client
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	container := NewServiceContainer(cfg, httpClient)

	// Verify all services are initialized
	if container.Config == nil {
		t.Error("Config service not initialized")
	}
	if container.Logger == nil {
		t.Error("Logger service not initialized")
	}
	if container.WarningCollector == nil {
		t.Error("WarningCollector service not initialized")
	}
	if container.Cache == nil {
		t.Error("Cache not initialized")
	}
	if container.Resolver == nil {
		t.Error("Resolver not initialized")
	}
	if container.Extractor == nil {
		t.Error("Extractor not initialized")
	}
	if container.Enricher == nil {
		t.Error("Enricher not initialized")
	}
	if container.Images == nil {
		t.Error("Image service not initialized")
	}
	if container.Organizer == nil {
		t.Error("Organizer not initialized")
	}
	if container.Transfer == nil {
		t.Error("Transfer engine not initialized")
	}
	if container.Volume == nil {
		t.Error("Volume service not initialized")
	}
	if container.Burn == nil {
		t.Error("Burn runner not initialized")
	}
}

func TestNewProvidersDefaultChain(t *testing.T) {
	providers := NewProviders(testConfig(t), nil)

	assertChain(t, "artist by track", names(providers.ArtistByTrack), "theaudiodb", "lastfm", "musicbrainz")
	assertChain(t, "track by artist", names(providers.TrackByArtist), "theaudiodb", "lastfm", "musicbrainz")
	assertChain(t, "album", names(providers.Album), "lastfm", "musicbrainz")
	assertChain(t, "album art", names(providers.AlbumArt), "lastfm", "discogs")
}

func TestNewProvidersOptionalServices(t *testing.T) {
	cfg := testConfig(t)
	cfg.Spotify.ClientID = "id"
	cfg.Spotify.ClientSecret = "secret"
	cfg.Subsonic.URL = "http://navidrome.local/"
	cfg.Subsonic.Username = "user"
	cfg.Subsonic.Password = "pass"

	providers := NewProviders(cfg, nil)

	assertChain(t, "artist by track", names(providers.ArtistByTrack), "theaudiodb", "lastfm", "musicbrainz", "spotify", "subsonic")
	assertChain(t, "album", names(providers.Album), "lastfm", "musicbrainz", "spotify", "subsonic")
	assertChain(t, "album art", names(providers.AlbumArt), "lastfm", "discogs", "spotify")
}

func TestConfigService(t *testing.T) {
	cs := NewConfigService()

	// Test default config creation
	defaultConfig := cs.GetDefaultConfig()
	if defaultConfig.Paths.CacheFile == "" {
		t.Error("Default config should have a cache file")
	}
	if defaultConfig.Organize.CoverMaxSize != config.DefaultCoverMaxSize {
		t.Errorf("Expected cover size %d, got %d", config.DefaultCoverMaxSize, defaultConfig.Organize.CoverMaxSize)
	}

	// Test config validation
	if err := cs.ValidateConfig(defaultConfig); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if err := cs.ValidateConfig(nil); err == nil {
		t.Error("Nil config should be invalid")
	}

	invalidConfig := cs.GetDefaultConfig()
	invalidConfig.Spotify.ClientID = "only-id"
	if err := cs.ValidateConfig(invalidConfig); err == nil {
		t.Error("Spotify id without secret should be invalid")
	}
}

func TestConfigServiceEnsureConfigExists(t *testing.T) {
	cs := NewConfigService()
	path := filepath.Join(t.TempDir(), "meloburn", "config.toml")

	if err := cs.EnsureConfigExists(path); err != nil {
		t.Fatalf("EnsureConfigExists failed: %v", err)
	}
	if !shared.FileExists(path) {
		t.Fatal("Config file should have been created")
	}

	loaded, err := cs.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Providers.TimeoutSeconds != int(config.RequestTimeout/time.Second) {
		t.Errorf("Expected default timeout, got %d", loaded.Providers.TimeoutSeconds)
	}

	// An existing file is left alone
	loaded.Providers.LastFMAPIKey = "kept"
	if err := cs.SaveConfig(path, loaded); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if err := cs.EnsureConfigExists(path); err != nil {
		t.Fatalf("EnsureConfigExists failed: %v", err)
	}
	reloaded, err := cs.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if reloaded.Providers.LastFMAPIKey != "kept" {
		t.Error("Existing config should not be overwritten")
	}
}

func TestConsoleLogger(t *testing.T) {
	logger := NewConsoleLogger()

	// Test debug mode setting
	logger.SetDebugMode(true)
	if !logger.debugMode {
		t.Error("Debug mode should be enabled")
	}

	logger.SetDebugMode(false)
	if logger.debugMode {
		t.Error("Debug mode should be disabled")
	}

	// These should not panic
	logger.Info("Test info message")
	logger.Warning("Test warning message")
	logger.Error("Test error message")
	logger.Debug("Test debug message")
	logger.Success("Test success message")
}

type named interface{ Name() string }

func names[T named](chain []T) []string {
	out := make([]string, 0, len(chain))
	for _, p := range chain {
		out = append(out, p.Name())
	}
	return out
}

func assertChain(t *testing.T, lookup string, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s chain: expected %v, got %v", lookup, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s chain[%d]: expected %s, got %s", lookup, i, want[i], got[i])
		}
	}
}
