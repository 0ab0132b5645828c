package commands

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meloburn/internal/config"
	"meloburn/internal/shared"
)

func TestRunWithProgressReturnsWorkError(t *testing.T) {
	boom := errors.New("boom")
	err := runWithProgress(context.Background(), shared.NopLogger{}, func(ctx context.Context, onProgress shared.ProgressFunc) error {
		onProgress(1, 2, shared.StageAnalyzing)
		onProgress(2, 2, shared.StageAnalyzing)
		onProgress(1, 1, shared.StageOrganizing)
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRunWithProgressCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runWithProgress(ctx, shared.NopLogger{}, func(ctx context.Context, onProgress shared.ProgressFunc) error {
		for i := 0; i < 1000; i++ {
			onProgress(i, 1000, shared.StageCopying)
		}
		return shared.CheckCancelled(ctx)
	})
	assert.ErrorIs(t, err, shared.ErrCancelled)
}

func TestMaskSecrets(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers.LastFMAPIKey = "key"
	cfg.Spotify.ClientID = "id"
	cfg.Spotify.ClientSecret = "secret"

	masked := maskSecrets(*cfg)
	assert.Equal(t, maskedSecret, masked.Providers.LastFMAPIKey)
	assert.Equal(t, maskedSecret, masked.Spotify.ClientSecret)
	assert.Equal(t, "id", masked.Spotify.ClientID)
	assert.Empty(t, masked.Providers.DiscogsToken)
	assert.Equal(t, "key", cfg.Providers.LastFMAPIKey, "original must be untouched")
}

func TestProbeTagsKeepsPerFileErrors(t *testing.T) {
	var calls int32
	extract := func(ctx context.Context, path string) (shared.RawTags, shared.AudioInfo, error) {
		atomic.AddInt32(&calls, 1)
		if filepath.Base(path) == "broken.mp3" {
			return shared.RawTags{}, shared.AudioInfo{Format: "MP3"}, errors.New("no tag")
		}
		return shared.RawTags{Artist: "Caetano Veloso", Title: "Alegria, Alegria", Date: "1968-01-01", TrackNumber: 3}, shared.AudioInfo{Format: "MP3"}, nil
	}

	paths := []string{"a/good.mp3", "a/broken.mp3"}
	rows := make([]probeRow, len(paths))
	require.NoError(t, probeTags(context.Background(), extract, paths, rows))

	assert.EqualValues(t, 2, calls)
	assert.Equal(t, "Caetano Veloso", rows[0].record.Artist)
	assert.Equal(t, "1968", rows[0].record.Year)
	assert.Equal(t, 3, rows[0].record.TrackNumber)
	assert.Error(t, rows[1].err)
	assert.Equal(t, "a/broken.mp3", rows[1].path)
}

func TestProbeTagsCancelled(t *testing.T) {
	extract := func(ctx context.Context, path string) (shared.RawTags, shared.AudioInfo, error) {
		return shared.RawTags{}, shared.AudioInfo{}, shared.ErrCancelled
	}
	rows := make([]probeRow, 1)
	err := probeTags(context.Background(), extract, []string{"x.mp3"}, rows)
	assert.ErrorIs(t, err, shared.ErrCancelled)
}

func TestConfigInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meloburn", "config.toml")

	rootCmd := NewRootCommand("test")
	rootCmd.SetArgs([]string{"--config", path, "config", "init"})
	require.NoError(t, rootCmd.Execute())
	require.True(t, shared.FileExists(path))

	loaded := &config.Config{}
	require.NoError(t, config.LoadConfig(path, loaded))
	assert.Equal(t, config.DefaultCoverMaxSize, loaded.Organize.CoverMaxSize)
}

func TestTransferRejectsUnknownMode(t *testing.T) {
	rootCmd := NewRootCommand("test")
	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "config.toml"), "transfer", "--mode", "shred", "a", "b"})
	assert.Error(t, rootCmd.Execute())
}

func TestSyncLabelRequiresDevice(t *testing.T) {
	rootCmd := NewRootCommand("test")
	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "config.toml"), "sync", "--label", "CAR", "a", "b"})
	assert.EqualError(t, rootCmd.Execute(), "--label requires --device")
}
