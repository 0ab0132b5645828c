package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	providerName = "spotify"
	// DefaultTimeout bounds every call when no timeout is configured
	DefaultTimeout = 10 * time.Second
)

// ErrNotConfigured is returned when no client credentials were provided
var ErrNotConfigured = errors.New("spotify credentials not configured")

type searcher interface {
	Search(ctx context.Context, query string, t spotify.SearchType, opts ...spotify.RequestOption) (*spotify.SearchResult, error)
}

// SpotifyClient looks tracks and albums up in the Spotify catalog using client credentials
type SpotifyClient struct {
	ID     string
	Secret string

	timeout time.Duration
	mu      sync.Mutex
	client  searcher
}

// NewSpotifyClient creates a new spotify client. Token and search calls are each
// bounded by timeout; a zero timeout uses DefaultTimeout.
func NewSpotifyClient(id, secret string, timeout time.Duration) *SpotifyClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SpotifyClient{
		ID:      id,
		Secret:  secret,
		timeout: timeout,
	}
}

// Configured reports whether credentials are present
func (s *SpotifyClient) Configured() bool {
	return s.ID != "" && s.Secret != ""
}

// Name identifies the provider
func (s *SpotifyClient) Name() string {
	return providerName
}

// Authenticate authenticates the client with the spotify api
func (s *SpotifyClient) Authenticate(ctx context.Context) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	config := &clientcredentials.Config{
		ClientID:     s.ID,
		ClientSecret: s.Secret,
		TokenURL:     spotifyauth.TokenURL,
	}
	tokenCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	tokenCtx = context.WithValue(tokenCtx, oauth2.HTTPClient, &http.Client{Timeout: s.timeout})
	token, err := config.Token(tokenCtx)
	if err != nil {
		return fmt.Errorf("spotify authentication failed: %w", err)
	}

	// the search client outlives this call, so it must not inherit tokenCtx
	httpClient := spotifyauth.New().Client(context.Background(), token)
	s.client = spotify.New(httpClient)
	return nil
}

func (s *SpotifyClient) ensureClient(ctx context.Context) (searcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		if err := s.Authenticate(ctx); err != nil {
			return nil, err
		}
	}
	return s.client, nil
}

// ArtistByTrack returns the first artist of the best matching track
func (s *SpotifyClient) ArtistByTrack(ctx context.Context, title string) (string, error) {
	track, err := s.firstTrack(ctx, fmt.Sprintf("track:%s", title))
	if err != nil || track == nil {
		return "", err
	}
	if len(track.Artists) == 0 {
		return "", nil
	}
	return strings.TrimSpace(track.Artists[0].Name), nil
}

// AlbumByTrackArtist returns the album of the best matching track
func (s *SpotifyClient) AlbumByTrackArtist(ctx context.Context, title, artist string) (string, error) {
	track, err := s.firstTrack(ctx, fmt.Sprintf("track:%s artist:%s", title, artist))
	if err != nil || track == nil {
		return "", err
	}
	return strings.TrimSpace(track.Album.Name), nil
}

// AlbumArtURL returns the largest cover of the best matching album
func (s *SpotifyClient) AlbumArtURL(ctx context.Context, artist, album string) (string, error) {
	client, err := s.ensureClient(ctx)
	if err != nil {
		return "", err
	}
	result, err := s.search(ctx, client, fmt.Sprintf("album:%s artist:%s", album, artist), spotify.SearchTypeAlbum)
	if err != nil {
		return "", err
	}
	if result.Albums == nil || len(result.Albums.Albums) == 0 {
		return "", nil
	}
	// Spotify lists images widest first
	for _, image := range result.Albums.Albums[0].Images {
		if image.URL != "" {
			return image.URL, nil
		}
	}
	return "", nil
}

func (s *SpotifyClient) firstTrack(ctx context.Context, query string) (*spotify.FullTrack, error) {
	client, err := s.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.search(ctx, client, query, spotify.SearchTypeTrack)
	if err != nil {
		return nil, err
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, nil
	}
	return &result.Tracks.Tracks[0], nil
}

func (s *SpotifyClient) search(ctx context.Context, client searcher, query string, t spotify.SearchType) (*spotify.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	result, err := client.Search(ctx, query, t, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("spotify search '%s' failed: %w", query, err)
	}
	return result, nil
}
