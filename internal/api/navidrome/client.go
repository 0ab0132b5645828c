package navidrome

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	subsonic "github.com/delucks/go-subsonic"
)

const (
	providerName = "subsonic"
	clientName   = "meloburn"
	songCount    = "10"
	// DefaultTimeout bounds every call when no timeout is configured
	DefaultTimeout = 10 * time.Second
)

// ErrNotConfigured is returned when no server URL was provided
var ErrNotConfigured = errors.New("subsonic server not configured")

type searcher interface {
	Search2(query string, parameters map[string]string) (*subsonic.SearchResult2, error)
}

// NavidromeClient looks tracks up on a Subsonic compatible server such as Navidrome
type NavidromeClient struct {
	URL      string
	Username string
	Password string

	timeout    time.Duration
	httpClient *http.Client
	mu         sync.Mutex
	client     searcher
}

// NewNavidromeClient creates a new navidrome client. Every server call is bounded by
// timeout; a zero timeout uses DefaultTimeout.
func NewNavidromeClient(url, username, password string, timeout time.Duration, httpClient *http.Client) *NavidromeClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := &http.Client{}
	if httpClient != nil {
		copied := *httpClient
		hc = &copied
	}
	if hc.Timeout <= 0 || hc.Timeout > timeout {
		hc.Timeout = timeout
	}
	return &NavidromeClient{
		URL:        strings.TrimRight(url, "/"),
		Username:   username,
		Password:   password,
		timeout:    timeout,
		httpClient: hc,
	}
}

// Configured reports whether a server was set up
func (n *NavidromeClient) Configured() bool {
	return n.URL != "" && n.Username != ""
}

// Name identifies the provider
func (n *NavidromeClient) Name() string {
	return providerName
}

// Authenticate authenticates the client with the subsonic api
func (n *NavidromeClient) Authenticate(ctx context.Context) error {
	if !n.Configured() {
		return ErrNotConfigured
	}
	client := &subsonic.Client{
		Client:     n.httpClient,
		BaseUrl:    n.URL,
		User:       n.Username,
		ClientName: clientName,
	}
	_, err := bounded(ctx, n.timeout, func() (struct{}, error) {
		return struct{}{}, client.Authenticate(n.Password)
	})
	if err != nil {
		return fmt.Errorf("subsonic authentication failed: %w", err)
	}
	n.client = client
	return nil
}

// ArtistByTrack returns the artist of the song whose title is closest to title
func (n *NavidromeClient) ArtistByTrack(ctx context.Context, title string) (string, error) {
	song, err := n.closestSong(ctx, title, title, "")
	if err != nil || song == nil {
		return "", err
	}
	return strings.TrimSpace(song.Artist), nil
}

// AlbumByTrackArtist returns the album of the closest song by artist
func (n *NavidromeClient) AlbumByTrackArtist(ctx context.Context, track, artist string) (string, error) {
	song, err := n.closestSong(ctx, fmt.Sprintf("%s %s", track, artist), track, artist)
	if err != nil || song == nil {
		return "", err
	}
	return strings.TrimSpace(song.Album), nil
}

// closestSong runs a search2 query and picks the song with the smallest title distance.
// When artist is set, songs by other artists are ignored.
func (n *NavidromeClient) closestSong(ctx context.Context, query, title, artist string) (*subsonic.Child, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client, err := n.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	params := map[string]string{"songCount": songCount, "artistCount": "0", "albumCount": "0"}
	result, err := bounded(ctx, n.timeout, func() (*subsonic.SearchResult2, error) {
		return client.Search2(query, params)
	})
	if err != nil {
		return nil, fmt.Errorf("error searching for track '%s': %w", title, err)
	}
	if result == nil {
		return nil, nil
	}

	var best *subsonic.Child
	bestDistance := -1
	for _, song := range result.Song {
		if song == nil {
			continue
		}
		if artist != "" && !strings.EqualFold(strings.TrimSpace(song.Artist), strings.TrimSpace(artist)) {
			continue
		}
		distance := levenshtein.ComputeDistance(strings.ToLower(song.Title), strings.ToLower(title))
		if bestDistance < 0 || distance < bestDistance {
			best, bestDistance = song, distance
		}
	}
	return best, nil
}

func (n *NavidromeClient) ensureClient(ctx context.Context) (searcher, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.client == nil {
		if err := n.Authenticate(ctx); err != nil {
			return nil, err
		}
	}
	return n.client, nil
}

// bounded runs call on its own goroutine and gives up once ctx is done or timeout
// has passed. go-subsonic takes no context, so an abandoned call ends with the
// http.Client timeout.
func bounded[T any](ctx context.Context, timeout time.Duration, call func() (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := call()
		done <- result{value, err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
