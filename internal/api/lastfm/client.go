package lastfm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"meloburn/internal/api/webclient"
)

const (
	defaultBaseURL   = "http://ws.audioscrobbler.com/2.0/"
	defaultRateLimit = 200 * time.Millisecond // Last.fm asks for at most 5 requests per second
	providerName     = "lastfm"
	coverImageSize   = "extralarge"
)

// Config holds configuration for the Last.fm client
type Config struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	RateLimit time.Duration
}

// Client wraps the Last.fm 2.0 JSON API
type Client struct {
	web    *webclient.Client
	config Config
}

// APIError is a Last.fm error payload delivered with a 200 status
type APIError struct {
	Code    int64
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("last.fm error %d: %s", e.Code, e.Message)
}

// DefaultConfig returns the public endpoint without an API key
func DefaultConfig() Config {
	web := webclient.DefaultConfig()
	return Config{
		BaseURL:   defaultBaseURL,
		UserAgent: web.UserAgent,
		Timeout:   web.Timeout,
		RateLimit: defaultRateLimit,
	}
}

// NewClient creates a Last.fm client
func NewClient(config Config, httpClient *http.Client) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Client{
		web: webclient.New(webclient.Config{
			UserAgent:  config.UserAgent,
			Timeout:    config.Timeout,
			RateLimit:  config.RateLimit,
			BurstLimit: 1,
		}, httpClient),
		config: config,
	}
}

// Name identifies the provider
func (c *Client) Name() string {
	return providerName
}

// ArtistByTrack uses track.search and returns the first match's artist
func (c *Client) ArtistByTrack(ctx context.Context, title string) (string, error) {
	doc, err := c.call(ctx, "track.search", url.Values{"track": {title}})
	if err != nil {
		return "", err
	}
	return firstOf(doc.Get("results.trackmatches.track"), "artist"), nil
}

// TrackByArtist uses artist.getTopTracks and returns the most played title
func (c *Client) TrackByArtist(ctx context.Context, artist string) (string, error) {
	doc, err := c.call(ctx, "artist.getTopTracks", url.Values{"artist": {artist}})
	if err != nil {
		return "", err
	}
	return firstOf(doc.Get("toptracks.track"), "name"), nil
}

// AlbumByTrackArtist uses track.getInfo and returns the album title
func (c *Client) AlbumByTrackArtist(ctx context.Context, track, artist string) (string, error) {
	doc, err := c.call(ctx, "track.getInfo", url.Values{"track": {track}, "artist": {artist}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Get("track.album.title").String()), nil
}

// AlbumArtURL uses album.getinfo and returns the extralarge image
func (c *Client) AlbumArtURL(ctx context.Context, artist, album string) (string, error) {
	doc, err := c.call(ctx, "album.getinfo", url.Values{"artist": {artist}, "album": {album}})
	if err != nil {
		return "", err
	}

	var found string
	doc.Get("album.image").ForEach(func(_, image gjson.Result) bool {
		fields := image.Map()
		if fields["size"].String() == coverImageSize {
			if text := strings.TrimSpace(fields["#text"].String()); text != "" {
				found = text
				return false
			}
		}
		return true
	})
	return found, nil
}

func (c *Client) call(ctx context.Context, method string, params url.Values) (gjson.Result, error) {
	if c.config.APIKey == "" {
		return gjson.Result{}, fmt.Errorf("last.fm api key not configured")
	}
	params.Set("method", method)
	params.Set("api_key", c.config.APIKey)
	params.Set("format", "json")

	doc, err := c.web.GetJSON(ctx, c.config.BaseURL, params)
	if err != nil {
		return gjson.Result{}, err
	}
	if code := doc.Get("error"); code.Exists() {
		return gjson.Result{}, &APIError{Code: code.Int(), Message: doc.Get("message").String()}
	}
	return doc, nil
}

// firstOf reads field from the first element of list. Last.fm collapses
// single-element lists into a bare object, so both shapes are accepted.
func firstOf(list gjson.Result, field string) string {
	if list.IsArray() {
		return strings.TrimSpace(list.Get("0." + field).String())
	}
	return strings.TrimSpace(list.Get(field).String())
}
