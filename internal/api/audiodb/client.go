package audiodb

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meloburn/internal/api/webclient"
)

const (
	defaultBaseURL = "https://theaudiodb.com/api/v1/json/2/"
	providerName   = "theaudiodb"
)

// Config holds configuration for the TheAudioDB client
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client queries TheAudioDB's public track search
type Client struct {
	web    *webclient.Client
	config Config
}

// DefaultConfig returns the public endpoint with the shared transport defaults
func DefaultConfig() Config {
	web := webclient.DefaultConfig()
	return Config{
		BaseURL:   defaultBaseURL,
		UserAgent: web.UserAgent,
		Timeout:   web.Timeout,
	}
}

// NewClient creates a TheAudioDB client
func NewClient(config Config, httpClient *http.Client) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Client{
		web: webclient.New(webclient.Config{
			UserAgent: config.UserAgent,
			Timeout:   config.Timeout,
		}, httpClient),
		config: config,
	}
}

// Name identifies the provider
func (c *Client) Name() string {
	return providerName
}

// ArtistByTrack searches tracks by title and returns the first hit's artist
func (c *Client) ArtistByTrack(ctx context.Context, title string) (string, error) {
	return c.searchTrack(ctx, url.Values{"t": {title}}, "track.0.strArtist")
}

// TrackByArtist searches tracks by artist and returns the first hit's title
func (c *Client) TrackByArtist(ctx context.Context, artist string) (string, error) {
	return c.searchTrack(ctx, url.Values{"s": {artist}}, "track.0.strTrack")
}

func (c *Client) searchTrack(ctx context.Context, query url.Values, field string) (string, error) {
	doc, err := c.web.GetJSON(ctx, c.config.BaseURL+"searchtrack.php", query)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Get(field).String()), nil
}
