package discogs

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"meloburn/internal/api/webclient"
)

const (
	defaultBaseURL   = "https://api.discogs.com/"
	defaultRateLimit = time.Second // authenticated search allows 60 requests per minute
	providerName     = "discogs"
)

// ErrNoToken is returned when no personal access token is configured
var ErrNoToken = errors.New("discogs token not configured")

// Config holds configuration for the Discogs client
type Config struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration
	RateLimit time.Duration
}

// Client searches the Discogs release database for cover images
type Client struct {
	web    *webclient.Client
	config Config
}

// DefaultConfig returns the public endpoint without a token
func DefaultConfig() Config {
	web := webclient.DefaultConfig()
	return Config{
		BaseURL:   defaultBaseURL,
		UserAgent: web.UserAgent,
		Timeout:   web.Timeout,
		RateLimit: defaultRateLimit,
	}
}

// NewClient creates a Discogs client
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

// AlbumArtURL searches releases for "artist album" and returns the first non-empty cover image
func (c *Client) AlbumArtURL(ctx context.Context, artist, album string) (string, error) {
	if c.config.Token == "" {
		return "", ErrNoToken
	}
	params := url.Values{}
	params.Set("type", "release")
	params.Set("q", strings.TrimSpace(artist+" "+album))
	params.Set("token", c.config.Token)

	doc, err := c.web.GetJSON(ctx, c.config.BaseURL+"database/search", params)
	if err != nil {
		return "", err
	}

	var cover string
	doc.Get("results").ForEach(func(_, result gjson.Result) bool {
		if image := strings.TrimSpace(result.Get("cover_image").String()); image != "" {
			cover = image
			return false
		}
		return true
	})
	return cover, nil
}
