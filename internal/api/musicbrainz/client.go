package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meloburn/internal/api/webclient"
)

// 1. Constants and types
const (
	defaultBaseURL       = "https://musicbrainz.org/ws/2/"
	defaultUserAgent     = "meloburn/0.7 ( https://github.com/adassecus/meloburn )"
	defaultTimeout       = 10 * time.Second
	defaultPostCallDelay = time.Second // MusicBrainz allows about one request per second
	providerName         = "musicbrainz"
)

// Config holds configuration for MusicBrainz API client
type Config struct {
	BaseURL       string        `json:"base_url"`
	UserAgent     string        `json:"user_agent"`
	Timeout       time.Duration `json:"timeout"`
	PostCallDelay time.Duration `json:"post_call_delay"`
}

// Client represents a MusicBrainz API client
type Client struct {
	web    *webclient.Client
	config Config
	sleep  func(ctx context.Context, d time.Duration) error
}

// 2. Constructor and configuration

// DefaultConfig returns sensible defaults for MusicBrainz API client
func DefaultConfig() Config {
	return Config{
		BaseURL:       defaultBaseURL,
		UserAgent:     defaultUserAgent,
		Timeout:       defaultTimeout,
		PostCallDelay: defaultPostCallDelay,
	}
}

// NewClient creates a new MusicBrainz API client with default configuration
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig(), nil)
}

// NewClientWithConfig creates a new MusicBrainz API client with custom configuration
func NewClientWithConfig(config Config, httpClient *http.Client) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	return &Client{
		web: webclient.New(webclient.Config{
			UserAgent: config.UserAgent,
			Timeout:   config.Timeout,
		}, httpClient),
		config: config,
		sleep:  sleepContext,
	}
}

// GetConfig returns the current client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// Name identifies the provider
func (c *Client) Name() string {
	return providerName
}

// 3. Core HTTP methods (private)

// search runs a Lucene query against an entity endpoint and decodes the reply into out.
// Every successful call is followed by the post-call delay before returning.
func (c *Client) search(ctx context.Context, entity, query string, out interface{}) error {
	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")

	doc, err := c.web.GetJSON(ctx, c.config.BaseURL+entity, params)
	if err != nil {
		return fmt.Errorf("failed to search %s: %w", entity, err)
	}
	if err := c.sleep(ctx, c.config.PostCallDelay); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(doc.Raw), out); err != nil {
		return fmt.Errorf("failed to unmarshal %s search result: %w", entity, err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// 4. Public API methods

// ArtistByTrack searches recordings by title and returns the first credited artist
func (c *Client) ArtistByTrack(ctx context.Context, title string) (string, error) {
	var result recordingSearch
	if err := c.search(ctx, "recording", fmt.Sprintf("recording:%s", quote(title)), &result); err != nil {
		return "", err
	}
	if len(result.Recordings) == 0 || len(result.Recordings[0].ArtistCredit) == 0 {
		return "", nil
	}
	return strings.TrimSpace(result.Recordings[0].ArtistCredit[0].Artist.Name), nil
}

// TrackByArtist looks the artist up, then returns the first work credited to it.
// These are two sequential calls, each followed by the post-call delay.
func (c *Client) TrackByArtist(ctx context.Context, artist string) (string, error) {
	var artists artistSearch
	if err := c.search(ctx, "artist", fmt.Sprintf("artist:%s", quote(artist)), &artists); err != nil {
		return "", err
	}
	if len(artists.Artists) == 0 || artists.Artists[0].ID == "" {
		return "", nil
	}

	var works workSearch
	if err := c.search(ctx, "work", "arid:"+artists.Artists[0].ID, &works); err != nil {
		return "", err
	}
	if len(works.Works) == 0 {
		return "", nil
	}
	return strings.TrimSpace(works.Works[0].Title), nil
}

// AlbumByTrackArtist returns the first release of the first recording that has any
func (c *Client) AlbumByTrackArtist(ctx context.Context, track, artist string) (string, error) {
	var result recordingSearch
	query := fmt.Sprintf("recording:%s AND artist:%s", quote(track), quote(artist))
	if err := c.search(ctx, "recording", query, &result); err != nil {
		return "", err
	}
	for _, recording := range result.Recordings {
		if len(recording.Releases) > 0 {
			return strings.TrimSpace(recording.Releases[0].Title), nil
		}
	}
	return "", nil
}

// 5. Helper/utility functions

// quote wraps a term in double quotes for a Lucene phrase query
func quote(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `\"`) + `"`
}

// Data types

// Artist represents a MusicBrainz artist
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArtistCredit represents artist credit information
type ArtistCredit struct {
	Artist Artist `json:"artist"`
}

// Release represents the release information embedded in a recording
type Release struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Recording represents a MusicBrainz recording (track)
type Recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	Releases     []Release      `json:"releases"`
	Length       int            `json:"length"` // Duration in milliseconds
}

// Work represents a MusicBrainz work (composition)
type Work struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type recordingSearch struct {
	Recordings []Recording `json:"recordings"`
}

type artistSearch struct {
	Artists []Artist `json:"artists"`
}

type workSearch struct {
	Works []Work `json:"works"`
}
