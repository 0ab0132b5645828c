package webclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"meloburn/internal/shared"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorMessage = 200
)

// ErrInvalidJSON is returned when a 200 response does not carry valid JSON
var ErrInvalidJSON = errors.New("response is not valid JSON")

// Config holds the transport settings shared by all provider clients
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	RateLimit  time.Duration // minimum spacing between calls, 0 disables pacing
	BurstLimit int
}

// Client performs paced GET requests with a hard per-call timeout
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
}

// DefaultConfig returns the transport defaults
func DefaultConfig() Config {
	return Config{
		UserAgent:  shared.UserAgent,
		Timeout:    defaultTimeout,
		BurstLimit: 1,
	}
}

// New creates a client. A nil httpClient uses a fresh one.
func New(config Config, httpClient *http.Client) *Client {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = shared.UserAgent
	}
	if config.BurstLimit <= 0 {
		config.BurstLimit = 1
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Every(config.RateLimit)
	}
	return &Client{
		httpClient:  httpClient,
		config:      config,
		rateLimiter: rate.NewLimiter(limit, config.BurstLimit),
	}
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// GetJSON fetches rawURL with query appended and returns the parsed document
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values) (gjson.Result, error) {
	body, err := c.get(ctx, rawURL, query, "application/json")
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, ErrInvalidJSON
	}
	return gjson.ParseBytes(body), nil
}

// GetBytes fetches rawURL and returns the raw body, e.g. an image
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL, nil, "*/*")
}

func (c *Client) makeRequest(ctx context.Context, rawURL string, query url.Values, accept string) (*http.Response, error) {
	reqURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(query) > 0 {
		q := reqURL.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		reqURL.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", accept)

	return c.httpClient.Do(req)
}

func (c *Client) get(ctx context.Context, rawURL string, query url.Values, accept string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.makeRequest(ctx, rawURL, query, accept)
	if err != nil {
		var netErr net.Error
		if (errors.As(err, &netErr) && netErr.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &shared.HTTPError{
				StatusCode: http.StatusGatewayTimeout,
				Status:     "Gateway Timeout",
				Message:    err.Error(),
			}
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := string(body)
		if len(message) > maxErrorMessage {
			message = message[:maxErrorMessage] + "..."
		}
		return nil, &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    message,
		}
	}
	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}
	return body, nil
}
