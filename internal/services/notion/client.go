package notion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.notion.com"
	notionVersion      = "2022-06-28"
	defaultHTTPTimeout = 30 * time.Second

	// MaxRichTextChars is the chunk ceiling for a single rich text field,
	// kept under Notion's documented 2000 character limit.
	MaxRichTextChars = 1800

	// AppendBatchSize is the largest number of blocks sent in one append
	// call, kept under Notion's documented 100 children per request.
	AppendBatchSize = 50
)

// Config captures the runtime settings required to talk to Notion.
type Config struct {
	APIKey         string
	DatabaseID     string
	BaseURL        string
	TimeoutSeconds int
}

// Client wraps the Notion pages and blocks API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the Notion client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.cfg.BaseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a Notion API client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			DatabaseID:     strings.TrimSpace(cfg.DatabaseID),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// HealthCheck verifies the API key and database are reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("notion health: api key required")
	}
	if c.cfg.DatabaseID == "" {
		return errors.New("notion health: database id required")
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "/v1/databases", c.cfg.DatabaseID)
	if err != nil {
		return fmt.Errorf("notion health: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("notion health: request: %w", err)
	}
	c.setHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notion health: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("notion health: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notion health: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")
}
