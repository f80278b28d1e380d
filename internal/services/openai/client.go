package openai

import (
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL            = "https://api.openai.com"
	defaultTranscriptionModel = "whisper-1"
	defaultPolishModel        = "gpt-4o-mini"
	defaultTemperature        = 0.2
	defaultHTTPTimeout        = 5 * time.Minute
	transcribePath            = "/v1/audio/transcriptions"
	chatCompletionsPath       = "/v1/chat/completions"
	jsonResponseType          = "json_object"
)

// TitleFallback is used when the polishing backend omits a title.
const TitleFallback = "Untitled"

// Config captures the runtime settings required to talk to OpenAI.
type Config struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	PolishModel        string
	Temperature        float64
	TimeoutSeconds     int
}

// Client wraps the OpenAI transcription and chat completion APIs.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
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

// NewClient constructs an OpenAI API client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:             strings.TrimSpace(cfg.APIKey),
			BaseURL:            strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TranscriptionModel: strings.TrimSpace(cfg.TranscriptionModel),
			PolishModel:        strings.TrimSpace(cfg.PolishModel),
			Temperature:        cfg.Temperature,
			TimeoutSeconds:     cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.TranscriptionModel == "" {
		client.cfg.TranscriptionModel = defaultTranscriptionModel
	}
	if client.cfg.PolishModel == "" {
		client.cfg.PolishModel = defaultPolishModel
	}
	if client.cfg.Temperature <= 0 {
		client.cfg.Temperature = defaultTemperature
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}
