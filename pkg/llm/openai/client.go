package openai

import (
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/tagus/physai-agent/pkg/interfaces"
	"github.com/tagus/physai-agent/pkg/logging"
)

const (
	// DefaultBaseURL is the generative-language endpoint that speaks the chat-completions protocol
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/"

	// DefaultTimeout bounds a single chat-completions request
	DefaultTimeout = 60 * time.Second
)

// Client is a chat-completions client handle bound to one endpoint and credential.
// It is never mutated after NewClient returns and doubles as a model provider.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     logging.Logger

	// Client is the underlying openai-go client
	Client openai.Client
}

// Option represents an option for configuring the client handle
type Option func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client handle. An empty apiKey is accepted; the endpoint rejects it on first use.
func NewClient(apiKey string, options ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}

	for _, option := range options {
		option(c)
	}

	if c.logger == nil {
		c.logger = logging.New()
	}

	requestOptions := []option.RequestOption{
		option.WithAPIKey(c.apiKey),
		option.WithBaseURL(c.baseURL),
	}
	if c.timeout > 0 {
		requestOptions = append(requestOptions, option.WithRequestTimeout(c.timeout))
	}
	if c.httpClient != nil {
		requestOptions = append(requestOptions, option.WithHTTPClient(c.httpClient))
	}
	c.Client = openai.NewClient(requestOptions...)

	return c
}

// APIKey returns the credential the handle was built with
func (c *Client) APIKey() string {
	return c.apiKey
}

// BaseURL returns the endpoint the handle is bound to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetModel implements interfaces.ModelProvider
func (c *Client) GetModel(name string) (interfaces.LLM, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyModel
	}
	return NewChatCompletionsModel(c, name), nil
}
