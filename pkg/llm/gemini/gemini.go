package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tagus/physai-agent/pkg/interfaces"
	"github.com/tagus/physai-agent/pkg/logging"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when Gemini answers without any text
var ErrEmptyResponse = errors.New("gemini returned no text")

// Provider resolves model names against the native Gemini API
type Provider struct {
	client *genai.Client
	logger logging.Logger

	baseURL    string
	httpClient *http.Client
	defaults   interfaces.LLMConfig
}

// Option configures a Provider
type Option func(*Provider)

// WithBaseURL overrides the Gemini API endpoint
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithDefaultLLMConfig sets sampling parameters for every model the provider returns
func WithDefaultLLMConfig(config interfaces.LLMConfig) Option {
	return func(p *Provider) {
		p.defaults = config
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a provider backed by the genai client
func NewProvider(ctx context.Context, apiKey string, options ...Option) (*Provider, error) {
	p := &Provider{}
	for _, option := range options {
		option(p)
	}
	if p.logger == nil {
		p.logger = logging.New()
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	}
	if p.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	p.client = client
	return p, nil
}

// GetModel implements interfaces.ModelProvider
func (p *Provider) GetModel(name string) (interfaces.LLM, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("model name is required")
	}
	return &Model{provider: p, model: name, defaults: p.defaults}, nil
}

// Model adapts one Gemini model to interfaces.LLM
type Model struct {
	provider *Provider
	model    string
	defaults interfaces.LLMConfig
}

// Name implements interfaces.LLM
func (m *Model) Name() string {
	return "gemini"
}

// GetModel returns the hosted model identifier
func (m *Model) GetModel() string {
	return m.model
}

// SupportsStreaming implements interfaces.LLM
func (m *Model) SupportsStreaming() bool {
	return false
}

// Generate implements interfaces.LLM
func (m *Model) Generate(ctx context.Context, prompt string, options ...interfaces.GenerateOption) (string, error) {
	resp, err := m.GenerateDetailed(ctx, prompt, options...)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateDetailed implements interfaces.LLM
func (m *Model) GenerateDetailed(ctx context.Context, prompt string, options ...interfaces.GenerateOption) (*interfaces.LLMResponse, error) {
	params := interfaces.ApplyGenerateOptions(m.defaults, options...)

	config := &genai.GenerateContentConfig{}
	if params.SystemMessage != "" {
		config.SystemInstruction = genai.NewContentFromText(params.SystemMessage, genai.RoleUser)
	}
	if cfg := params.LLMConfig; cfg != nil {
		if cfg.Temperature != nil {
			config.Temperature = genai.Ptr(float32(*cfg.Temperature))
		}
		if cfg.TopP > 0 {
			config.TopP = genai.Ptr(float32(cfg.TopP))
		}
		if cfg.MaxTokens > 0 {
			config.MaxOutputTokens = int32(cfg.MaxTokens)
		}
	}

	result, err := m.provider.client.Models.GenerateContent(ctx, m.model, buildContents(params.History, prompt), config)
	if err != nil {
		m.provider.logger.Error(ctx, "Gemini request failed", map[string]interface{}{
			"model": m.model,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("gemini generate with %s failed: %w", m.model, err)
	}

	text := result.Text()
	if text == "" {
		return nil, ErrEmptyResponse
	}

	resp := &interfaces.LLMResponse{
		Content: text,
		Model:   m.model,
	}
	if len(result.Candidates) > 0 {
		resp.FinishReason = strings.ToLower(string(result.Candidates[0].FinishReason))
	}
	if usage := result.UsageMetadata; usage != nil {
		resp.Usage = &interfaces.TokenUsage{
			InputTokens:  int(usage.PromptTokenCount),
			OutputTokens: int(usage.CandidatesTokenCount),
			TotalTokens:  int(usage.TotalTokenCount),
		}
	}
	return resp, nil
}

// buildContents maps history onto Gemini's user/model roles, then appends the prompt.
// System messages in history are folded into user turns since Gemini only accepts one system instruction.
func buildContents(history []interfaces.Message, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if msg.Role == interfaces.MessageRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}
