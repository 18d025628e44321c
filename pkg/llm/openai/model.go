package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/tagus/physai-agent/pkg/interfaces"
)

var (
	// ErrEmptyModel is returned when a model adapter is requested without a model name
	ErrEmptyModel = errors.New("model name is required")

	// ErrNoChoices is returned when the endpoint answers without any completion choice
	ErrNoChoices = errors.New("no completion choices returned")
)

// ChatCompletionsModel adapts the chat-completions endpoint of a Client to interfaces.LLM.
// The adapter references the client; it does not own it.
type ChatCompletionsModel struct {
	client   *Client
	model    string
	defaults interfaces.LLMConfig
}

// ModelOption configures a ChatCompletionsModel
type ModelOption func(*ChatCompletionsModel)

// WithDefaultLLMConfig sets sampling parameters used when a call does not override them
func WithDefaultLLMConfig(config interfaces.LLMConfig) ModelOption {
	return func(m *ChatCompletionsModel) {
		m.defaults = config
	}
}

// NewChatCompletionsModel creates a model adapter that routes calls through client
func NewChatCompletionsModel(client *Client, model string, options ...ModelOption) *ChatCompletionsModel {
	m := &ChatCompletionsModel{
		client: client,
		model:  model,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Name implements interfaces.LLM
func (m *ChatCompletionsModel) Name() string {
	return "openai-chat-completions"
}

// GetModel returns the hosted model identifier
func (m *ChatCompletionsModel) GetModel() string {
	return m.model
}

// Client returns the client handle the adapter routes through
func (m *ChatCompletionsModel) Client() *Client {
	return m.client
}

// SupportsStreaming implements interfaces.LLM
func (m *ChatCompletionsModel) SupportsStreaming() bool {
	return false
}

// Generate implements interfaces.LLM
func (m *ChatCompletionsModel) Generate(ctx context.Context, prompt string, options ...interfaces.GenerateOption) (string, error) {
	resp, err := m.GenerateDetailed(ctx, prompt, options...)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateDetailed implements interfaces.LLM
func (m *ChatCompletionsModel) GenerateDetailed(ctx context.Context, prompt string, options ...interfaces.GenerateOption) (*interfaces.LLMResponse, error) {
	if m.model == "" {
		return nil, ErrEmptyModel
	}
	params := interfaces.ApplyGenerateOptions(m.defaults, options...)
	logger := m.client.logger

	req := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.model),
		Messages: buildMessages(params.SystemMessage, params.History, prompt),
	}
	if cfg := params.LLMConfig; cfg != nil {
		if cfg.Temperature != nil {
			req.Temperature = openai.Float(*cfg.Temperature)
		}
		if cfg.TopP > 0 {
			req.TopP = openai.Float(cfg.TopP)
		}
		if cfg.MaxTokens > 0 {
			req.MaxTokens = openai.Int(int64(cfg.MaxTokens))
		}
	}

	logger.Debug(ctx, "Sending chat completion request", map[string]interface{}{
		"model":    m.model,
		"base_url": m.client.baseURL,
		"messages": len(req.Messages),
	})

	completion, err := m.client.Client.Chat.Completions.New(ctx, req)
	if err != nil {
		fields := map[string]interface{}{
			"model": m.model,
			"error": err.Error(),
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			fields["status_code"] = apiErr.StatusCode
		}
		logger.Error(ctx, "Chat completion request failed", fields)
		return nil, fmt.Errorf("chat completion with %s failed: %w", m.model, err)
	}

	if len(completion.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := completion.Choices[0]
	resp := &interfaces.LLMResponse{
		Content:      choice.Message.Content,
		Model:        m.model,
		FinishReason: string(choice.FinishReason),
	}
	if completion.Model != "" {
		resp.Model = completion.Model
	}
	if completion.Usage.TotalTokens > 0 {
		resp.Usage = &interfaces.TokenUsage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:  int(completion.Usage.TotalTokens),
		}
	}

	logger.Debug(ctx, "Chat completion received", map[string]interface{}{
		"model":         resp.Model,
		"finish_reason": resp.FinishReason,
	})

	return resp, nil
}
