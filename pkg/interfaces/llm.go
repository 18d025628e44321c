package interfaces

import (
	"context"
)

// LLM represents a large language model that can answer a prompt
type LLM interface {
	// Generate generates text based on the provided prompt
	Generate(ctx context.Context, prompt string, options ...GenerateOption) (string, error)

	// GenerateDetailed generates text and returns the response with token usage
	GenerateDetailed(ctx context.Context, prompt string, options ...GenerateOption) (*LLMResponse, error)

	// Name returns the name of the LLM provider
	Name() string

	// SupportsStreaming returns true if this LLM supports streaming
	SupportsStreaming() bool
}

// ModelProvider resolves a model name to an LLM bound to the provider's client
type ModelProvider interface {
	GetModel(name string) (LLM, error)
}

// LLMConfig contains sampling parameters for a single call.
// Temperature is a pointer so that an explicit 0 is distinguishable from unset.
type LLMConfig struct {
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP        float64  `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// Float returns a pointer to v, for setting LLMConfig.Temperature
func Float(v float64) *float64 {
	return &v
}

// Merge returns c with every field that is set in override replaced
func (c LLMConfig) Merge(override LLMConfig) LLMConfig {
	if override.Temperature != nil {
		c.Temperature = Float(*override.Temperature)
	}
	if override.TopP > 0 {
		c.TopP = override.TopP
	}
	if override.MaxTokens > 0 {
		c.MaxTokens = override.MaxTokens
	}
	return c
}

// GenerateOptions contains the options applied to a Generate call
type GenerateOptions struct {
	SystemMessage string
	History       []Message
	LLMConfig     *LLMConfig
}

// GenerateOption represents an option for Generate
type GenerateOption func(*GenerateOptions)

// WithSystemMessage sets the system message
func WithSystemMessage(message string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemMessage = message
	}
}

// WithHistory sets prior conversation turns sent before the prompt
func WithHistory(messages []Message) GenerateOption {
	return func(o *GenerateOptions) {
		o.History = messages
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(temperature float64) GenerateOption {
	return func(o *GenerateOptions) {
		if o.LLMConfig == nil {
			o.LLMConfig = &LLMConfig{}
		}
		o.LLMConfig.Temperature = Float(temperature)
	}
}

// WithLLMConfig overlays the fields set in config onto the current sampling parameters
func WithLLMConfig(config LLMConfig) GenerateOption {
	return func(o *GenerateOptions) {
		merged := config
		if o.LLMConfig != nil {
			merged = o.LLMConfig.Merge(config)
		}
		o.LLMConfig = &merged
	}
}

// ApplyGenerateOptions folds options over defaults
func ApplyGenerateOptions(defaults LLMConfig, options ...GenerateOption) *GenerateOptions {
	params := &GenerateOptions{LLMConfig: &defaults}
	for _, option := range options {
		option(params)
	}
	return params
}

// MessageRole is the author of a message
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message is a single conversation turn
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// TokenUsage is the token accounting reported by the provider
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// LLMResponse is a completed model call
type LLMResponse struct {
	Content      string      `json:"content"`
	Model        string      `json:"model"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}
