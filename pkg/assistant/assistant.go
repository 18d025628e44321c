// Package assistant wires the configured Gemini endpoint into an agent run configuration.
//
// Construction is strictly ordered: client handle, then model adapter, then run configuration.
package assistant

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tagus/physai-agent/pkg/agent"
	"github.com/tagus/physai-agent/pkg/config"
	"github.com/tagus/physai-agent/pkg/interfaces"
	"github.com/tagus/physai-agent/pkg/llm/gemini"
	"github.com/tagus/physai-agent/pkg/llm/openai"
	"github.com/tagus/physai-agent/pkg/logging"
	"github.com/tagus/physai-agent/pkg/tracing"
)

// Assistant holds the values built from configuration. All fields are set by New and never change.
type Assistant struct {
	// Client is the chat-completions client handle; nil when the native Gemini provider is selected
	Client *openai.Client

	// Provider resolves models; it is Client for the chat-completions route
	Provider interfaces.ModelProvider

	// Model is the model adapter every run uses
	Model interfaces.LLM

	// RunConfig aggregates Model, Provider and the tracing switch
	RunConfig agent.RunConfig

	// Agent is the configured assistant persona
	Agent *agent.Agent

	runner *agent.Runner
	tracer *tracing.OTelTracer
	logger logging.Logger
}

// Option configures New
type Option func(*options)

type options struct {
	logger     logging.Logger
	httpClient *http.Client
	tracer     *tracing.OTelTracer
}

// WithLogger sets the logger shared by every component
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used to reach the model endpoint
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTracer supplies a tracer instead of building one from configuration
func WithTracer(tracer *tracing.OTelTracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// FromEnv builds an assistant from environment variables
func FromEnv(ctx context.Context, opts ...Option) (*Assistant, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg, opts...)
}

// New builds the client handle, the model adapter and the run configuration, in that order.
// A missing API key is logged and accepted.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Assistant, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.New()
	}

	a := &Assistant{
		runner: agent.NewRunner(o.logger),
		logger: o.logger,
	}

	gcfg := cfg.LLM.Gemini
	if gcfg.APIKey == "" {
		o.logger.Warn(ctx, "GEMINI_API_KEY is not set; requests will be rejected by the endpoint", nil)
	}

	defaults := interfaces.LLMConfig{Temperature: interfaces.Float(gcfg.Temperature)}

	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		provider, err := gemini.NewProvider(ctx, gcfg.APIKey,
			gemini.WithHTTPClient(o.httpClient),
			gemini.WithDefaultLLMConfig(defaults),
			gemini.WithLogger(o.logger),
		)
		if err != nil {
			return nil, err
		}
		model, err := provider.GetModel(gcfg.Model)
		if err != nil {
			return nil, err
		}
		a.Provider = provider
		a.Model = model
	default:
		clientOptions := []openai.Option{
			openai.WithBaseURL(gcfg.BaseURL),
			openai.WithTimeout(gcfg.Timeout),
			openai.WithLogger(o.logger),
		}
		if o.httpClient != nil {
			clientOptions = append(clientOptions, openai.WithHTTPClient(o.httpClient))
		}
		a.Client = openai.NewClient(gcfg.APIKey, clientOptions...)
		a.Provider = a.Client
		a.Model = openai.NewChatCompletionsModel(a.Client, gcfg.Model, openai.WithDefaultLLMConfig(defaults))
	}

	a.tracer = o.tracer
	if a.tracer == nil && !cfg.Tracing.Disabled {
		tracer, err := tracing.NewOTelTracer(ctx, tracing.OTelConfig{
			Enabled:           true,
			ServiceName:       cfg.Tracing.ServiceName,
			CollectorEndpoint: cfg.Tracing.CollectorEndpoint,
		})
		if err != nil {
			return nil, err
		}
		a.tracer = tracer
	}

	a.RunConfig = agent.RunConfig{
		Model:           a.Model,
		ModelProvider:   a.Provider,
		TracingDisabled: cfg.Tracing.Disabled,
		WorkflowName:    cfg.Agent.Name,
	}
	if a.tracer != nil {
		a.RunConfig.Tracer = a.tracer
	}

	persona, err := buildAgent(cfg, o.logger)
	if err != nil {
		return nil, err
	}
	a.Agent = persona

	o.logger.Info(ctx, "Assistant configured", map[string]interface{}{
		"provider":         cfg.LLM.Provider,
		"base_url":         gcfg.BaseURL,
		"model":            gcfg.Model,
		"tracing_disabled": a.RunConfig.TracingDisabled,
	})

	return a, nil
}

func buildAgent(cfg *config.Config, logger logging.Logger) (*agent.Agent, error) {
	if cfg.Agent.ConfigPath != "" {
		def, err := agent.LoadAgentConfig(cfg.Agent.ConfigPath)
		if err != nil {
			return nil, err
		}
		return agent.NewAgentFromConfig(def, agent.WithLogger(logger))
	}
	return agent.NewAgent(
		agent.WithName(cfg.Agent.Name),
		agent.WithInstructions(cfg.Agent.Instructions),
		agent.WithModelName(cfg.LLM.Gemini.Model),
		agent.WithLogger(logger),
	)
}

// Ask runs the assistant agent on input with the stored run configuration
func (a *Assistant) Ask(ctx context.Context, input string, history ...interfaces.Message) (*agent.RunResult, error) {
	return a.runner.Run(ctx, a.Agent, input, a.RunConfig, history...)
}

// Close flushes the tracer provider built by New
func (a *Assistant) Close(ctx context.Context) error {
	if a.tracer == nil {
		return nil
	}
	return a.tracer.Shutdown(ctx)
}
