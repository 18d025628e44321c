package tracing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/tagus/physai-agent/pkg/interfaces"
)

// TracedLLM wraps an LLM and records a span per call
type TracedLLM struct {
	llm    interfaces.LLM
	tracer interfaces.Tracer
}

// NewTracedLLM creates a new LLM middleware with tracing
func NewTracedLLM(llm interfaces.LLM, tracer interfaces.Tracer) interfaces.LLM {
	return &TracedLLM{
		llm:    llm,
		tracer: tracer,
	}
}

// Generate implements interfaces.LLM
func (m *TracedLLM) Generate(ctx context.Context, prompt string, options ...interfaces.GenerateOption) (string, error) {
	resp, err := m.GenerateDetailed(ctx, prompt, options...)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateDetailed implements interfaces.LLM
func (m *TracedLLM) GenerateDetailed(ctx context.Context, prompt string, options ...interfaces.GenerateOption) (*interfaces.LLMResponse, error) {
	startTime := time.Now()

	ctx, span := m.tracer.StartSpan(ctx, "llm.generate")
	defer span.End()

	span.SetAttribute("prompt.length", len(prompt))
	span.SetAttribute("prompt.hash", hashString(prompt))
	span.SetAttribute("model", m.GetModel())

	response, err := m.llm.GenerateDetailed(ctx, prompt, options...)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttribute("response.length", len(response.Content))
	span.SetAttribute("response.model", response.Model)
	if response.Usage != nil {
		span.SetAttribute("usage.input_tokens", response.Usage.InputTokens)
		span.SetAttribute("usage.output_tokens", response.Usage.OutputTokens)
		span.SetAttribute("usage.total_tokens", response.Usage.TotalTokens)
	}
	span.SetAttribute("duration_ms", time.Since(startTime).Milliseconds())

	return response, nil
}

// Name implements interfaces.LLM
func (m *TracedLLM) Name() string {
	return m.llm.Name()
}

// SupportsStreaming implements interfaces.LLM
func (m *TracedLLM) SupportsStreaming() bool {
	return m.llm.SupportsStreaming()
}

// GetModel returns the model name of the wrapped LLM, falling back to its provider name
func (m *TracedLLM) GetModel() string {
	if modelProvider, ok := m.llm.(interface{ GetModel() string }); ok {
		if model := modelProvider.GetModel(); model != "" {
			return model
		}
	}
	return m.llm.Name()
}

// Unwrap returns the wrapped LLM
func (m *TracedLLM) Unwrap() interfaces.LLM {
	return m.llm
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
