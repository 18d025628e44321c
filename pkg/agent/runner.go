package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tagus/physai-agent/pkg/interfaces"
	"github.com/tagus/physai-agent/pkg/logging"
	"github.com/tagus/physai-agent/pkg/tracing"
)

// ErrEmptyInput is returned when a run is started without input
var ErrEmptyInput = errors.New("input is required")

// RunResult is the outcome of a single run
type RunResult struct {
	RunID       string
	AgentName   string
	FinalOutput string
	Model       string
	Usage       *interfaces.TokenUsage
	Duration    time.Duration
}

// Runner executes agents against the model selected by a RunConfig
type Runner struct {
	logger logging.Logger
}

// NewRunner creates a runner
func NewRunner(logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.New()
	}
	return &Runner{logger: logger}
}

// Run sends input to the agent's model as one turn and returns the answer.
// history holds earlier turns of the same conversation and may be nil.
func (r *Runner) Run(ctx context.Context, agent *Agent, input string, config RunConfig, history ...interfaces.Message) (*RunResult, error) {
	if agent == nil {
		return nil, errors.New("agent is required")
	}
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	startTime := time.Now()
	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)

	model, err := resolveModel(agent, config)
	if err != nil {
		return nil, err
	}

	tracer := config.Tracer
	if config.TracingDisabled || tracer == nil {
		tracer = tracing.NoOpTracer{}
	}
	model = tracing.NewTracedLLM(model, tracer)

	ctx, session := tracing.StartRunTracing(ctx, tracer, runID, config.WorkflowName)
	defer session.End()
	session.SetAttribute("agent.name", agent.name)

	options := []interfaces.GenerateOption{interfaces.WithHistory(history)}
	if agent.instructions != "" {
		options = append(options, interfaces.WithSystemMessage(agent.instructions))
	}
	if agent.llmConfig != nil {
		options = append(options, interfaces.WithLLMConfig(*agent.llmConfig))
	}

	r.logger.Debug(ctx, "Starting agent run", map[string]interface{}{
		"agent":            agent.name,
		"input_length":     len(input),
		"history":          len(history),
		"tracing_disabled": config.TracingDisabled,
	})

	resp, err := model.GenerateDetailed(ctx, input, options...)
	if err != nil {
		session.RecordError(err)
		r.logger.Error(ctx, "Agent run failed", map[string]interface{}{
			"agent": agent.name,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("agent %s: %w", agent.name, err)
	}

	result := &RunResult{
		RunID:       runID,
		AgentName:   agent.name,
		FinalOutput: resp.Content,
		Model:       resp.Model,
		Usage:       resp.Usage,
		Duration:    time.Since(startTime),
	}

	fields := map[string]interface{}{
		"agent":           agent.name,
		"model":           result.Model,
		"response_length": len(result.FinalOutput),
		"duration_ms":     result.Duration.Milliseconds(),
	}
	if result.Usage != nil {
		fields["total_tokens"] = result.Usage.TotalTokens
	}
	r.logger.Info(ctx, "Agent run completed", fields)

	return result, nil
}

// resolveModel picks the model for a run: the run configuration's model, then the agent's bound model,
// then the provider's model for the agent's model name
func resolveModel(agent *Agent, config RunConfig) (interfaces.LLM, error) {
	if config.Model != nil {
		return config.Model, nil
	}
	if agent.model != nil {
		return agent.model, nil
	}
	if config.ModelProvider != nil && agent.modelName != "" {
		model, err := config.ModelProvider.GetModel(agent.modelName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve model %s: %w", agent.modelName, err)
		}
		return model, nil
	}
	return nil, ErrNoModel
}
