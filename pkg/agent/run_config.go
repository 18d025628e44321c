package agent

import (
	"errors"

	"github.com/tagus/physai-agent/pkg/interfaces"
)

// ErrNoModel is returned when neither the run configuration nor the agent can supply a model
var ErrNoModel = errors.New("no model: set RunConfig.Model, bind one to the agent, or provide a ModelProvider and model name")

// RunConfig tells the Runner which model and provider to use and whether to emit traces.
// Spans are recorded only when TracingDisabled is false and Tracer is set.
type RunConfig struct {
	// Model overrides the agent's model for every run
	Model interfaces.LLM

	// ModelProvider resolves the agent's model name when Model is nil
	ModelProvider interfaces.ModelProvider

	// TracingDisabled turns off span recording for the run
	TracingDisabled bool

	// WorkflowName labels the trace session
	WorkflowName string

	// Tracer records spans when tracing is enabled
	Tracer interfaces.Tracer
}

// Validate reports whether the configuration can supply a model on its own or through a provider
func (c RunConfig) Validate() error {
	if c.Model == nil && c.ModelProvider == nil {
		return ErrNoModel
	}
	return nil
}
