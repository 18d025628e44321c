package agent

import (
	"errors"
	"strings"

	"github.com/tagus/physai-agent/pkg/interfaces"
	"github.com/tagus/physai-agent/pkg/logging"
)

// ErrNameRequired is returned when an agent is built without a name
var ErrNameRequired = errors.New("agent name is required")

// Agent describes who answers and how: a name, instructions sent as the system message,
// and an optional model. The model is resolved by the Runner at run time.
type Agent struct {
	name         string
	instructions string
	modelName    string
	model        interfaces.LLM
	llmConfig    *interfaces.LLMConfig
	logger       logging.Logger
}

// Option represents an option for configuring an agent
type Option func(*Agent)

// WithName sets the name of the agent
func WithName(name string) Option {
	return func(a *Agent) {
		a.name = name
	}
}

// WithInstructions sets the system instructions of the agent
func WithInstructions(instructions string) Option {
	return func(a *Agent) {
		a.instructions = instructions
	}
}

// WithModelName sets the model the run configuration's provider resolves for this agent
func WithModelName(name string) Option {
	return func(a *Agent) {
		a.modelName = name
	}
}

// WithModel binds a concrete model to the agent
func WithModel(model interfaces.LLM) Option {
	return func(a *Agent) {
		a.model = model
	}
}

// WithLLMConfig sets the sampling parameters for the agent's calls
func WithLLMConfig(config interfaces.LLMConfig) Option {
	return func(a *Agent) {
		a.llmConfig = &config
	}
}

// WithLogger sets the logger for the agent
func WithLogger(logger logging.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// NewAgent creates a new agent with the given options
func NewAgent(options ...Option) (*Agent, error) {
	agent := &Agent{}
	for _, option := range options {
		option(agent)
	}

	if strings.TrimSpace(agent.name) == "" {
		return nil, ErrNameRequired
	}

	if agent.logger == nil {
		agent.logger = logging.New()
	}

	return agent, nil
}

// GetName returns the name of the agent
func (a *Agent) GetName() string {
	return a.name
}

// GetInstructions returns the system instructions of the agent
func (a *Agent) GetInstructions() string {
	return a.instructions
}

// GetModelName returns the model name the agent asks the provider for
func (a *Agent) GetModelName() string {
	return a.modelName
}

// GetModel returns the model bound to the agent, if any
func (a *Agent) GetModel() interfaces.LLM {
	return a.model
}

// GetLogger returns the logger of the agent
func (a *Agent) GetLogger() logging.Logger {
	return a.logger
}
