package agent

import (
	"fmt"
	"os"

	"github.com/tagus/physai-agent/pkg/interfaces"
	"gopkg.in/yaml.v3"
)

// AgentConfig represents an agent definition loaded from YAML
type AgentConfig struct {
	Name         string                `yaml:"name"`
	Instructions string                `yaml:"instructions"`
	Model        string                `yaml:"model,omitempty"`
	LLMConfig    *interfaces.LLMConfig `yaml:"llm_config,omitempty"`
}

// LoadAgentConfig loads an agent definition from a YAML file
func LoadAgentConfig(path string) (*AgentConfig, error) {
	// #nosec G304 -- path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent config: %w", err)
	}

	var config AgentConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse agent config %s: %w", path, err)
	}

	return &config, nil
}

// NewAgentFromConfig creates an agent from a definition; options are applied after the definition
func NewAgentFromConfig(config *AgentConfig, options ...Option) (*Agent, error) {
	if config == nil {
		return nil, fmt.Errorf("agent config is required")
	}

	base := []Option{
		WithName(config.Name),
		WithInstructions(config.Instructions),
		WithModelName(config.Model),
	}
	if config.LLMConfig != nil {
		base = append(base, WithLLMConfig(*config.LLMConfig))
	}

	return NewAgent(append(base, options...)...)
}
