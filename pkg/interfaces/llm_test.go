package interfaces

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLLMConfigMergesOverDefaults(t *testing.T) {
	defaults := LLMConfig{Temperature: Float(0.7), TopP: 0.9}

	params := ApplyGenerateOptions(defaults, WithLLMConfig(LLMConfig{MaxTokens: 512}))

	require.NotNil(t, params.LLMConfig)
	require.NotNil(t, params.LLMConfig.Temperature)
	assert.InDelta(t, 0.7, *params.LLMConfig.Temperature, 1e-9)
	assert.InDelta(t, 0.9, params.LLMConfig.TopP, 1e-9)
	assert.Equal(t, 512, params.LLMConfig.MaxTokens)
}

func TestWithTemperatureZeroIsKept(t *testing.T) {
	defaults := LLMConfig{Temperature: Float(0.7)}

	params := ApplyGenerateOptions(defaults, WithTemperature(0))

	require.NotNil(t, params.LLMConfig.Temperature)
	assert.Zero(t, *params.LLMConfig.Temperature)
	assert.InDelta(t, 0.7, *defaults.Temperature, 1e-9)
}

func TestMergeLeavesUnsetFields(t *testing.T) {
	base := LLMConfig{Temperature: Float(0.2), MaxTokens: 100}

	merged := base.Merge(LLMConfig{TopP: 0.5})

	require.NotNil(t, merged.Temperature)
	assert.InDelta(t, 0.2, *merged.Temperature, 1e-9)
	assert.InDelta(t, 0.5, merged.TopP, 1e-9)
	assert.Equal(t, 100, merged.MaxTokens)
}
