package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagus/physai-agent/pkg/config"
	"github.com/tagus/physai-agent/pkg/llm/gemini"
	"github.com/tagus/physai-agent/pkg/llm/openai"
	"github.com/tagus/physai-agent/pkg/logging"
)

var envVars = []string{
	"LLM_PROVIDER", "GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_MODEL", "GEMINI_TEMPERATURE", "GEMINI_TIMEOUT",
	"TRACING_DISABLED", "OTEL_SERVICE_NAME", "OTEL_COLLECTOR_ENDPOINT", "AGENT_NAME", "AGENT_INSTRUCTIONS",
	"AGENT_CONFIG_PATH", "SERVER_PORT", "SERVER_ALLOWED_ORIGIN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envVars {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
}

func quietLogger() logging.Logger {
	return logging.NewWithWriter(io.Discard)
}

func TestFromEnvBuildsGeminiRunConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "AIza-test")

	a, err := FromEnv(context.Background(), WithLogger(quietLogger()))
	require.NoError(t, err)

	require.NotNil(t, a.Client)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/", a.Client.BaseURL())
	assert.Equal(t, "AIza-test", a.Client.APIKey())

	model, ok := a.Model.(*openai.ChatCompletionsModel)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.0-flash", model.GetModel())
	assert.Same(t, a.Client, model.Client())

	assert.True(t, a.RunConfig.TracingDisabled)
	assert.Same(t, model, a.RunConfig.Model)
	assert.Same(t, a.Client, a.RunConfig.ModelProvider)
	assert.Nil(t, a.RunConfig.Tracer)
	assert.NoError(t, a.RunConfig.Validate())
	assert.NoError(t, a.Close(context.Background()))
}

func TestNewAcceptsAnyCredential(t *testing.T) {
	for _, key := range []string{"", "x", "not a real key", "ключ-🔑"} {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", key)

		a, err := FromEnv(context.Background(), WithLogger(quietLogger()))
		require.NoError(t, err, "key %q", key)
		assert.Equal(t, key, a.Client.APIKey())
		assert.True(t, a.RunConfig.TracingDisabled)
	}
}

func TestNewWarnsOnMissingKey(t *testing.T) {
	clearEnv(t)
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = New(context.Background(), cfg, WithLogger(logging.NewWithWriter(&buf)))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "GEMINI_API_KEY is not set")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	clearEnv(t)
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	cfg.LLM.Provider = "bedrock"

	_, err = New(context.Background(), cfg, WithLogger(quietLogger()))
	assert.Error(t, err)
}

func TestAskRoundTrip(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "AIza-test")
	t.Setenv("AGENT_INSTRUCTIONS", "Answer about robotics.")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer AIza-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gemini-2.0-flash", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "Answer about robotics.", body.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","model":"gemini-2.0-flash","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Gazebo simulates robots."}}],"usage":{"prompt_tokens":8,"completion_tokens":4,"total_tokens":12}}`))
	}))
	defer server.Close()
	t.Setenv("GEMINI_BASE_URL", server.URL+"/v1beta/")

	a, err := FromEnv(context.Background(), WithLogger(quietLogger()))
	require.NoError(t, err)

	result, err := a.Ask(context.Background(), "What is Gazebo?")
	require.NoError(t, err)
	assert.Equal(t, "Gazebo simulates robots.", result.FinalOutput)
	assert.Equal(t, 12, result.Usage.TotalTokens)
}

func TestGeminiProviderSelected(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "AIza-test")

	a, err := FromEnv(context.Background(), WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Nil(t, a.Client)
	_, ok := a.Provider.(*gemini.Provider)
	assert.True(t, ok)
	model, ok := a.Model.(*gemini.Model)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.0-flash", model.GetModel())
}

// redirectTransport sends every request to target, keeping path and query
type redirectTransport struct {
	target *url.URL
}

func (rt *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	req.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func TestGeminiProviderUsesConfiguredTemperature(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "AIza-test")
	t.Setenv("GEMINI_TEMPERATURE", "0.25")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent"), r.URL.Path)

		var body struct {
			GenerationConfig map[string]interface{} `json:"generationConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Contains(t, body.GenerationConfig, "temperature")
		assert.InDelta(t, 0.25, body.GenerationConfig["temperature"], 1e-6)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "URDF describes robots."}]}}]}`))
	}))
	defer server.Close()
	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	a, err := FromEnv(context.Background(),
		WithLogger(quietLogger()),
		WithHTTPClient(&http.Client{Transport: &redirectTransport{target: target}}),
	)
	require.NoError(t, err)

	result, err := a.Ask(context.Background(), "What is URDF?")
	require.NoError(t, err)
	assert.Equal(t, "URDF describes robots.", result.FinalOutput)
}

func TestAgentFromConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Docs Bot\ninstructions: Cite the module.\n"), 0o600))
	t.Setenv("AGENT_CONFIG_PATH", path)

	a, err := FromEnv(context.Background(), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, "Docs Bot", a.Agent.GetName())
	assert.True(t, strings.HasPrefix(a.Agent.GetInstructions(), "Cite"))
}
