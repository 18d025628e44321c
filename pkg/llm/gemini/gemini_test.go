package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagus/physai-agent/pkg/interfaces"
	"github.com/tagus/physai-agent/pkg/logging"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc, options ...Option) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	options = append([]Option{
		WithBaseURL(server.URL + "/"),
		WithLogger(logging.NewWithWriter(io.Discard)),
	}, options...)
	provider, err := NewProvider(context.Background(), "test-key", options...)
	require.NoError(t, err)
	return provider
}

func TestGenerateDetailed(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent"), r.URL.Path)

		var body struct {
			Contents []struct {
				Role  string `json:"role"`
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			SystemInstruction *struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"systemInstruction"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 3)
		assert.Equal(t, "user", body.Contents[0].Role)
		assert.Equal(t, "model", body.Contents[1].Role)
		assert.Equal(t, "what is a digital twin?", body.Contents[2].Parts[0].Text)
		require.NotNil(t, body.SystemInstruction)
		assert.Equal(t, "be brief", body.SystemInstruction.Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "a virtual replica"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 9, "candidatesTokenCount": 3, "totalTokenCount": 12}
		}`))
	})

	llm, err := provider.GetModel("gemini-2.0-flash")
	require.NoError(t, err)

	resp, err := llm.GenerateDetailed(context.Background(), "what is a digital twin?",
		interfaces.WithSystemMessage("be brief"),
		interfaces.WithHistory([]interfaces.Message{
			{Role: interfaces.MessageRoleUser, Content: "hi"},
			{Role: interfaces.MessageRoleAssistant, Content: "hello"},
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, "a virtual replica", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
}

func TestGenerateSendsDefaultLLMConfig(t *testing.T) {
	var generationConfig map[string]interface{}
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			GenerationConfig map[string]interface{} `json:"generationConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		generationConfig = body.GenerationConfig

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "ok"}]}}]}`))
	}, WithDefaultLLMConfig(interfaces.LLMConfig{Temperature: interfaces.Float(0.2), MaxTokens: 128}))

	llm, err := provider.GetModel("gemini-2.0-flash")
	require.NoError(t, err)

	_, err = llm.Generate(context.Background(), "hi")
	require.NoError(t, err)
	require.NotNil(t, generationConfig)
	require.Contains(t, generationConfig, "temperature")
	assert.InDelta(t, 0.2, generationConfig["temperature"], 1e-6)
	assert.EqualValues(t, 128, generationConfig["maxOutputTokens"])

	_, err = llm.Generate(context.Background(), "hi", interfaces.WithTemperature(0))
	require.NoError(t, err)
	require.Contains(t, generationConfig, "temperature")
	assert.InDelta(t, 0.0, generationConfig["temperature"], 1e-9)
	assert.EqualValues(t, 128, generationConfig["maxOutputTokens"])
}

func TestGenerateEmptyResponse(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	llm, err := provider.GetModel("gemini-2.0-flash")
	require.NoError(t, err)

	_, err = llm.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGetModelRequiresName(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := provider.GetModel("")
	assert.Error(t, err)
}
