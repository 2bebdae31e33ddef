package providers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/schemalab/insight"
)

func TestAnthropicProvider_BuildURL(t *testing.T) {
	p := &AnthropicProvider{}

	assert.Equal(t, "https://api.anthropic.com/v1/messages", p.BuildURL(""))
	assert.Equal(t, "https://proxy.example.com/v1/messages", p.BuildURL("https://proxy.example.com/"))
}

func TestAnthropicProvider_BuildRequestBodyExtractsSystem(t *testing.T) {
	p := &AnthropicProvider{}

	messages := []insight.Message{
		{Role: "system", Content: "You are a graph analyst."},
		{Role: "user", Content: "Analyze this."},
	}

	body, err := p.BuildRequestBody("claude-sonnet", messages, nil, 0)
	require.NoError(t, err)

	var req anthropicRequest
	require.NoError(t, json.Unmarshal(body, &req))

	assert.Equal(t, "You are a graph analyst.", req.System)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	// Anthropic requires max_tokens; a default is substituted
	assert.Equal(t, 4096, req.MaxTokens)
}

func TestAnthropicProvider_SetHeaders(t *testing.T) {
	p := &AnthropicProvider{}

	req, err := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", nil)
	require.NoError(t, err)
	p.SetHeaders(req)

	assert.Equal(t, anthropicVersion, req.Header.Get("anthropic-version"))
}

func TestAnthropicProvider_ParseResponse(t *testing.T) {
	body := `{
		"id": "msg_123",
		"type": "message",
		"role": "assistant",
		"content": [{"type": "text", "text": "Insight one. "}, {"type": "text", "text": "Insight two."}],
		"model": "claude-sonnet",
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 20, "output_tokens": 10}
	}`

	p := &AnthropicProvider{}
	resp, err := p.ParseResponse([]byte(body), "claude-sonnet")
	require.NoError(t, err)

	assert.Equal(t, "Insight one. Insight two.", resp.Content)
	assert.Equal(t, "end_turn", resp.FinishReason)
	assert.Equal(t, 30, resp.Usage.TotalTokens)
}

func TestAnthropicProvider_ParseResponseEmptyContent(t *testing.T) {
	p := &AnthropicProvider{}
	_, err := p.ParseResponse([]byte(`{"content": []}`), "m")
	require.Error(t, err)
}

func TestOpenAIProvider_BuildURL(t *testing.T) {
	p := &OpenAIProvider{}

	assert.Equal(t, "https://api.openai.com/v1/chat/completions", p.BuildURL(""))
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", p.BuildURL("https://openrouter.ai/api/v1"))
}

func TestProvidersAreRegistered(t *testing.T) {
	for _, name := range []string{"ollama", "anthropic", "openai"} {
		assert.NotNil(t, insight.GetProvider(name), "provider %s", name)
	}
}
