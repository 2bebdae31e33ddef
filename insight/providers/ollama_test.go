package providers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/schemalab/insight"
)

func TestOllamaProvider_BuildURL(t *testing.T) {
	p := &OllamaProvider{}

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{
			name:    "empty uses default",
			baseURL: "",
			want:    "http://localhost:11434/v1/chat/completions",
		},
		{
			name:    "custom base URL",
			baseURL: "http://myserver:8080/v1",
			want:    "http://myserver:8080/v1/chat/completions",
		},
		{
			name:    "trailing slash handled",
			baseURL: "http://localhost:11434/v1/",
			want:    "http://localhost:11434/v1/chat/completions",
		},
		{
			name:    "already has endpoint",
			baseURL: "http://localhost:11434/v1/chat/completions",
			want:    "http://localhost:11434/v1/chat/completions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.BuildURL(tt.baseURL)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOllamaProvider_BuildRequestBody(t *testing.T) {
	p := &OllamaProvider{}

	messages := []insight.Message{
		{Role: "system", Content: "You are helpful."},
		{Role: "user", Content: "Hello"},
	}

	temp := 0.7
	body, err := p.BuildRequestBody("qwen2.5-coder:14b", messages, &temp, 2048)
	require.NoError(t, err)

	var req openAIRequest
	require.NoError(t, json.Unmarshal(body, &req))

	assert.Equal(t, "qwen2.5-coder:14b", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	require.NotNil(t, req.Temperature)
	assert.Equal(t, 0.7, *req.Temperature)
	require.NotNil(t, req.MaxTokens)
	assert.Equal(t, 2048, *req.MaxTokens)
}

func TestOllamaProvider_BuildRequestBodyOmitsOptionalFields(t *testing.T) {
	p := &OllamaProvider{}

	body, err := p.BuildRequestBody("m", []insight.Message{{Role: "user", Content: "hi"}}, nil, 0)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.NotContains(t, raw, "temperature")
	assert.NotContains(t, raw, "max_tokens")
}

func TestOllamaProvider_ParseResponse(t *testing.T) {
	body := `{
		"model": "qwen2.5-coder:14b",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hi there"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
	}`

	p := &OllamaProvider{}
	resp, err := p.ParseResponse([]byte(body), "qwen2.5-coder:14b")
	require.NoError(t, err)

	assert.Equal(t, "Hi there", resp.Content)
	assert.Equal(t, "qwen2.5-coder:14b", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestOllamaProvider_ParseResponseNoChoices(t *testing.T) {
	p := &OllamaProvider{}
	_, err := p.ParseResponse([]byte(`{"choices": []}`), "m")
	require.Error(t, err)
}

func TestOllamaProvider_ParseResponseInvalidJSON(t *testing.T) {
	p := &OllamaProvider{}
	_, err := p.ParseResponse([]byte(`not json`), "m")
	require.Error(t, err)
}
