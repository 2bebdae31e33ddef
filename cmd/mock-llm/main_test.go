package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postChat(t *testing.T, ts *httptest.Server, model string) chatResponse {
	t.Helper()

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: "analyze these results"},
		},
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/v1/chat/completions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var chat chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&chat))
	return chat
}

func newTestServer(fixtures map[string]string) *httptest.Server {
	s := newServer(fixtures)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/stats", s.handleStats)
	return httptest.NewServer(mux)
}

func TestDefaultResponse(t *testing.T) {
	ts := newTestServer(nil)
	defer ts.Close()

	chat := postChat(t, ts, "qwen2.5-coder:32b")
	require.Len(t, chat.Choices, 1)
	assert.Equal(t, "assistant", chat.Choices[0].Message.Role)
	assert.Contains(t, chat.Choices[0].Message.Content, "Recommendation")
	assert.Equal(t, "stop", chat.Choices[0].FinishReason)
	assert.Equal(t, "qwen2.5-coder:32b", chat.Model)
}

func TestFixtureResponse(t *testing.T) {
	ts := newTestServer(map[string]string{
		"test-model": "Revenue is flat.",
	})
	defer ts.Close()

	chat := postChat(t, ts, "test-model")
	assert.Equal(t, "Revenue is flat.", chat.Choices[0].Message.Content)

	// Unknown models fall back to the default response
	other := postChat(t, ts, "other-model")
	assert.NotEqual(t, "Revenue is flat.", other.Choices[0].Message.Content)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/chat/completions")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStats(t *testing.T) {
	ts := newTestServer(nil)
	defer ts.Close()

	postChat(t, ts, "model-a")
	postChat(t, ts, "model-a")
	postChat(t, ts, "model-b")

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats struct {
		TotalCalls   int64            `json:"total_calls"`
		CallsByModel map[string]int64 `json:"calls_by_model"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.EqualValues(t, 3, stats.TotalCalls)
	assert.EqualValues(t, 2, stats.CallsByModel["model-a"])
	assert.EqualValues(t, 1, stats.CallsByModel["model-b"])
}

func TestHealth(t *testing.T) {
	ts := newTestServer(nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoadFixtures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qwen2.5-coder_32b.txt"), []byte("canned"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	fixtures, err := loadFixtures(dir)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)

	// Underscores in file names map back to colons in model names
	content, ok := fixtures["qwen2.5-coder:32b"]
	require.True(t, ok, "expected model key with colon, got %v", keys(fixtures))
	assert.Equal(t, "canned", content)
}

func keys(m map[string]string) string {
	var ks []string
	for k := range m {
		ks = append(ks, k)
	}
	return strings.Join(ks, ", ")
}
