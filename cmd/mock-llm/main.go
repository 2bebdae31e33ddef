// Package main implements a mock LLM server for offline development.
// It serves OpenAI-compatible /v1/chat/completions responses so the
// insight client can be exercised without a real model: point an
// ollama endpoint at it (e.g. http://localhost:11435/v1) and every
// completion returns canned insight text.
//
// Usage:
//
//	mock-llm -port 11435
//	mock-llm -fixtures /path/to/fixtures -port 11435
//
// Fixture files are text named by model ("qwen2.5-coder:32b" matches
// "qwen2.5-coder:32b.txt" with ":" replaced by "_"). Models without a
// fixture get the built-in default response.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const defaultResponse = `Based on the query results:

1. **Pattern**: Order activity is concentrated in a small set of repeat customers.
2. **Opportunity**: The top spenders are candidates for a loyalty program.
3. **Risk**: Several categories show thin product coverage.
4. **Recommendation**: Re-run the analysis with a wider order window to confirm the trend.
5. **Follow-up**: Which products drive the high-value orders?`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type server struct {
	fixtures map[string]string // model name -> response content
	calls    atomic.Int64

	mu           sync.Mutex
	callsByModel map[string]int64
}

func newServer(fixtures map[string]string) *server {
	return &server{
		fixtures:     fixtures,
		callsByModel: make(map[string]int64),
	}
}

func main() {
	fixtureDir := flag.String("fixtures", "", "directory containing fixture response files (optional)")
	port := flag.Int("port", 11435, "port to listen on")
	flag.Parse()

	fixtures := map[string]string{}
	if *fixtureDir != "" {
		loaded, err := loadFixtures(*fixtureDir)
		if err != nil {
			log.Fatalf("Failed to load fixtures from %s: %v", *fixtureDir, err)
		}
		fixtures = loaded
		log.Printf("Loaded %d fixture(s) from %s", len(fixtures), *fixtureDir)
	}

	s := newServer(fixtures)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/stats", s.handleStats)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Mock LLM server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	callNum := s.calls.Add(1)
	s.mu.Lock()
	s.callsByModel[req.Model]++
	s.mu.Unlock()

	log.Printf("[call %d] model=%s messages=%d", callNum, req.Model, len(req.Messages))

	content, ok := s.fixtures[req.Model]
	if !ok {
		content = defaultResponse
	}

	resp := chatResponse{
		ID:      fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{
			{
				Index: 0,
				Message: chatMessage{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{
			PromptTokens:     len(content) / 4, // rough estimate
			CompletionTokens: len(content) / 4,
			TotalTokens:      len(content) / 2,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleStats returns call counts for test assertions.
func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	callsByModel := make(map[string]int64, len(s.callsByModel))
	for model, count := range s.callsByModel {
		callsByModel[model] = count
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total_calls":    s.calls.Load(),
		"calls_by_model": callsByModel,
	})
}

// loadFixtures reads .txt files from dir and returns model -> content.
// File names map to models with "_" standing in for ":" (filesystems
// disallow colons), so "qwen2.5-coder_32b.txt" serves "qwen2.5-coder:32b".
func loadFixtures(dir string) (map[string]string, error) {
	fixtures := make(map[string]string)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".txt") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		model := strings.ReplaceAll(strings.TrimSuffix(info.Name(), ".txt"), "_", ":")
		fixtures[model] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fixtures, nil
}
