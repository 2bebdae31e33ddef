// Package insight is the glue to the external LLM completion service
// that turns a schema record, the original query text, and a tabular
// result into prose insights. It is provider-agnostic with retry and
// ordered endpoint fallback; the core never depends on it.
package insight

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/schemalab/engine"
	"github.com/c360studio/schemalab/schema"
)

// maxResponseSize limits the LLM response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Unavailable is the documented failure string surfaced in place of
// prose when every endpoint fails.
const Unavailable = "Insight generation is currently unavailable."

// Endpoint describes one LLM endpoint in the fallback chain.
type Endpoint struct {
	// Provider is the provider adapter name (anthropic, ollama, openai).
	Provider string `yaml:"provider" json:"provider"`

	// URL is the API base URL (empty uses the provider default).
	URL string `yaml:"url,omitempty" json:"url,omitempty"`

	// Model is the model identifier sent to the provider.
	Model string `yaml:"model" json:"model"`

	// MaxTokens limits response length. 0 uses the provider default.
	MaxTokens int `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", or "assistant"
	Content string `json:"content"` // Message content
}

// Request defines an LLM completion request.
type Request struct {
	// Messages is the chat history to send to the LLM.
	Messages []Message

	// Temperature controls randomness. nil uses endpoint default, 0 is
	// deterministic.
	Temperature *float64

	// MaxTokens limits response length. 0 uses endpoint default.
	MaxTokens int
}

// TokenUsage represents token consumption details for an LLM call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response contains the LLM completion result.
type Response struct {
	// RequestID uniquely identifies this LLM call.
	RequestID string

	// Content is the generated text.
	Content string

	// Model is the actual model that was used.
	Model string

	// Usage contains token consumption metrics.
	Usage TokenUsage

	// FinishReason indicates why generation stopped.
	FinishReason string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(client *Client) {
		client.retryConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithTemperature sets the sampling temperature sent with every
// request. Unset, the endpoint default applies.
func WithTemperature(t float64) ClientOption {
	return func(client *Client) {
		client.temperature = &t
	}
}

// Client is a provider-agnostic LLM client. Endpoints form an ordered
// fallback chain: the first endpoint that completes wins.
type Client struct {
	endpoints   []Endpoint
	httpClient  *http.Client
	retryConfig RetryConfig
	temperature *float64
	logger      *slog.Logger
}

// NewClient creates a client over the given fallback chain.
func NewClient(endpoints []Endpoint, opts ...ClientOption) *Client {
	c := &Client{
		endpoints:   endpoints,
		retryConfig: DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 180 * time.Second, // Allow time for LLM responses
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Generate produces prose insights for a query run. It receives the
// three collaborator inputs fixed by the interface contract: the
// active schema record, the original query text, and the tabular
// result. On failure it returns the documented failure string along
// with the error.
func (c *Client) Generate(ctx context.Context, s *schema.Schema, queryText string, result *engine.Result) (string, error) {
	resp, err := c.Complete(ctx, Request{
		Messages: buildInsightMessages(s, queryText, result),
	})
	if err != nil {
		return Unavailable, err
	}
	return resp.Content, nil
}

// Complete sends a completion request, handling retry and fallback logic.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}
	if len(c.endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints configured")
	}

	if req.Temperature == nil {
		req.Temperature = c.temperature
	}

	requestID := uuid.New().String()

	var lastErr error
	for _, ep := range c.endpoints {
		resp, err := c.tryEndpointWithRetry(ctx, ep, req)
		if err == nil {
			resp.RequestID = requestID
			return resp, nil
		}

		lastErr = err

		// Fatal errors indicate config problems, not endpoint health;
		// fallbacks won't help.
		if IsFatal(err) {
			c.logger.Warn("Fatal error, not trying fallbacks", "error", err)
			return nil, err
		}

		c.logger.Warn("Endpoint failed, trying fallback",
			"model", ep.Model,
			"provider", ep.Provider,
			"error", err)
	}

	return nil, fmt.Errorf("all endpoints failed: %w", lastErr)
}

// tryEndpointWithRetry attempts a request with retry logic.
func (c *Client) tryEndpointWithRetry(ctx context.Context, ep Endpoint, req Request) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		resp, err := c.doRequest(ctx, ep, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if IsFatal(err) {
			return nil, err
		}

		if attempt < c.retryConfig.MaxAttempts {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debug("Request failed, retrying",
				"attempt", attempt,
				"max_attempts", c.retryConfig.MaxAttempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				// Continue to retry
			}
		}
	}

	return nil, lastErr
}

// calculateBackoff computes exponential backoff duration with jitter.
// Jitter prevents thundering herd when multiple clients retry simultaneously.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= c.retryConfig.BackoffMultiplier
	}

	backoff := time.Duration(float64(c.retryConfig.BackoffBase) * multiplier)
	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}

	// Add jitter: +/- 25% to prevent synchronized retries
	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}

// doRequest executes a single HTTP request to the LLM endpoint.
func (c *Client) doRequest(ctx context.Context, ep Endpoint, req Request) (*Response, error) {
	provider := GetProvider(ep.Provider)
	if provider == nil {
		return nil, NewFatalError(fmt.Errorf("unknown provider: %s", ep.Provider))
	}

	url := provider.BuildURL(ep.URL)

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = ep.MaxTokens
	}

	body, err := provider.BuildRequestBody(ep.Model, req.Messages, req.Temperature, maxTokens)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	c.logger.Debug("Sending LLM request",
		"provider", ep.Provider,
		"model", ep.Model,
		"url", url,
		"messages", len(req.Messages))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	provider.SetHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Network errors are transient
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	// Read response body with size limit to prevent memory exhaustion
	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(httpResp.StatusCode, respBody)
	}

	return provider.ParseResponse(respBody, ep.Model)
}

// classifyHTTPError determines if an HTTP error is transient or fatal.
func classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("LLM API error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		// Rate limiting is transient
		return NewTransientError(err)
	case statusCode >= 500:
		// Server errors are transient
		return NewTransientError(err)
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden,
		statusCode == http.StatusBadRequest,
		statusCode == http.StatusNotFound:
		// Auth and request shape problems won't heal on retry
		return NewFatalError(err)
	default:
		return NewTransientError(err)
	}
}
