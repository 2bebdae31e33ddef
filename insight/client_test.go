package insight_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/schemalab/engine"
	"github.com/c360studio/schemalab/insight"
	_ "github.com/c360studio/schemalab/insight/providers"
	"github.com/c360studio/schemalab/query"
	"github.com/c360studio/schemalab/schema"
)

const openAIStyleBody = `{
	"model": "test-model",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "Two insights."}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func fastRetry() insight.RetryConfig {
	return insight.RetryConfig{
		MaxAttempts:       2,
		BackoffBase:       time.Millisecond,
		BackoffMultiplier: 1.0,
		MaxBackoff:        time.Millisecond,
	}
}

func TestCompleteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(openAIStyleBody))
	}))
	defer server.Close()

	client := insight.NewClient(
		[]insight.Endpoint{{Provider: "ollama", URL: server.URL, Model: "test-model"}},
		insight.WithRetryConfig(fastRetry()),
	)

	resp, err := client.Complete(context.Background(), insight.Request{
		Messages: []insight.Message{{Role: "user", Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Two insights.", resp.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.NotEmpty(t, resp.RequestID)
}

func TestCompleteAppliesClientTemperature(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)
		w.Write([]byte(openAIStyleBody))
	}))
	defer server.Close()

	client := insight.NewClient(
		[]insight.Endpoint{{Provider: "ollama", URL: server.URL, Model: "test-model"}},
		insight.WithRetryConfig(fastRetry()),
		insight.WithTemperature(0.2),
	)

	_, err := client.Complete(context.Background(), insight.Request{
		Messages: []insight.Message{{Role: "user", Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Contains(t, captured, `"temperature":0.2`)

	// a per-request temperature wins over the client default
	override := 0.9
	_, err = client.Complete(context.Background(), insight.Request{
		Messages:    []insight.Message{{Role: "user", Content: "hello"}},
		Temperature: &override,
	})
	require.NoError(t, err)
	assert.Contains(t, captured, `"temperature":0.9`)
}

func TestCompleteFallsBackToNextEndpoint(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openAIStyleBody))
	}))
	defer healthy.Close()

	client := insight.NewClient(
		[]insight.Endpoint{
			{Provider: "ollama", URL: broken.URL, Model: "bad"},
			{Provider: "ollama", URL: healthy.URL, Model: "good"},
		},
		insight.WithRetryConfig(fastRetry()),
	)

	resp, err := client.Complete(context.Background(), insight.Request{
		Messages: []insight.Message{{Role: "user", Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Two insights.", resp.Content)
}

func TestCompleteFatalErrorSkipsFallbacks(t *testing.T) {
	calls := 0
	unauthorized := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer unauthorized.Close()

	client := insight.NewClient(
		[]insight.Endpoint{
			{Provider: "ollama", URL: unauthorized.URL, Model: "bad"},
			{Provider: "ollama", URL: unauthorized.URL, Model: "never-reached"},
		},
		insight.WithRetryConfig(fastRetry()),
	)

	_, err := client.Complete(context.Background(), insight.Request{
		Messages: []insight.Message{{Role: "user", Content: "hello"}},
	})
	require.Error(t, err)
	assert.True(t, insight.IsFatal(err))
	assert.Equal(t, 1, calls)
}

func TestCompleteValidation(t *testing.T) {
	client := insight.NewClient(nil)

	_, err := client.Complete(context.Background(), insight.Request{})
	require.Error(t, err)

	_, err = client.Complete(context.Background(), insight.Request{
		Messages: []insight.Message{{Role: "user", Content: "hello"}},
	})
	require.Error(t, err)
}

func TestCompleteUnknownProviderIsFatal(t *testing.T) {
	client := insight.NewClient(
		[]insight.Endpoint{{Provider: "nonexistent", Model: "m"}},
		insight.WithRetryConfig(fastRetry()),
	)

	_, err := client.Complete(context.Background(), insight.Request{
		Messages: []insight.Message{{Role: "user", Content: "hello"}},
	})
	require.Error(t, err)
	assert.True(t, insight.IsFatal(err))
}

func TestGenerateEmbedsCollaboratorInputs(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)
		w.Write([]byte(openAIStyleBody))
	}))
	defer server.Close()

	client := insight.NewClient(
		[]insight.Endpoint{{Provider: "ollama", URL: server.URL, Model: "test-model"}},
		insight.WithRetryConfig(fastRetry()),
	)

	s, err := schema.Compile(schema.DefaultText)
	require.NoError(t, err)

	queryText := "FIND Customers with total order value greater than $500"
	result := &engine.Result{
		Columns: []string{engine.ColCustomerID, engine.ColTotalSpent},
		Rows:    []engine.Row{{engine.ColCustomerID: "CUST_001", engine.ColTotalSpent: 1250.50}},
	}

	text, err := client.Generate(context.Background(), s, queryText, result)
	require.NoError(t, err)
	assert.Equal(t, "Two insights.", text)

	// json.Marshal escapes ">", so match around the edge arrow
	assert.Contains(t, captured, "Graph Schema")
	assert.Contains(t, captured, "Customer")
	assert.Contains(t, captured, "CUST_001")
	assert.Contains(t, captured, "total order value")
}

func TestGenerateReturnsFailureString(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	client := insight.NewClient(
		[]insight.Endpoint{{Provider: "ollama", URL: broken.URL, Model: "bad"}},
		insight.WithRetryConfig(fastRetry()),
	)

	intent := query.Parse("show me everything")
	text, err := client.Generate(context.Background(), nil, intent.Raw, nil)
	require.Error(t, err)
	assert.Equal(t, insight.Unavailable, text)
}
