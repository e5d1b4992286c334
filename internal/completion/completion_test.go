package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptdeck/pkg/decktypes"
)

func TestBuildPayload(t *testing.T) {
	tests := []struct {
		name         string
		requestText  string
		systemPrompt string
		expected     string
	}{
		{"no system prompt", "hello", "", "hello"},
		{"with system prompt", "2+2?", "You are a math tutor.", "You are a math tutor.\n\nUser: 2+2?"},
		{"multiline form text", "problem: 2x+3=7\nsubject: Algebra", "Solve it.", "Solve it.\n\nUser: problem: 2x+3=7\nsubject: Algebra"},
		{"whitespace prompt is not empty", "hi", " ", " \n\nUser: hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildPayload(tt.requestText, tt.systemPrompt))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		_, err := New(Config{Provider: ProviderOpenAI})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key not configured")
	})

	t.Run("unsupported provider", func(t *testing.T) {
		_, err := New(Config{Provider: "moonshot", APIKey: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported provider")
	})

	t.Run("default provider is gemini", func(t *testing.T) {
		client, err := New(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, client.ProviderName())
		gemini, ok := client.(*GeminiClient)
		require.True(t, ok)
		assert.Equal(t, "gemini-pro", gemini.Model())
	})

	for _, p := range SupportedProviders() {
		t.Run(p, func(t *testing.T) {
			client, err := New(Config{Provider: strings.ToUpper(p), APIKey: "k"})
			require.NoError(t, err)
			assert.Equal(t, p, client.ProviderName())
		})
	}
}

func readJSON(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func TestOpenAIClient_Complete(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		req := readJSON(t, r)
		assert.Equal(t, "gpt-4o-mini", req["model"])
		messages, ok := req["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 1)
		msg := messages[0].(map[string]any)
		assert.Equal(t, "user", msg["role"])
		assert.Equal(t, "Be brief.\n\nUser: hello", msg["content"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Hi there"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client, err := New(Config{Provider: ProviderOpenAI, APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), "hello", "Be brief.")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIClient_ErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	client, err := New(Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello", "")
	var cErr *decktypes.CompletionError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, ProviderOpenAI, cErr.Provider)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer server.Close()

	client, err := New(Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello", "")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAnthropicClient_Complete(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "anthropic-key", r.Header.Get("X-Api-Key"))

		req := readJSON(t, r)
		assert.Equal(t, "claude-3-5-haiku-latest", req["model"])
		_, hasSystem := req["system"]
		assert.False(t, hasSystem, "system prompt travels inside the user message")

		messages := req["messages"].([]any)
		require.Len(t, messages, 1)
		content := messages[0].(map[string]any)["content"].([]any)
		require.Len(t, content, 1)
		assert.Equal(t, "Translate.\n\nUser: bonjour", content[0].(map[string]any)["text"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
			"content":[{"type":"text","text":"Hello"},{"type":"text","text":"!"}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`))
	}))
	defer server.Close()

	client, err := New(Config{Provider: ProviderAnthropic, APIKey: "anthropic-key", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), "bonjour", "Translate.")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnthropicClient_ErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`))
	}))
	defer server.Close()

	client, err := New(Config{Provider: ProviderAnthropic, APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello", "")
	var cErr *decktypes.CompletionError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, ProviderAnthropic, cErr.Provider)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeminiClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-pro:generateContent"), r.URL.Path)
		assert.Equal(t, "gemini-key", r.Header.Get("X-Goog-Api-Key"))

		req := readJSON(t, r)
		contents := req["contents"].([]any)
		require.Len(t, contents, 1)
		first := contents[0].(map[string]any)
		assert.Equal(t, "user", first["role"])
		parts := first["parts"].([]any)
		assert.Equal(t, "hello", parts[0].(map[string]any)["text"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[
			{"text":"thinking...","thought":true},{"text":"Hi "},{"text":"friend"}]}}]}`))
	}))
	defer server.Close()

	client, err := New(Config{Provider: ProviderGemini, APIKey: "gemini-key", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "Hi friend", reply)
}

func TestGeminiClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client, err := New(Config{Provider: ProviderGemini, APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "hello", "")
	var cErr *decktypes.CompletionError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, ProviderGemini, cErr.Provider)
}

func TestClient_TimeoutAndCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	t.Run("timeout", func(t *testing.T) {
		client, err := New(Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond})
		require.NoError(t, err)

		_, err = client.Complete(context.Background(), "hello", "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded), err.Error())
	})

	t.Run("cancelled context", func(t *testing.T) {
		client, err := New(Config{Provider: ProviderAnthropic, APIKey: "k", BaseURL: server.URL})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		_, err = client.Complete(ctx, "hello", "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled), err.Error())
	})
}
