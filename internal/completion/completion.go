// Package completion provides the clients that send one composed request to a
// hosted completion service and return the generated text.
//
// Every client follows the same contract: the system prompt, when present, is
// folded into the payload ahead of the request text; exactly one request is
// made per call; and any failure surfaces as a *decktypes.CompletionError.
package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"promptdeck/internal/logger"
	"promptdeck/pkg/decktypes"
)

// Provider names accepted by New.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// DefaultModels is the fixed model identifier used per provider when none is configured.
var DefaultModels = map[string]string{
	ProviderGemini:    "gemini-pro",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

// ErrEmptyResponse is wrapped into a CompletionError when the service returns no text.
var ErrEmptyResponse = errors.New("empty response content")

// Config holds everything needed to construct a completion client.
type Config struct {
	Provider string
	APIKey   string // opaque credential, never logged
	Model    string
	BaseURL  string        // optional endpoint override
	Timeout  time.Duration // 0 means no timeout
	// Transport, when set, is used for all outbound HTTP (e.g. a DebugTransport).
	Transport http.RoundTripper
}

// SupportedProviders returns the provider names New understands.
func SupportedProviders() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic}
}

// New creates the client for cfg.Provider. A missing API key is a configuration
// error reported here, before any session exists.
func New(cfg Config) (decktypes.CompletionClient, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGemini
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not configured for provider %s", provider)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModels[provider]
	}
	cfg.Provider = provider

	logger.Debug("Creating completion client", "provider", provider, "model", cfg.Model, "base_url", cfg.BaseURL)

	switch provider {
	case ProviderGemini:
		return NewGeminiClient(cfg), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider '%s' (supported: %s)", provider, strings.Join(SupportedProviders(), ", "))
	}
}

// BuildPayload folds the system prompt into the request text.
// With an empty system prompt the request text is returned unmodified.
func BuildPayload(requestText, systemPrompt string) string {
	if systemPrompt == "" {
		return requestText
	}
	return systemPrompt + "\n\nUser: " + requestText
}

// withTimeout applies the configured timeout, if any, to ctx.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// httpClient returns an *http.Client using transport, or nil to let the SDK pick its default.
func httpClient(transport http.RoundTripper) *http.Client {
	if transport == nil {
		return nil
	}
	return &http.Client{Transport: transport}
}

func completionError(provider string, err error) error {
	return &decktypes.CompletionError{Provider: provider, Err: err}
}
