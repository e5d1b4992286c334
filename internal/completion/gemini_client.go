package completion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"promptdeck/internal/logger"

	"google.golang.org/genai"
)

// GeminiClient sends completions to the Google Gemini API.
// The underlying genai client is created lazily on the first request.
type GeminiClient struct {
	cfg Config

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiClient creates a Gemini client with lazy initialization.
func NewGeminiClient(cfg Config) *GeminiClient {
	return &GeminiClient{cfg: cfg}
}

// ProviderName returns "gemini".
func (c *GeminiClient) ProviderName() string {
	return ProviderGemini
}

// Model returns the model identifier requests are sent to.
func (c *GeminiClient) Model() string {
	return c.cfg.Model
}

func (c *GeminiClient) initializeClient(ctx context.Context) error {
	c.once.Do(func() {
		clientConfig := &genai.ClientConfig{
			APIKey:  c.cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if hc := httpClient(c.cfg.Transport); hc != nil {
			clientConfig.HTTPClient = hc
		}
		if c.cfg.BaseURL != "" {
			clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: c.cfg.BaseURL}
		}

		client, err := genai.NewClient(ctx, clientConfig)
		if err != nil {
			c.initErr = fmt.Errorf("failed to create Gemini client: %w", err)
			return
		}
		c.client = client
		logger.Debug("Gemini client initialized", "provider", ProviderGemini)
	})
	return c.initErr
}

// Complete sends the composed payload as a single user turn.
func (c *GeminiClient) Complete(ctx context.Context, requestText, systemPrompt string) (string, error) {
	if err := c.initializeClient(ctx); err != nil {
		return "", completionError(ProviderGemini, err)
	}

	ctx, cancel := withTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload := BuildPayload(requestText, systemPrompt)
	contents := []*genai.Content{
		genai.NewContentFromText(payload, genai.RoleUser),
	}

	logger.Debug("Gemini request starting", "model", c.cfg.Model, "payload_length", len(payload))
	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, nil)
	if err != nil {
		logger.Error("Gemini request failed", "error", err)
		return "", completionError(ProviderGemini, err)
	}

	text := extractGeminiText(result)
	if text == "" {
		logger.Error("No content in Gemini response")
		return "", completionError(ProviderGemini, ErrEmptyResponse)
	}

	logger.Debug("Gemini response received", "content_length", len(text), "elapsed", time.Since(start))
	return text, nil
}

// extractGeminiText concatenates the text parts of every candidate, skipping thought parts.
func extractGeminiText(result *genai.GenerateContentResponse) string {
	if result == nil {
		return ""
	}

	var sb strings.Builder
	for _, candidate := range result.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Text == "" || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
