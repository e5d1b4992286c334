package completion

import (
	"context"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"promptdeck/internal/logger"
)

// anthropicMaxTokens bounds the reply length; the Messages API requires a value.
const anthropicMaxTokens = 4096

// AnthropicClient sends completions to Anthropic's Messages API.
type AnthropicClient struct {
	cfg Config

	once   sync.Once
	client *anthropic.Client
}

// NewAnthropicClient creates an Anthropic client with lazy initialization.
func NewAnthropicClient(cfg Config) *AnthropicClient {
	return &AnthropicClient{cfg: cfg}
}

// ProviderName returns "anthropic".
func (c *AnthropicClient) ProviderName() string {
	return ProviderAnthropic
}

func (c *AnthropicClient) initializeClient() {
	c.once.Do(func() {
		options := []option.RequestOption{
			option.WithAPIKey(c.cfg.APIKey),
			option.WithMaxRetries(0),
		}
		if c.cfg.BaseURL != "" {
			options = append(options, option.WithBaseURL(ensureTrailingSlash(c.cfg.BaseURL)))
		}
		if hc := httpClient(c.cfg.Transport); hc != nil {
			options = append(options, option.WithHTTPClient(hc))
		}

		client := anthropic.NewClient(options...)
		c.client = &client
		logger.Debug("Anthropic client initialized", "provider", ProviderAnthropic)
	})
}

// Complete sends the composed payload as a single user message.
func (c *AnthropicClient) Complete(ctx context.Context, requestText, systemPrompt string) (string, error) {
	c.initializeClient()

	ctx, cancel := withTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload := BuildPayload(requestText, systemPrompt)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(payload)),
		},
	}

	logger.Debug("Sending Anthropic request", "model", c.cfg.Model, "payload_length", len(payload))
	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("Anthropic request failed", "error", err)
		return "", completionError(ProviderAnthropic, err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		sb.WriteString(block.Text)
	}
	content := sb.String()
	if content == "" {
		logger.Error("Empty Anthropic response")
		return "", completionError(ProviderAnthropic, ErrEmptyResponse)
	}

	logger.Debug("Anthropic response received", "content_length", len(content))
	return content, nil
}
