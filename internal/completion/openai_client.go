package completion

import (
	"context"
	"strings"
	"sync"

	"promptdeck/internal/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient sends completions to OpenAI, or to any OpenAI-compatible host via BaseURL.
type OpenAIClient struct {
	cfg Config

	once   sync.Once
	client *openai.Client
}

// NewOpenAIClient creates an OpenAI client with lazy initialization.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	return &OpenAIClient{cfg: cfg}
}

// ProviderName returns "openai".
func (c *OpenAIClient) ProviderName() string {
	return ProviderOpenAI
}

func (c *OpenAIClient) initializeClient() {
	c.once.Do(func() {
		options := []option.RequestOption{
			option.WithAPIKey(c.cfg.APIKey),
			option.WithMaxRetries(0), // one request per submit
		}
		if c.cfg.BaseURL != "" {
			options = append(options, option.WithBaseURL(ensureTrailingSlash(c.cfg.BaseURL)))
		}
		if hc := httpClient(c.cfg.Transport); hc != nil {
			options = append(options, option.WithHTTPClient(hc))
		}

		client := openai.NewClient(options...)
		c.client = &client
		logger.Debug("OpenAI client initialized", "provider", ProviderOpenAI)
	})
}

// Complete sends the composed payload as a single user message.
func (c *OpenAIClient) Complete(ctx context.Context, requestText, systemPrompt string) (string, error) {
	c.initializeClient()

	ctx, cancel := withTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload := BuildPayload(requestText, systemPrompt)
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(payload),
		},
	}

	logger.Debug("Sending OpenAI request", "model", c.cfg.Model, "payload_length", len(payload))
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI request failed", "error", err)
		return "", completionError(ProviderOpenAI, err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		logger.Error("Empty OpenAI response")
		return "", completionError(ProviderOpenAI, ErrEmptyResponse)
	}

	content := completion.Choices[0].Message.Content
	logger.Debug("OpenAI response received", "content_length", len(content))
	return content, nil
}

func ensureTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
