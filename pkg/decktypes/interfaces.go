package decktypes

import "context"

// CompletionClient sends one composed request to a hosted completion service.
// Implementations must not keep per-call state; every call is independent.
type CompletionClient interface {
	// Complete sends requestText, prefixed by systemPrompt when it is non-empty,
	// and returns the generated text. Failures are returned as *CompletionError.
	Complete(ctx context.Context, requestText, systemPrompt string) (string, error)

	// ProviderName returns the provider identifier (e.g. "gemini").
	ProviderName() string
}

// TemplateLookup resolves template ids. *templates.Registry implements it.
type TemplateLookup interface {
	List() []TemplateDescriptor
	Get(id string) (TemplateDescriptor, error)
}
