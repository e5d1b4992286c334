// Package output provides console output for promptdeck with optional styling.
// Styling is injected through StyleProvider so the package has no theme dependency.
package output

// StyleProvider is implemented by themes to style semantic output.
type StyleProvider interface {
	// GetStyle returns the style for a semantic type such as "info" or "assistant".
	GetStyle(semantic string) TextStyle

	// IsAvailable reports whether styled output should be used at all.
	IsAvailable() bool

	// GetThemeType returns "dark", "light" or "auto" for picking a markdown style.
	GetThemeType() string
}

// TextStyle renders text. lipgloss.Style satisfies it.
type TextStyle interface {
	Render(strs ...string) string
}

// MarkdownRenderer turns markdown into terminal output.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// Mode selects how the printer renders.
type Mode int

const (
	// ModeAuto styles output when a provider is available
	ModeAuto Mode = iota
	// ModeStyled forces styling when a provider is set
	ModeStyled
	// ModePlain never styles and strips escape sequences
	ModePlain
	// ModeJSON writes one JSON object per line
	ModeJSON
)

// SemanticType is the meaning of a piece of output.
type SemanticType string

// Semantic types understood by themes.
const (
	SemanticPlain     SemanticType = "plain"
	SemanticInfo      SemanticType = "info"
	SemanticSuccess   SemanticType = "success"
	SemanticWarning   SemanticType = "warning"
	SemanticError     SemanticType = "error"
	SemanticHeading   SemanticType = "heading"
	SemanticUser      SemanticType = "user"
	SemanticAssistant SemanticType = "assistant"
	SemanticBadge     SemanticType = "badge"
	SemanticMuted     SemanticType = "muted"
)
