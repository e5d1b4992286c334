package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// defaultWordWrap is the column markdown is wrapped at.
const defaultWordWrap = 80

// GlamourRenderer renders markdown with glamour.
type GlamourRenderer struct {
	renderer *glamour.TermRenderer
}

// NewGlamourRenderer creates a renderer for the given glamour style
// ("dark", "light", "notty" or "auto").
func NewGlamourRenderer(style string, wordWrap int) (*GlamourRenderer, error) {
	if wordWrap <= 0 {
		wordWrap = defaultWordWrap
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wordWrap)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &GlamourRenderer{renderer: r}, nil
}

// Render implements MarkdownRenderer.
func (g *GlamourRenderer) Render(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}
	out, err := g.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
