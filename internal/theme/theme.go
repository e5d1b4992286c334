// Package theme turns the embedded YAML themes into lipgloss styles.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/list"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"promptdeck/internal/data/embedded"
	"promptdeck/internal/logger"
	"promptdeck/internal/output"
)

// PlainName is the theme that disables styling.
const PlainName = "plain"

type styleConfig struct {
	Foreground interface{} `yaml:"foreground"`
	Background interface{} `yaml:"background"`
	Bold       bool        `yaml:"bold"`
	Italic     bool        `yaml:"italic"`
	Underline  bool        `yaml:"underline"`
}

type themeFile struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Styles      map[string]styleConfig `yaml:"styles"`
}

// Theme is a named set of semantic styles. It implements output.StyleProvider.
type Theme struct {
	Name        string
	Description string
	styles      map[string]lipgloss.Style
}

var _ output.StyleProvider = (*Theme)(nil)

// Load returns the built-in theme called name. Unknown or broken themes fall
// back to plain with a logged warning.
func Load(name string) *Theme {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "default"
	}

	data, err := embedded.ThemeData(name)
	if err != nil {
		logger.Debug("Unknown theme requested, using plain", "theme", name, "available", embedded.ThemeNames)
		return plainTheme()
	}

	t, err := Parse(data)
	if err != nil {
		logger.Error("Failed to load theme", "theme", name, "error", err)
		return plainTheme()
	}
	return t
}

// Parse builds a Theme from YAML.
func Parse(data []byte) (*Theme, error) {
	var f themeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("theme file has no name")
	}

	t := &Theme{Name: f.Name, Description: f.Description, styles: make(map[string]lipgloss.Style, len(f.Styles))}
	for semantic, cfg := range f.Styles {
		t.styles[semantic] = createStyle(cfg)
	}
	return t, nil
}

func plainTheme() *Theme {
	return &Theme{Name: PlainName, Description: "No colors or decorations", styles: map[string]lipgloss.Style{}}
}

func createStyle(cfg styleConfig) lipgloss.Style {
	style := lipgloss.NewStyle()
	if c := parseColor(cfg.Foreground); c != nil {
		style = style.Foreground(c)
	}
	if c := parseColor(cfg.Background); c != nil {
		style = style.Background(c)
	}
	if cfg.Bold {
		style = style.Bold(true)
	}
	if cfg.Italic {
		style = style.Italic(true)
	}
	if cfg.Underline {
		style = style.Underline(true)
	}
	return style
}

// parseColor accepts either "#RRGGBB" or {light: ..., dark: ...}.
func parseColor(value interface{}) lipgloss.TerminalColor {
	switch v := value.(type) {
	case string:
		return lipgloss.Color(v)
	case map[string]interface{}:
		light, hasLight := v["light"].(string)
		dark, hasDark := v["dark"].(string)
		if hasLight && hasDark {
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
	}
	return nil
}

// Style returns the lipgloss style for semantic, or an empty style.
func (t *Theme) Style(semantic string) lipgloss.Style {
	if s, ok := t.styles[semantic]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// GetStyle implements output.StyleProvider.
func (t *Theme) GetStyle(semantic string) output.TextStyle {
	return t.Style(semantic)
}

// IsAvailable reports whether styling should be applied: never for the plain
// theme or on terminals without color.
func (t *Theme) IsAvailable() bool {
	if t.Name == PlainName {
		return false
	}
	return lipgloss.ColorProfile() != termenv.Ascii
}

// GetThemeType implements output.StyleProvider.
func (t *Theme) GetThemeType() string {
	switch t.Name {
	case "dark", "light":
		return t.Name
	default:
		return "auto"
	}
}

// GlamourStyle names the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if !t.IsAvailable() {
		return "notty"
	}
	return t.GetThemeType()
}

// List creates a bulleted list using the muted style for bullets.
func (t *Theme) List(items ...string) *list.List {
	l := list.New().EnumeratorStyle(t.Style("muted"))
	for _, item := range items {
		l.Item(item)
	}
	return l
}
