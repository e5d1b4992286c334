package output

// PlainTextStyle renders text with an optional semantic prefix.
type PlainTextStyle struct {
	prefix string
	suffix string
}

// NewPlainTextStyle creates a style that prepends prefix.
func NewPlainTextStyle(prefix string) *PlainTextStyle {
	return &PlainTextStyle{prefix: prefix}
}

// Render implements TextStyle.
func (p *PlainTextStyle) Render(strs ...string) string {
	text := ""
	for i, s := range strs {
		if i > 0 {
			text += " "
		}
		text += s
	}
	return p.prefix + text + p.suffix
}

// PlainStyleProvider is the fallback used when no theme applies.
type PlainStyleProvider struct{}

// NewPlainStyleProvider creates a PlainStyleProvider.
func NewPlainStyleProvider() *PlainStyleProvider {
	return &PlainStyleProvider{}
}

// GetStyle returns prefix-only styles.
func (p *PlainStyleProvider) GetStyle(semantic string) TextStyle {
	switch SemanticType(semantic) {
	case SemanticSuccess:
		return NewPlainTextStyle("✓ ")
	case SemanticWarning:
		return NewPlainTextStyle("⚠ ")
	case SemanticError:
		return NewPlainTextStyle("✗ ")
	case SemanticInfo:
		return NewPlainTextStyle("ℹ ")
	case SemanticBadge:
		return &PlainTextStyle{prefix: "[", suffix: "]"}
	default:
		return NewPlainTextStyle("")
	}
}

// IsAvailable implements StyleProvider.
func (p *PlainStyleProvider) IsAvailable() bool {
	return true
}

// GetThemeType implements StyleProvider.
func (p *PlainStyleProvider) GetThemeType() string {
	return "auto"
}
