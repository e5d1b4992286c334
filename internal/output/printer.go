package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"promptdeck/pkg/decktypes"
)

// Printer writes semantic output, styled when a StyleProvider is available.
// It is safe for concurrent use.
type Printer struct {
	styleProvider StyleProvider
	markdown      MarkdownRenderer
	writer        io.Writer
	mode          Mode
	testMode      bool
	silent        bool
	prefix        string

	mu sync.Mutex
}

// NewPrinter creates a Printer writing to os.Stdout in ModeAuto.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
		mode:   ModeAuto,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Print writes text as-is.
func (p *Printer) Print(text string) {
	p.output(SemanticPlain, text, false)
}

// Printf writes formatted text.
func (p *Printer) Printf(format string, args ...interface{}) {
	p.output(SemanticPlain, fmt.Sprintf(format, args...), false)
}

// Println writes text followed by a newline.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text, true)
}

// Info writes informational text.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text, true)
}

// Success writes success text.
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, text, true)
}

// Warning writes warning text.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text, true)
}

// Error writes error text.
func (p *Printer) Error(text string) {
	p.output(SemanticError, text, true)
}

// Heading writes a section heading.
func (p *Printer) Heading(text string) {
	p.output(SemanticHeading, text, true)
}

// Muted writes secondary text such as hints.
func (p *Printer) Muted(text string) {
	p.output(SemanticMuted, text, true)
}

// Styled returns text rendered with the style for semantic, without writing it.
func (p *Printer) Styled(semantic SemanticType, text string) string {
	return p.style(semantic).Render(text)
}

// Message writes one transcript entry. Assistant content goes through the
// markdown renderer when one is configured and output is not plain.
func (p *Printer) Message(m decktypes.Message) {
	if p.mode == ModeJSON {
		p.output(SemanticType(m.Role), m.Content, true)
		return
	}

	semantic, label := SemanticUser, "You"
	if m.Role == decktypes.RoleAssistant {
		semantic, label = SemanticAssistant, "Assistant"
	}
	head := p.style(semantic).Render(label + ":")

	body := m.Content
	if m.Role == decktypes.RoleAssistant && p.markdown != nil && p.mode != ModePlain {
		if rendered, err := p.markdown.Render(m.Content); err == nil {
			p.write(head + "\n" + strings.TrimRight(rendered, "\n") + "\n")
			return
		}
	}
	p.write(head + " " + body + "\n")
}

func (p *Printer) output(semantic SemanticType, text string, addNewline bool) {
	var final string
	if p.mode == ModeJSON {
		final = p.renderJSON(semantic, text)
	} else {
		final = p.style(semantic).Render(text)
		if addNewline && !strings.HasSuffix(final, "\n") {
			final += "\n"
		}
	}
	p.write(final)
}

func (p *Printer) write(text string) {
	if p.silent {
		return
	}
	if p.mode == ModePlain {
		text = ansi.Strip(text)
	}
	if p.prefix != "" {
		text = p.prefix + text
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.writer, text)
}

func (p *Printer) style(semantic SemanticType) TextStyle {
	if p.mode != ModePlain && p.styleProvider != nil && p.styleProvider.IsAvailable() {
		return p.styleProvider.GetStyle(string(semantic))
	}
	return NewPlainStyleProvider().GetStyle(string(semantic))
}

func (p *Printer) renderJSON(semantic SemanticType, text string) string {
	data, err := json.Marshal(map[string]interface{}{
		"type":    semantic,
		"message": text,
	})
	if err != nil {
		return text + "\n"
	}
	return string(data) + "\n"
}

// IsTestMode reports whether the printer was built with TestMode.
func (p *Printer) IsTestMode() bool {
	return p.testMode
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.writer
}
