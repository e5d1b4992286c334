package output

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptdeck/pkg/decktypes"
)

type bracketProvider struct{ available bool }

func (b bracketProvider) GetStyle(semantic string) TextStyle {
	return &PlainTextStyle{prefix: "<" + semantic + ">", suffix: "</" + semantic + ">"}
}
func (b bracketProvider) IsAvailable() bool    { return b.available }
func (b bracketProvider) GetThemeType() string { return "dark" }

type fakeMarkdown struct{ err error }

func (f fakeMarkdown) Render(md string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "**" + md + "**\n\n", nil
}

func TestPrinter_PlainPrefixes(t *testing.T) {
	out := CaptureOutput(func(p *Printer) {
		p.Info("loading")
		p.Success("done")
		p.Warning("careful")
		p.Error("failed")
		p.Println("plain")
		p.Print("no newline")
	})

	assert.Equal(t, "ℹ loading\n✓ done\n⚠ careful\n✗ failed\nplain\nno newline", out)
}

func TestPrinter_UsesStyleProvider(t *testing.T) {
	buf := NewCaptureBuffer()
	p := NewPrinter(WithWriter(buf), WithStyles(bracketProvider{available: true}))

	p.Heading("Templates")
	assert.Equal(t, "<heading>Templates</heading>\n", buf.String())
	assert.Equal(t, "<badge>New</badge>", p.Styled(SemanticBadge, "New"))
}

func TestPrinter_IgnoresUnavailableProvider(t *testing.T) {
	buf := NewCaptureBuffer()
	p := NewPrinter(WithWriter(buf), WithStyles(bracketProvider{available: false}))
	p.Info("x")
	assert.Equal(t, "ℹ x\n", buf.String())
}

func TestPrinter_PlainStripsEscapes(t *testing.T) {
	buf := NewCaptureBuffer()
	p := NewPrinter(WithWriter(buf), PlainText())
	p.Println(lipgloss.NewStyle().Bold(true).Render("bold") + "\x1b[31mred\x1b[0m")
	assert.Equal(t, "boldred\n", buf.String())
}

func TestPrinter_JSON(t *testing.T) {
	buf := NewCaptureBuffer()
	p := NewPrinter(WithWriter(buf), JSON())
	p.Error("boom")
	p.Message(decktypes.Message{Role: decktypes.RoleAssistant, Content: "hi"})

	lines := buf.Lines()
	require.Len(t, lines, 2)
	var first map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, map[string]string{"type": "error", "message": "boom"}, first)
	assert.Contains(t, lines[1], `"type":"assistant"`)
}

func TestPrinter_Message(t *testing.T) {
	out := CaptureOutput(func(p *Printer) {
		p.Message(decktypes.Message{Role: decktypes.RoleUser, Content: "hello"})
		p.Message(decktypes.Message{Role: decktypes.RoleAssistant, Content: "# Hi"})
	})
	assert.Equal(t, "You: hello\nAssistant: # Hi\n", out)
}

func TestPrinter_MessageMarkdown(t *testing.T) {
	buf := NewCaptureBuffer()
	p := NewPrinter(WithWriter(buf), WithMarkdown(fakeMarkdown{}))
	p.Message(decktypes.Message{Role: decktypes.RoleAssistant, Content: "reply"})
	p.Message(decktypes.Message{Role: decktypes.RoleUser, Content: "not rendered"})
	assert.Equal(t, "Assistant:\n**reply**\nYou: not rendered\n", buf.String())

	buf.Reset()
	p = NewPrinter(WithWriter(buf), WithMarkdown(fakeMarkdown{err: errors.New("bad")}))
	p.Message(decktypes.Message{Role: decktypes.RoleAssistant, Content: "raw"})
	assert.Equal(t, "Assistant: raw\n", buf.String(), "render errors fall back to raw text")
}

func TestPrinter_SilentAndPrefix(t *testing.T) {
	buf := NewCaptureBuffer()
	NewPrinter(WithWriter(buf), Silent()).Println("hidden")
	assert.Empty(t, buf.String())

	NewPrinter(WithWriter(buf), PlainText(), WithPrefix("> ")).Println("shown")
	assert.Equal(t, "> shown\n", buf.String())
}

func TestGlamourRenderer(t *testing.T) {
	r, err := NewGlamourRenderer("notty", 40)
	require.NoError(t, err)

	out, err := r.Render("# Title\n\nSome *emphasis* here.")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "emphasis")

	_, err = r.Render("   ")
	assert.Error(t, err)
}

func TestCaptureBuffer(t *testing.T) {
	buf := NewCaptureBuffer()
	assert.Equal(t, []string{}, buf.Lines())
	_, _ = buf.Write([]byte("a\nb\n"))
	assert.Equal(t, []string{"a", "b"}, buf.Lines())
	assert.True(t, buf.Contains("b"))
	assert.False(t, strings.Contains(buf.String(), "c"))
}
