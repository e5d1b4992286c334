package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptdeck/internal/data/embedded"
)

func withProfile(t *testing.T, p termenv.Profile) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(p)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func TestLoadBuiltInThemes(t *testing.T) {
	for _, name := range embedded.ThemeNames {
		th := Load(name)
		assert.Equal(t, name, th.Name)
	}
}

func TestLoadUnknownFallsBackToPlain(t *testing.T) {
	th := Load("neon")
	assert.Equal(t, PlainName, th.Name)
	assert.False(t, th.IsAvailable())
	assert.Equal(t, "text", th.Style("error").Render("text"))
}

func TestParseColors(t *testing.T) {
	th, err := Parse([]byte(`
name: test
styles:
  error:
    foreground: "#FF0000"
    bold: true
  info:
    foreground: {light: "#000000", dark: "#FFFFFF"}
  badge:
    background: {light: "#111111"}
`))
	require.NoError(t, err)

	assert.Equal(t, lipgloss.Color("#FF0000"), th.Style("error").GetForeground())
	assert.True(t, th.Style("error").GetBold())
	assert.Equal(t, lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}, th.Style("info").GetForeground())
	assert.Equal(t, lipgloss.NoColor{}, th.Style("badge").GetBackground(), "incomplete adaptive color is ignored")
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("styles: ["))
	assert.Error(t, err)
	_, err = Parse([]byte("styles: {}"))
	assert.ErrorContains(t, err, "no name")
}

func TestAvailabilityFollowsColorProfile(t *testing.T) {
	th := Load("default")

	withProfile(t, termenv.ANSI256)
	assert.True(t, th.IsAvailable())
	assert.Equal(t, "auto", th.GlamourStyle())
	assert.Equal(t, "dark", Load("dark").GlamourStyle())

	lipgloss.SetColorProfile(termenv.Ascii)
	assert.False(t, th.IsAvailable())
	assert.Equal(t, "notty", th.GlamourStyle())
}

func TestList(t *testing.T) {
	withProfile(t, termenv.Ascii)
	out := Load("plain").List("alpha", "beta").String()
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
}
