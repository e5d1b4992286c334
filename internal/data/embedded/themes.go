package embedded

import "embed"

//go:embed themes/*.yaml
var themeFS embed.FS

// ThemeNames lists the built-in themes in display order.
var ThemeNames = []string{"default", "dark", "light", "plain"}

// ThemeData returns the raw YAML for a built-in theme.
func ThemeData(name string) ([]byte, error) {
	return themeFS.ReadFile("themes/" + name + ".yaml")
}
