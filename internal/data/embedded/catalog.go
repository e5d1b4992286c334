// Package embedded provides access to the data files compiled into promptdeck.
package embedded

import _ "embed"

// TemplatesData contains the embedded template gallery YAML.
//
//go:embed templates.yaml
var TemplatesData []byte
