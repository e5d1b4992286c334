// Package templates provides the read-only template registry behind the gallery.
// A Registry is built once at startup and never mutated afterwards, so it can be
// shared between the terminal shell, the HTTP server and every session without locking.
package templates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"promptdeck/internal/data/embedded"
	"promptdeck/internal/logger"
	"promptdeck/pkg/decktypes"
)

// catalogFile is the on-disk and embedded YAML layout.
type catalogFile struct {
	Templates []catalogEntry `yaml:"templates"`
}

// catalogEntry mirrors TemplateDescriptor but keeps Available optional so
// user catalogs may omit it.
type catalogEntry struct {
	ID           string                `yaml:"id"`
	Name         string                `yaml:"name"`
	Description  string                `yaml:"description"`
	Category     string                `yaml:"category"`
	Kind         string                `yaml:"kind"`
	Format       decktypes.InputFormat `yaml:"format"`
	SystemPrompt string                `yaml:"system_prompt"`
	Available    *bool                 `yaml:"available"`
	New          bool                  `yaml:"new"`
	Fields       []decktypes.FormField `yaml:"fields"`
}

func (e catalogEntry) descriptor() decktypes.TemplateDescriptor {
	d := decktypes.TemplateDescriptor{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		Category:     e.Category,
		Kind:         e.Kind,
		InputFormat:  e.Format,
		SystemPrompt: e.SystemPrompt,
		Available:    e.Available == nil || *e.Available,
		New:          e.New,
		FormFields:   e.Fields,
	}
	if d.InputFormat == "" {
		d.InputFormat = decktypes.FormatChat
	}
	return d
}

// Registry is an immutable, ordered catalog of template descriptors.
type Registry struct {
	ordered []decktypes.TemplateDescriptor
	byID    map[string]int
}

// New builds a registry from descriptors, preserving their order.
// Descriptors are validated and deep-copied.
func New(descriptors []decktypes.TemplateDescriptor) (*Registry, error) {
	r := &Registry{
		ordered: make([]decktypes.TemplateDescriptor, 0, len(descriptors)),
		byID:    make(map[string]int, len(descriptors)),
	}

	for i, d := range descriptors {
		if err := validateDescriptor(d); err != nil {
			return nil, fmt.Errorf("template #%d: %w", i+1, err)
		}
		if _, exists := r.byID[d.ID]; exists {
			return nil, fmt.Errorf("duplicate template id %q", d.ID)
		}
		r.byID[d.ID] = len(r.ordered)
		r.ordered = append(r.ordered, d.Clone())
	}

	return r, nil
}

// Load parses a YAML catalog and builds a registry from it.
func Load(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}

	descriptors := make([]decktypes.TemplateDescriptor, 0, len(file.Templates))
	for _, entry := range file.Templates {
		descriptors = append(descriptors, entry.descriptor())
	}

	return New(descriptors)
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template catalog %s: %w", path, err)
	}
	logger.Debug("Loading template catalog", "path", path, "bytes", len(data))
	return Load(data)
}

// Default returns the registry built from the embedded catalog.
func Default() (*Registry, error) {
	return Load(embedded.TemplatesData)
}

// List returns all descriptors in declaration order. The slice is a copy.
func (r *Registry) List() []decktypes.TemplateDescriptor {
	out := make([]decktypes.TemplateDescriptor, len(r.ordered))
	for i, d := range r.ordered {
		out[i] = d.Clone()
	}
	return out
}

// Get resolves a template id. Unknown ids yield *decktypes.UnknownTemplateError.
func (r *Registry) Get(id string) (decktypes.TemplateDescriptor, error) {
	idx, ok := r.byID[id]
	if !ok {
		return decktypes.TemplateDescriptor{}, &decktypes.UnknownTemplateError{ID: id}
	}
	return r.ordered[idx].Clone(), nil
}

// Len returns the number of templates.
func (r *Registry) Len() int {
	return len(r.ordered)
}

func validateDescriptor(d decktypes.TemplateDescriptor) error {
	if d.ID == "" {
		return fmt.Errorf("template id cannot be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("template %q: name cannot be empty", d.ID)
	}
	if !d.InputFormat.Valid() {
		return fmt.Errorf("template %q: unknown input format %q", d.ID, d.InputFormat)
	}

	switch d.InputFormat {
	case decktypes.FormatForm:
		if len(d.FormFields) == 0 {
			return fmt.Errorf("template %q: form templates need at least one field", d.ID)
		}
	default:
		if len(d.FormFields) > 0 {
			return fmt.Errorf("template %q: only form templates may declare fields", d.ID)
		}
	}

	seen := make(map[string]bool, len(d.FormFields))
	for _, f := range d.FormFields {
		if f.Key == "" {
			return fmt.Errorf("template %q: field key cannot be empty", d.ID)
		}
		if seen[f.Key] {
			return fmt.Errorf("template %q: duplicate field key %q", d.ID, f.Key)
		}
		seen[f.Key] = true
	}

	return nil
}
