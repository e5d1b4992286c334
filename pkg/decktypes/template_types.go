// Package decktypes defines the shared data types for promptdeck.
// This file contains the template descriptor types that make up the template gallery.
package decktypes

import (
	"fmt"
	"slices"
)

// InputFormat determines which input widget a template's conversation view offers.
type InputFormat string

const (
	// FormatChat renders a free-text chat box.
	FormatChat InputFormat = "chat"
	// FormatForm renders a fixed set of required fields.
	FormatForm InputFormat = "form"
	// FormatUpload renders a file picker plus a paste-your-text area.
	FormatUpload InputFormat = "upload"
)

// Valid reports whether f is one of the known input formats.
func (f InputFormat) Valid() bool {
	switch f {
	case FormatChat, FormatForm, FormatUpload:
		return true
	}
	return false
}

// FormField is a single required field of a form template.
type FormField struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

// TemplateDescriptor describes one assistant use-case in the gallery.
// Descriptors are immutable once the registry has been built.
type TemplateDescriptor struct {
	ID           string      `yaml:"id" json:"id"`
	Name         string      `yaml:"name" json:"name"`
	Description  string      `yaml:"description" json:"description"`
	Category     string      `yaml:"category" json:"category"`
	Kind         string      `yaml:"kind" json:"kind"` // icon family: code, image, document, chat, education
	InputFormat  InputFormat `yaml:"format" json:"format"`
	SystemPrompt string      `yaml:"system_prompt,omitempty" json:"system_prompt,omitempty"`
	Available    bool        `yaml:"available" json:"available"`
	New          bool        `yaml:"new,omitempty" json:"new,omitempty"`
	FormFields   []FormField `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Badge returns the label shown on the template's gallery card.
func (t TemplateDescriptor) Badge() string {
	switch {
	case !t.Available:
		return "Coming Soon"
	case t.New:
		return "New"
	default:
		return t.Category
	}
}

var kindIcons = map[string]string{
	"code":      "</>",
	"image":     "[#]",
	"document":  "[=]",
	"chat":      "[>]",
	"education": "[*]",
	"other":     "[+]",
}

// Icon returns a small text glyph for the template's kind. Unknown kinds get the bot glyph.
func (t TemplateDescriptor) Icon() string {
	if icon, ok := kindIcons[t.Kind]; ok {
		return icon
	}
	return "(o)"
}

// FieldKeys returns the declared form field keys in order.
func (t TemplateDescriptor) FieldKeys() []string {
	keys := make([]string, len(t.FormFields))
	for i, f := range t.FormFields {
		keys[i] = f.Key
	}
	return keys
}

// Clone returns a deep copy so callers can never mutate registry data.
func (t TemplateDescriptor) Clone() TemplateDescriptor {
	c := t
	c.FormFields = slices.Clone(t.FormFields)
	return c
}

// String implements fmt.Stringer.
func (t TemplateDescriptor) String() string {
	return fmt.Sprintf("%s (%s, %s)", t.ID, t.InputFormat, t.Badge())
}
