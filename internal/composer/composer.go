// Package composer turns user input into the single request text sent to the completion service.
package composer

import (
	"strings"

	"promptdeck/pkg/decktypes"
)

// Input is what the user supplied for one submit: free text for chat and
// upload templates, field values for form templates.
type Input struct {
	Text   string
	Fields map[string]string
}

// Compose builds the request text for desc from input.
// Invalid input yields a *decktypes.ValidationError and no request text.
func Compose(desc decktypes.TemplateDescriptor, input Input) (string, error) {
	if desc.InputFormat == decktypes.FormatForm {
		return ComposeForm(desc.FormFields, input.Fields)
	}
	return ComposeText(input.Text)
}

// ComposeText returns the trimmed text, rejecting empty or whitespace-only input.
func ComposeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", &decktypes.ValidationError{Reason: "message is empty"}
	}
	return trimmed, nil
}

// ComposeForm joins every field as "key: value" in declared order.
// All fields are required.
func ComposeForm(fields []decktypes.FormField, values map[string]string) (string, error) {
	if missing := MissingFields(fields, values); len(missing) > 0 {
		return "", &decktypes.ValidationError{Field: missing[0], Reason: "required field is empty"}
	}

	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = f.Key + ": " + values[f.Key]
	}
	return strings.Join(lines, "\n"), nil
}

// MissingFields returns the keys of declared fields that are absent or blank, in declared order.
func MissingFields(fields []decktypes.FormField, values map[string]string) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(values[f.Key]) == "" {
			missing = append(missing, f.Key)
		}
	}
	return missing
}

// FormComplete reports whether every declared field has a non-blank value.
// The presentation layer uses it to keep the submit control inert.
func FormComplete(fields []decktypes.FormField, values map[string]string) bool {
	return len(MissingFields(fields, values)) == 0
}
