package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleCatalog is a small template catalog covering every input format.
const SampleCatalog = `templates:
  - id: general-chat
    name: General Chat
    description: Open conversation
    category: General
    kind: chat
    format: chat
  - id: recipe
    name: Recipe Helper
    description: Cook something
    category: Lifestyle
    kind: food
    format: form
    new: true
    system_prompt: You are a chef.
    fields:
      - key: ingredients
        label: Ingredients
      - key: cuisine
        label: Cuisine
  - id: summarizer
    name: Summarizer
    description: Summarize a document
    category: Productivity
    kind: document
    format: upload
    system_prompt: Summarize the text.
  - id: painter
    name: Painter
    description: Draw pictures
    category: Creative
    kind: image
    format: chat
    available: false
`

// CreateTempFile writes content to filename inside a fresh temp dir and returns its path.
func CreateTempFile(t *testing.T, filename, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, filename)

	err := os.WriteFile(filePath, []byte(content), 0o644)
	require.NoError(t, err, "Should create temp file successfully")

	return filePath
}

// CreateTempDir creates a temporary directory populated with files.
func CreateTempDir(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir := t.TempDir()

	for filename, content := range files {
		filePath := filepath.Join(tmpDir, filename)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644), "Should create file %s", filename)
	}

	return tmpDir
}
