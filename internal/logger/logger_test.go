package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"fatal":   log.FatalLevel,
		"":        log.InfoLevel,
		"verbose": log.InfoLevel,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, ParseLevel(in), in)
	}
}

func TestConfigure_FlagBeatsEnv(t *testing.T) {
	t.Setenv("PROMPTDECK_LOG_LEVEL", "error")

	require.NoError(t, Configure("debug", "", false))
	assert.Equal(t, log.DebugLevel, Logger.GetLevel())

	require.NoError(t, Configure("", "", false))
	assert.Equal(t, log.ErrorLevel, Logger.GetLevel())

	require.NoError(t, Configure("debug", "", true))
	assert.Equal(t, log.InfoLevel, Logger.GetLevel())
}

func TestConfigure_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptdeck.log")
	require.NoError(t, Configure("info", path, false))
	t.Cleanup(func() { SetOutput(os.Stderr) })

	Info("written to file", "key", "value")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestTransition_LogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Configure("debug", "", false))
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	Transition("s1", "idle", "awaiting", "template", "math-solver")
	assert.Contains(t, buf.String(), "Session transition")
	assert.Contains(t, buf.String(), "awaiting")
}

func TestNewStyledLogger_InheritsLevel(t *testing.T) {
	require.NoError(t, Configure("warn", "", false))
	l := NewStyledLogger("Session")
	assert.Equal(t, log.WarnLevel, l.GetLevel())
	assert.Equal(t, "Session ", l.GetPrefix())
}
