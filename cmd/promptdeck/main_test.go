package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptdeck/internal/config"
	"promptdeck/internal/session"
	"promptdeck/pkg/decktypes"
)

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()

	prev := configOptions
	configOptions = func() config.Options {
		return config.Options{ConfigDir: t.TempDir(), WorkDir: t.TempDir(), Environ: func() []string { return env }}
	}
	t.Cleanup(func() {
		configOptions = prev
		resetFlags(rootCmd)
		testMode = false
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestTemplatesJSON(t *testing.T) {
	out, err := execute(t, nil, "templates", "--json")
	require.NoError(t, err)

	var list []decktypes.TemplateDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 11)
	assert.Equal(t, "general-chat", list[0].ID)
}

func TestTemplatesPlain(t *testing.T) {
	out, err := execute(t, nil, "--test-mode", "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "Templates\n")
	assert.Contains(t, out, "General Chat")
	assert.Contains(t, out, "[Coming Soon]")
}

func TestAskAgainstOpenAICompatibleServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Hi from stub"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	env := []string{
		"PROMPTDECK_PROVIDER=openai",
		"OPENAI_API_KEY=sk-test",
		"PROMPTDECK_BASE_URL=" + srv.URL,
	}
	out, err := execute(t, env, "--test-mode", "ask", "general-chat", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Assistant: Hi from stub\n", out)
}

func TestAskCompletionFailureHidesProviderDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream-stack-trace-xyz","type":"server_error"}}`))
	}))
	defer srv.Close()

	env := []string{
		"PROMPTDECK_PROVIDER=openai",
		"OPENAI_API_KEY=sk-test",
		"PROMPTDECK_BASE_URL=" + srv.URL,
	}
	out, err := execute(t, env, "--test-mode", "ask", "general-chat", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, errCompletionFailed)
	assert.Equal(t, "Assistant: "+session.FailureMessage+"\n", out)
	assert.NotContains(t, out, "upstream-stack-trace-xyz")
	assert.NotContains(t, err.Error(), "upstream-stack-trace-xyz")
}

func TestAskValidatesBeforeCredentials(t *testing.T) {
	_, err := execute(t, nil, "ask", "math-solver", "--field", "problem=2x+3=7")
	require.Error(t, err)
	assert.True(t, decktypes.IsValidation(err))
	assert.Contains(t, err.Error(), "missing: subject")

	_, err = execute(t, nil, "ask", "general-chat", "hello")
	assert.ErrorContains(t, err, "API key not configured")
}

func TestAskUnknownTemplate(t *testing.T) {
	_, err := execute(t, nil, "ask", "nope", "hello")
	assert.True(t, decktypes.IsUnknownTemplate(err))
}

func TestProviderFlagIsValidated(t *testing.T) {
	_, err := execute(t, nil, "--provider", "mistral", "templates")
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "promptdeck v")
	assert.Contains(t, out, "Go Version:")
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    map[string]string
		wantErr bool
	}{
		{"none", nil, nil, false},
		{"pairs", []string{"problem=2x+3=7", "subject=Algebra"}, map[string]string{"problem": "2x+3=7", "subject": "Algebra"}, false},
		{"empty value kept", []string{"a="}, map[string]string{"a": ""}, false},
		{"missing equals", []string{"oops"}, nil, true},
		{"missing key", []string{"=x"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFields(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
