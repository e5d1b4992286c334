package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"promptdeck/internal/completion"
	"promptdeck/internal/composer"
	"promptdeck/internal/config"
	"promptdeck/internal/logger"
	"promptdeck/internal/output"
	"promptdeck/internal/server"
	"promptdeck/internal/session"
	"promptdeck/internal/shell"
	"promptdeck/internal/templates"
	"promptdeck/internal/testutils"
	"promptdeck/internal/theme"
	"promptdeck/internal/version"
	"promptdeck/pkg/decktypes"
)

// app holds everything a command needs, built from configuration and flags.
type app struct {
	cfg      *config.Service
	registry *templates.Registry
	theme    *theme.Theme
	printer  *output.Printer
	gen      *testutils.Generator
	out      io.Writer
	debug    *completion.DebugTransport
}

// errCompletionFailed is what ask reports for a failed call. The provider's
// error stays in the log.
var errCompletionFailed = errors.New("completion failed")

// configOptions is replaced in tests to isolate configuration sources.
var configOptions = func() config.Options {
	return config.Options{ConfigFile: configFile}
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg := config.New(configOptions())
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	for flag, key := range map[string]string{"provider": config.KeyProvider, "model": config.KeyModel, "listen": config.KeyListen} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			cfg.Override(key, f.Value.String())
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var (
		registry *templates.Registry
		err      error
	)
	if path := cfg.TemplatesFile(); path != "" {
		registry, err = templates.LoadFile(path)
	} else {
		registry, err = templates.Default()
	}
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		registry: registry,
		theme:    theme.Load(cfg.Theme()),
		gen:      testutils.NewGenerator(testMode),
		out:      cmd.OutOrStdout(),
	}
	a.printer = a.newPrinter()
	return a, nil
}

func (a *app) newPrinter() *output.Printer {
	if testMode {
		return output.NewPrinter(output.WithWriter(a.out), output.TestMode())
	}

	opts := []output.Option{output.WithWriter(a.out), output.WithStyles(a.theme)}
	if a.cfg.RenderMarkdown() {
		renderer, err := output.NewGlamourRenderer(a.theme.GlamourStyle(), 0)
		if err != nil {
			logger.Warn("Markdown rendering disabled", "error", err)
		} else {
			opts = append(opts, output.WithMarkdown(renderer))
		}
	}
	return output.NewPrinter(opts...)
}

// completionClient builds the provider client. At debug level the HTTP
// exchange is captured with credentials redacted.
func (a *app) completionClient() (decktypes.CompletionClient, error) {
	ccfg, err := a.cfg.CompletionConfig()
	if err != nil {
		return nil, err
	}
	if logger.Logger.GetLevel() <= log.DebugLevel {
		a.debug = completion.NewDebugTransport(nil)
		ccfg.Transport = a.debug
	}
	client, err := completion.New(ccfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Completion client ready", "provider", client.ProviderName(), "model", ccfg.Model)
	return client, nil
}

func (a *app) logLastExchange() {
	if a.debug != nil && a.debug.LastExchange() != "" {
		logger.Debug("Last HTTP exchange", "exchange", a.debug.LastExchange())
	}
}

func runShell(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	client, err := a.completionClient()
	if err != nil {
		return err
	}

	logger.Info("Starting promptdeck", "version", version.Version, "provider", a.cfg.Provider())
	a.printer.Heading(version.GetFormattedVersion())

	sh := &shell.Shell{
		Registry: a.registry,
		NewSession: func(desc decktypes.TemplateDescriptor) *session.Controller {
			return session.NewController("", desc, client, session.WithGenerator(a.gen))
		},
		Driver:  shell.NewSurveyDriver(),
		Printer: a.printer,
		Theme:   a.theme,
	}
	err = sh.Run(cmd.Context())
	a.logLastExchange()
	return err
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(a.registry.List())
	}
	shell.PrintGallery(a.printer, a.theme, a.registry.List())
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	desc, err := a.registry.Get(args[0])
	if err != nil {
		return err
	}

	rawFields, _ := cmd.Flags().GetStringArray("field")
	fields, err := parseFields(rawFields)
	if err != nil {
		return err
	}
	input := composer.Input{Fields: fields}
	if len(args) > 1 {
		input.Text = args[1]
	}

	// Validate before asking for credentials so input errors come first.
	if _, err := composer.Compose(desc, input); err != nil {
		if missing := composer.MissingFields(desc.FormFields, fields); desc.InputFormat == decktypes.FormatForm && len(missing) > 0 {
			return fmt.Errorf("%w (missing: %s)", err, strings.Join(missing, ", "))
		}
		return err
	}

	client, err := a.completionClient()
	if err != nil {
		return err
	}
	ctrl := session.NewController("", desc, client, session.WithGenerator(a.gen))
	defer ctrl.Close()

	msg, err := shell.Ask(cmd.Context(), ctrl, input)
	a.logLastExchange()
	if msg.Content == "" {
		return err
	}
	a.printer.Message(msg)
	if err != nil {
		return errCompletionFailed
	}
	return nil
}

// parseFields turns repeated key=value flags into a map.
func parseFields(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	fields := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --field %q: expected key=value", kv)
		}
		fields[key] = value
	}
	return fields, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	client, err := a.completionClient()
	if err != nil {
		return err
	}

	manager := session.NewManager(a.registry, client, a.gen)
	srv := server.New(a.registry, manager, a.cfg.Listen())
	a.printer.Info(fmt.Sprintf("Serving %d templates on http://%s", a.registry.Len(), a.cfg.Listen()))
	return srv.Start(cmd.Context())
}

func runVersion(cmd *cobra.Command, _ []string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
	return err
}
