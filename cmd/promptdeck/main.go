// Package main provides the promptdeck CLI entry point.
// promptdeck is a gallery of assistant templates, each opening a conversation
// with a hosted completion model.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"promptdeck/internal/logger"
)

var (
	logLevel   string
	logFile    string
	testMode   bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "promptdeck",
	Short: "promptdeck - a template gallery for LLM conversations",
	Long: `promptdeck lists assistant templates (chat, form and upload based) and opens
a conversation with a hosted completion model for the one you pick.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShell,
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive gallery",
	RunE:  runShell,
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplates,
}

var askCmd = &cobra.Command{
	Use:   "ask <template-id> [message]",
	Short: "Send one message to a template and print the reply",
	Long: `Run a single submit cycle without prompts. Chat and upload templates take the
message argument; form templates take one --field key=value per declared field.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAsk,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the gallery and sessions as a JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config.yaml to use instead of the default")
	rootCmd.PersistentFlags().String("provider", "", "Completion provider (gemini|openai|anthropic)")
	rootCmd.PersistentFlags().String("model", "", "Model name [default: per provider]")

	for _, name := range []string{"log-level", "log-file", "test-mode"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}

	templatesCmd.Flags().Bool("json", false, "Print templates as JSON")
	askCmd.Flags().StringArrayP("field", "f", nil, "Form field as key=value (repeatable)")
	serveCmd.Flags().String("listen", "", "Listen address [default: 127.0.0.1:8080]")

	rootCmd.AddCommand(shellCmd, templatesCmd, askCmd, serveCmd, versionCmd)

	cobra.OnInitialize(initLogger)
}

func initLogger() {
	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}
