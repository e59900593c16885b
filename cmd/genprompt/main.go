// Package main provides the genprompt CLI: send one prompt to a hosted
// generative model, run the receipt service, list expenses, or serve the
// generate tool over MCP.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/germanamz/genprompt/cmd/genprompt/internal/format"
	"github.com/germanamz/genprompt/pkg/config"
	"github.com/spf13/cobra"
)

var version = "dev"

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	envFile    string
	model      string
	backend    string
	timeout    time.Duration
	verbose    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, format.Error(err, format.IsTerminal(os.Stderr))) //nolint:errcheck
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	cmd := newGenerateCmd(g)
	cmd.Version = version
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "path to a YAML configuration file")
	flags.StringVar(&g.envFile, "env", ".env", "path to .env file (ignored if missing)")
	flags.StringVar(&g.model, "model", "", "model identifier (env: GENAI_MODEL, default: "+defaultModelHint+")")
	flags.StringVar(&g.backend, "backend", "", "backend: gemini, genai or vertex (env: GENAI_BACKEND)")
	flags.DurationVar(&g.timeout, "timeout", 0, "per-request timeout, e.g. 30s (0 means no limit)")
	flags.BoolVar(&g.verbose, "verbose", false, "log request details to stderr")

	cmd.AddCommand(newServeCmd(g))
	cmd.AddCommand(newExpensesCmd(g))
	cmd.AddCommand(newMCPCmd(g))

	return cmd
}

// load resolves configuration from the .env file, the YAML file, environment
// variables and command-line flags, in increasing order of precedence.
func (g *globalOptions) load(stderr io.Writer) (config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(g.envFile); err != nil {
		return config.Config{}, nil, err
	}

	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}

	if g.model != "" {
		cfg.Client.Model = g.model
	}
	if g.backend != "" {
		cfg.Client.Backend = g.backend
	}
	if g.timeout != 0 {
		cfg.Client.Timeout = g.timeout
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger := newLogger(stderr, g.verbose)
	logger.Debug("configuration loaded",
		"backend", cfg.Client.Backend,
		"model", cfg.Client.Model,
		"api_key", config.MaskKey(cfg.Client.APIKey),
	)

	return cfg, logger, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
