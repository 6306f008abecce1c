// Package cli provides the command-line entry point for the BambooHR MCP server.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/bamboo"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/config"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/server"

	// Import tool packages to trigger init() registration
	_ "github.com/bamboohr-mcp/bamboohr-mcp-go/internal/tools/employees"
	_ "github.com/bamboohr-mcp/bamboohr-mcp-go/internal/tools/meta"
	_ "github.com/bamboohr-mcp/bamboohr-mcp-go/internal/tools/timeoff"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	serve  *serveOptions
	stdout io.Writer
	stderr io.Writer
}

// serveOptions override the environment when the matching flag is set.
type serveOptions struct {
	mode     string
	profile  string
	logLevel string
	port     int
	debug    bool
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		serve:  &serveOptions{},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "bamboohr-mcp",
		Short: "Serve the BambooHR API as MCP tools",
		Long: `bamboohr-mcp exposes read-only BambooHR operations (employees, time off,
company files) as Model Context Protocol tools over stdio or HTTP.

Credentials come from BAMBOO_API_TOKEN and BAMBOO_COMPANY_DOMAIN. Flags
override the matching environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runServer(cmd)
		},
	}

	flags := app.root.Flags()
	flags.StringVar(&app.serve.mode, "mode", "", "Transport: stdio or http (env MCP_MODE)")
	flags.StringVar(&app.serve.profile, "profile", "", "Tool profile to expose (env MCP_PROFILE)")
	flags.StringVar(&app.serve.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	flags.IntVar(&app.serve.port, "port", 0, "HTTP listen port (env PORT)")
	flags.BoolVar(&app.serve.debug, "debug", false, "Log every BambooHR request and response (env DEBUG)")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newToolsCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI until it finishes or a termination signal arrives.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(a.stdout, "%s version %s\n", server.Name, server.Version)
		},
	}
}

// runServer loads configuration, applies flag overrides and serves until
// the command context is cancelled.
func (a *App) runServer(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.applyFlags(cmd, cfg)

	// stdout carries the MCP protocol in stdio mode
	logger := server.NewLogger(a.stderr, cfg.EffectiveLogLevel())
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("Starting BambooHR MCP Server",
		"mode", cfg.Mode,
		"profile", cfg.Profile,
		"company", cfg.CompanyDomain,
		"debug", cfg.Debug)

	client, err := bamboo.New(cfg.Bamboo(), bamboo.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("invalid BambooHR configuration: %w", err)
	}

	srv, err := server.New(cfg, client, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	err = srv.Serve(cmd.Context())
	if closeErr := srv.Close(); closeErr != nil {
		logger.Error("Error during server cleanup", "error", closeErr)
	}
	if err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}

func (a *App) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = a.serve.mode
	}
	if flags.Changed("profile") {
		cfg.Profile = a.serve.profile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.serve.logLevel
	}
	if flags.Changed("port") {
		cfg.HTTPPort = a.serve.port
	}
	if flags.Changed("debug") {
		cfg.Debug = a.serve.debug
	}
}
