package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/config"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/gcs"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/metrics"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/resources"
	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/tools"
)

const (
	// Name is reported to MCP clients during initialization
	Name    = "BambooHR MCP Server"
	Version = "1.0.0"
)

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger writing to w at the named level
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

// Server wraps the MCP server with our configuration
type Server struct {
	mcpServer      *server.MCPServer
	config         *config.Config
	client         tools.BambooClient
	gcsManager     *gcs.Manager
	metricsManager *metrics.Manager
	logger         *slog.Logger
	toolCount      int

	// stdio transport streams, replaced in tests
	stdin  io.Reader
	stdout io.Writer
}

// New creates a new MCP server instance exposing cfg.Profile
func New(cfg *config.Config, client tools.BambooClient, logger *slog.Logger) (*Server, error) {
	if client == nil {
		return nil, errors.New("BambooHR client is required")
	}
	if logger == nil {
		logger = NewLogger(os.Stderr, cfg.EffectiveLogLevel())
	}

	ctx := context.Background()

	// Initialize GCS manager for large binary results
	gcsConfig := gcs.LoadConfig()
	gcsManager, err := gcs.NewManager(ctx, gcsConfig)
	if err != nil {
		logger.Warn("Failed to initialize GCS manager, large files will be returned inline", "error", err)
		gcsManager = nil
	} else if gcsConfig.Enabled {
		logger.Info("GCS manager initialized for large file handling",
			"bucket", gcsConfig.BucketName,
			"threshold", gcsConfig.SizeThreshold)
	} else {
		logger.Info("GCS disabled, large files will be written to temp files")
	}

	metricsConfig := metrics.LoadConfig()
	metricsConfig.Company = cfg.CompanyDomain
	metricsConfig.Profile = cfg.Profile
	metricsManager, err := metrics.NewManager(ctx, metricsConfig, logger)
	if err != nil {
		logger.Warn("Failed to initialize metrics manager", "error", err)
		metricsManager = nil
	}

	mcpServer := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer:      mcpServer,
		config:         cfg,
		client:         client,
		gcsManager:     gcsManager,
		metricsManager: metricsManager,
		logger:         logger,
		stdin:          os.Stdin,
		stdout:         os.Stdout,
	}

	if err := s.registerTools(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	logger.Info("BambooHR MCP server initialized",
		"profile", cfg.Profile,
		"mode", cfg.Mode,
		"tools", s.toolCount)

	return s, nil
}

// registerTools registers all tools for the configured profile, plus the
// resource describing how they chain.
func (s *Server) registerTools() error {
	added, err := tools.AddToolsToServer(s.mcpServer, s.config.Profile)
	if err != nil {
		return err
	}
	s.toolCount = added

	resources.AddResourcesToServer(s.mcpServer, tools.GetToolsForProfile(s.config.Profile))

	s.logger.Info("Registered tools", "count", added)
	return nil
}

// requestContext adds what tool handlers need to a request's context
func (s *Server) requestContext(ctx context.Context) context.Context {
	ctx = tools.WithClient(ctx, s.client)

	if s.gcsManager != nil {
		ctx = gcs.WithGCSManager(ctx, s.gcsManager)
	}
	if s.metricsManager != nil {
		ctx = metrics.WithManager(ctx, s.metricsManager)
	}

	return ctx
}

// Serve runs the server in the configured mode until ctx is cancelled
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting server", "mode", s.config.Mode)

	switch s.config.Mode {
	case "stdio":
		return s.serveStdio(ctx)
	case "http":
		return s.serveHTTP(ctx)
	default:
		return fmt.Errorf("unknown server mode: %s", s.config.Mode)
	}
}

// Close releases the managers held by the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server, cleaning up resources...")

	if s.gcsManager != nil {
		if err := s.gcsManager.Close(); err != nil {
			s.logger.Warn("Failed to close GCS manager", "error", err)
		}
	}

	// Flushes a final metrics report when reporting is enabled
	if s.metricsManager != nil {
		if err := s.metricsManager.Close(); err != nil {
			s.logger.Warn("Failed to close metrics manager", "error", err)
		}
	}

	s.logger.Info("Server shutdown complete")
	return nil
}
