package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

const shutdownTimeout = 30 * time.Second

// Handler returns the HTTP handler serving /health and the MCP endpoint
func (s *Server) Handler() http.Handler {
	return s.newHandler(s.newMCPHandler())
}

func (s *Server) newMCPHandler() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.mcpServer,
		server.WithStateLess(true),
		server.WithHTTPContextFunc(func(ctx context.Context, _ *http.Request) context.Context {
			return s.requestContext(ctx)
		}),
	)
}

func (s *Server) newHandler(mcpHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/mcp", chain(mcpHandler,
		BearerAuth(s.config.HTTPToken, s.logger),
		BodySizeLimit(maxBodySize),
	))

	return chain(mux,
		PanicRecovery(s.logger), // outermost
		RequestLogger(s.logger),
		RequestID(),
		SecurityHeaders(),
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]any{
		"status":    "healthy",
		"time":      time.Now().UTC().Format(time.RFC3339),
		"profile":   s.config.Profile,
		"tools":     s.toolCount,
		"toolCalls": s.metricsManager.Snapshot(),
	})
}

// serveHTTP serves MCP over streamable HTTP until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) serveHTTP(ctx context.Context) error {
	mcpHandler := s.newMCPHandler()
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:           s.newHandler(mcpHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.config.HTTPToken == "" {
		s.logger.Warn("MCP_HTTP_TOKEN is not set, /mcp accepts unauthenticated requests")
	}
	s.logger.Info("Serving via HTTP", "port", s.config.HTTPPort)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := mcpHandler.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("Failed to close MCP sessions", "error", err)
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		s.logger.Info("HTTP server stopped gracefully")
		return nil

	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}
