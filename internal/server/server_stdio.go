package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// serveStdio speaks MCP over stdin/stdout until the input closes or ctx is
// cancelled. stdout carries the protocol, so all logging stays on stderr.
func (s *Server) serveStdio(ctx context.Context) error {
	s.logger.Info("Serving via STDIO")

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetContextFunc(s.requestContext)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, s.stdin, s.stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
