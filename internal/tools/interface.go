// Package tools holds the MCP tool registry and the helpers shared by the
// tool packages. Tool packages register themselves from init() and reach
// BambooHR through the BambooClient stored in the request context.
package tools

import (
	"context"

	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/bamboo"
)

// BambooClient is the BambooHR API surface used by tools. *bamboo.Client
// implements it; tests use testutil.MockClient.
type BambooClient interface {
	GetJSON(ctx context.Context, path string, params bamboo.Params, out any) error
	GetBinary(ctx context.Context, path string, params bamboo.Params) ([]byte, error)
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Compile-time check that *bamboo.Client implements BambooClient
var _ BambooClient = (*bamboo.Client)(nil)
