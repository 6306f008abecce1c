// Package resources provides MCP resources for the BambooHR MCP server.
package resources

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RelationshipsURI is the URI of the tool relationships resource.
const RelationshipsURI = "bamboohr://tool-relationships"

// ToolRelationship says that one tool's output supplies a parameter of another.
type ToolRelationship struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
}

// RelationshipsContext lists how tools chain together and where to start.
type RelationshipsContext struct {
	Version       string             `json:"version"`
	Relationships []ToolRelationship `json:"relationships"`
	EntryPoints   []string           `json:"entryPoints"`
}

var allRelationships = []ToolRelationship{
	// The directory is the usual way to discover employee IDs
	{From: "get-employee-directory", To: "get-employee", Type: "provides", Field: "id"},
	{From: "get-employee-directory", To: "get-employee-photo", Type: "provides", Field: "employeeId"},
	{From: "get-employee-directory", To: "get-employee-goals", Type: "provides", Field: "employeeId"},
	{From: "get-employee-directory", To: "estimate-time-off-balance", Type: "provides", Field: "employeeId"},
	{From: "get-employee-directory", To: "get-time-off-requests", Type: "provides", Field: "employeeId"},
	{From: "get-whos-out", To: "get-employee", Type: "provides", Field: "id"},
	{From: "get-whos-out", To: "get-time-off-requests", Type: "provides", Field: "employeeId"},
	{From: "get-time-off-requests", To: "estimate-time-off-balance", Type: "provides", Field: "employeeId"},
	{From: "get-meta-fields", To: "get-employee", Type: "provides", Field: "fields"},
	{From: "list-company-files", To: "get-company-file", Type: "provides", Field: "fileId"},
}

var allEntryPoints = []string{
	"get-employee-directory",
	"get-whos-out",
	"list-company-files",
	"get-meta-fields",
}

// ContextFor returns the relationships whose tools are both in exposed, so
// a client is never pointed at a tool its profile does not offer.
func ContextFor(exposed []string) RelationshipsContext {
	available := make(map[string]bool, len(exposed))
	for _, name := range exposed {
		available[name] = true
	}

	ctx := RelationshipsContext{
		Version:       "1.0",
		Relationships: []ToolRelationship{},
		EntryPoints:   []string{},
	}
	for _, rel := range allRelationships {
		if available[rel.From] && available[rel.To] {
			ctx.Relationships = append(ctx.Relationships, rel)
		}
	}
	for _, name := range allEntryPoints {
		if available[name] {
			ctx.EntryPoints = append(ctx.EntryPoints, name)
		}
	}
	return ctx
}

// NewRelationshipsResource creates the tool relationships resource definition.
func NewRelationshipsResource() mcp.Resource {
	return mcp.NewResource(
		RelationshipsURI,
		"Tool Relationships Context",
		mcp.WithResourceDescription("Describes how BambooHR MCP tools feed each other (for example the directory supplies employee IDs) to help LLMs chain tool calls."),
		mcp.WithMIMEType("application/json"),
	)
}

// RelationshipsHandler serves the resource for the given exposed tools.
func RelationshipsHandler(exposed []string) server.ResourceHandlerFunc {
	data := ContextFor(exposed)
	return func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      RelationshipsURI,
				MIMEType: "application/json",
				Text:     string(jsonData),
			},
		}, nil
	}
}

// AddResourcesToServer adds all resources to the MCP server.
func AddResourcesToServer(s *server.MCPServer, exposed []string) {
	s.AddResource(NewRelationshipsResource(), RelationshipsHandler(exposed))
}
