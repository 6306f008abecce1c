package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bamboohr-mcp/bamboohr-mcp-go/internal/metrics"
)

// ToolHandler is the function signature for MCP tool handlers. A returned
// error becomes an error result prefixed with the tool's Action.
type ToolHandler func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error)

// ToolRegistration holds a tool's metadata and handler
type ToolRegistration struct {
	Name        string
	Title       string
	Description string
	Profile     string
	// Action completes "Error <action>: ..." in failure results,
	// e.g. "getting employee".
	Action  string
	Schema  mcp.Tool
	Handler ToolHandler
}

// Global tool registry
var registry = make(map[string]*ToolRegistration)

// ProfileDefinitions maps each profile to the tools it exposes. The "all"
// profile is the union of every profile. Overridden by configs/profiles.yaml
// when present.
var ProfileDefinitions = map[string][]string{
	"employees": {
		"get-employee",
		"get-employee-photo",
		"get-employee-directory",
		"get-employee-goals",
		"get-meta-fields",
	},
	"time_off": {
		"estimate-time-off-balance",
		"get-time-off-requests",
		"get-whos-out",
	},
	"company": {
		"list-company-files",
		"get-company-file",
		"get-meta-fields",
	},
}

// RegisterTool adds a tool to the registry
func RegisterTool(reg *ToolRegistration) {
	registry[reg.Name] = reg
}

// GetTool retrieves a tool from the registry
func GetTool(name string) (*ToolRegistration, bool) {
	tool, ok := registry[name]
	return tool, ok
}

// GetAllRegisteredToolNames returns every registered tool name, sorted
func GetAllRegisteredToolNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetToolsForProfile returns all tool names for a given profile
func GetToolsForProfile(profile string) []string {
	if profile == "all" {
		allTools := make(map[string]bool)
		for _, tools := range ProfileDefinitions {
			for _, tool := range tools {
				allTools[tool] = true
			}
		}
		result := make([]string, 0, len(allTools))
		for tool := range allTools {
			result = append(result, tool)
		}
		sort.Strings(result)
		return result
	}

	tools, ok := ProfileDefinitions[profile]
	if !ok {
		return []string{}
	}
	return tools
}

// AddToolsToServer adds all tools for a profile to an MCP server and
// returns how many were added.
func AddToolsToServer(s *server.MCPServer, profile string) (int, error) {
	if _, ok := ProfileDefinitions[profile]; !ok && profile != "all" {
		return 0, fmt.Errorf("unknown profile: %s", profile)
	}

	added := 0
	for _, name := range GetToolsForProfile(profile) {
		reg, ok := GetTool(name)
		if !ok {
			slog.Warn("Tool listed in profile is not registered", "tool", name, "profile", profile)
			continue
		}
		s.AddTool(reg.Schema, wrapHandler(reg))
		added++
	}

	return added, nil
}

// CallTool invokes a registered tool the same way the MCP server would
func CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	reg, ok := GetTool(name)
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	var request mcp.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = args
	return wrapHandler(reg)(ctx, request)
}

// wrapHandler converts our ToolHandler to mcp-go's expected signature.
// Handler errors and panics both become "Error <action>: <message>"
// results; every call is counted by the metrics manager in ctx.
func wrapHandler(reg *ToolRegistration) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Tool handler panicked", "tool", reg.Name, "panic", r)
				result, err = ActionError(reg.Action, r), nil
			}
			metrics.GetManager(ctx).RecordToolCall(reg.Name, result == nil || result.IsError)
		}()

		result, err = reg.Handler(ctx, request.GetArguments())
		if err != nil {
			slog.Debug("Tool call failed", "tool", reg.Name, "error", err)
			return ActionError(reg.Action, err), nil
		}
		return result, nil
	}
}

// Helper functions for creating tool results

// ToJSON converts a value to JSON string without HTML escaping
func ToJSON(v any) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false) // keep HTML characters unescaped

	if err := encoder.Encode(v); err != nil {
		return fmt.Sprintf("{\"error\": \"failed to marshal JSON: %v\"}", err)
	}

	// encoder.Encode() adds a trailing newline, trim it
	return strings.TrimSuffix(buf.String(), "\n")
}

// SuccessResult creates a successful tool result
func SuccessResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultText(ToJSON(data))
}

// ErrorResult creates an error tool result
func ErrorResult(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// ErrorResultf creates an error tool result with formatting
func ErrorResultf(format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...))
}

// ActionError formats a failure of action as an error result
func ActionError(action string, failure any) *mcp.CallToolResult {
	return ErrorResultf("Error %s: %s", action, FailureMessage(failure))
}

// FailureMessage is the error's text, or "Unknown error" when failure is
// not an error value.
func FailureMessage(failure any) string {
	if err, ok := failure.(error); ok && err != nil {
		return err.Error()
	}
	return "Unknown error"
}
