// Package tools implements the bridge's MCP tools, one struct per tool.
//
// Every handler builds a fresh authenticated Taiga client through the
// injected factory, so tool calls never share session state. Input
// problems surface as tool error results; transport errors are returned
// as Go errors.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alphaomegateam/taiga-bridge/internal/errors"
	"github.com/alphaomegateam/taiga-bridge/internal/gateway"
)

// argOrUnset distinguishes an omitted argument from an explicit null.
// Omitted arguments come back as the Unset sentinel so update payloads
// can skip them entirely.
func argOrUnset(req mcp.CallToolRequest, name string) any {
	args := req.GetArguments()
	v, ok := args[name]
	if !ok {
		return gateway.Unset
	}
	return v
}

func requiredInt(req mcp.CallToolRequest, name string) (int, error) {
	args := req.GetArguments()
	v, ok := args[name]
	if !ok {
		return 0, errors.NewValidation("'%s' is required", name)
	}
	return gateway.RequireInt(v, name)
}

// optionalInt returns nil when the argument is absent or null.
func optionalInt(req mcp.CallToolRequest, name string) (*int, error) {
	args := req.GetArguments()
	v, ok := args[name]
	if !ok {
		return nil, nil
	}
	return gateway.OptionalInt(v, name)
}

func argString(req mcp.CallToolRequest, name string) string {
	return req.GetString(name, "")
}

// marshalResult renders a tool result as indented JSON text content.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError maps bridge errors onto tool results. Caller mistakes and
// remote rejections become error results the model can read and correct;
// anything else bubbles up as a transport failure.
func toolError(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.IsValidation(err), errors.IsNotFound(err), errors.IsConflict(err):
		return mcp.NewToolResultError(err.Error()), nil
	default:
		if apiErr, ok := errors.AsAPIError(err); ok {
			return mcp.NewToolResultError(apiErr.Error()), nil
		}
		return nil, err
	}
}

func boolPtr(b bool) *bool { return &b }
