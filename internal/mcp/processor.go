// Package mcp dispatches MCP tool calls to the file-operation service and
// formats results for a model-facing client.
package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"anchor-editor-server/internal/models"
	"anchor-editor-server/internal/service"
)

const (
	serverName        = "anchor-editor"
	serverVersion     = "1.0.0"
	serverDescription = "Line-anchored file editor: reads return \"line#fingerprint|content\" lines, edits target those anchors and are rejected atomically when stale."
	protocolVersion   = "2024-11-05"
)

// ToolCallParams represents the parameters of a tools/call request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// MCPProcessor handles MCP requests.
type MCPProcessor struct {
	service service.FileOperationService
}

// NewMCPProcessor creates a new MCPProcessor.
func NewMCPProcessor(svc service.FileOperationService) *MCPProcessor {
	return &MCPProcessor{service: svc}
}

// ProcessRequest handles a JSON-RPC request, returning either a result value
// or a JSON-RPC error. Tool-level failures (stale anchors, malformed edits)
// are not protocol errors: they come back as tool results with IsError set
// and the engine's message verbatim, so the model can retry.
func (p *MCPProcessor) ProcessRequest(req models.JSONRPCRequest) (interface{}, *models.JSONRPCError) {
	switch req.Method {
	case "initialize":
		return models.InitializeResponse{
			ProtocolVersion: protocolVersion,
			Capabilities:    models.Capabilities{Tools: models.ToolsCapabilities{}},
			ServerInfo: models.ServerInfo{
				Name:        serverName,
				Version:     serverVersion,
				Description: serverDescription,
			},
		}, nil
	case "tools/list":
		return models.ToolsListResponse{Tools: toolDefinitions()}, nil
	case "tools/call":
		var params ToolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, &models.JSONRPCError{
				Code:    -32602,
				Message: "Invalid parameters for tools/call: " + err.Error(),
			}
		}
		return p.handleToolCall(params.Name, params.Arguments)
	default:
		return nil, &models.JSONRPCError{
			Code:    -32601,
			Message: "Method not found: " + req.Method,
		}
	}
}

func (p *MCPProcessor) handleToolCall(toolName string, toolArgs json.RawMessage) (*models.MCPToolResult, *models.JSONRPCError) {
	switch toolName {
	case "list_files":
		var params models.ListFilesRequest
		if len(toolArgs) > 0 {
			if err := json.Unmarshal(toolArgs, &params); err != nil {
				return nil, invalidToolParams("list_files", err)
			}
		}
		resp, serviceErr := p.service.ListFiles(params)
		if serviceErr != nil {
			return toolError(serviceErr), nil
		}
		return toolText(formatListFilesResult(resp)), nil
	case "read_file":
		var params models.ReadFileRequest
		if err := json.Unmarshal(toolArgs, &params); err != nil {
			return nil, invalidToolParams("read_file", err)
		}
		resp, serviceErr := p.service.ReadFile(params)
		if serviceErr != nil {
			return toolError(serviceErr), nil
		}
		return toolText(formatReadFileResult(params.Name, resp)), nil
	case "edit_file":
		var params models.EditFileRequest
		if err := json.Unmarshal(toolArgs, &params); err != nil {
			return nil, invalidToolParams("edit_file", err)
		}
		resp, serviceErr := p.service.EditFile(params)
		if serviceErr != nil {
			return toolError(serviceErr), nil
		}
		return toolText(formatEditFileResult(params.Name, resp)), nil
	default:
		return toolText("Error: Unknown tool '" + toolName + "'."), nil
	}
}

func invalidToolParams(tool string, err error) *models.JSONRPCError {
	return &models.JSONRPCError{
		Code:    -32602,
		Message: fmt.Sprintf("Invalid parameters for %s: %v", tool, err),
	}
}

func toolText(text string) *models.MCPToolResult {
	return &models.MCPToolResult{
		Content: []models.MCPToolContent{{Type: "text", Text: text}},
	}
}

// toolError renders a service failure as an IsError tool result. The message
// goes through verbatim; for stale anchors the remap rendering is already
// embedded in it.
func toolError(detail *models.ErrorDetail) *models.MCPToolResult {
	return &models.MCPToolResult{
		Content: []models.MCPToolContent{{Type: "text", Text: "Error: " + detail.Message}},
		IsError: true,
	}
}

func formatListFilesResult(resp *models.ListFilesResponse) string {
	if len(resp.Files) == 0 {
		return fmt.Sprintf("No files found in directory: %s", resp.Directory)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Directory: %s\nTotal files: %d\n\n", resp.Directory, resp.TotalCount)
	for _, f := range resp.Files {
		fmt.Fprintf(&b, "- %s (%d bytes, modified %s", f.Name, f.Size, f.Modified)
		if f.Lines >= 0 {
			fmt.Fprintf(&b, ", %d lines", f.Lines)
		}
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatReadFileResult(filename string, resp *models.ReadFileResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\nTotal lines: %d\n", filename, resp.TotalLines)
	if r := resp.RangeRequested; r != nil {
		fmt.Fprintf(&b, "Showing lines %d-%d\n", r.StartLine, r.EndLine)
	}
	b.WriteString("Each line is \"line#fingerprint|content\"; use the line#fingerprint part as the anchor in edit_file.\n\n")
	b.WriteString(resp.Content)
	return b.String()
}

func formatEditFileResult(filename string, resp *models.EditFileResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Edited %s: %d edit(s) applied", filename, resp.AppliedEdits)
	if resp.DeduplicatedEdits > 0 {
		fmt.Fprintf(&b, ", %d duplicate(s) dropped", resp.DeduplicatedEdits)
	}
	if resp.NoopEdits > 0 {
		fmt.Fprintf(&b, ", %d no-op(s)", resp.NoopEdits)
	}
	fmt.Fprintf(&b, ". File now has %d lines.", resp.NewTotalLines)
	if resp.FileCreated {
		b.WriteString(" File was created.")
	}
	if resp.Preview != "" {
		b.WriteString("\n\nChanges:\n")
		b.WriteString(resp.Preview)
	}
	b.WriteString("\n\nAnchors for edited lines have changed; re-read the file before further edits to them.")
	return b.String()
}

func toolDefinitions() []models.ToolDefinition {
	anchorDesc := "Anchor in \"line#fingerprint\" form as returned by read_file, e.g. \"2#KB\""
	return []models.ToolDefinition{
		{
			Name:        "list_files",
			Description: "Lists all non-hidden files in the working directory with size, modification time, permissions and line count.",
			ArgumentsSchema: models.Schema{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
			Annotations: models.ToolAnnotations{ReadOnlyHint: true},
		},
		{
			Name:        "read_file",
			Description: "Reads a file (optionally a line range). Every returned line is prefixed with its anchor: \"line#fingerprint|content\". Edits must reference these anchors.",
			ArgumentsSchema: models.Schema{
				"type": "object",
				"properties": map[string]interface{}{
					"name":       map[string]interface{}{"type": "string", "description": "File name in the working directory"},
					"start_line": map[string]interface{}{"type": "integer", "description": "Optional 1-based first line"},
					"end_line":   map[string]interface{}{"type": "integer", "description": "Optional 1-based last line"},
				},
				"required": []string{"name"},
			},
			Annotations: models.ToolAnnotations{ReadOnlyHint: true},
		},
		{
			Name: "edit_file",
			Description: "Applies a batch of anchored edits atomically. Each edit is " +
				"{op: replace|append|prepend, pos: anchor, end: anchor (replace ranges), lines: [strings]}. " +
				"Omit pos to append at end-of-file or prepend at start-of-file. lines: [] with replace deletes the span. " +
				"If any anchor is stale the whole batch is rejected and the error lists corrected anchors after \">>>\".",
			ArgumentsSchema: models.Schema{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "string", "description": "File name in the working directory"},
					"edits": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"op":    map[string]interface{}{"type": "string", "enum": []string{"replace", "append", "prepend"}},
								"pos":   map[string]interface{}{"type": "string", "description": anchorDesc},
								"end":   map[string]interface{}{"type": "string", "description": anchorDesc},
								"lines": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
							},
							"required": []string{"op", "lines"},
						},
					},
					"create_if_missing": map[string]interface{}{"type": "boolean"},
				},
				"required": []string{"name", "edits"},
			},
			Annotations: models.ToolAnnotations{DestructiveHint: true},
		},
	}
}
