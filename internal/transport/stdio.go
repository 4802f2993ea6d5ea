// Package transport carries JSON-RPC requests over stdio and HTTP and hands
// them to the MCP processor or the file-operation service.
package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"anchor-editor-server/internal/errors"
	"anchor-editor-server/internal/mcp"
	"anchor-editor-server/internal/models"
	"anchor-editor-server/internal/service"
)

// maxStdioLineBytes bounds one JSON-RPC line; edit batches with large
// payloads stay well below this.
const maxStdioLineBytes = 64 * 1024 * 1024

// StdioHandler reads newline-delimited JSON-RPC requests from input and
// writes one response line per request.
type StdioHandler struct {
	service   service.FileOperationService
	processor *mcp.MCPProcessor
	logger    *slog.Logger
}

// NewStdioHandler creates a new StdioHandler.
func NewStdioHandler(svc service.FileOperationService, processor *mcp.MCPProcessor, logger *slog.Logger) *StdioHandler {
	return &StdioHandler{service: svc, processor: processor, logger: logger}
}

func (h *StdioHandler) writeResponse(writer io.Writer, response models.JSONRPCResponse) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		h.logger.Error("failed to marshal response", "error", err, "id", response.ID)
		fallback := models.JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      response.ID,
			Error:   errors.ToJSONRPCError(errors.NewInternalError("failed to marshal response")),
		}
		responseBytes, _ = json.Marshal(fallback)
	}
	if _, err := fmt.Fprintln(writer, string(responseBytes)); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// Start processes requests until input is exhausted.
func (h *StdioHandler) Start(input io.Reader, output io.Writer) error {
	h.logger.Info("stdio transport started")
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStdioLineBytes)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(bytes.TrimSpace(lineBytes)) == 0 {
			continue
		}

		var req models.JSONRPCRequest
		if err := json.Unmarshal(lineBytes, &req); err != nil {
			h.writeResponse(output, models.JSONRPCResponse{
				JSONRPC: "2.0",
				Error:   errors.ToJSONRPCError(errors.NewParseError(fmt.Sprintf("Invalid JSON received: %v", err))),
			})
			continue
		}

		// MCP notifications carry no id and expect no response.
		if req.ID == nil && strings.HasPrefix(req.Method, "notifications/") {
			h.logger.Debug("notification ignored", "method", req.Method)
			continue
		}

		resp := models.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID}
		switch {
		case req.JSONRPC != "2.0":
			resp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("Invalid JSON-RPC version. Must be '2.0'."))
		case req.Method == "":
			resp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("Method not specified."))
		default:
			resp.Result, resp.Error = h.dispatch(req)
		}
		h.writeResponse(output, resp)
	}

	if err := scanner.Err(); err != nil {
		h.logger.Error("error reading from stdin", "error", err)
		return err
	}
	h.logger.Info("stdio transport finished")
	return nil
}

// dispatch routes MCP methods to the processor and the raw service methods
// directly, so non-MCP clients can skip the tools/call envelope.
func (h *StdioHandler) dispatch(req models.JSONRPCRequest) (interface{}, *models.JSONRPCError) {
	switch req.Method {
	case "initialize", "tools/list", "tools/call":
		return h.processor.ProcessRequest(req)
	case "read_file":
		var params models.ReadFileRequest
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, errors.ToJSONRPCError(errors.NewInvalidParamsError(
				fmt.Sprintf("Invalid params for read_file: %v", err), "", "read"))
		}
		resp, serviceErr := h.service.ReadFile(params)
		if serviceErr != nil {
			return nil, errors.ToJSONRPCError(serviceErr)
		}
		return resp, nil
	case "edit_file":
		var params models.EditFileRequest
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, errors.ToJSONRPCError(errors.NewInvalidParamsError(
				fmt.Sprintf("Invalid params for edit_file: %v", err), "", "edit"))
		}
		resp, serviceErr := h.service.EditFile(params)
		if serviceErr != nil {
			return nil, errors.ToJSONRPCError(serviceErr)
		}
		return resp, nil
	case "list_files":
		var params models.ListFilesRequest
		if len(req.Params) > 0 && string(req.Params) != "null" {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return nil, errors.ToJSONRPCError(errors.NewInvalidParamsError(
					fmt.Sprintf("Invalid params for list_files: %v", err), "", "list"))
			}
		}
		resp, serviceErr := h.service.ListFiles(params)
		if serviceErr != nil {
			return nil, errors.ToJSONRPCError(serviceErr)
		}
		return resp, nil
	default:
		return nil, errors.ToJSONRPCError(errors.NewMethodNotFoundError(req.Method))
	}
}
