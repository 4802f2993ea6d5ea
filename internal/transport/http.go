package transport

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"anchor-editor-server/internal/errors"
	"anchor-editor-server/internal/mcp"
	"anchor-editor-server/internal/models"
	"anchor-editor-server/internal/service"
)

const (
	defaultReadTimeout  = 60 * time.Second
	defaultWriteTimeout = 60 * time.Second
	maxRequestSizeMB    = 50
)

// HTTPHandler exposes the service methods as plain POST endpoints, plus an
// /mcp endpoint speaking JSON-RPC for MCP clients.
type HTTPHandler struct {
	service   service.FileOperationService
	processor *mcp.MCPProcessor
	logger    *slog.Logger
	server    *http.Server
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(svc service.FileOperationService, processor *mcp.MCPProcessor, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		service:   svc,
		processor: processor,
		logger:    logger,
		server:    &http.Server{},
	}
}

// RegisterRoutes sets up the HTTP routes for the handler.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/read_file", h.handleReadFile)
	mux.HandleFunc("/edit_file", h.handleEditFile)
	mux.HandleFunc("/list_files", h.handleListFiles)
	mux.HandleFunc("/mcp", h.handleMCP)
	mux.HandleFunc("/health", h.handleHealthCheck)
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.Error("failed to encode response", "error", err)
		}
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, errDetail *models.ErrorDetail) {
	if errDetail == nil {
		errDetail = errors.NewInternalError("error details were lost")
	}
	h.writeJSON(w, errors.MapErrorToHTTPStatus(errDetail), errors.ToErrorResponse(errDetail))
}

// decodeBody enforces method, content type and size, then decodes the JSON
// body into dst. A non-nil return means the response was already written.
func (h *HTTPHandler) decodeBody(w http.ResponseWriter, r *http.Request, endpoint string, dst interface{}) *models.ErrorDetail {
	if r.Method != http.MethodPost {
		errDetail := errors.NewInvalidRequestError(fmt.Sprintf("Method %s not allowed for %s. Use POST.", r.Method, endpoint))
		h.writeJSON(w, http.StatusMethodNotAllowed, errors.ToErrorResponse(errDetail))
		return errDetail
	}
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		errDetail := errors.NewInvalidRequestError("Content-Type must be 'application/json'.")
		h.writeJSON(w, http.StatusUnsupportedMediaType, errors.ToErrorResponse(errDetail))
		return errDetail
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(maxRequestSizeMB)*1024*1024)
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var errDetail *models.ErrorDetail
		switch {
		case stdErrors.As(err, &maxBytesErr):
			errDetail = errors.NewInvalidRequestError(fmt.Sprintf("Request body exceeds maximum size of %dMB.", maxRequestSizeMB))
			h.writeJSON(w, http.StatusRequestEntityTooLarge, errors.ToErrorResponse(errDetail))
		case stdErrors.As(err, &syntaxErr):
			errDetail = errors.NewParseError(fmt.Sprintf("Invalid JSON syntax at offset %d: %s", syntaxErr.Offset, syntaxErr.Error()))
			h.writeError(w, errDetail)
		case stdErrors.As(err, &typeErr):
			errDetail = errors.NewParseError(fmt.Sprintf("Invalid JSON type for field '%s': expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value))
			h.writeError(w, errDetail)
		default:
			errDetail = errors.NewParseError(fmt.Sprintf("Failed to decode request body: %v", err))
			h.writeError(w, errDetail)
		}
		return errDetail
	}
	return nil
}

func (h *HTTPHandler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) handleReadFile(w http.ResponseWriter, r *http.Request) {
	var req models.ReadFileRequest
	if errDetail := h.decodeBody(w, r, "/read_file", &req); errDetail != nil {
		return
	}
	resp, serviceErr := h.service.ReadFile(req)
	if serviceErr != nil {
		h.writeError(w, serviceErr)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleEditFile(w http.ResponseWriter, r *http.Request) {
	var req models.EditFileRequest
	if errDetail := h.decodeBody(w, r, "/edit_file", &req); errDetail != nil {
		return
	}
	resp, serviceErr := h.service.EditFile(req)
	if serviceErr != nil {
		h.writeError(w, serviceErr)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	var req models.ListFilesRequest
	if errDetail := h.decodeBody(w, r, "/list_files", &req); errDetail != nil {
		return
	}
	resp, serviceErr := h.service.ListFiles(req)
	if serviceErr != nil {
		h.writeError(w, serviceErr)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleMCP serves JSON-RPC over HTTP for MCP clients. Protocol errors come
// back with HTTP 200 and a JSON-RPC error object, per the MCP HTTP binding.
func (h *HTTPHandler) handleMCP(w http.ResponseWriter, r *http.Request) {
	var req models.JSONRPCRequest
	if errDetail := h.decodeBody(w, r, "/mcp", &req); errDetail != nil {
		return
	}
	resp := models.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID}
	if req.JSONRPC != "2.0" {
		resp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("Invalid JSON-RPC version. Must be '2.0'."))
	} else {
		resp.Result, resp.Error = h.processor.ProcessRequest(req)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// StartServer blocks serving HTTP on the given port until Shutdown is called.
func (h *HTTPHandler) StartServer(port int) error {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	h.server.Addr = fmt.Sprintf(":%d", port)
	h.server.Handler = mux
	h.server.ReadTimeout = defaultReadTimeout
	h.server.WriteTimeout = defaultWriteTimeout

	h.logger.Info("http transport started", "addr", h.server.Addr)
	err := h.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	h.logger.Info("http transport stopped")
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (h *HTTPHandler) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}
