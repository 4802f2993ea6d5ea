// Package errors builds the structured error details returned over JSON-RPC
// and HTTP, and maps the edit engine's typed failures onto them.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	"anchor-editor-server/internal/editor"
	"anchor-editor-server/internal/models"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Application-specific error codes.
const (
	// CodeFileSystemError covers file system failures; the data payload
	// carries a "type" field (file_not_found, permission_denied, ...).
	CodeFileSystemError = -32001
	// CodeOperationLockFailed indicates the per-file lock could not be acquired.
	CodeOperationLockFailed = -32002
	// CodeFileTooLarge indicates the file exceeds the configured size limit.
	CodeFileTooLarge = -32003
	// CodeStaleAnchors indicates one or more edit anchors no longer match the
	// file. Recoverable: the data payload carries the full anchor remap.
	CodeStaleAnchors = -32004
	// CodeOverlappingEdits indicates two edits in one batch target
	// intersecting line spans. The batch was rejected atomically.
	CodeOverlappingEdits = -32005
)

// NewErrorDetail creates a new ErrorDetail.
func NewErrorDetail(code int, message string, data interface{}) *models.ErrorDetail {
	return &models.ErrorDetail{Code: code, Message: message, Data: data}
}

// NewParseError reports invalid JSON received by the server.
func NewParseError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeParseError, "Parse error", map[string]interface{}{"details": details})
}

// NewInvalidRequestError reports an invalid JSON-RPC request object.
func NewInvalidRequestError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInvalidRequest, "Invalid Request", map[string]interface{}{"details": details})
}

// NewMethodNotFoundError reports an unknown JSON-RPC method.
func NewMethodNotFoundError(methodName string) *models.ErrorDetail {
	return NewErrorDetail(CodeMethodNotFound, "Method not found", map[string]interface{}{"method": methodName})
}

// NewInvalidParamsError reports invalid method parameters. The message is
// surfaced verbatim to the calling model, so it should name the offending
// field and the expected shape.
func NewInvalidParamsError(message, filename, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeInvalidParams, message, map[string]interface{}{
		"filename":  filename,
		"operation": operation,
	})
}

// NewInternalError reports an unexpected server-side failure.
func NewInternalError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInternalError, "Internal error", map[string]interface{}{"details": details})
}

// NewFileSystemError reports a generic file system failure.
func NewFileSystemError(filename, operation, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, "File system error", map[string]interface{}{
		"filename":  filename,
		"operation": operation,
		"details":   details,
	})
}

// NewFileNotFoundError reports a missing file.
func NewFileNotFoundError(filename, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("File '%s' not found", filename), map[string]interface{}{
		"filename":  filename,
		"operation": operation,
		"type":      "file_not_found",
	})
}

// NewPermissionDeniedError reports a permission failure.
func NewPermissionDeniedError(filename, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("Permission denied for file '%s'", filename), map[string]interface{}{
		"filename":  filename,
		"operation": operation,
		"type":      "permission_denied",
	})
}

// NewInvalidEncodingError reports content that is not valid UTF-8.
func NewInvalidEncodingError(filename, operation, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("File '%s' is not valid UTF-8", filename), map[string]interface{}{
		"filename":  filename,
		"operation": operation,
		"details":   details,
		"type":      "invalid_encoding",
	})
}

// NewFileTooLargeError reports a file exceeding the configured size limit.
func NewFileTooLargeError(filename string, size int64, maxSizeMB int) *models.ErrorDetail {
	return NewErrorDetail(CodeFileTooLarge,
		fmt.Sprintf("File '%s' exceeds maximum allowed size of %d MB", filename, maxSizeMB),
		map[string]interface{}{
			"filename":    filename,
			"size":        size,
			"max_size_mb": maxSizeMB,
			"type":        "file_too_large",
		})
}

// NewOperationLockFailedError reports a failure to acquire the per-file lock.
func NewOperationLockFailedError(filename, operation, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeOperationLockFailed,
		fmt.Sprintf("Could not acquire lock for operation '%s' on file '%s'", operation, filename),
		map[string]interface{}{
			"filename":  filename,
			"operation": operation,
			"details":   details,
		})
}

// FromEngineError converts a typed edit-engine failure into an ErrorDetail.
// The engine's message text is carried through unchanged: a collaborating
// layer upstream matches on its canonical fragments ("missing # separator",
// "overlapping", ...) and the calling model repairs its input from them.
func FromEngineError(err error, filename string) *models.ErrorDetail {
	var malformed *editor.MalformedEditError
	if stdErrors.As(err, &malformed) {
		return NewInvalidParamsError(malformed.Error(), filename, "edit")
	}
	var mismatch *editor.MismatchError
	if stdErrors.As(err, &mismatch) {
		return NewErrorDetail(CodeStaleAnchors, mismatch.Error(), map[string]interface{}{
			"filename": filename,
			"remap":    mismatch.Remap(),
			"type":     "stale_anchors",
		})
	}
	var overlap *editor.OverlapError
	if stdErrors.As(err, &overlap) {
		return NewErrorDetail(CodeOverlappingEdits, overlap.Error(), map[string]interface{}{
			"filename": filename,
			"type":     "overlapping_edits",
		})
	}
	return NewInternalError(err.Error())
}

// ToErrorResponse converts an ErrorDetail to an HTTP error body.
func ToErrorResponse(errDetail *models.ErrorDetail) *models.ErrorResponse {
	if errDetail == nil {
		return nil
	}
	return &models.ErrorResponse{Error: *errDetail}
}

// ToJSONRPCError converts an ErrorDetail to a JSON-RPC error object.
func ToJSONRPCError(errDetail *models.ErrorDetail) *models.JSONRPCError {
	if errDetail == nil {
		return nil
	}
	rpcErr := &models.JSONRPCError{
		Code:    errDetail.Code,
		Message: errDetail.Message,
	}
	data := &models.JSONRPCErrorData{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if dataMap, ok := errDetail.Data.(map[string]interface{}); ok {
		if v, ok := dataMap["filename"].(string); ok {
			data.Filename = v
		}
		if v, ok := dataMap["operation"].(string); ok {
			data.Operation = v
		}
		if v, ok := dataMap["details"].(string); ok {
			data.Details = v
		}
		if v, ok := dataMap["remap"].(map[string]string); ok {
			data.Remap = v
		}
	} else if errDetail.Data != nil {
		data.Details = fmt.Sprintf("%v", errDetail.Data)
	}
	rpcErr.Data = data
	return rpcErr
}

// MapErrorToHTTPStatus maps an error detail to an HTTP status code.
func MapErrorToHTTPStatus(errDetail *models.ErrorDetail) int {
	if errDetail == nil {
		return http.StatusInternalServerError
	}
	switch errDetail.Code {
	case CodeParseError, CodeInvalidRequest, CodeInvalidParams:
		return http.StatusBadRequest
	case CodeMethodNotFound:
		return http.StatusNotFound
	case CodeStaleAnchors, CodeOverlappingEdits, CodeOperationLockFailed:
		return http.StatusConflict
	case CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeFileSystemError:
		if dataMap, ok := errDetail.Data.(map[string]interface{}); ok {
			switch dataMap["type"] {
			case "file_not_found":
				return http.StatusNotFound
			case "permission_denied":
				return http.StatusForbidden
			}
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
