// Package models defines the wire types shared by the transports, the MCP
// processor and the file-operation service.
package models

// ErrorDetail is the structured representation of a failed operation.
type ErrorDetail struct {
	// Code is an application-specific error code (JSON-RPC conventions).
	Code int `json:"code"`
	// Message is a human-readable error message. For engine failures the
	// text is surfaced verbatim to the calling model, which pattern-matches
	// and self-corrects on it, so canonical fragments must stay stable.
	Message string `json:"message"`
	// Data holds additional context, like filename or the anchor remap.
	Data interface{} `json:"data,omitempty"`
}

// ErrorResponse wraps an ErrorDetail for HTTP responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
