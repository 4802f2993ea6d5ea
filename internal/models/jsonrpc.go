package models

import "encoding/json"

// JSONRPCRequest represents a JSON-RPC 2.0 request object.
type JSONRPCRequest struct {
	// JSONRPC must be "2.0".
	JSONRPC string `json:"jsonrpc"`
	// ID is the client-established identifier; echoed back in the response.
	ID interface{} `json:"id"`
	// Method is the name of the method to invoke.
	Method string `json:"method"`
	// Params is kept raw so parsing can be deferred until the method is known.
	Params json.RawMessage `json:"params"`
}

// JSONRPCErrorData carries application-specific context inside an error object.
type JSONRPCErrorData struct {
	Filename  string `json:"filename,omitempty"`
	Operation string `json:"operation,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Details   string `json:"details,omitempty"`
	// Remap maps stale anchors to the currently-correct anchor for the same
	// line, so a caller can retry without re-reading the file.
	Remap map[string]string `json:"remap,omitempty"`
}

// JSONRPCError represents a JSON-RPC error object.
type JSONRPCError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    *JSONRPCErrorData `json:"data,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response object. Exactly one of
// Result and Error is set.
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}
