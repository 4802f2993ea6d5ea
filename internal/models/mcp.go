package models

// MCPToolContent represents one content block of a tool call result.
type MCPToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// MCPToolResult represents the result of a tool call. Engine failures are
// returned with IsError set and the error text verbatim, not as protocol
// errors: the calling model reads the text and retries with corrected input.
type MCPToolResult struct {
	Content []MCPToolContent `json:"content"`
	IsError bool             `json:"isError"`
}
