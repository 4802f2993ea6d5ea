package models

// InitializeResponse is the JSON response of the "initialize" method.
type InitializeResponse struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// ServerInfo identifies the server to the client.
type ServerInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Capabilities describes what the server offers.
type Capabilities struct {
	Tools ToolsCapabilities `json:"tools"`
}

// ToolsCapabilities is an empty object for now.
type ToolsCapabilities struct{}

// ToolsListResponse is the JSON response of the "tools/list" method.
type ToolsListResponse struct {
	Tools []ToolDefinition `json:"tools"`
}

// ToolDefinition describes a single tool available through the server.
type ToolDefinition struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	ArgumentsSchema Schema          `json:"arguments_schema"`
	ResponseSchema  Schema          `json:"response_schema"`
	Annotations     ToolAnnotations `json:"annotations"`
}

// Schema is a JSON schema fragment.
type Schema map[string]interface{}

// ToolAnnotations hints at a tool's behavior.
type ToolAnnotations struct {
	ReadOnlyHint    bool `json:"readOnlyHint"`
	DestructiveHint bool `json:"destructiveHint"`
}
