package models

// FileInfo describes a file in the directory listing.
type FileInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"` // RFC 3339
	Readable bool   `json:"readable"`
	Writable bool   `json:"writable"`
	Lines    int    `json:"lines"` // -1 when unknown (unreadable, non-UTF-8 or too large)
}

// ListFilesRequest represents a request to list files. No parameters yet.
type ListFilesRequest struct{}

// ListFilesResponse represents the response from a list files operation.
type ListFilesResponse struct {
	Files      []FileInfo `json:"files"`
	TotalCount int        `json:"total_count"`
	Directory  string     `json:"directory"`
}
