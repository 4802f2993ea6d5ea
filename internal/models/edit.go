package models

import "encoding/json"

// EditFileRequest represents a request to edit a file with anchored edits.
// Every operation targets a "<line>#<fingerprint>" anchor obtained from a
// prior read; a batch built against stale content is rejected as a whole.
type EditFileRequest struct {
	// Name is the name of the file to edit.
	Name string `json:"name"`
	// Edits is the raw JSON array of edit objects:
	//   { "op": "replace"|"append"|"prepend",
	//     "pos": "<line>#<fingerprint>",   // omit for append-at-EOF / prepend-at-BOF
	//     "end": "<line>#<fingerprint>",   // replace ranges only
	//     "lines": ["..."] }               // [] deletes the span
	// Kept raw so the engine can report field-specific decoding errors.
	Edits json.RawMessage `json:"edits,omitempty"`
	// CreateIfMissing, if true, creates the file when it does not exist.
	// A new file accepts only unanchored (sentinel) edits.
	CreateIfMissing bool `json:"create_if_missing,omitempty"`
}

// EditFileResponse represents the response from a file edit operation.
type EditFileResponse struct {
	// Success indicates whether the batch applied.
	Success bool `json:"success"`
	// AppliedEdits is the number of edits that took effect.
	AppliedEdits int `json:"applied_edits"`
	// DeduplicatedEdits counts edits dropped as exact duplicates of an edit
	// already queued at the same anchor.
	DeduplicatedEdits int `json:"deduplicated_edits"`
	// NoopEdits counts replacements whose new content equalled the current content.
	NoopEdits int `json:"noop_edits"`
	// FileCreated indicates if a new file was created as part of the operation.
	FileCreated bool `json:"file_created"`
	// NewTotalLines is the total number of lines in the file after the edits.
	NewTotalLines int `json:"new_total_lines"`
	// Preview is a display-only +/- block of the changed lines.
	Preview string `json:"preview,omitempty"`
}
