// Package editor applies batches of anchored edits to document text.
//
// The engine is a pure function from (current text, edit batch) to (new text)
// or a typed failure. Every edit targets a hashline anchor, so a batch built
// against stale content is rejected as a whole before any line is touched:
// either the full batch applies or nothing does. The engine performs no I/O
// and keeps no state between calls; callers own files, locks and retries.
package editor

import "strings"

// Op is the kind of an edit operation.
type Op string

const (
	// OpReplace replaces the line at pos, or the inclusive range [pos, end],
	// with the supplied lines. Zero lines deletes the span.
	OpReplace Op = "replace"
	// OpAppend inserts lines immediately after the line at pos, or at
	// end-of-file when pos is empty.
	OpAppend Op = "append"
	// OpPrepend inserts lines immediately before the line at pos, or at
	// start-of-file when pos is empty.
	OpPrepend Op = "prepend"
)

// Edit is a single requested operation. Pos and End are anchor strings in
// "<line>#<fingerprint>" form; an empty Pos selects the sentinel position
// (end-of-file for append, start-of-file for prepend). An Edit lives for one
// engine call only: anchors are revalidated from scratch on every call.
type Edit struct {
	Op    Op
	Pos   string
	End   string
	Lines []string
}

// Report is the result of a successful application.
type Report struct {
	// Content is the full document text after all edits.
	Content string
	// DeduplicatedEdits counts edits dropped because they were exact
	// duplicates of an edit already queued at the same anchor.
	DeduplicatedEdits int
	// NoopEdits counts replacements whose new lines equalled the current
	// content of the targeted span.
	NoopEdits int
}

// document is one immutable snapshot of file text, split into lines with
// 1-based numbering computed fresh per engine call.
type document struct {
	lines           []string
	trailingNewline bool
}

func splitDocument(content string) document {
	if content == "" {
		return document{}
	}
	trailing := strings.HasSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	if trailing {
		lines = lines[:len(lines)-1]
	}
	return document{lines: lines, trailingNewline: trailing}
}

// render joins edited lines back into document text, preserving the
// presence or absence of the original trailing newline.
func (d document) render(lines []string) string {
	out := strings.Join(lines, "\n")
	if d.trailingNewline && len(lines) > 0 {
		out += "\n"
	}
	return out
}

// resolvedEdit is an Edit whose anchors parsed cleanly against the current
// document. pos and end are 1-based line numbers; pos 0 marks the sentinel
// position of an unanchored append or prepend.
type resolvedEdit struct {
	op        Op
	pos       int
	end       int
	lines     []string
	posAnchor string
	endAnchor string
	noop      bool
}
