// Package preview renders display-only line diffs for edit responses.
// The edit engine never consults it; a preview that is truncated or skipped
// changes nothing about what was written to disk.
package preview

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

// Line is one classified line of a before/after diff.
type Line struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	OldLine int    `json:"old_line,omitempty"`
	NewLine int    `json:"new_line,omitempty"`
}

// MaxLines caps the combined size of documents a preview is computed for.
const MaxLines = 5000

// Diff returns the line-level diff between two documents. The second return
// is true when the documents were too large and the diff was skipped.
func Diff(before, after string) ([]Line, bool) {
	if lineCount(before)+lineCount(after) > MaxLines {
		return nil, true
	}
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Type: LineContext, Text: text, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Type: LineRemoved, Text: text, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Type: LineAdded, Text: text, NewLine: newLine})
				newLine++
			}
		}
	}
	return lines, false
}

// Render formats a diff as a compact +/- block showing only changed lines,
// for inclusion in tool responses.
func Render(before, after string) string {
	lines, truncated := Diff(before, after)
	if truncated {
		return "(change preview skipped: file too large)"
	}
	var b strings.Builder
	for _, l := range lines {
		switch l.Type {
		case LineAdded:
			b.WriteString("+ " + l.Text + "\n")
		case LineRemoved:
			b.WriteString("- " + l.Text + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
