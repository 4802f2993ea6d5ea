// Package hashline provides content-addressed line anchors for reliable file editing.
//
// Each line gets a short fingerprint derived from its 1-based line number and
// its content. An editing client (typically a language model) references lines
// as "<line>#<fingerprint>" anchors, so an edit can be rejected before anything
// is corrupted when the file changed since the last read. The fingerprint is a
// staleness tripwire, not a security primitive: it only needs to make an
// accidental stale match vanishingly unlikely.
package hashline

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// FingerprintLen is the number of characters in a fingerprint token.
const FingerprintLen = 2

// fingerprint tokens are uppercase base36, e.g. "KB".
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Fingerprint computes the short fingerprint for a line. Identical
// (number, content) pairs always produce the same token; moving a line or
// changing its text is expected to change it.
func Fingerprint(num int, content string) string {
	h := fnv.New32a()
	h.Write([]byte(strconv.Itoa(num)))
	h.Write([]byte{0})
	h.Write([]byte(content))
	v := h.Sum32()
	base := uint32(len(alphabet))
	buf := make([]byte, FingerprintLen)
	for i := FingerprintLen - 1; i >= 0; i-- {
		buf[i] = alphabet[v%base]
		v /= base
	}
	return string(buf)
}

// Anchor identifies a line by number and expected fingerprint.
type Anchor struct {
	Num         int
	Fingerprint string
}

// String renders the anchor in wire format, e.g. "2#KB".
func (a Anchor) String() string {
	return strconv.Itoa(a.Num) + "#" + a.Fingerprint
}

// AnchorFor returns the current anchor for a line.
func AnchorFor(num int, content string) Anchor {
	return Anchor{Num: num, Fingerprint: Fingerprint(num, content)}
}

// ParseAnchor parses a "<line>#<fingerprint>" string. The error messages are
// deliberately specific: the caller is a language model and self-corrects
// from them, so each malformed shape gets its own stable hint.
func ParseAnchor(s string) (Anchor, error) {
	if strings.ContainsAny(s, "<>") {
		return Anchor{}, fmt.Errorf("invalid anchor %q: markup tags are not anchors, use the plain \"line#fingerprint\" token", s)
	}
	sep := strings.Index(s, "#")
	if sep < 0 {
		return Anchor{}, fmt.Errorf("invalid anchor %q: missing # separator", s)
	}
	numPart, token := s[:sep], s[sep+1:]
	n, err := strconv.Atoi(numPart)
	if err != nil || n < 1 {
		return Anchor{}, fmt.Errorf("invalid anchor %q: %q is not a line number", s, numPart)
	}
	if strings.Contains(token, "|") {
		return Anchor{}, fmt.Errorf("invalid anchor %q: content after the fingerprint belongs in the lines field", s)
	}
	if len(token) != FingerprintLen {
		return Anchor{}, fmt.Errorf("invalid anchor %q: fingerprint must be %d characters", s, FingerprintLen)
	}
	return Anchor{Num: n, Fingerprint: token}, nil
}

// Matches reports whether the anchor is still valid against the given lines
// (0-indexed slice, anchor numbering is 1-based). The anchor must be in range.
func (a Anchor) Matches(lines []string) bool {
	idx := a.Num - 1
	if idx < 0 || idx >= len(lines) {
		return false
	}
	return Fingerprint(a.Num, lines[idx]) == a.Fingerprint
}

// TaggedLine is a line paired with its current anchor.
type TaggedLine struct {
	Num     int
	Content string
}

// Tag renders the line as "<line>#<fingerprint>|<content>", the format used
// both in read responses and in mismatch reports.
func (t TaggedLine) Tag() string {
	return AnchorFor(t.Num, t.Content).String() + "|" + t.Content
}

// TagLines renders every line of a document with its anchor, one per output
// line. startLine shifts the numbering for partial reads (1-based; values
// below 1 mean 1).
func TagLines(lines []string, startLine int) string {
	if startLine < 1 {
		startLine = 1
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(TaggedLine{Num: startLine + i, Content: line}.Tag())
	}
	return b.String()
}
