package editor

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
)

// DecodeEdits parses the raw JSON edits array from a tool call.
//
// The payload is produced by a language model, so a plain json.Unmarshal
// error ("cannot unmarshal ...") is not actionable enough. The raw JSON is
// probed field by field and every malformed shape gets a message naming the
// offending field and the expected form.
func DecodeEdits(raw []byte) ([]Edit, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &MalformedEditError{Index: -1, Reason: "edits must be an array of edit objects"}
	}
	if !gjson.ValidBytes(raw) {
		return nil, &MalformedEditError{Index: -1, Reason: "edits is not valid JSON"}
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return nil, &MalformedEditError{Index: -1, Reason: "edits must be an array of edit objects"}
	}

	var edits []Edit
	var malformed *MalformedEditError
	parsed.ForEach(func(_, item gjson.Result) bool {
		i := len(edits)
		fail := func(reason string) bool {
			malformed = &MalformedEditError{Index: i, Reason: reason}
			return false
		}

		if !item.IsObject() {
			return fail("each edit must be an object with op, lines and optional pos/end")
		}

		op := item.Get("op")
		if op.Type != gjson.String {
			return fail("op is required and must be one of \"replace\", \"append\" or \"prepend\"")
		}
		switch Op(op.String()) {
		case OpReplace, OpAppend, OpPrepend:
		default:
			return fail(fmt.Sprintf("unknown op %q: must be \"replace\", \"append\" or \"prepend\"", op.String()))
		}

		pos := item.Get("pos")
		if pos.Exists() && pos.Type != gjson.String {
			return fail("pos must be an anchor string (\"line#fingerprint\")")
		}
		end := item.Get("end")
		if end.Exists() && end.Type != gjson.String {
			return fail("end must be an anchor string (\"line#fingerprint\")")
		}
		if end.Exists() && Op(op.String()) != OpReplace {
			return fail("end is only valid with op \"replace\"")
		}

		linesField := item.Get("lines")
		if !linesField.Exists() || !linesField.IsArray() {
			return fail("lines must be an array of strings")
		}
		lines := []string{}
		bad := -1
		linesField.ForEach(func(_, l gjson.Result) bool {
			if l.Type != gjson.String {
				bad = len(lines)
				return false
			}
			lines = append(lines, l.String())
			return true
		})
		if bad >= 0 {
			return fail(fmt.Sprintf("lines[%d] must be a string", bad))
		}

		edits = append(edits, Edit{
			Op:    Op(op.String()),
			Pos:   pos.String(),
			End:   end.String(),
			Lines: lines,
		})
		return true
	})
	if malformed != nil {
		return nil, malformed
	}
	return edits, nil
}
