package errors

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"anchor-editor-server/internal/editor"
	"anchor-editor-server/internal/hashline"
)

func TestFromEngineError_Malformed(t *testing.T) {
	engineErr := &editor.MalformedEditError{Index: 2, Reason: "unknown op \"insert\""}
	detail := FromEngineError(engineErr, "test.txt")
	if detail.Code != CodeInvalidParams {
		t.Errorf("code = %d, want %d", detail.Code, CodeInvalidParams)
	}
	if !strings.Contains(detail.Message, "malformed edit at index 2") {
		t.Errorf("message = %q", detail.Message)
	}
}

func TestFromEngineError_Mismatch(t *testing.T) {
	engineErr := &editor.MismatchError{Mismatches: []editor.Mismatch{
		{Requested: "2#XX", Current: hashline.TaggedLine{Num: 2, Content: "two"}},
	}}
	detail := FromEngineError(engineErr, "test.txt")
	if detail.Code != CodeStaleAnchors {
		t.Errorf("code = %d, want %d", detail.Code, CodeStaleAnchors)
	}
	// The engine's rendering passes through verbatim.
	if detail.Message != engineErr.Error() {
		t.Errorf("message altered: %q vs %q", detail.Message, engineErr.Error())
	}
	data := detail.Data.(map[string]interface{})
	remap := data["remap"].(map[string]string)
	if remap["2#XX"] != hashline.AnchorFor(2, "two").String() {
		t.Errorf("remap = %v", remap)
	}
}

func TestFromEngineError_Overlap(t *testing.T) {
	engineErr := &editor.OverlapError{FirstStart: 1, FirstEnd: 3, SecondStart: 2, SecondEnd: 4}
	detail := FromEngineError(engineErr, "test.txt")
	if detail.Code != CodeOverlappingEdits {
		t.Errorf("code = %d, want %d", detail.Code, CodeOverlappingEdits)
	}
	if !strings.Contains(strings.ToLower(detail.Message), "overlapping") {
		t.Errorf("message = %q", detail.Message)
	}
}

func TestFromEngineError_Unknown(t *testing.T) {
	detail := FromEngineError(fmt.Errorf("disk on fire"), "test.txt")
	if detail.Code != CodeInternalError {
		t.Errorf("code = %d, want %d", detail.Code, CodeInternalError)
	}
}

func TestToJSONRPCError_CarriesRemap(t *testing.T) {
	engineErr := &editor.MismatchError{Mismatches: []editor.Mismatch{
		{Requested: "1#AA", Current: hashline.TaggedLine{Num: 1, Content: "line"}},
	}}
	rpcErr := ToJSONRPCError(FromEngineError(engineErr, "f.txt"))
	if rpcErr.Data == nil {
		t.Fatal("error data missing")
	}
	if rpcErr.Data.Filename != "f.txt" {
		t.Errorf("filename = %q", rpcErr.Data.Filename)
	}
	if rpcErr.Data.Remap["1#AA"] == "" {
		t.Errorf("remap missing: %+v", rpcErr.Data.Remap)
	}
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	if got := MapErrorToHTTPStatus(NewParseError("x")); got != http.StatusBadRequest {
		t.Errorf("parse error → %d", got)
	}
	if got := MapErrorToHTTPStatus(NewFileNotFoundError("f", "read")); got != http.StatusNotFound {
		t.Errorf("not found → %d", got)
	}
	if got := MapErrorToHTTPStatus(NewPermissionDeniedError("f", "read")); got != http.StatusForbidden {
		t.Errorf("permission → %d", got)
	}
	if got := MapErrorToHTTPStatus(NewFileTooLargeError("f", 1, 1)); got != http.StatusRequestEntityTooLarge {
		t.Errorf("too large → %d", got)
	}
	if got := MapErrorToHTTPStatus(NewOperationLockFailedError("f", "edit", "busy")); got != http.StatusConflict {
		t.Errorf("lock → %d", got)
	}
	if got := MapErrorToHTTPStatus(NewErrorDetail(CodeStaleAnchors, "stale", nil)); got != http.StatusConflict {
		t.Errorf("stale → %d", got)
	}
	if got := MapErrorToHTTPStatus(NewErrorDetail(CodeOverlappingEdits, "overlap", nil)); got != http.StatusConflict {
		t.Errorf("overlap → %d", got)
	}
	if got := MapErrorToHTTPStatus(nil); got != http.StatusInternalServerError {
		t.Errorf("nil → %d", got)
	}
}
