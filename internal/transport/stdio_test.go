package transport

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"anchor-editor-server/internal/errors"
	"anchor-editor-server/internal/logging"
	"anchor-editor-server/internal/mcp"
	"anchor-editor-server/internal/models"
)

type fakeService struct {
	readResp *models.ReadFileResponse
	editResp *models.EditFileResponse
	listResp *models.ListFilesResponse
	err      *models.ErrorDetail
}

func (f *fakeService) ReadFile(models.ReadFileRequest) (*models.ReadFileResponse, *models.ErrorDetail) {
	return f.readResp, f.err
}

func (f *fakeService) EditFile(models.EditFileRequest) (*models.EditFileResponse, *models.ErrorDetail) {
	return f.editResp, f.err
}

func (f *fakeService) ListFiles(models.ListFilesRequest) (*models.ListFilesResponse, *models.ErrorDetail) {
	return f.listResp, f.err
}

func newStdioHandler(svc *fakeService) *StdioHandler {
	return NewStdioHandler(svc, mcp.NewMCPProcessor(svc), logging.Nop())
}

// runStdio feeds input lines through the handler and returns one decoded
// response per output line.
func runStdio(t *testing.T, h *StdioHandler, input string) []models.JSONRPCResponse {
	t.Helper()
	var out bytes.Buffer
	if err := h.Start(strings.NewReader(input), &out); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	var responses []models.JSONRPCResponse
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp models.JSONRPCResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("output line is not valid JSON: %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestStdio_InvalidJSON(t *testing.T) {
	h := newStdioHandler(&fakeService{})
	responses := runStdio(t, h, "{not json\n")
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if responses[0].Error == nil || responses[0].Error.Code != errors.CodeParseError {
		t.Errorf("expected parse error, got %+v", responses[0].Error)
	}
}

func TestStdio_WrongVersion(t *testing.T) {
	h := newStdioHandler(&fakeService{})
	responses := runStdio(t, h, `{"jsonrpc":"1.0","id":1,"method":"list_files"}`+"\n")
	if responses[0].Error == nil || responses[0].Error.Code != errors.CodeInvalidRequest {
		t.Errorf("expected invalid request, got %+v", responses[0].Error)
	}
}

func TestStdio_MethodNotFound(t *testing.T) {
	h := newStdioHandler(&fakeService{})
	responses := runStdio(t, h, `{"jsonrpc":"2.0","id":1,"method":"no_such_method"}`+"\n")
	if responses[0].Error == nil || responses[0].Error.Code != errors.CodeMethodNotFound {
		t.Errorf("expected method not found, got %+v", responses[0].Error)
	}
}

func TestStdio_DirectReadFile(t *testing.T) {
	svc := &fakeService{readResp: &models.ReadFileResponse{Content: "1#AB|x", TotalLines: 1}}
	h := newStdioHandler(svc)
	responses := runStdio(t, h, `{"jsonrpc":"2.0","id":7,"method":"read_file","params":{"name":"x.txt"}}`+"\n")
	resp := responses[0]
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if got := resp.ID.(float64); got != 7 {
		t.Errorf("id = %v, want 7", resp.ID)
	}
	result := resp.Result.(map[string]interface{})
	if result["content"] != "1#AB|x" {
		t.Errorf("result = %v", result)
	}
}

func TestStdio_ServiceErrorMapped(t *testing.T) {
	svc := &fakeService{err: errors.NewErrorDetail(errors.CodeStaleAnchors, "stale anchors: retry", map[string]interface{}{
		"filename": "x.txt",
		"remap":    map[string]string{"1#AA": "1#BB"},
	})}
	h := newStdioHandler(svc)
	responses := runStdio(t, h, `{"jsonrpc":"2.0","id":1,"method":"edit_file","params":{"name":"x.txt","edits":[]}}`+"\n")
	rpcErr := responses[0].Error
	if rpcErr == nil || rpcErr.Code != errors.CodeStaleAnchors {
		t.Fatalf("expected stale anchors error, got %+v", rpcErr)
	}
	if rpcErr.Data == nil || rpcErr.Data.Remap["1#AA"] != "1#BB" {
		t.Errorf("remap not carried in error data: %+v", rpcErr.Data)
	}
}

func TestStdio_NotificationsProduceNoResponse(t *testing.T) {
	h := newStdioHandler(&fakeService{})
	responses := runStdio(t, h, `{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n")
	if len(responses) != 0 {
		t.Errorf("expected no responses to a notification, got %d", len(responses))
	}
}

func TestStdio_MCPToolsList(t *testing.T) {
	h := newStdioHandler(&fakeService{})
	responses := runStdio(t, h, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`+"\n")
	resp := responses[0]
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	raw, _ := json.Marshal(resp.Result)
	if !strings.Contains(string(raw), "edit_file") {
		t.Errorf("tools/list result missing edit_file: %s", raw)
	}
}

func TestStdio_SkipsBlankLines(t *testing.T) {
	h := newStdioHandler(&fakeService{listResp: &models.ListFilesResponse{Files: []models.FileInfo{}}})
	input := "\n\n" + `{"jsonrpc":"2.0","id":1,"method":"list_files"}` + "\n\n"
	responses := runStdio(t, h, input)
	if len(responses) != 1 {
		t.Errorf("expected 1 response, got %d", len(responses))
	}
}
