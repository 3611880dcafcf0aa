package mcp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jobboard/backend/mcp"
	"github.com/jobboard/backend/tools"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its input" }
func (echoTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}
func (echoTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	return tools.NewSuccessResult(input)
}

type failTool struct{ echoTool }

func (failTool) Name() string { return "fail" }
func (failTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	return tools.NewErrorResult("job not found")
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	registry := tools.NewToolRegistry()
	registry.Register(echoTool{})
	registry.Register(failTool{})

	r := gin.New()
	mcp.NewServer(registry).RegisterRoutes(r.Group("/api"))
	return r
}

func rpc(t *testing.T, r *gin.Engine, body string) mcp.MCPResponse {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/mcp", bytes.NewBufferString(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var resp mcp.MCPResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestJSONRPC(t *testing.T) {
	r := newRouter()

	if resp := rpc(t, r, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`); resp.Error != nil || resp.Result == nil {
		t.Errorf("initialize = %+v", resp)
	}

	resp := rpc(t, r, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	raw, _ := json.Marshal(resp.Result)
	var list mcp.ToolsListResult
	if err := json.Unmarshal(raw, &list); err != nil || len(list.Tools) != 2 || list.Tools[0].Name != "echo" {
		t.Errorf("tools/list = %s", raw)
	}

	resp = rpc(t, r, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"q":"go"}}}`)
	raw, _ = json.Marshal(resp.Result)
	var call mcp.ToolCallResult
	if err := json.Unmarshal(raw, &call); err != nil || call.IsError || len(call.Content) != 1 {
		t.Errorf("tools/call = %s", raw)
	}

	resp = rpc(t, r, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"missing"}}`)
	raw, _ = json.Marshal(resp.Result)
	if err := json.Unmarshal(raw, &call); err != nil || !call.IsError {
		t.Errorf("missing tool = %s", raw)
	}

	resp = rpc(t, r, `{"jsonrpc":"2.0","id":"x","method":"tools/call","params":{"name":"fail","arguments":{}}}`)
	raw, _ = json.Marshal(resp.Result)
	call = mcp.ToolCallResult{}
	if err := json.Unmarshal(raw, &call); err != nil || !call.IsError {
		t.Errorf("failing tool = %s", raw)
	}

	if resp := rpc(t, r, `{"jsonrpc":"2.0","id":5,"method":"resources/list"}`); resp.Error == nil || resp.Error.Code != -32601 {
		t.Errorf("unknown method = %+v", resp)
	}
	if resp := rpc(t, r, `{not json`); resp.Error == nil || resp.Error.Code != -32700 {
		t.Errorf("parse error = %+v", resp)
	}
	if resp := rpc(t, r, `{"jsonrpc":"1.0","id":6,"method":"ping"}`); resp.Error == nil || resp.Error.Code != -32600 {
		t.Errorf("wrong version = %+v", resp)
	}
}

func TestNotificationAccepted(t *testing.T) {
	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/mcp", body))
	if w.Code != http.StatusAccepted || w.Body.Len() != 0 {
		t.Errorf("notification = %d %q", w.Code, w.Body.String())
	}
}

func TestToolsListGET(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/mcp/tools", nil))
	var list mcp.ToolsListResult
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list.Tools) != 2 {
		t.Errorf("GET /mcp/tools = %d %s", w.Code, w.Body.String())
	}
}
