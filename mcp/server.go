package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/tools"
)

const instructions = `Tools for a job board: search active listings, find related jobs,
draft social media posts for a listing, search external job aggregators and
read a listing's application page. Jobs are referenced by slug or id.`

type methodFunc func(ctx context.Context, params json.RawMessage) (interface{}, *MCPError)

// Server exposes the job-board tools to external AI agents over MCP
// (Model Context Protocol) JSON-RPC
type Server struct {
	registry    *tools.ToolRegistry
	info        ServerInfo
	toolTimeout time.Duration
	methods     map[string]methodFunc
}

// NewServer creates a new MCP server
func NewServer(registry *tools.ToolRegistry) *Server {
	s := &Server{
		registry:    registry,
		info:        ServerInfo{Name: "jobboard", Version: "1.0.0"},
		toolTimeout: 60 * time.Second,
	}
	s.methods = map[string]methodFunc{
		"initialize": s.initialize,
		"ping":       func(context.Context, json.RawMessage) (interface{}, *MCPError) { return struct{}{}, nil },
		"tools/list": func(context.Context, json.RawMessage) (interface{}, *MCPError) {
			return ToolsListResult{Tools: s.definitions()}, nil
		},
		"tools/call": s.callTool,
	}
	return s
}

// RegisterRoutes registers MCP endpoints on the given router group
func (s *Server) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/mcp", s.HandleMCP)
	router.GET("/mcp/tools", s.HandleToolsList)
	router.POST("/mcp/tools/list", s.HandleToolsList)
	router.POST("/mcp/tools/call", s.HandleToolsCall)
}

// HandleMCP handles MCP JSON-RPC requests. Notifications are acknowledged
// with 202 and no body.
func (s *Server) HandleMCP(c *gin.Context) {
	var req MCPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respond(c, nil, nil, &MCPError{Code: codeParseError, Message: "Parse error", Data: err.Error()})
		return
	}
	if req.JSONRPC != "2.0" {
		s.respond(c, req.ID, nil, &MCPError{Code: codeInvalidRequest, Message: "Invalid request", Data: "jsonrpc must be 2.0"})
		return
	}

	if req.isNotification() {
		log.WithField("method", req.Method).Debug("[MCP] notification")
		c.Status(http.StatusAccepted)
		return
	}

	method, ok := s.methods[req.Method]
	if !ok {
		s.respond(c, req.ID, nil, &MCPError{Code: codeMethodNotFound, Message: "Method not found", Data: req.Method})
		return
	}
	result, rpcErr := method(c.Request.Context(), req.Params)
	s.respond(c, req.ID, result, rpcErr)
}

// HandleToolsList lists the registered tools outside JSON-RPC
func (s *Server) HandleToolsList(c *gin.Context) {
	c.JSON(http.StatusOK, ToolsListResult{Tools: s.definitions()})
}

// HandleToolsCall runs a tool outside JSON-RPC
func (s *Server) HandleToolsCall(c *gin.Context) {
	var params ToolCallParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.run(c.Request.Context(), params))
}

func (s *Server) initialize(context.Context, json.RawMessage) (interface{}, *MCPError) {
	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      s.info,
		Capabilities:    map[string]interface{}{"tools": map[string]interface{}{"listChanged": false}},
		Instructions:    instructions,
	}, nil
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (interface{}, *MCPError) {
	var params ToolCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &MCPError{Code: codeInvalidParams, Message: "Invalid params", Data: err.Error()}
	}
	if params.Name == "" {
		return nil, &MCPError{Code: codeInvalidParams, Message: "Invalid params", Data: "name is required"}
	}
	return s.run(ctx, params), nil
}

func (s *Server) definitions() []ToolDefinition {
	list := s.registry.List()
	definitions := make([]ToolDefinition, 0, len(list))
	for _, tool := range list {
		definitions = append(definitions, ToolDefinition{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}
	return definitions
}

// run executes a tool and folds both Go errors and unsuccessful tool
// results into an IsError result
func (s *Server) run(ctx context.Context, params ToolCallParams) ToolCallResult {
	raw, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return textResult(err.Error(), true)
	}

	var res tools.ToolResult
	if err := json.Unmarshal(raw, &res); err == nil && !res.Success {
		return textResult(string(raw), true)
	}
	return textResult(string(raw), false)
}

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	tool, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	ctx, cancel := context.WithTimeout(ctx, s.toolTimeout)
	defer cancel()

	start := time.Now()
	entry := log.WithField("tool", name)
	result, err := tool.Execute(ctx, args)
	if err != nil {
		entry.Warnf("[MCP] Tool error: %v", err)
		return nil, err
	}
	entry.WithField("elapsed", time.Since(start)).Info("[MCP] Tool completed")
	return result, nil
}

func (s *Server) respond(c *gin.Context, id interface{}, result interface{}, rpcErr *MCPError) {
	resp := MCPResponse{JSONRPC: "2.0", ID: id}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	c.JSON(http.StatusOK, resp)
}
