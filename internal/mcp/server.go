// Package mcp exposes the news operations as tools over JSON-RPC 2.0 on
// stdio, one message per line.
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/localpress/localpress/internal/logging"
)

const (
	jsonrpcVersion  = "2.0"
	protocolVersion = "2024-11-05"
	serverName      = "localpress"
	serverVersion   = "1.0.0"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

type Server struct {
	handler *Handler
	logger  *logging.Logger
}

func NewServer(handler *Handler, logger *logging.Logger) *Server {
	return &Server{
		handler: handler,
		logger:  logger,
	}
}

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string                     `json:"protocolVersion"`
	ServerInfo      serverInfo                 `json:"serverInfo"`
	Capabilities    map[string]map[string]bool `json:"capabilities"`
}

type ToolsListResult struct {
	Tools []ToolDefinition `json:"tools"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type CallToolResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Run serves requests from stdin until EOF or ctx is done. Logs go to
// stderr so stdout carries only protocol messages.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve answers each request line read from in with one line on out.
// Blank lines are skipped and notifications get no reply.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	s.logger.Info("MCP server ready", logging.WithField("protocol", protocolVersion))

	for ctx.Err() == nil {
		line, readErr := reader.ReadBytes('\n')
		if msg := bytes.TrimSpace(line); len(msg) > 0 {
			if err := s.send(out, s.dispatch(ctx, msg)); err != nil {
				return err
			}
		}

		switch {
		case readErr == io.EOF:
			return nil
		case readErr != nil:
			return fmt.Errorf("failed to read request: %w", readErr)
		}
	}
	return ctx.Err()
}

func (s *Server) send(out io.Writer, resp *Response) error {
	if resp == nil {
		return nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Dropping unencodable response", logging.WithField("error", err.Error()))
		return nil
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, msg []byte) *Response {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return failure(nil, codeParseError, "Parse error")
	}

	s.logger.Debug("MCP request", logging.WithFields(map[string]interface{}{
		"method": req.Method,
		"id":     req.ID,
	}))

	switch {
	case isNotification(req.Method):
		return nil
	case req.Method == "initialize":
		return reply(req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      serverInfo{Name: serverName, Version: serverVersion},
			Capabilities:    map[string]map[string]bool{"tools": {"listChanged": false}},
		})
	case req.Method == "ping":
		return reply(req.ID, map[string]interface{}{})
	case req.Method == "tools/list":
		return reply(req.ID, ToolsListResult{Tools: s.handler.GetTools()})
	case req.Method == "tools/call":
		return s.callTool(ctx, req)
	default:
		return failure(req.ID, codeMethodNotFound, "Method not found")
	}
}

// callTool reports tool failures inside the result with isError set, so
// the client model can read them. Only malformed params are protocol
// errors.
func (s *Server) callTool(ctx context.Context, req Request) *Response {
	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return failure(req.ID, codeInvalidParams, "Invalid params: "+err.Error())
	}

	result, err := s.handler.HandleToolCall(ctx, params.Name, params.Arguments)
	if err != nil {
		return reply(req.ID, textResult(map[string]string{"error": err.Error()}, true))
	}
	return reply(req.ID, textResult(result, false))
}

func textResult(v interface{}, isError bool) CallToolResult {
	text, _ := json.MarshalIndent(v, "", "  ")
	return CallToolResult{
		Content: []ContentItem{{Type: "text", Text: string(text)}},
		IsError: isError,
	}
}

func isNotification(method string) bool {
	return method == "initialized" || strings.HasPrefix(method, "notifications/")
}

func reply(id, result interface{}) *Response {
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Result: result}
}

func failure(id interface{}, code int, message string) *Response {
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Error: &RPCError{Code: code, Message: message}}
}
