package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/marker-ar/internal/imaging"
	"github.com/ironsheep/marker-ar/internal/monitoring"
	"github.com/ironsheep/marker-ar/internal/overlay"
	"github.com/ironsheep/marker-ar/internal/pipeline"
)

// Name and Version identify the server in the initialize handshake.
const (
	Name    = "marker-ar"
	Version = "0.1.0"

	protocolVersion = "2024-11-05"
	maxRequestBytes = 1024 * 1024
)

// JSON-RPC error codes used in responses.
const (
	codeToolFailed     = -32000
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// Server answers MCP requests with the marker pipeline. Frames opened by
// path stay decoded in the cache; the renderer only draws in memory.
type Server struct {
	cache    *imaging.ImageCache
	detector *pipeline.Detector
	renderer *overlay.Renderer
}

// MCPRequest is one JSON-RPC call read from the client. Notifications carry
// no ID.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse carries either Result or Error.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError is the error member of a failed response. Data holds the Go
// error text for tool failures.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server that detects markers with det.
func New(det *pipeline.Detector) *Server {
	return &Server{
		cache:    imaging.NewImageCache(),
		detector: det,
		renderer: &overlay.Renderer{LineWidth: overlay.DefaultLineWidth},
	}
}

// Run serves MCP over stdin and stdout.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from in and writes responses to
// out until in is exhausted. Lines that are not JSON are logged and
// skipped; a line above maxRequestBytes ends the session with an error.
func (s *Server) Serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			monitoring.Logf("Failed to parse request: %v", err)
			continue
		}

		if resp := s.handleRequest(&req); resp != nil {
			if err := enc.Encode(resp); err != nil {
				monitoring.Logf("Failed to encode response to %v: %v", req.ID, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	return nil
}

func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	monitoring.Debugf("request %v: %s", req.ID, req.Method)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return reply(req.ID, map[string]interface{}{})
	default:
		return fail(req.ID, codeMethodNotFound, "Method not found: "+req.Method, nil)
	}
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return reply(req.ID, map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    Name,
			"version": Version,
		},
	})
}

func reply(id, result interface{}) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func fail(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &MCPError{Code: code, Message: message, Data: data},
	}
}
