package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	s := newTestServer(t)
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
	if s.detector == nil || s.renderer == nil {
		t.Fatal("New() did not wire detector and renderer")
	}
}

func TestHandleRequest_Routing(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method    string
		id        interface{}
		wantNil   bool
		wantCode  int
		resultKey string
	}{
		{method: "initialize", id: 1, resultKey: "protocolVersion"},
		{method: "ping", id: "ping-1"},
		{method: "tools/list", id: 2, resultKey: "tools"},
		{method: "notifications/initialized", wantNil: true},
		{method: "resources/list", id: 3, wantCode: -32601},
		{method: "tools/call", id: 4, wantCode: -32602},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: tt.id, Method: tt.method})
			if tt.wantNil {
				if resp != nil {
					t.Errorf("expected no response, got %+v", resp)
				}
				return
			}
			if resp == nil {
				t.Fatal("handleRequest returned nil")
			}
			if resp.ID != tt.id || resp.JSONRPC != "2.0" {
				t.Errorf("envelope: got id=%v jsonrpc=%s", resp.ID, resp.JSONRPC)
			}

			if tt.wantCode != 0 {
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Fatalf("error: got %+v, want code %d", resp.Error, tt.wantCode)
				}
				return
			}
			if resp.Error != nil {
				t.Fatalf("unexpected error: %+v", resp.Error)
			}
			if tt.resultKey != "" {
				result, ok := resp.Result.(map[string]interface{})
				if !ok {
					t.Fatalf("result: got %T, want map", resp.Result)
				}
				if _, ok := result[tt.resultKey]; !ok {
					t.Errorf("result is missing %q", tt.resultKey)
				}
			}
		})
	}
}

func TestHandleToolsList_Count(t *testing.T) {
	resp := newTestServer(t).handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	tools, ok := resp.Result.(map[string]interface{})["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(tools) != 5 {
		t.Errorf("expected 5 tools, got %d", len(tools))
	}
}

func TestHandleInitialize(t *testing.T) {
	resp := newTestServer(t).handleInitialize(&MCPRequest{JSONRPC: "2.0", ID: "init-1"})

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}

	info, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if info["name"] != Name || info["version"] != Version {
		t.Errorf("serverInfo: got %v", info)
	}
}

func TestServe(t *testing.T) {
	s := newTestServer(t)
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"marker_catalog","arguments":{}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	var ids []float64
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var resp MCPResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("bad response line %q: %v", scanner.Text(), err)
		}
		if resp.Error != nil {
			t.Errorf("response %v: unexpected error %v", resp.ID, resp.Error)
		}
		ids = append(ids, resp.ID.(float64))
	}

	want := []float64{1, 2, 3}
	if len(ids) != len(want) {
		t.Fatalf("responses: got ids %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("response %d: got id %v, want %v", i, ids[i], want[i])
		}
	}
}

func TestServe_LineTooLong(t *testing.T) {
	long := `{"jsonrpc":"2.0","id":1,"method":"` + strings.Repeat("x", 2*1024*1024) + `"}`
	var out bytes.Buffer
	if err := newTestServer(t).Serve(strings.NewReader(long), &out); err == nil {
		t.Error("Serve should fail on a request above the line limit")
	}
}
