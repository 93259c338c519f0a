package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestHandleTrace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/trace" || r.Header.Get("X-API-Key") != "k" {
			t.Errorf("unexpected request %s key=%q", r.URL.Path, r.Header.Get("X-API-Key"))
		}
		var req traceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Source != "https://en.wikipedia.org/wiki/Tea" || req.Limit != 5 {
			t.Errorf("request = %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"outcome":"success","steps":1,"report":"Successfully got to X from Y!\n","hops":[{"url":"a","link":"b","context":"para"}]}`))
	}))
	defer srv.Close()

	req := mcp.CallToolRequest{}
	req.Params.Name = "trace_to_philosophy"
	req.Params.Arguments = map[string]any{"url": "https://en.wikipedia.org/wiki/Tea", "limit": float64(5)}

	res, err := handleTrace(srv.URL, "k")(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if res.IsError {
		t.Fatalf("tool returned error: %+v", res.Content)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want text", res.Content[0])
	}
	for _, want := range []string{"Outcome: success (1 steps)", "Successfully got to X", "a → b", "para"} {
		if !strings.Contains(text.Text, want) {
			t.Errorf("result missing %q:\n%s", want, text.Text)
		}
	}
}

func TestHandleTrace_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"invalid API key"}}`))
	}))
	defer srv.Close()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"url": "https://en.wikipedia.org/wiki/Tea"}
	res, err := handleTrace(srv.URL, "bad")(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !res.IsError {
		t.Error("expected a tool error")
	}
}

func TestHandleTrace_MissingURL(t *testing.T) {
	res, _ := handleTrace("http://unused", "k")(context.Background(), mcp.CallToolRequest{})
	if !res.IsError {
		t.Error("missing url should be a tool error")
	}
}
