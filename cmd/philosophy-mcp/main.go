package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// traceRequest mirrors the Philosophy API request model.
type traceRequest struct {
	Source         string `json:"source"`
	Destination    string `json:"destination,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	IncludeContext bool   `json:"include_context,omitempty"`
}

// traceResponse mirrors the Philosophy API response model.
type traceResponse struct {
	Success bool   `json:"success"`
	Outcome string `json:"outcome"`
	Steps   int    `json:"steps"`
	Report  string `json:"report"`
	Hops    []struct {
		URL     string `json:"url"`
		Link    string `json:"link"`
		Context string `json:"context"`
	} `json:"hops"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("PHILO_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("PHILO_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "PHILO_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"philosophy",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	s.AddTool(traceTool(), handleTrace(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func traceTool() mcp.Tool {
	return mcp.NewTool("trace_to_philosophy",
		mcp.WithDescription("Start at a Wikipedia article and repeatedly follow the first link that is not inside parentheses, reporting whether the chain reaches the destination (Philosophy by default), loops, dead-ends or runs out of steps."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute URL of the article to start from"),
		),
		mcp.WithString("destination",
			mcp.Description("Absolute URL of the article to reach (default: the server's destination, normally Philosophy)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of links to follow (default: server setting)"),
		),
		mcp.WithBoolean("include_context",
			mcp.Description("Include the paragraph each link was taken from"),
		),
	)
}

func handleTrace(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 300 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := traceRequest{
			Source:         source,
			Destination:    request.GetString("destination", ""),
			Limit:          request.GetInt("limit", 0),
			IncludeContext: request.GetBool("include_context", false),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/trace", reqBody)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var traceResp traceResponse
		if err := json.Unmarshal(respBody, &traceResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !traceResp.Success {
			errMsg := "trace failed"
			if traceResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", traceResp.Error.Code, traceResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatTrace(&traceResp)), nil
	}
}

// formatTrace renders the report followed by any paragraph context.
func formatTrace(r *traceResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcome: %s (%d steps)\n\n", r.Outcome, r.Steps)
	b.WriteString(r.Report)
	for _, h := range r.Hops {
		if h.Context == "" {
			continue
		}
		fmt.Fprintf(&b, "\n---\n%s → %s\n\n%s\n", h.URL, h.Link, h.Context)
	}
	return b.String()
}

// apiPost sends a POST request to the Philosophy API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
