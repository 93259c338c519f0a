package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL  = flag.String("api-url", "http://localhost:8080", "Philosophy API base URL")
	apiKey  = flag.String("api-key", "", "API key for authenticated requests")
	limit   = flag.Int("limit", 0, "Links to follow per source (0 = server default)")
	sources = flag.String("sources", "", "File with one source URL per line (default: built-in list)")
	output  = flag.String("output", "survey-results.json", "JSON output file path")
)

// Built-in sources covering a spread of article types.
var defaultSources = []string{
	"https://en.wikipedia.org/wiki/Java_(programming_language)",
	"https://en.wikipedia.org/wiki/Tea",
	"https://en.wikipedia.org/wiki/Albert_Einstein",
	"https://en.wikipedia.org/wiki/Mount_Everest",
	"https://en.wikipedia.org/wiki/Jazz",
	"https://en.wikipedia.org/wiki/Photosynthesis",
	"https://en.wikipedia.org/wiki/Byzantine_Empire",
	"https://en.wikipedia.org/wiki/Association_football",
}

// --- Request / Response types (mirrors models package) ---

type traceRequest struct {
	Source string `json:"source"`
	Limit  int    `json:"limit,omitempty"`
}

type traceResponse struct {
	Success bool         `json:"success"`
	Outcome string       `json:"outcome"`
	Steps   int          `json:"steps"`
	History []string     `json:"history"`
	Timing  timingInfo   `json:"timing"`
	Error   *errorDetail `json:"error,omitempty"`
}

type timingInfo struct {
	TotalMs int64 `json:"total_ms"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Survey result types ---

type sourceResult struct {
	Source  string   `json:"source"`
	Outcome string   `json:"outcome,omitempty"`
	Steps   int      `json:"steps"`
	Last    string   `json:"last,omitempty"`
	TotalMs int64    `json:"total_ms"`
	History []string `json:"history,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type surveyReport struct {
	Timestamp string         `json:"timestamp"`
	APIURL    string         `json:"api_url"`
	Outcomes  map[string]int `json:"outcomes"`
	Results   []sourceResult `json:"results"`
}

func main() {
	flag.Parse()

	list := defaultSources
	if *sources != "" {
		var err error
		if list, err = readSources(*sources); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading sources: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("=== Philosophy Survey ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Sources:   %d\n", len(list))
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure the server is running (e.g. philosophy serve)\n")
		os.Exit(1)
	}

	report := surveyReport{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		APIURL:    *apiURL,
		Outcomes:  make(map[string]int),
	}

	client := &http.Client{Timeout: 10 * time.Minute}
	for _, src := range list {
		fmt.Printf("Tracing %s ... ", src)
		sr := traceSource(client, src)
		if sr.Error != "" {
			fmt.Printf("FAILED: %s\n", sr.Error)
			report.Outcomes["error"]++
		} else {
			fmt.Printf("%s after %d steps (%dms)\n", sr.Outcome, sr.Steps, sr.TotalMs)
			report.Outcomes[sr.Outcome]++
		}
		report.Results = append(report.Results, sr)
	}
	fmt.Println()

	printTable(report.Results)
	printOutcomes(report.Outcomes, len(list))

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func readSources(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var list []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	return list, sc.Err()
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func traceSource(client *http.Client, source string) sourceResult {
	sr := sourceResult{Source: source}

	bodyBytes, err := json.Marshal(traceRequest{Source: source, Limit: *limit})
	if err != nil {
		sr.Error = fmt.Sprintf("marshal error: %v", err)
		return sr
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/trace", bytes.NewReader(bodyBytes))
	if err != nil {
		sr.Error = fmt.Sprintf("request error: %v", err)
		return sr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("X-API-Key", *apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		sr.Error = fmt.Sprintf("http error: %v", err)
		return sr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		sr.Error = fmt.Sprintf("read error: %v", err)
		return sr
	}

	var tr traceResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		sr.Error = fmt.Sprintf("json error: %v", err)
		return sr
	}
	if !tr.Success {
		sr.Error = "unknown error"
		if tr.Error != nil {
			sr.Error = fmt.Sprintf("[%s] %s", tr.Error.Code, tr.Error.Message)
		}
		return sr
	}

	sr.Outcome = tr.Outcome
	sr.Steps = tr.Steps
	sr.TotalMs = tr.Timing.TotalMs
	sr.History = tr.History
	if n := len(tr.History); n > 0 {
		sr.Last = tr.History[n-1]
	}
	return sr
}

func printTable(results []sourceResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tOUTCOME\tSTEPS\tLAST PAGE\tTIME")
	fmt.Fprintln(w, "------\t-------\t-----\t---------\t----")
	for _, r := range results {
		outcome := r.Outcome
		if r.Error != "" {
			outcome = "error"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%dms\n", shortTitle(r.Source), outcome, r.Steps, shortTitle(r.Last), r.TotalMs)
	}
	w.Flush()
}

func printOutcomes(outcomes map[string]int, total int) {
	keys := make([]string, 0, len(outcomes))
	for k := range outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println()
	for _, k := range keys {
		fmt.Printf("%-18s %3d  (%.0f%%)\n", k, outcomes[k], 100*float64(outcomes[k])/float64(total))
	}
}

// shortTitle returns the last path segment of an article URL.
func shortTitle(u string) string {
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
