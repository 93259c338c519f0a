package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestWiki(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/wiki/Tea":        `Tea (<a href="/wiki/Camellia">plant</a>) is a <a href="/wiki/Drink">drink</a>.`,
		"/wiki/Drink":      `A drink is a <a href="/wiki/Philosophy">liquid</a>.`,
		"/wiki/Philosophy": `Philosophy.`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><div id="mw-content-text"><p>%s</p></div></body></html>`, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PHILO_FETCH_RPS", "0")
	t.Setenv("PHILO_LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	srv := newTestWiki(t)

	out, err := runCLI(t, "run", srv.URL+"/wiki/Tea", "-d", srv.URL+"/wiki/Philosophy", "-q", "--context")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	for _, want := range []string{
		"Successfully got to " + srv.URL + "/wiki/Philosophy",
		"(2 pages from 1st page)",
		srv.URL + "/wiki/Drink",
		"[liquid](" + srv.URL + "/wiki/Philosophy)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunCommand_Limit(t *testing.T) {
	srv := newTestWiki(t)

	out, err := runCLI(t, "run", srv.URL+"/wiki/Tea", "-d", srv.URL+"/wiki/Philosophy", "-q", "-l", "1")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(out, "within the limit of 1 pages") {
		t.Errorf("output = %q, want the limit headline", out)
	}
}

func TestRunCommand_InvalidArgs(t *testing.T) {
	if _, err := runCLI(t, "run", "/wiki/Tea", "-q"); err == nil {
		t.Error("relative source should be rejected")
	}
	if _, err := runCLI(t, "run", "https://en.wikipedia.org/wiki/Tea", "-q", "-l", "0"); err == nil {
		t.Error("limit 0 should be rejected")
	}
}
