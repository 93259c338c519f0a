package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// stubEngine returns a canned result or error and counts calls.
type stubEngine struct {
	name  string
	err   error
	calls int
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Fetch(_ context.Context, req *FetchRequest) (*FetchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &FetchResult{HTML: "<p>" + s.name + "</p>", FinalURL: req.URL, EngineName: s.name}, nil
}

func TestDispatcher_FallsBackInOrder(t *testing.T) {
	first := &stubEngine{name: "http", err: errors.New("blocked")}
	second := &stubEngine{name: "rod"}
	mem := NewDomainMemory(time.Hour)
	defer mem.Stop()

	d := NewDispatcher([]Engine{first, second}, mem)
	res, err := d.Fetch(context.Background(), &FetchRequest{URL: "https://en.wikipedia.org/wiki/Tea"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.EngineName != "rod" {
		t.Errorf("EngineName = %q, want rod", res.EngineName)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
	if got := mem.Get("en.wikipedia.org"); got != "rod" {
		t.Errorf("memory = %q, want rod", got)
	}

	// The remembered engine goes first next time.
	if _, err := d.Fetch(context.Background(), &FetchRequest{URL: "https://en.wikipedia.org/wiki/Milk"}); err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if first.calls != 1 || second.calls != 2 {
		t.Errorf("calls after memory hit = %d/%d, want 1/2", first.calls, second.calls)
	}
}

func TestDispatcher_AllFail(t *testing.T) {
	e1 := errors.New("first down")
	e2 := errors.New("second down")
	d := NewDispatcher([]Engine{&stubEngine{name: "a", err: e1}, &stubEngine{name: "b", err: e2}}, nil)

	_, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://example.org/"})
	if err == nil {
		t.Fatal("Dispatch() should fail when every engine fails")
	}
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Errorf("error %v should wrap both engine errors", err)
	}
}

func TestDispatcher_ForgetsFailingMemory(t *testing.T) {
	flaky := &stubEngine{name: "rod", err: errors.New("crashed")}
	backup := &stubEngine{name: "http"}
	mem := NewDomainMemory(time.Hour)
	defer mem.Stop()
	mem.Set("example.org", "rod")

	d := NewDispatcher([]Engine{backup, flaky}, mem)
	if _, err := d.Fetch(context.Background(), &FetchRequest{URL: "https://example.org/a"}); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if flaky.calls != 1 {
		t.Errorf("remembered engine should be tried first, calls = %d", flaky.calls)
	}
	if got := mem.Get("example.org"); got != "http" {
		t.Errorf("memory = %q, want http", got)
	}
}

func TestDispatcher_NoEngines(t *testing.T) {
	if _, err := NewDispatcher(nil, nil).Dispatch(context.Background(), &FetchRequest{URL: "https://x.org"}); err == nil {
		t.Error("Dispatch() with no engines should fail")
	}
}

func TestDomainMemory_Expiry(t *testing.T) {
	mem := NewDomainMemory(time.Minute)
	defer mem.Stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mem.now = func() time.Time { return now }

	mem.Set("a.org", "http")
	if got := mem.Get("a.org"); got != "http" {
		t.Fatalf("Get() = %q, want http", got)
	}

	now = now.Add(2 * time.Minute)
	if got := mem.Get("a.org"); got != "" {
		t.Errorf("Get() after TTL = %q, want empty", got)
	}

	mem.Set("b.org", "rod")
	now = now.Add(2 * time.Minute)
	mem.prune()
	mem.mu.Lock()
	n := len(mem.entries)
	mem.mu.Unlock()
	if n != 0 {
		t.Errorf("prune left %d entries", n)
	}
	mem.Stop()
}

func TestHTTPEngine_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wiki/Tea":
			if ua := r.Header.Get("User-Agent"); ua != "philosophy-test" {
				t.Errorf("User-Agent = %q", ua)
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, "<html><head><title> Tea - Wikipedia </title></head><body><p>Tea</p></body></html>")
		case "/wiki/Old":
			http.Redirect(w, r, "/wiki/Tea", http.StatusMovedPermanently)
		case "/data.json":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, "{}")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e, err := NewHTTPEngine("")
	if err != nil {
		t.Fatalf("NewHTTPEngine() error = %v", err)
	}
	headers := map[string]string{"User-Agent": "philosophy-test"}

	res, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/wiki/Old", Headers: headers, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if res.Title != "Tea - Wikipedia" {
		t.Errorf("Title = %q", res.Title)
	}
	if res.FinalURL != srv.URL+"/wiki/Tea" {
		t.Errorf("FinalURL = %q, want redirect target", res.FinalURL)
	}
	if res.StatusCode != http.StatusOK || res.EngineName != "http" || !strings.Contains(res.HTML, "<p>Tea</p>") {
		t.Errorf("unexpected result %+v", res)
	}

	for _, path := range []string{"/wiki/Missing", "/data.json"} {
		if _, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL + path, Headers: headers}); err == nil {
			t.Errorf("Fetch(%s) should fail", path)
		}
	}
}

func TestNewHTTPEngine_RejectsBadProxy(t *testing.T) {
	if _, err := NewHTTPEngine("socks5://127.0.0.1:1080"); err == nil {
		t.Error("socks5 proxy should be rejected")
	}
	if _, err := NewHTTPEngine("http://127.0.0.1:3128"); err != nil {
		t.Errorf("http proxy rejected: %v", err)
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		html string
		want string
	}{
		{"<title>Philosophy</title>", "Philosophy"},
		{"<html><head></head><body>no title</body></html>", ""},
		{"<title></title>", ""},
	}
	for _, tt := range tests {
		if got := extractTitle(tt.html); got != tt.want {
			t.Errorf("extractTitle(%q) = %q, want %q", tt.html, got, tt.want)
		}
	}
}

func TestToHeadersMap(t *testing.T) {
	m := toHeadersMap(map[string]string{"User-Agent": "x"})
	if got := m["User-Agent"].Str(); got != "x" {
		t.Errorf("header = %q, want x", got)
	}
}
