package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDeliver_SignsBody(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !Verify("s3cret", body, r.Header.Get(SignatureHeader)) {
			t.Errorf("bad signature %q", r.Header.Get(SignatureHeader))
		}
		if ua := r.Header.Get("User-Agent"); ua != "Philosophy-Webhook/1.0" {
			t.Errorf("User-Agent = %q", ua)
		}
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ev := &Event{Type: EventTraceCompleted, TraceID: "abc", Timestamp: 1, Data: map[string]string{"outcome": "success"}}
	if err := Deliver(context.Background(), srv.URL, "s3cret", ev); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if got.Type != EventTraceCompleted || got.TraceID != "abc" {
		t.Errorf("received %+v", got)
	}
}

func TestDeliver_NoSecretNoSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sig := r.Header.Get(SignatureHeader); sig != "" {
			t.Errorf("unexpected signature %q", sig)
		}
	}))
	defer srv.Close()

	if err := Deliver(context.Background(), srv.URL, "", &Event{Type: EventTraceCompleted}); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := Deliver(context.Background(), srv.URL, "", &Event{}); err == nil {
		t.Error("Deliver() should fail on a 5xx response")
	}
}

func TestDeliverAsync_Retries(t *testing.T) {
	saved := retryDelays
	retryDelays = []time.Duration{0, time.Millisecond, time.Millisecond}
	defer func() { retryDelays = saved }()

	var calls atomic.Int32
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		close(done)
	}))
	defer srv.Close()

	DeliverAsync(srv.URL, "", &Event{Type: EventTraceCompleted})
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("webhook not delivered after %d attempts", calls.Load())
	}
}

func TestVerify(t *testing.T) {
	body := []byte(`{"type":"trace.completed"}`)
	sig := Sign("k", body)
	if !Verify("k", body, sig) {
		t.Error("Verify() rejected a valid signature")
	}
	if Verify("other", body, sig) || Verify("k", []byte("{}"), sig) {
		t.Error("Verify() accepted a mismatched signature")
	}
}
