package completion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestComplete_ReturnsCompletionText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Write([]byte(`{"completion": "hello there"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 1)
	got, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello there" {
		t.Errorf("unexpected completion: %q", got)
	}
}

func TestComplete_RetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"completion": "ok"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 3)
	got, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if got != "ok" {
		t.Errorf("unexpected completion: %q", got)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestComplete_DoesNotRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 3)
	if _, err := c.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls.Load() != 1 {
		t.Errorf("expected single attempt for 4xx, got %d", calls.Load())
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"fenced json", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"plain fence", "```\n[]\n```", "[]"},
		{"no fence", `  {"x": true}  `, `{"x": true}`},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
