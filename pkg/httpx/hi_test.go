package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHiHandler(t *testing.T) {
	t.Run("echoes name", func(t *testing.T) {
		w := httptest.NewRecorder()
		HiHandler()(w, httptest.NewRequest(http.MethodGet, "/hi?name=me", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp HiResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Hello != "me" {
			t.Errorf("hello = %q, want me", resp.Hello)
		}
		if resp.Date.IsZero() {
			t.Error("date not set")
		}
	})

	t.Run("defaults name", func(t *testing.T) {
		w := httptest.NewRecorder()
		HiHandler()(w, httptest.NewRequest(http.MethodGet, "/hi", nil))

		var resp HiResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Hello != "world" {
			t.Errorf("hello = %q, want world", resp.Hello)
		}
	})
}
