package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler(t *testing.T) {
	ts := httptest.NewServer(Handler())
	defer ts.Close()

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	tests := []struct {
		name string
		path string
	}{
		{"root serves the app", "/"},
		{"existing file served directly", "/index.html"},
		{"unknown path falls back to the app", "/settings/advanced"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(tt.path)
			if status != http.StatusOK {
				t.Fatalf("status = %d", status)
			}
			if !strings.Contains(body, "<html") {
				t.Fatalf("body does not look like the app shell: %.60s", body)
			}
		})
	}
}
