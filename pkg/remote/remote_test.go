package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAIOListsCreateConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/config/create":
			var config map[string]any
			if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
				t.Errorf("bad config body: %v", err)
			}
			fmt.Fprint(w, `{"success":true,"configHash":"abc123"}`)
		case "/abc123/manifest.json":
			fmt.Fprint(w, `{"id":"com.aiolists","name":"AIOLists","version":"1.0.0"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewAIOListsClient(server.URL, time.Second)
	got, err := client.CreateConfig(context.Background(), map[string]any{"config": map[string]any{}})
	if err != nil {
		t.Fatalf("CreateConfig failed: %v", err)
	}
	if got.TransportURL != server.URL+"/abc123/manifest.json" {
		t.Errorf("transportUrl = %q", got.TransportURL)
	}
	if got.Manifest == nil || got.Manifest.Name != "AIOLists" {
		t.Errorf("manifest = %+v", got.Manifest)
	}
}

func TestAIOListsUnavailable(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"success false", `{"success":false}`},
		{"missing hash", `{"success":true}`},
		{"not json", `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := NewAIOListsClient(server.URL, time.Second)
			_, err := client.CreateConfig(context.Background(), nil)
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("expected ErrUnavailable, got %v", err)
			}
		})
	}
}

func TestAIOMetadataSaveConfig(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/config/save":
			fmt.Fprintf(w, `{"success":true,"installUrl":"%s/cfg/manifest.json"}`, server.URL)
		case "/cfg/manifest.json":
			fmt.Fprint(w, `{"id":"com.aiometadata","name":"AIOMetadata","version":"2.0.0"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewAIOMetadataClient(server.URL, time.Second)
	got, err := client.SaveConfig(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if got.Manifest.Name != "AIOMetadata" {
		t.Errorf("manifest name = %q", got.Manifest.Name)
	}
}

func TestAIOStreamsCreateUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/user":
			fmt.Fprint(w, `{"success":true,"data":{"uuid":"u-1","encryptedPassword":"enc-pw"}}`)
		case "/stremio/u-1/enc-pw/manifest.json":
			fmt.Fprint(w, `{"id":"com.aiostreams","name":"AIOStreams","version":"4.0.0"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewAIOStreamsClient(server.URL, server.URL+"/p2p.json", server.URL+"/debrid.json", time.Second, time.Minute)
	got, err := client.CreateUser(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if got.TransportURL != server.URL+"/stremio/u-1/enc-pw/manifest.json" {
		t.Errorf("transportUrl = %q", got.TransportURL)
	}
}

func TestAIOStreamsTemplateCaching(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		fmt.Fprint(w, `{"config":{"presets":[],"preferredLanguages":["English"]}}`)
	}))
	defer server.Close()

	client := NewAIOStreamsClient(server.URL, server.URL+"/p2p.json", server.URL+"/debrid.json", time.Second, time.Minute)

	first, err := client.FetchTemplate(context.Background(), TemplateDebrid)
	if err != nil {
		t.Fatalf("FetchTemplate failed: %v", err)
	}
	// Mutating one copy must not leak into the next.
	first["config"] = "mutated"

	second, err := client.FetchTemplate(context.Background(), TemplateDebrid)
	if err != nil {
		t.Fatalf("second FetchTemplate failed: %v", err)
	}
	if _, ok := second["config"].(map[string]any); !ok {
		t.Errorf("cached template leaked a mutation: %v", second["config"])
	}
	if fetches != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", fetches)
	}
}

func TestMediaFusionEncryptUserData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","encrypted_str":"ENCBLOB"}`)
	}))
	defer server.Close()

	client := NewMediaFusionClient(server.URL, time.Second)
	got, err := client.EncryptUserData(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("EncryptUserData failed: %v", err)
	}
	if got != server.URL+"/ENCBLOB/manifest.json" {
		t.Errorf("transportUrl = %q", got)
	}
}

func TestMediaFusionFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error"}`)
	}))
	defer server.Close()

	client := NewMediaFusionClient(server.URL, time.Second)
	if _, err := client.EncryptUserData(context.Background(), nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestTimeoutCollapsesToUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewMediaFusionClient(server.URL, 20*time.Millisecond)
	if _, err := client.EncryptUserData(context.Background(), nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable on timeout, got %v", err)
	}
}

func TestPresetDocumentFetch(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		fmt.Fprint(w, `{"languages":{"en":{}},"presets":{"minimal":[]}}`)
	}))
	defer server.Close()

	client := NewPresetDocumentClient(server.URL+"/preset.json", time.Second, time.Minute)
	for i := 0; i < 3; i++ {
		doc, err := client.FetchDocument(context.Background())
		if err != nil {
			t.Fatalf("FetchDocument failed: %v", err)
		}
		if len(doc) == 0 {
			t.Fatal("empty document")
		}
	}
	if fetches != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", fetches)
	}
}
