// Package api exposes the composition engine over HTTP: REST endpoints
// for composing and syncing addon sets, a websocket log stream for the
// frontend and the Prometheus scrape endpoint.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/config"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/metrics"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/preset"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// Collection is the Stremio account surface the sync endpoint needs.
type Collection interface {
	SetAddonCollection(ctx context.Context, authKey string, addons []stremio.Addon) error
}

// Server handles API requests and serves the frontend
type Server struct {
	config   *config.Config
	composer *preset.Composer
	account  Collection

	// WebSocket Client Registry
	clients   map[*Client]bool
	clientsMu sync.Mutex
	logCh     chan string
}

type Client struct {
	conn *websocket.Conn
	send chan WSMessage
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, composer *preset.Composer, account Collection) *Server {
	s := &Server{
		config:   cfg,
		composer: composer,
		account:  account,
		clients:  make(map[*Client]bool),
		logCh:    make(chan string, 100),
	}

	// Start log broadcaster
	logger.SetBroadcast(s.logCh)
	go s.broadcastLogs()

	return s
}

func (s *Server) broadcastLogs() {
	for msgStr := range s.logCh {
		raw, _ := json.Marshal(msgStr)
		msg := WSMessage{Type: "log_entry", Payload: raw}

		s.clientsMu.Lock()
		for client := range s.clients {
			select {
			case client.send <- msg:
			default:
				// Drop message if client buffer is full
			}
		}
		s.clientsMu.Unlock()
	}
}

// AddClient registers a new websocket client
func (s *Server) AddClient(client *Client) {
	s.clientsMu.Lock()
	s.clients[client] = true
	s.clientsMu.Unlock()
}

// RemoveClient unregisters a websocket client
func (s *Server) RemoveClient(client *Client) {
	s.clientsMu.Lock()
	delete(s.clients, client)
	s.clientsMu.Unlock()
	close(client.send)
}

// Handler returns the HTTP handler for the API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/compose", s.handleCompose)
	mux.HandleFunc("/api/sync", s.handleSync)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/ws", s.handleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// PresetsResponse lists what the frontend can offer: the preset
// bundles, the locales with overlays and the optional extras.
type PresetsResponse struct {
	Presets   map[string][]string `json:"presets"`
	Languages []string            `json:"languages"`
	Extras    []string            `json:"extras"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc, err := s.composer.Document(r.Context())
	if err != nil {
		logger.Error("Preset document unavailable", "err", err)
		writeError(w, http.StatusBadGateway, "preset document unavailable")
		return
	}

	resp := PresetsResponse{Presets: doc.Presets}
	for locale := range doc.Languages {
		resp.Languages = append(resp.Languages, locale)
	}
	for name := range doc.Extras {
		resp.Extras = append(resp.Extras, name)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ComposeResponse is the REST shape of a composition result.
type ComposeResponse struct {
	Success           bool              `json:"success"`
	Addons            []preset.Entry    `json:"addons"`
	DebridServiceName string            `json:"debridServiceName"`
	Removed           map[string]string `json:"removed,omitempty"`
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req preset.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.applyDefaults(&req)

	id := uuid.NewString()
	logger.Info("Composition requested", "id", id, "preset", req.Preset, "language", req.Language)

	res, err := s.compose(r.Context(), req)
	if err != nil {
		logger.Error("Composition failed", "id", id, "err", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ComposeResponse{
		Success:           true,
		Addons:            res.Entries,
		DebridServiceName: res.DebridServiceName,
		Removed:           res.Removed,
	})
}

// SyncRequest is a composition request plus the account to install the
// result on.
type SyncRequest struct {
	AuthKey string `json:"authKey"`
	preset.Request
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AuthKey == "" {
		writeError(w, http.StatusBadRequest, "authKey is required")
		return
	}
	s.applyDefaults(&req.Request)

	id := uuid.NewString()
	logger.Info("Sync requested", "id", id, "preset", req.Preset, "language", req.Language)

	res, err := s.compose(r.Context(), req.Request)
	if err != nil {
		logger.Error("Sync composition failed", "id", id, "err", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	start := time.Now()
	if err := s.account.SetAddonCollection(r.Context(), req.AuthKey, res.Addons()); err != nil {
		metrics.RecordSyncFailure(time.Since(start).Seconds())
		logger.Error("Addon collection sync failed", "id", id, "err", err)
		writeError(w, http.StatusBadGateway, "account sync failed")
		return
	}
	metrics.RecordSyncSuccess(time.Since(start).Seconds())
	logger.Info("Addon collection synced", "id", id, "addons", len(res.Entries))

	writeJSON(w, http.StatusOK, ComposeResponse{
		Success:           true,
		Addons:            res.Entries,
		DebridServiceName: res.DebridServiceName,
		Removed:           res.Removed,
	})
}

// ConfigResponse exposes the running config plus the keys currently
// pinned by environment variables, so the UI can warn that edits to
// those will not survive a restart.
type ConfigResponse struct {
	Config          *config.Config `json:"config"`
	EnvOverrideKeys []string       `json:"envOverrideKeys"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, ConfigResponse{
		Config:          s.config,
		EnvOverrideKeys: config.GetEnvOverrideKeys(),
	})
}

// applyDefaults fills in the server-side defaults a request left out.
func (s *Server) applyDefaults(req *preset.Request) {
	if req.Language == "" {
		req.Language = "en"
	}
	if req.RPDBKey == "" {
		req.RPDBKey = s.config.Advanced.RPDBAPIKey
	}
	if req.TMDBKey == "" {
		req.TMDBKey = s.config.Advanced.TMDBAPIKey
	}
}

func (s *Server) compose(ctx context.Context, req preset.Request) (preset.Result, error) {
	res, err := s.composer.Compose(ctx, req)
	if err != nil {
		if errors.Is(err, preset.ErrConfigLoad) {
			return preset.Result{}, errors.New("preset configuration unavailable")
		}
		return preset.Result{}, err
	}
	return res, nil
}
