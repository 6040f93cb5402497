package stremio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
)

const DefaultAPIBaseURL = "https://api.strem.io"

// ErrSyncFailed is returned when the Stremio API rejects an addon
// collection update. Unlike per-addon drops during composition, this
// surfaces to the caller as the terminal error of the whole operation.
var ErrSyncFailed = errors.New("addon collection sync failed")

// Addon is one installable entry of an account's addon collection.
type Addon struct {
	TransportURL string    `json:"transportUrl"`
	Manifest     *Manifest `json:"manifest,omitempty"`
}

// Clone returns an independent deep copy of the addon entry.
func (a Addon) Clone() Addon {
	return Addon{TransportURL: a.TransportURL, Manifest: a.Manifest.Clone()}
}

// Client talks to the Stremio account API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Stremio API client. An empty baseURL selects the
// production API.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type collectionRequest struct {
	Type    string  `json:"type"`
	AuthKey string  `json:"authKey"`
	Addons  []Addon `json:"addons"`
}

type collectionResponse struct {
	Result *struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	} `json:"result"`
}

// SetAddonCollection replaces the addon collection of the account
// identified by authKey with the given ordered addon list.
func (c *Client) SetAddonCollection(ctx context.Context, authKey string, addons []Addon) error {
	if authKey == "" {
		return fmt.Errorf("%w: no auth key provided", ErrSyncFailed)
	}

	body, err := json.Marshal(collectionRequest{
		Type:    "AddonCollectionSet",
		AuthKey: authKey,
		Addons:  addons,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/addonCollectionSet", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrSyncFailed, resp.StatusCode)
	}

	var result collectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	if result.Result == nil || !result.Result.Success {
		reason := "unknown error"
		if result.Result != nil && result.Result.Error != "" {
			reason = result.Result.Error
		}
		return fmt.Errorf("%w: %s", ErrSyncFailed, reason)
	}

	logger.Info("Addon collection synced", "addons", len(addons))
	return nil
}
