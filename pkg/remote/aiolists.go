package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// AIOListsClient exchanges a local AIOLists configuration for a hosted
// config hash and its manifest.
type AIOListsClient struct {
	baseURL string
	httpClient
}

// NewAIOListsClient creates an AIOLists API client.
func NewAIOListsClient(baseURL string, timeout time.Duration) *AIOListsClient {
	return &AIOListsClient{baseURL: baseURL, httpClient: newHTTPClient("aiolists", timeout)}
}

type aioListsResponse struct {
	Success    bool   `json:"success"`
	ConfigHash string `json:"configHash"`
}

// CreateConfig posts the configuration and fetches the manifest the
// returned config hash serves.
func (c *AIOListsClient) CreateConfig(ctx context.Context, config map[string]any) (AddonConfig, error) {
	var resp aioListsResponse
	if err := c.postJSON(ctx, c.baseURL+"/api/config/create", config, &resp); err != nil {
		logger.Debug("AIOLists config create failed", "error", err)
		return AddonConfig{}, err
	}
	if !resp.Success || resp.ConfigHash == "" {
		return AddonConfig{}, fmt.Errorf("%w: AIOLists returned error or missing configHash", ErrUnavailable)
	}

	transportURL := fmt.Sprintf("%s/%s/manifest.json", c.baseURL, resp.ConfigHash)
	var manifest stremio.Manifest
	if err := c.getJSON(ctx, transportURL, &manifest); err != nil {
		logger.Debug("AIOLists manifest fetch failed", "error", err)
		return AddonConfig{}, err
	}
	return AddonConfig{TransportURL: transportURL, Manifest: &manifest}, nil
}
