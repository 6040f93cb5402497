package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// AIOMetadataClient exchanges a local AIOMetadata configuration for a
// hosted install URL and its manifest.
type AIOMetadataClient struct {
	baseURL string
	httpClient
}

// NewAIOMetadataClient creates an AIOMetadata API client.
func NewAIOMetadataClient(baseURL string, timeout time.Duration) *AIOMetadataClient {
	return &AIOMetadataClient{baseURL: baseURL, httpClient: newHTTPClient("aiometadata", timeout)}
}

type aioMetadataResponse struct {
	Success    bool   `json:"success"`
	InstallURL string `json:"installUrl"`
}

// SaveConfig posts the configuration and fetches the manifest served
// at the returned install URL.
func (c *AIOMetadataClient) SaveConfig(ctx context.Context, config map[string]any) (AddonConfig, error) {
	var resp aioMetadataResponse
	if err := c.postJSON(ctx, c.baseURL+"/api/config/save", config, &resp); err != nil {
		logger.Debug("AIOMetadata config save failed", "error", err)
		return AddonConfig{}, err
	}
	if !resp.Success || resp.InstallURL == "" {
		return AddonConfig{}, fmt.Errorf("%w: AIOMetadata returned error or missing install URL", ErrUnavailable)
	}

	var manifest stremio.Manifest
	if err := c.getJSON(ctx, resp.InstallURL, &manifest); err != nil {
		logger.Debug("AIOMetadata manifest fetch failed", "error", err)
		return AddonConfig{}, err
	}
	return AddonConfig{TransportURL: resp.InstallURL, Manifest: &manifest}, nil
}
