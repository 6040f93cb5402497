package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
)

// MediaFusionClient exchanges a local MediaFusion configuration for an
// encrypted transport URL.
type MediaFusionClient struct {
	baseURL string
	httpClient
}

// NewMediaFusionClient creates a MediaFusion API client.
func NewMediaFusionClient(baseURL string, timeout time.Duration) *MediaFusionClient {
	return &MediaFusionClient{baseURL: baseURL, httpClient: newHTTPClient("mediafusion", timeout)}
}

type mediaFusionResponse struct {
	Status       string `json:"status"`
	EncryptedStr string `json:"encrypted_str"`
}

// EncryptUserData posts the configuration and returns the transport
// URL built from the encrypted blob the service hands back.
func (c *MediaFusionClient) EncryptUserData(ctx context.Context, config map[string]any) (string, error) {
	var resp mediaFusionResponse
	if err := c.postJSON(ctx, c.baseURL+"/encrypt-user-data", config, &resp); err != nil {
		logger.Debug("MediaFusion encrypt failed", "error", err)
		return "", err
	}
	if resp.Status != "success" || resp.EncryptedStr == "" {
		return "", fmt.Errorf("%w: MediaFusion returned status %q", ErrUnavailable, resp.Status)
	}
	return fmt.Sprintf("%s/%s/manifest.json", c.baseURL, resp.EncryptedStr), nil
}
