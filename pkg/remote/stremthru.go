package remote

import (
	"context"
	"time"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// StremThruClient fetches the manifest a StremThru transport URL
// serves after its payload has been rewritten locally.
type StremThruClient struct {
	httpClient
}

// NewStremThruClient creates a StremThru manifest fetcher.
func NewStremThruClient(timeout time.Duration) *StremThruClient {
	return &StremThruClient{httpClient: newHTTPClient("stremthru", timeout)}
}

// FetchManifest fetches the manifest behind a transport URL.
func (c *StremThruClient) FetchManifest(ctx context.Context, transportURL string) (*stremio.Manifest, error) {
	var manifest stremio.Manifest
	if err := c.getJSON(ctx, transportURL, &manifest); err != nil {
		logger.Debug("StremThru manifest fetch failed", "error", err)
		return nil, err
	}
	return &manifest, nil
}
