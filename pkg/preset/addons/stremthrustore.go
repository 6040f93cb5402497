package addons

import (
	"context"
	"fmt"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

// ManifestFetcher fetches the manifest a transport URL serves.
type ManifestFetcher interface {
	FetchManifest(ctx context.Context, transportURL string) (*stremio.Manifest, error)
}

// StremThruStore configures the StremThru Store addon. The payload is
// rewritten locally per credential, then the hosted service is asked
// for the manifest that configuration serves; a failed fetch drops the
// entry rather than installing it half-configured.
type StremThruStore struct {
	API ManifestFetcher
}

func (StremThruStore) Key() string { return "stremthrustore" }

func (s StremThruStore) Transform(ctx context.Context, addon stremio.Addon, rc Context) Result {
	if len(rc.Debrid) == 0 {
		return Unchanged()
	}

	return fanOutDebrid("stremthrustore", addon, rc.Debrid, true, func(a *stremio.Addon, e debrid.Entry) error {
		updated, err := transporturl.Update(a.TransportURL, transporturl.Base64JSON, func(config map[string]any) map[string]any {
			config["store_name"] = string(e.Service)
			config["store_token"] = e.Key
			return config
		})
		if err != nil {
			return err
		}

		manifest, err := s.API.FetchManifest(ctx, updated)
		if err != nil {
			return fmt.Errorf("stremthrustore manifest for %s: %w", e.Service, err)
		}
		a.TransportURL = updated
		a.Manifest = manifest
		return nil
	})
}
