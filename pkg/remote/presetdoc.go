package remote

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
)

// PresetDocumentClient fetches the static preset document: the base
// addon entries per locale, the preset bundles and the per-service
// default configuration blobs. The raw document is cached; each
// composition unmarshals its own copy so the document itself is never
// shared mutable state.
type PresetDocumentClient struct {
	url   string
	cache *expirable.LRU[string, []byte]
	httpClient
}

// NewPresetDocumentClient creates a preset document fetcher. Zero ttl
// selects 5 minutes.
func NewPresetDocumentClient(url string, timeout, ttl time.Duration) *PresetDocumentClient {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresetDocumentClient{
		url:        url,
		cache:      expirable.NewLRU[string, []byte](2, nil, ttl),
		httpClient: newHTTPClient("presets", timeout),
	}
}

// FetchDocument returns the raw preset document.
func (c *PresetDocumentClient) FetchDocument(ctx context.Context) (json.RawMessage, error) {
	if raw, ok := c.cache.Get(c.url); ok {
		return raw, nil
	}
	var doc json.RawMessage
	if err := c.getJSON(ctx, c.url, &doc); err != nil {
		logger.Warn("Preset document fetch failed", "url", c.url, "error", err)
		return nil, err
	}
	c.cache.Add(c.url, []byte(doc))
	return doc, nil
}
