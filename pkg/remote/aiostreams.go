package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// TemplateKind selects which AIOStreams base template to fetch.
type TemplateKind string

const (
	TemplateP2P    TemplateKind = "p2p"
	TemplateDebrid TemplateKind = "debrid"
)

// AIOStreamsClient exchanges a filled-in AIOStreams template for a
// hosted user configuration and its manifest. Base templates are
// fetched from static URLs and cached.
type AIOStreamsClient struct {
	baseURL           string
	p2pTemplateURL    string
	debridTemplateURL string
	templates         *expirable.LRU[string, []byte]
	httpClient
}

// NewAIOStreamsClient creates an AIOStreams API client. Templates are
// cached for templateTTL; zero selects 5 minutes.
func NewAIOStreamsClient(baseURL, p2pTemplateURL, debridTemplateURL string, timeout, templateTTL time.Duration) *AIOStreamsClient {
	if templateTTL == 0 {
		templateTTL = 5 * time.Minute
	}
	return &AIOStreamsClient{
		baseURL:           baseURL,
		p2pTemplateURL:    p2pTemplateURL,
		debridTemplateURL: debridTemplateURL,
		templates:         expirable.NewLRU[string, []byte](4, nil, templateTTL),
		httpClient:        newHTTPClient("aiostreams", timeout),
	}
}

// FetchTemplate returns a fresh copy of the base template for the
// given kind. Each call unmarshals from the cached raw bytes, so
// callers may mutate the result freely.
func (c *AIOStreamsClient) FetchTemplate(ctx context.Context, kind TemplateKind) (map[string]any, error) {
	url := c.debridTemplateURL
	if kind == TemplateP2P {
		url = c.p2pTemplateURL
	}

	raw, ok := c.templates.Get(url)
	if !ok {
		var template json.RawMessage
		if err := c.getJSON(ctx, url, &template); err != nil {
			logger.Debug("AIOStreams template fetch failed", "kind", kind, "error", err)
			return nil, err
		}
		raw = template
		c.templates.Add(url, raw)
	}

	var template map[string]any
	if err := json.Unmarshal(raw, &template); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return template, nil
}

type aioStreamsResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		EncryptedPassword string `json:"encryptedPassword"`
		UUID              string `json:"uuid"`
	} `json:"data"`
}

// CreateUser posts the filled template and fetches the manifest of the
// created hosted configuration.
func (c *AIOStreamsClient) CreateUser(ctx context.Context, config map[string]any) (AddonConfig, error) {
	var resp aioStreamsResponse
	if err := c.postJSON(ctx, c.baseURL+"/api/v1/user", config, &resp); err != nil {
		logger.Debug("AIOStreams user create failed", "error", err)
		return AddonConfig{}, err
	}
	if !resp.Success || resp.Data == nil || resp.Data.UUID == "" {
		return AddonConfig{}, fmt.Errorf("%w: AIOStreams returned error or missing data", ErrUnavailable)
	}

	transportURL := fmt.Sprintf("%s/stremio/%s/%s/manifest.json", c.baseURL, resp.Data.UUID, resp.Data.EncryptedPassword)
	var manifest stremio.Manifest
	if err := c.getJSON(ctx, transportURL, &manifest); err != nil {
		logger.Debug("AIOStreams manifest fetch failed", "error", err)
		return AddonConfig{}, err
	}
	return AddonConfig{TransportURL: transportURL, Manifest: &manifest}, nil
}
