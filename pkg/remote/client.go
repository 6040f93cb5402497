// Package remote wraps the third-party configuration APIs that
// exchange a local addon configuration for a hosted manifest and
// transport URL. Every failure mode of an exchange (transport error,
// timeout, non-2xx status, malformed body, success flag set to false)
// collapses to ErrUnavailable; nothing else escapes an adapter.
// Callers treat ErrUnavailable as "drop this addon", never as fatal.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/metrics"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// ErrUnavailable marks a remote configuration service that could not
// produce a usable result.
var ErrUnavailable = errors.New("remote configuration service unavailable")

// DefaultTimeout matches the upstream services' 15s request budget.
const DefaultTimeout = 15 * time.Second

// AddonConfig is the normalized result of a successful exchange.
type AddonConfig struct {
	TransportURL string
	Manifest     *stremio.Manifest
}

type httpClient struct {
	service string
	client  *http.Client
}

func newHTTPClient(service string, timeout time.Duration) httpClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return httpClient{service: service, client: &http.Client{Timeout: timeout}}
}

func (h httpClient) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return h.do(req, v)
}

func (h httpClient) postJSON(ctx context.Context, url string, body any, v any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, v)
}

func (h httpClient) do(req *http.Request, v any) error {
	resp, err := h.client.Do(req)
	if err != nil {
		metrics.RecordExchangeFailure(h.service)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordExchangeFailure(h.service)
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		metrics.RecordExchangeFailure(h.service)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
