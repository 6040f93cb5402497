package stremio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var manifestURLPattern = regexp.MustCompile(`(?i)^https://([A-Za-z0-9-]+\.)+[A-Za-z]{2,}(?::\d+)?(?:/[^/\s]+)*/manifest\.json$`)

// IsValidManifestURL reports whether a user-supplied custom addon URL
// has the strict https://.../manifest.json shape. Internationalized
// hostnames are normalized to their ASCII form before matching.
func IsValidManifestURL(rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return false
	}
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != host {
			u.Host = strings.Replace(u.Host, host, ascii, 1)
			rawURL = u.String()
		}
	}
	return manifestURLPattern.MatchString(rawURL)
}

// FetchCustomAddon validates a user-supplied manifest URL and fetches
// its manifest. Malformed URLs and fetch failures return an error the
// caller is expected to skip silently; a custom addon never fails a
// composition.
func (c *Client) FetchCustomAddon(ctx context.Context, manifestURL string) (Addon, error) {
	manifestURL = strings.TrimSpace(manifestURL)
	if !IsValidManifestURL(manifestURL) {
		return Addon{}, fmt.Errorf("invalid manifest URL: %q", manifestURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return Addon{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Addon{}, fmt.Errorf("fetch custom addon manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Addon{}, fmt.Errorf("fetch custom addon manifest: status %d", resp.StatusCode)
	}

	var manifest Manifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return Addon{}, fmt.Errorf("decode custom addon manifest: %w", err)
	}

	return Addon{TransportURL: manifestURL, Manifest: &manifest}, nil
}
