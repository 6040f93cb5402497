// Package transporturl encodes and decodes the addon configuration
// payload embedded in a Stremio manifest URL. Two payload encodings are
// in the wild: base64 of the JSON config and URL-encoded JSON.
package transporturl

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Mode selects the payload encoding of a transport URL.
type Mode int

const (
	Base64JSON Mode = iota
	URLEncodedJSON
)

// ErrMalformedURL is returned when a URL does not have the
// <scheme>://<host>/.../<payload>/manifest.json shape.
var ErrMalformedURL = errors.New("malformed transport URL")

// DecodeError wraps a payload decoding failure (bad base64, bad JSON).
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode transport payload: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// TransportURL is a manifest URL split into its three parts: everything
// up to and including the slash before the payload, the opaque config
// payload, and the trailing "/manifest.json".
type TransportURL struct {
	Domain  string
	Payload string
	Suffix  string
}

var urlPattern = regexp.MustCompile(`^(https?://[^/]+(?:/[^/]+)*/)([^/=]+={0,2})(/manifest\.json)$`)

// Parse splits a transport URL into domain, payload and suffix.
func Parse(rawURL string) (TransportURL, error) {
	m := urlPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return TransportURL{}, ErrMalformedURL
	}
	return TransportURL{Domain: m[1], Payload: m[2], Suffix: m[3]}, nil
}

// DecodePayload parses the configuration object out of a payload.
func DecodePayload(payload string, mode Mode) (map[string]any, error) {
	var raw []byte
	switch mode {
	case URLEncodedJSON:
		// Percent-decoding only. The addon servers speak the
		// encodeURIComponent dialect, where "+" is a literal plus,
		// never a space.
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, &DecodeError{Cause: err}
		}
		raw = []byte(s)
	default:
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, &DecodeError{Cause: err}
		}
		raw = b
	}

	var config map[string]any
	if err := json.Unmarshal(raw, &config); err != nil {
		return nil, &DecodeError{Cause: err}
	}
	return config, nil
}

// EncodePayload is the inverse of DecodePayload: for every valid config
// object, DecodePayload(EncodePayload(c, m), m) deep-equals c. Byte
// identity is not guaranteed because JSON key order is not preserved.
func EncodePayload(config map[string]any) string {
	raw, _ := json.Marshal(config)
	return base64.StdEncoding.EncodeToString(raw)
}

// EncodePayloadMode encodes a config object in the given mode.
func EncodePayloadMode(config map[string]any, mode Mode) string {
	if mode == URLEncodedJSON {
		raw, _ := json.Marshal(config)
		return escapeComponent(string(raw))
	}
	return EncodePayload(config)
}

// escapeComponent percent-encodes like encodeURIComponent: spaces
// become "%20", not "+".
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Build reassembles a transport URL around a freshly encoded payload.
func (t TransportURL) Build(config map[string]any, mode Mode) string {
	return t.Domain + EncodePayloadMode(config, mode) + t.Suffix
}

// Update decodes the payload of a transport URL, applies fn to the
// configuration object and re-encodes the result in place.
func Update(rawURL string, mode Mode, fn func(map[string]any) map[string]any) (string, error) {
	t, err := Parse(rawURL)
	if err != nil {
		return "", err
	}
	config, err := DecodePayload(t.Payload, mode)
	if err != nil {
		return "", err
	}
	return t.Build(fn(config), mode), nil
}
