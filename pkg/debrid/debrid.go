// Package debrid holds the supported debrid service table and the
// credential shape validation applied before any addon is configured.
package debrid

import (
	"regexp"
	"strings"
)

// Service identifies a supported debrid provider.
type Service string

const (
	RealDebrid Service = "realdebrid"
	AllDebrid  Service = "alldebrid"
	Premiumize Service = "premiumize"
	DebridLink Service = "debridlink"
	TorBox     Service = "torbox"
)

// Info describes a debrid provider: the short name used as a manifest
// name suffix, the display label and the page where users find their
// API key.
type Info struct {
	Name  string
	Label string
	URL   string
}

// Services is the provider table, keyed by service identifier.
var Services = map[Service]Info{
	RealDebrid: {Name: "RD", Label: "RealDebrid", URL: "https://real-debrid.com/apitoken"},
	AllDebrid:  {Name: "AD", Label: "AllDebrid", URL: "https://alldebrid.com/apikeys"},
	Premiumize: {Name: "PM", Label: "Premiumize", URL: "https://www.premiumize.me/account"},
	DebridLink: {Name: "DL", Label: "DebridLink", URL: "https://debrid-link.com/webapp/apikey"},
	TorBox:     {Name: "TB", Label: "TorBox", URL: "https://torbox.app/settings"},
}

// Entry is a user-supplied (service, API key) pair.
type Entry struct {
	Service Service `json:"service"`
	Key     string  `json:"key"`
}

// Per-provider API key shapes. These match each provider's documented
// token format and are part of the external contract.
var keyPatterns = map[Service]*regexp.Regexp{
	AllDebrid:  regexp.MustCompile(`^[a-zA-Z0-9]{20}$`),
	Premiumize: regexp.MustCompile(`(?i)^[a-z0-9]{16}$`),
	DebridLink: regexp.MustCompile(`^[A-Za-z0-9]{35}$`),
	RealDebrid: regexp.MustCompile(`^[A-Z0-9]{52}$`),
	TorBox:     regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`),
}

// ShortName returns the short provider name for a service, falling
// back to the raw identifier for unknown services.
func ShortName(service Service) string {
	if info, ok := Services[service]; ok {
		return info.Name
	}
	return string(service)
}

// IsValidKey reports whether key matches the documented token shape of
// the given service. The key is trimmed before testing.
func IsValidKey(service Service, key string) bool {
	pattern, ok := keyPatterns[service]
	if !ok {
		return false
	}
	return pattern.MatchString(strings.TrimSpace(key))
}

// Validate drops entries with a missing service or key, or a key that
// fails the shape check. Relative order of the surviving entries is
// preserved and entries are not deduplicated per service: a user may
// hold two accounts with the same provider, and composition fans out
// per entry.
func Validate(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Service == "" || e.Key == "" {
			continue
		}
		if !IsValidKey(e.Service, e.Key) {
			continue
		}
		out = append(out, Entry{Service: e.Service, Key: strings.TrimSpace(e.Key)})
	}
	return out
}

// ServiceName joins the short names of the given entries into the
// human-readable string appended to manifest names ("RD, TB").
// Empty when no entries are present.
func ServiceName(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, ShortName(e.Service))
	}
	return strings.Join(names, ", ")
}
