package addons

import (
	"context"
	"strings"
	"testing"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/transporturl"
)

const (
	testRDKey = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789ABCDEFGHIJKLMNOP"
	testTBKey = "123e4567-e89b-12d3-a456-426614174000"
	testADKey = "abcdefghij0123456789"
)

var (
	rdEntry = debrid.Entry{Service: debrid.RealDebrid, Key: testRDKey}
	tbEntry = debrid.Entry{Service: debrid.TorBox, Key: testTBKey}
	adEntry = debrid.Entry{Service: debrid.AllDebrid, Key: testADKey}
)

// payloadAddon builds an addon entry whose transport URL embeds the
// given config in the given encoding.
func payloadAddon(name string, config map[string]any, mode transporturl.Mode) stremio.Addon {
	return stremio.Addon{
		TransportURL: "https://addon.example/" + transporturl.EncodePayloadMode(config, mode) + "/manifest.json",
		Manifest:     &stremio.Manifest{ID: "org.example." + name, Name: name, Version: "1.0.0"},
	}
}

// decodePayload pulls the config object back out of a transport URL.
func decodePayload(t *testing.T, rawURL string, mode transporturl.Mode) map[string]any {
	t.Helper()
	tu, err := transporturl.Parse(rawURL)
	if err != nil {
		t.Fatalf("Parse(%q): %v", rawURL, err)
	}
	config, err := transporturl.DecodePayload(tu.Payload, mode)
	if err != nil {
		t.Fatalf("DecodePayload(%q): %v", tu.Payload, err)
	}
	return config
}

func TestFanOutCardinality(t *testing.T) {
	base := payloadAddon("Jackettio", map[string]any{}, transporturl.Base64JSON)

	t.Run("zero credentials removes", func(t *testing.T) {
		res := Jackettio{}.Transform(context.Background(), base.Clone(), Context{})
		if res.Action != ActionRemoved {
			t.Fatalf("Action = %v, want ActionRemoved", res.Action)
		}
		if res.Reason == "" {
			t.Fatal("removal carries no reason")
		}
	})

	t.Run("one credential mutates in place", func(t *testing.T) {
		rc := Context{Debrid: []debrid.Entry{rdEntry}}
		res := Jackettio{}.Transform(context.Background(), base.Clone(), rc)
		if res.Action != ActionMutated {
			t.Fatalf("Action = %v, want ActionMutated", res.Action)
		}
		if res.Addon.Manifest.Name != "Jackettio | RD" {
			t.Fatalf("name = %q", res.Addon.Manifest.Name)
		}
		config := decodePayload(t, res.Addon.TransportURL, transporturl.Base64JSON)
		if config["debridApiKey"] != testRDKey {
			t.Fatalf("debridApiKey = %v", config["debridApiKey"])
		}
	})

	t.Run("two credentials fan out in order", func(t *testing.T) {
		rc := Context{Debrid: []debrid.Entry{rdEntry, tbEntry}}
		res := Jackettio{}.Transform(context.Background(), base.Clone(), rc)
		if res.Action != ActionFannedOut {
			t.Fatalf("Action = %v, want ActionFannedOut", res.Action)
		}
		if len(res.Clones) != 2 {
			t.Fatalf("clones = %d, want 2", len(res.Clones))
		}
		if res.Clones[0].Key != "jackettio_realdebrid" || res.Clones[1].Key != "jackettio_torbox" {
			t.Fatalf("clone keys = %q, %q", res.Clones[0].Key, res.Clones[1].Key)
		}
		if res.Clones[0].Addon.Manifest.Name != "Jackettio | RD" {
			t.Fatalf("first clone name = %q", res.Clones[0].Addon.Manifest.Name)
		}
		if res.Clones[1].Addon.Manifest.Name != "Jackettio | TB" {
			t.Fatalf("second clone name = %q", res.Clones[1].Addon.Manifest.Name)
		}
		// Clones must not share payload state.
		first := decodePayload(t, res.Clones[0].Addon.TransportURL, transporturl.Base64JSON)
		second := decodePayload(t, res.Clones[1].Addon.TransportURL, transporturl.Base64JSON)
		if first["debridApiKey"] == second["debridApiKey"] {
			t.Fatal("clones share one credential")
		}
	})
}

func TestTorrentio(t *testing.T) {
	template := "https://torrentio.strem.fun/qualityfilter={{no4k}}scr,cam|limit={{limit}}{{maxSize}}{{transportUrl}}/manifest.json"
	base := stremio.Addon{
		TransportURL: template,
		Manifest:     &stremio.Manifest{ID: "com.stremio.torrentio.addon", Name: "Torrentio", Version: "0.0.15"},
	}

	t.Run("p2p", func(t *testing.T) {
		res := Torrentio{}.Transform(context.Background(), base.Clone(), Context{Limit: 10, No4K: true, MaxSize: "20"})
		if res.Action != ActionMutated {
			t.Fatalf("Action = %v", res.Action)
		}
		want := "https://torrentio.strem.fun/qualityfilter=4k,scr,cam|limit=10|sizefilter=20GB/manifest.json"
		if res.Addon.TransportURL != want {
			t.Fatalf("url = %q, want %q", res.Addon.TransportURL, want)
		}
		if res.Addon.Manifest.Name != "Torrentio" {
			t.Fatalf("name = %q, p2p entry must not be suffixed", res.Addon.Manifest.Name)
		}
	})

	t.Run("debrid cached", func(t *testing.T) {
		rc := Context{Limit: 2, Cached: true, Debrid: []debrid.Entry{rdEntry}}
		res := Torrentio{}.Transform(context.Background(), base.Clone(), rc)
		if res.Action != ActionMutated {
			t.Fatalf("Action = %v", res.Action)
		}
		url := res.Addon.TransportURL
		if !strings.Contains(url, "|sort=qualitysize|debridoptions=nodownloadlinks,nocatalog|realdebrid="+testRDKey) {
			t.Fatalf("url = %q", url)
		}
	})
}

func TestPeerflix(t *testing.T) {
	template := "https://peerflix.example/language=en{{transportUrl}}%7Cqualityfilter={{no4k}}{{sort}}/manifest.json"
	base := stremio.Addon{
		TransportURL: template,
		Manifest:     &stremio.Manifest{ID: "com.stremio.peerflix", Name: "Peerflix", Version: "1.0.0"},
	}

	t.Run("p2p sorts by seeders", func(t *testing.T) {
		res := Peerflix{}.Transform(context.Background(), base.Clone(), Context{})
		if !strings.Contains(res.Addon.TransportURL, ",seed-desc") {
			t.Fatalf("url = %q", res.Addon.TransportURL)
		}
		if strings.Contains(res.Addon.TransportURL, "debridoptions") {
			t.Fatalf("url = %q", res.Addon.TransportURL)
		}
	})

	t.Run("debrid sorts by size and keeps escapes", func(t *testing.T) {
		rc := Context{No4K: true, Debrid: []debrid.Entry{adEntry}}
		res := Peerflix{}.Transform(context.Background(), base.Clone(), rc)
		url := res.Addon.TransportURL
		if !strings.Contains(url, "%7Cdebridoptions=nocatalog%7Calldebrid="+testADKey) {
			t.Fatalf("url = %q", url)
		}
		if !strings.Contains(url, ",remux4k,4k,micro4k") || !strings.Contains(url, ",size-desc") {
			t.Fatalf("url = %q", url)
		}
	})
}

func TestTorbox(t *testing.T) {
	base := stremio.Addon{
		TransportURL: "https://stremio.torbox.app/{{transportUrl}}/manifest.json",
		Manifest:     &stremio.Manifest{ID: "com.torbox.stremio", Name: "TorBox", Version: "1.0.0"},
	}

	t.Run("requires torbox credential", func(t *testing.T) {
		rc := Context{Debrid: []debrid.Entry{rdEntry}}
		if res := (Torbox{}).Transform(context.Background(), base.Clone(), rc); res.Action != ActionRemoved {
			t.Fatalf("Action = %v, want ActionRemoved", res.Action)
		}
	})

	t.Run("substitutes the key", func(t *testing.T) {
		rc := Context{Debrid: []debrid.Entry{rdEntry, tbEntry}}
		res := Torbox{}.Transform(context.Background(), base.Clone(), rc)
		if res.Action != ActionMutated {
			t.Fatalf("Action = %v", res.Action)
		}
		want := "https://stremio.torbox.app/" + testTBKey + "/manifest.json"
		if res.Addon.TransportURL != want {
			t.Fatalf("url = %q", res.Addon.TransportURL)
		}
	})
}

func TestComet(t *testing.T) {
	base := payloadAddon("Comet", map[string]any{"resolutions": map[string]any{"r720p": true}}, transporturl.Base64JSON)

	t.Run("p2p fallback", func(t *testing.T) {
		res := Comet{}.Transform(context.Background(), base.Clone(), Context{Limit: 10})
		config := decodePayload(t, res.Addon.TransportURL, transporturl.Base64JSON)
		if config["enableTorrent"] != true {
			t.Fatalf("enableTorrent = %v", config["enableTorrent"])
		}
		if got := config["debridServices"].([]any); len(got) != 0 {
			t.Fatalf("debridServices = %v", got)
		}
	})

	t.Run("all credentials in one payload", func(t *testing.T) {
		rc := Context{
			Limit:             2,
			No4K:              true,
			MaxSize:           "10",
			Debrid:            []debrid.Entry{rdEntry, tbEntry},
			DebridServiceName: debrid.ServiceName([]debrid.Entry{rdEntry, tbEntry}),
		}
		res := Comet{}.Transform(context.Background(), base.Clone(), rc)
		if res.Action != ActionMutated {
			t.Fatalf("Action = %v, comet must never fan out", res.Action)
		}
		config := decodePayload(t, res.Addon.TransportURL, transporturl.Base64JSON)
		services := config["debridServices"].([]any)
		if len(services) != 2 {
			t.Fatalf("debridServices = %v", services)
		}
		if config["enableTorrent"] != false {
			t.Fatalf("enableTorrent = %v", config["enableTorrent"])
		}
		if config["maxSize"] != float64(10*1024*1024*1024) {
			t.Fatalf("maxSize = %v", config["maxSize"])
		}
		resolutions := config["resolutions"].(map[string]any)
		if resolutions["r2160p"] != false || resolutions["r720p"] != true {
			t.Fatalf("resolutions = %v", resolutions)
		}
		if res.Addon.Manifest.Name != "Comet | RD, TB" {
			t.Fatalf("name = %q", res.Addon.Manifest.Name)
		}
	})
}

func TestMeteorSizeBuckets(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", 0},
		{"bogus", 0},
		{"5", 10},
		{"10", 10},
		{"15", 20},
		{"20", 50},
		{"30", 50},
		{"40", ""},
	}
	for _, tt := range tests {
		if got := meteorSizeBucket(tt.in); got != tt.want {
			t.Errorf("meteorSizeBucket(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMeteor(t *testing.T) {
	base := payloadAddon("Meteor", map[string]any{"resolutions": []any{"4k", "1080p"}}, transporturl.Base64JSON)

	t.Run("p2p runs in torrent mode", func(t *testing.T) {
		res := Meteor{}.Transform(context.Background(), base.Clone(), Context{Language: "es-MX", Limit: 10})
		config := decodePayload(t, res.Addon.TransportURL, transporturl.Base64JSON)
		if config["debridService"] != "torrent" {
			t.Fatalf("debridService = %v", config["debridService"])
		}
		languages := config["languages"].(map[string]any)
		preferred := languages["preferred"].([]any)
		if preferred[0] != "es" || preferred[1] != "multi" {
			t.Fatalf("preferred = %v", preferred)
		}
	})

	t.Run("languages without preferred gains the default", func(t *testing.T) {
		withLangs := payloadAddon("Meteor", map[string]any{
			"languages": map[string]any{"excluded": []any{"de"}},
		}, transporturl.Base64JSON)
		res := Meteor{}.Transform(context.Background(), withLangs.Clone(), Context{Language: "en", Limit: 10})
		config := decodePayload(t, res.Addon.TransportURL, transporturl.Base64JSON)
		languages := config["languages"].(map[string]any)
		preferred, ok := languages["preferred"].([]any)
		if !ok || preferred[0] != "en" {
			t.Fatalf("preferred = %v", languages["preferred"])
		}
		if excluded := languages["excluded"].([]any); excluded[0] != "de" {
			t.Fatalf("excluded = %v, existing fields must survive", languages["excluded"])
		}
	})

	t.Run("existing preferred is kept", func(t *testing.T) {
		withPreferred := payloadAddon("Meteor", map[string]any{
			"languages": map[string]any{"preferred": []any{"fr"}},
		}, transporturl.Base64JSON)
		res := Meteor{}.Transform(context.Background(), withPreferred.Clone(), Context{Language: "en", Limit: 10})
		config := decodePayload(t, res.Addon.TransportURL, transporturl.Base64JSON)
		languages := config["languages"].(map[string]any)
		preferred := languages["preferred"].([]any)
		if len(preferred) != 1 || preferred[0] != "fr" {
			t.Fatalf("preferred = %v", preferred)
		}
	})

	t.Run("no4k strips the 4k resolution", func(t *testing.T) {
		rc := Context{Language: "en", Limit: 10, No4K: true, Debrid: []debrid.Entry{rdEntry}}
		res := Meteor{}.Transform(context.Background(), base.Clone(), rc)
		config := decodePayload(t, res.Addon.TransportURL, transporturl.Base64JSON)
		for _, r := range config["resolutions"].([]any) {
			if r == "4k" {
				t.Fatal("4k resolution survived")
			}
		}
		if config["debridService"] != "realdebrid" {
			t.Fatalf("debridService = %v", config["debridService"])
		}
	})
}

func TestSootio(t *testing.T) {
	base := payloadAddon("Sootio", map[string]any{}, transporturl.URLEncodedJSON)

	t.Run("debridlink is unsupported", func(t *testing.T) {
		rc := Context{Debrid: []debrid.Entry{{Service: debrid.DebridLink, Key: strings.Repeat("a", 35)}}}
		if res := Sootio{}.Transform(context.Background(), base.Clone(), rc); res.Action != ActionRemoved {
			t.Fatalf("Action = %v, want ActionRemoved", res.Action)
		}
	})

	t.Run("url encoded payload with provider names", func(t *testing.T) {
		rc := Context{Debrid: []debrid.Entry{rdEntry}, DebridServiceName: "RealDebrid"}
		res := Sootio{}.Transform(context.Background(), base.Clone(), rc)
		if res.Action != ActionMutated {
			t.Fatalf("Action = %v", res.Action)
		}
		config := decodePayload(t, res.Addon.TransportURL, transporturl.URLEncodedJSON)
		services := config["DebridServices"].([]any)
		entry := services[0].(map[string]any)
		if entry["provider"] != "RealDebrid" || entry["apiKey"] != testRDKey {
			t.Fatalf("services = %v", services)
		}
		// No user size filter defaults to 200 GB.
		if config["maxSize"] != float64(200) {
			t.Fatalf("maxSize = %v", config["maxSize"])
		}
	})
}

func TestTorrentsDB(t *testing.T) {
	base := payloadAddon("TorrentsDB", map[string]any{"qualityfilter": []any{"scr", "cam"}}, transporturl.Base64JSON)

	rc := Context{
		No4K:              true,
		MaxSize:           "5",
		Debrid:            []debrid.Entry{rdEntry, adEntry},
		DebridServiceName: "RealDebrid, AllDebrid",
	}
	res := TorrentsDB{}.Transform(context.Background(), base.Clone(), rc)
	if res.Action != ActionMutated {
		t.Fatalf("Action = %v, torrentsdb must never fan out", res.Action)
	}

	config := decodePayload(t, res.Addon.TransportURL, transporturl.Base64JSON)
	if config["realdebrid"] != testRDKey || config["alldebrid"] != testADKey {
		t.Fatalf("credentials not embedded: %v", config)
	}
	if config["sizefilter"] != "5120" {
		t.Fatalf("sizefilter = %v, want megabytes", config["sizefilter"])
	}
	filters := config["qualityfilter"].([]any)
	if len(filters) != 2+len(no4kQualityTokens) {
		t.Fatalf("qualityfilter = %v", filters)
	}
	if res.Addon.Manifest.Name != "TorrentsDB | RealDebrid, AllDebrid" {
		t.Fatalf("name = %q", res.Addon.Manifest.Name)
	}
}

func TestStremThruTorz(t *testing.T) {
	base := payloadAddon("StremThru Torz", map[string]any{}, transporturl.Base64JSON)

	t.Run("p2p store fallback", func(t *testing.T) {
		res := StremThruTorz{}.Transform(context.Background(), base.Clone(), Context{})
		config := decodePayload(t, res.Addon.TransportURL, transporturl.Base64JSON)
		stores := config["stores"].([]any)
		store := stores[0].(map[string]any)
		if store["c"] != "p2p" {
			t.Fatalf("stores = %v", stores)
		}
		if res.Addon.Manifest.Name != "StremThru Torz" {
			t.Fatalf("name = %q, p2p entry must not be suffixed", res.Addon.Manifest.Name)
		}
	})

	t.Run("store codes", func(t *testing.T) {
		rc := Context{Cached: true, Debrid: []debrid.Entry{rdEntry, tbEntry}, DebridServiceName: "RD, TB"}
		res := StremThruTorz{}.Transform(context.Background(), base.Clone(), rc)
		config := decodePayload(t, res.Addon.TransportURL, transporturl.Base64JSON)
		stores := config["stores"].([]any)
		if len(stores) != 2 {
			t.Fatalf("stores = %v", stores)
		}
		first := stores[0].(map[string]any)
		second := stores[1].(map[string]any)
		if first["c"] != "rd" || first["t"] != testRDKey || second["c"] != "tb" {
			t.Fatalf("stores = %v", stores)
		}
		if config["cached"] != true {
			t.Fatalf("cached = %v", config["cached"])
		}
	})
}

func TestStreamAsia(t *testing.T) {
	base := payloadAddon("StreamAsia", map[string]any{}, transporturl.Base64JSON)

	if res := StreamAsia{}.Transform(context.Background(), base.Clone(), Context{}); res.Action != ActionRemoved {
		t.Fatalf("Action = %v, want ActionRemoved without credentials", res.Action)
	}

	rc := Context{Debrid: []debrid.Entry{rdEntry}, DebridServiceName: "RealDebrid"}
	res := StreamAsia{}.Transform(context.Background(), base.Clone(), rc)
	config := decodePayload(t, res.Addon.TransportURL, transporturl.Base64JSON)
	providers := config["debridConfig"].([]any)
	entry := providers[0].(map[string]any)
	if entry["debridProvider"] != "Real Debrid" || entry["token"] != testRDKey {
		t.Fatalf("debridConfig = %v", providers)
	}
}

func TestTPBPlus(t *testing.T) {
	base := stremio.Addon{
		TransportURL: "https://tpbplus.example/manifest.json",
		Manifest:     &stremio.Manifest{ID: "org.tpbplus", Name: "TPB+", Version: "1.0.0"},
	}

	if res := TPBPlus{}.Transform(context.Background(), base.Clone(), Context{}); res.Action != ActionUnchanged {
		t.Fatalf("Action = %v, want ActionUnchanged without credentials", res.Action)
	}
	rc := Context{Debrid: []debrid.Entry{rdEntry}}
	if res := TPBPlus{}.Transform(context.Background(), base.Clone(), rc); res.Action != ActionRemoved {
		t.Fatalf("Action = %v, want ActionRemoved for debrid users", res.Action)
	}
}
