package preset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/metrics"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/password"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/preset/addons"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
)

// ErrConfigLoad is the only failure that aborts a whole composition:
// the preset document could not be loaded or used. Everything else
// degrades to dropping individual addons.
var ErrConfigLoad = errors.New("preset configuration unavailable")

// DocumentFetcher loads the raw preset document.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context) (json.RawMessage, error)
}

// CustomAddonFetcher validates and fetches a user-supplied addon
// manifest URL.
type CustomAddonFetcher interface {
	FetchCustomAddon(ctx context.Context, manifestURL string) (stremio.Addon, error)
}

// Remotes bundles the hosted configuration services the transformers
// exchange local configs with.
type Remotes struct {
	AIOLists    addons.AIOListsAPI
	AIOMetadata addons.AIOMetadataAPI
	AIOStreams  addons.AIOStreamsAPI
	MediaFusion addons.MediaFusionAPI
	StremThru   addons.ManifestFetcher
}

// Request is one composition request as supplied by the user.
type Request struct {
	Preset          string         `json:"preset"`
	Language        string         `json:"language"`
	Extras          []string       `json:"extras,omitempty"`
	CustomAddonURLs []string       `json:"customAddons,omitempty"`
	No4K            bool           `json:"no4k"`
	Cached          bool           `json:"cached"`
	MaxSize         string         `json:"maxSize,omitempty"` // in GB, empty for no filter
	Debrid          []debrid.Entry `json:"debrid,omitempty"`
	RPDBKey         string         `json:"rpdbKey,omitempty"`
	TMDBKey         string         `json:"tmdbKey,omitempty"`
	// Password protects the hosted configs created on the user's
	// behalf. Generated when empty.
	Password string `json:"password,omitempty"`
}

// Result is the outcome of a composition. Removed lists the addons
// dropped along the way with the reason, for auditing; a smaller
// result than requested is normal, not an error.
type Result struct {
	Entries           []Entry
	DebridServiceName string
	Removed           map[string]string
}

// Addons returns the ordered installable addon list.
func (r Result) Addons() []stremio.Addon {
	out := make([]stremio.Addon, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.Addon)
	}
	return out
}

// Composer derives the final addon set for a request. Stateless across
// requests; safe for concurrent use.
type Composer struct {
	documents DocumentFetcher
	remotes   Remotes
	custom    CustomAddonFetcher
}

func NewComposer(documents DocumentFetcher, remotes Remotes, custom CustomAddonFetcher) *Composer {
	return &Composer{documents: documents, remotes: remotes, custom: custom}
}

// hostedConcurrency bounds how many hosted exchanges run at once.
const hostedConcurrency = 4

// Document loads and parses the current preset document. Used by the
// API to list the available presets, locales and extras.
func (c *Composer) Document(ctx context.Context) (*Document, error) {
	raw, err := c.documents.FetchDocument(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}
	return doc, nil
}

// Compose runs the linear composition pipeline: load, select, extend,
// validate credentials, transform, finalize. Transformers that need no
// network run sequentially in a fixed order; transformers backed by a
// hosted exchange run concurrently, each touching only its own addon
// key, and their results are applied in the fixed order afterwards.
func (c *Composer) Compose(ctx context.Context, req Request) (Result, error) {
	metrics.CompositionsTotal.Inc()

	// Load
	raw, err := c.documents.FetchDocument(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}
	doc, err := ParseDocument(raw)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}

	keys, ok := doc.Presets[req.Preset]
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown preset %q", ErrConfigLoad, req.Preset)
	}

	// Some locales carry an extra scraper regardless of selection.
	if req.Language == "es-MX" {
		keys = append(append([]string{}, keys...), "subdivx")
	}

	// Select
	cfg := NewConfig()
	for _, key := range keys {
		if addon, ok := doc.selectAddon(key, req.Language); ok {
			cfg.Set(key, addon)
		}
	}

	// Extend
	for _, name := range req.Extras {
		if extra, ok := doc.Extras[name]; ok {
			cfg.Set(name, extra.Clone())
		} else {
			logger.Debug("Unknown extra requested", "extra", name)
		}
	}
	for i, rawURL := range req.CustomAddonURLs {
		addon, err := c.custom.FetchCustomAddon(ctx, rawURL)
		if err != nil {
			// Custom addons are best-effort and never fail a request.
			logger.Debug("Custom addon skipped", "url", rawURL, "error", err)
			continue
		}
		cfg.Set(fmt.Sprintf("custom_%d", i+1), addon)
	}

	// Validate credentials
	validated := debrid.Validate(req.Debrid)
	serviceName := debrid.ServiceName(validated)

	limit := 10
	if req.Preset == "minimal" || req.Preset == "kids" {
		limit = 2
	}
	pw := req.Password
	if pw == "" {
		pw = password.Generate(16)
	}

	rc := addons.Context{
		Language:          req.Language,
		No4K:              req.No4K,
		Cached:            req.Cached,
		Limit:             limit,
		MaxSize:           req.MaxSize,
		Debrid:            validated,
		DebridServiceName: serviceName,
		Preset:            req.Preset,
		Password:          pw,
		Advanced:          addons.Advanced{RPDBKey: req.RPDBKey, TMDBKey: req.TMDBKey},
	}

	removed := make(map[string]string)

	// Transform: local pass first, in order.
	for _, t := range localTransformers() {
		runTransformer(ctx, t, cfg, rc, removed)
	}

	// Hosted pass: run concurrently, apply in order.
	hosted := c.hostedTransformers(doc)
	results := make([]*addons.Result, len(hosted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hostedConcurrency)
	for i, t := range hosted {
		addon, ok := cfg.Get(t.Key())
		if !ok {
			continue
		}
		g.Go(func() error {
			res := t.Transform(gctx, addon.Clone(), rc)
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()
	for i, t := range hosted {
		if results[i] != nil {
			applyResult(t.Key(), *results[i], cfg, removed)
		}
	}

	// Finalize
	for _, e := range cfg.Entries() {
		if !isInstallable(e.Addon) {
			cfg.Delete(e.Key)
			removed[e.Key] = "missing transport URL or manifest name"
			logger.Warn("Dropping half-configured addon", "addon", e.Key)
		}
	}

	for key, reason := range removed {
		metrics.AddonsRemoved.WithLabelValues(key).Inc()
		logger.Info("Addon removed from composition", "addon", key, "reason", reason)
	}

	logger.Info("Composition complete",
		"preset", req.Preset,
		"language", req.Language,
		"addons", cfg.Len(),
		"debrid", serviceName,
	)

	return Result{
		Entries:           cfg.Entries(),
		DebridServiceName: serviceName,
		Removed:           removed,
	}, nil
}

func runTransformer(ctx context.Context, t addons.Transformer, cfg *Config, rc addons.Context, removed map[string]string) {
	addon, ok := cfg.Get(t.Key())
	if !ok {
		return
	}
	applyResult(t.Key(), t.Transform(ctx, addon.Clone(), rc), cfg, removed)
}

func applyResult(key string, res addons.Result, cfg *Config, removed map[string]string) {
	switch res.Action {
	case addons.ActionUnchanged:
	case addons.ActionRemoved:
		cfg.Delete(key)
		removed[key] = res.Reason
	case addons.ActionMutated:
		cfg.Set(key, res.Addon)
	case addons.ActionFannedOut:
		entries := make([]Entry, 0, len(res.Clones))
		for _, clone := range res.Clones {
			entries = append(entries, Entry{Key: clone.Key, Addon: clone.Addon})
		}
		cfg.Splice(key, entries)
	}
}

// localTransformers is the fixed order of the purely local pass.
func localTransformers() []addons.Transformer {
	return []addons.Transformer{
		addons.Torrentio{},
		addons.Comet{},
		addons.Jackettio{},
		addons.TorrentsDB{},
		addons.Sootio{},
		addons.StremThruTorz{},
		addons.Peerflix{},
		addons.Torbox{},
		addons.Meteor{},
		addons.StreamAsia{},
		addons.TPBPlus{},
	}
}

// hostedTransformers is the fixed apply order of the hosted pass.
func (c *Composer) hostedTransformers(doc *Document) []addons.Transformer {
	return []addons.Transformer{
		addons.AIOLists{API: c.remotes.AIOLists, Base: doc.AIOListsConfig, KidsBase: doc.AIOListsKidsConfig},
		addons.AIOMetadata{API: c.remotes.AIOMetadata, Base: doc.AIOMetadataConfig},
		addons.AIOStreams{API: c.remotes.AIOStreams},
		addons.MediaFusion{API: c.remotes.MediaFusion, Base: doc.MediaFusionConfig},
		addons.StremThruStore{API: c.remotes.StremThru},
	}
}

// isInstallable enforces the finalize invariants: a transport URL that
// still looks like a manifest URL, and a non-empty display name when a
// manifest is attached.
func isInstallable(addon stremio.Addon) bool {
	if addon.TransportURL == "" || !strings.HasSuffix(addon.TransportURL, "/manifest.json") {
		return false
	}
	if addon.Manifest != nil && addon.Manifest.Name == "" {
		return false
	}
	return true
}
