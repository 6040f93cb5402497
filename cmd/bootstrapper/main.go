package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/api"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/config"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/debrid"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/env"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/preset"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/remote"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/stremio"
	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/web"
)

const version = "v0.1.0"

var rootCmd = &cobra.Command{
	Use:   "bootstrapper",
	Short: "Compose and install curated Stremio addon sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var (
	composePreset   string
	composeLanguage string
	composeExtras   []string
	composeDebrid   []string
	composeNo4K     bool
	composeCached   bool
	composeMaxSize  string
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose one addon set and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		composer, _ := buildComposer(cfg)

		entries, err := parseDebridFlags(composeDebrid)
		if err != nil {
			return err
		}

		res, err := composer.Compose(cmd.Context(), preset.Request{
			Preset:   composePreset,
			Language: composeLanguage,
			Extras:   composeExtras,
			Debrid:   entries,
			No4K:     composeNo4K,
			Cached:   composeCached,
			MaxSize:  composeMaxSize,
			RPDBKey:  cfg.Advanced.RPDBAPIKey,
			TMDBKey:  cfg.Advanced.TMDBAPIKey,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Entries)
	},
}

func init() {
	composeCmd.Flags().StringVarP(&composePreset, "preset", "p", "standard", "Preset bundle to compose")
	composeCmd.Flags().StringVarP(&composeLanguage, "language", "l", "en", "Locale code")
	composeCmd.Flags().StringSliceVar(&composeExtras, "extra", nil, "Extra addon keys to include")
	composeCmd.Flags().StringSliceVar(&composeDebrid, "debrid", nil, "Debrid credentials as service:key")
	composeCmd.Flags().BoolVar(&composeNo4K, "no-4k", false, "Exclude 4K streams")
	composeCmd.Flags().BoolVar(&composeCached, "cached", false, "Only cached debrid streams")
	composeCmd.Flags().StringVar(&composeMaxSize, "max-size", "", "Max stream size in GB")

	rootCmd.AddCommand(serveCmd, composeCmd)
}

// parseDebridFlags turns repeated service:key flags into credential
// entries. Validation happens later in the composer.
func parseDebridFlags(flags []string) ([]debrid.Entry, error) {
	entries := make([]debrid.Entry, 0, len(flags))
	for _, f := range flags {
		service, key, ok := strings.Cut(f, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --debrid value %q, want service:key", f)
		}
		entries = append(entries, debrid.Entry{Service: debrid.Service(service), Key: key})
	}
	return entries, nil
}

func buildComposer(cfg *config.Config) (*preset.Composer, *stremio.Client) {
	timeout := cfg.RequestTimeout()

	documents := remote.NewPresetDocumentClient(cfg.Upstream.PresetsURL, timeout, cfg.DocumentTTL())
	remotes := preset.Remotes{
		AIOLists:    remote.NewAIOListsClient(cfg.Upstream.AIOListsURL, timeout),
		AIOMetadata: remote.NewAIOMetadataClient(cfg.Upstream.AIOMetadataURL, timeout),
		AIOStreams: remote.NewAIOStreamsClient(
			cfg.Upstream.AIOStreamsURL,
			cfg.Upstream.AIOStreamsP2PTemplateURL,
			cfg.Upstream.AIOStreamsDebridTemplateURL,
			timeout,
			cfg.DocumentTTL(),
		),
		MediaFusion: remote.NewMediaFusionClient(cfg.Upstream.MediaFusionURL, timeout),
		StremThru:   remote.NewStremThruClient(timeout),
	}
	account := stremio.NewClient(cfg.Upstream.StremioAPIURL, timeout)

	return preset.NewComposer(documents, remotes, account), account
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	logger.Info("Starting bootstrapper", "version", version)

	composer, account := buildComposer(cfg)
	apiServer := api.NewServer(cfg, composer, account)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiServer.Handler())
	mux.Handle("/metrics", apiServer.Handler())
	mux.Handle("/", web.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Frontend url", "url", cfg.BaseURL)
	logger.Info("Listening", "addr", addr)

	return http.ListenAndServe(addr, mux)
}

func main() {
	// Load environment variables for logger and bootstrap
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	// Initialize Logger early so config loading can use it
	logger.Init(env.LogLevel())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Fatal("Command failed", "err", err)
	}
}
