package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Moirius/La-Station-Prospection/internal/discovery"
	"github.com/Moirius/La-Station-Prospection/internal/pipeline"
	"github.com/Moirius/La-Station-Prospection/internal/store"
	"github.com/Moirius/La-Station-Prospection/pkg/anthropic"
	"github.com/Moirius/La-Station-Prospection/pkg/capture"
	"github.com/Moirius/La-Station-Prospection/pkg/places"
	"github.com/Moirius/La-Station-Prospection/pkg/webfetch"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover and enrich local businesses",
	Long: `Runs continuous maps searches around a location until the target number of
new businesses is found, then enriches each one: website scrape, AI
extraction, social profile capture and analysis, scoring.

Examples:
  # 20 new restaurants around Rennes
  prospect discover --location Rennes --category restaurant --target 20

  # Quality-filtered florists, wider radius
  prospect discover --location "Saint-Malo" --category florist --target 10 \
    --radius 20000 --min-rating 4.0 --min-reviews 10

  # Wide keyword-only sweep, skipping hotels
  prospect discover --location Rennes --category bar --target 30 --wide --exclude-lodging`,
	RunE: runDiscover,
}

func init() {
	f := discoverCmd.Flags()
	f.String("location", "", "city or address to search around (required)")
	f.String("category", "restaurant", "business category to search for")
	f.Int("target", 10, "number of new businesses to find")
	f.Int("radius", 0, "search radius in meters (0=config default)")
	f.Float64("min-rating", 0, "minimum rating filter")
	f.Int("min-reviews", 0, "minimum review count filter")
	f.Bool("wide", false, "keyword-only wide search strategies")
	f.Bool("exclude-lodging", false, "drop candidates tagged as lodging")
	_ = discoverCmd.MarkFlagRequired("location")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Google.Key == "" {
		return eris.New("google maps API key is required (PROSPECT_GOOGLE_KEY)")
	}

	location, _ := cmd.Flags().GetString("location")
	category, _ := cmd.Flags().GetString("category")
	target, _ := cmd.Flags().GetInt("target")
	radius, _ := cmd.Flags().GetInt("radius")
	minRating, _ := cmd.Flags().GetFloat64("min-rating")
	minReviews, _ := cmd.Flags().GetInt("min-reviews")
	wide, _ := cmd.Flags().GetBool("wide")
	excludeLodging, _ := cmd.Flags().GetBool("exclude-lodging")

	if target <= 0 {
		return eris.Errorf("discover: --target must be positive (got %d)", target)
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	pc := places.NewClient(cfg.Google.Key,
		places.WithBaseURL(cfg.Google.BaseURL),
		places.WithRateLimit(cfg.Google.RatePerSecond),
	)
	engine := discovery.NewEngine(pc, st, cfg.Discovery, zap.L())

	summary := initPipeline(st).DiscoverAndEnrich(ctx, engine, discovery.Request{
		Location:       location,
		Category:       category,
		TargetCount:    target,
		Radius:         radius,
		MinRating:      minRating,
		MinReviews:     minReviews,
		WideSearch:     wide,
		ExcludeLodging: excludeLodging,
	})

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return eris.Wrap(err, "discover: marshal summary")
	}
	fmt.Println(string(out))

	if !summary.Success {
		return eris.Errorf("discover: %s", summary.Message)
	}
	return nil
}

func initPipeline(st store.Store) *pipeline.Pipeline {
	web := webfetch.NewClient(
		webfetch.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Webfetch.TimeoutSecs) * time.Second,
		}),
		webfetch.WithMaxBodyBytes(cfg.Webfetch.MaxBodyBytes),
	)
	capc := capture.NewClient(cfg.Capture.BaseURL,
		capture.WithDir(cfg.Capture.Dir),
		capture.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Capture.TimeoutSecs) * time.Second,
		}),
	)
	ex := pipeline.NewExtractor(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic, zap.L())
	return pipeline.New(st, web, capc, ex, cfg.Pipeline, zap.L())
}
