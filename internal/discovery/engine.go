// Package discovery finds business candidates via continuous maps searches,
// varying the strategy each round until the target count is reached.
package discovery

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Moirius/La-Station-Prospection/internal/config"
	"github.com/Moirius/La-Station-Prospection/internal/model"
	"github.com/Moirius/La-Station-Prospection/internal/store"
	"github.com/Moirius/La-Station-Prospection/pkg/places"
)

// ErrLocationNotFound is returned when the search location cannot be geocoded.
// Discovery cannot proceed without coordinates.
var ErrLocationNotFound = eris.New("discovery: location not found")

// Request describes one discovery run.
type Request struct {
	Location       string
	Category       string
	TargetCount    int
	Radius         int
	MinRating      float64
	MinReviews     int
	WideSearch     bool
	ExcludeLodging bool
}

// Engine runs continuous candidate searches against the maps API.
type Engine struct {
	places places.Client
	store  store.Store
	cfg    config.DiscoveryConfig
	log    *zap.Logger
}

// NewEngine creates a discovery engine. A nil logger falls back to the global.
func NewEngine(pc places.Client, st store.Store, cfg config.DiscoveryConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.L()
	}
	return &Engine{places: pc, store: st, cfg: cfg, log: log}
}

// Search runs rounds of strategy-varied nearby searches until TargetCount
// unique candidates are collected or the round budget is exhausted. Returned
// candidates are deduplicated within the run and against the store,
// case-insensitively by name.
func (e *Engine) Search(ctx context.Context, req Request) ([]model.BusinessCandidate, error) {
	if req.Radius <= 0 {
		req.Radius = e.cfg.DefaultRadius
	}

	loc, err := e.places.Geocode(ctx, req.Location)
	if err != nil {
		return nil, eris.Wrapf(err, "discovery: geocode %s", req.Location)
	}
	if loc == nil {
		return nil, eris.Wrapf(ErrLocationNotFound, "%s", req.Location)
	}
	e.log.Info("location geocoded",
		zap.String("location", req.Location),
		zap.Float64("lat", loc.Lat),
		zap.Float64("lng", loc.Lng),
	)

	strategies := BuildStrategies(req.Category, req.Radius, req.WideSearch)

	var found []model.BusinessCandidate
	seen := make(map[string]struct{})
	duplicates := 0

	for round := 1; round <= e.cfg.MaxRounds && len(found) < req.TargetCount; round++ {
		// Past the end of the strategy list, fall back to the first one.
		strategy := strategies[0]
		if round <= len(strategies) {
			strategy = strategies[round-1]
		}

		e.log.Info("search round",
			zap.Int("round", round),
			zap.Int("max_rounds", e.cfg.MaxRounds),
			zap.Int("found", len(found)),
			zap.Int("target", req.TargetCount),
			zap.String("category", strategy.Category),
			zap.String("keyword", strategy.Keyword),
			zap.Int("radius", strategy.Radius),
		)

		candidates := e.searchWithStrategy(ctx, loc, strategy, req)

		existing := e.existingNames(ctx)
		added := 0
		for _, c := range candidates {
			key := model.NameKey(c.Name)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				duplicates++
				continue
			}
			if _, dup := existing[key]; dup {
				duplicates++
				continue
			}
			if req.ExcludeLodging && hasType(c.Types, "lodging") {
				continue
			}
			seen[key] = struct{}{}
			found = append(found, c)
			added++
		}

		e.log.Info("round complete",
			zap.Int("round", round),
			zap.Int("results", len(candidates)),
			zap.Int("added", added),
			zap.Int("duplicates_total", duplicates),
		)

		if len(found) >= req.TargetCount {
			break
		}
		if round < e.cfg.MaxRounds {
			sleepCtx(ctx, time.Duration(e.cfg.RoundDelaySecs)*time.Second)
		}
	}

	if len(found) > req.TargetCount {
		found = found[:req.TargetCount]
	}
	e.log.Info("search finished",
		zap.Int("found", len(found)),
		zap.Int("target", req.TargetCount),
		zap.Int("duplicates_avoided", duplicates),
	)
	return found, nil
}

// searchWithStrategy pages through one nearby search, filtering by quality and
// enriching each keeper with place details. Page errors end the round early
// with whatever was collected.
func (e *Engine) searchWithStrategy(ctx context.Context, loc *places.LatLng, strategy model.SearchStrategy, req Request) []model.BusinessCandidate {
	var out []model.BusinessCandidate
	pageToken := ""

	for page := 1; page <= e.cfg.MaxPages; page++ {
		resp, err := e.places.NearbySearch(ctx, places.NearbySearchRequest{
			Lat:       loc.Lat,
			Lng:       loc.Lng,
			Radius:    strategy.Radius,
			Category:  strategy.Category,
			Keyword:   strategy.Keyword,
			PageToken: pageToken,
		})
		if err != nil {
			e.log.Warn("search page failed", zap.Int("page", page), zap.Error(err))
			break
		}

		for _, p := range resp.Results {
			if !passesQuality(p, req.MinRating, req.MinReviews) {
				continue
			}
			out = append(out, e.enrich(ctx, p, strategy.Category))
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
		// The next page token takes a moment to activate server-side.
		sleepCtx(ctx, time.Duration(e.cfg.PageDelaySecs)*time.Second)
	}
	return out
}

func passesQuality(p places.Place, minRating float64, minReviews int) bool {
	rating := 0.0
	if p.Rating != nil {
		rating = *p.Rating
	}
	reviews := 0
	if p.UserRatingsTotal != nil {
		reviews = *p.UserRatingsTotal
	}
	return rating >= minRating && reviews >= minReviews
}

// enrich fetches place details for a candidate. Detail failures degrade to
// the basic search-result fields.
func (e *Engine) enrich(ctx context.Context, p places.Place, searchType string) model.BusinessCandidate {
	c := model.BusinessCandidate{
		PlaceID:     p.PlaceID,
		Name:        p.Name,
		Category:    PrimaryType(p.Types, searchType),
		Types:       p.Types,
		Address:     p.Vicinity,
		Rating:      p.Rating,
		ReviewCount: p.UserRatingsTotal,
		PriceLevel:  p.PriceLevel,
	}
	lat, lng := p.Geometry.Location.Lat, p.Geometry.Location.Lng
	c.Latitude, c.Longitude = &lat, &lng

	details, err := e.places.PlaceDetails(ctx, p.PlaceID)
	if err != nil {
		e.log.Warn("place details failed", zap.String("place_id", p.PlaceID), zap.Error(err))
		return c
	}
	if details == nil {
		return c
	}

	c.Phone = details.Phone
	c.Website = details.Website
	c.GoogleMapsURL = details.URL
	c.OpeningHours = details.OpeningHours.WeekdayText
	if details.FormattedAddress != "" {
		c.Address = details.FormattedAddress
	}
	if details.PriceLevel != nil {
		c.PriceLevel = details.PriceLevel
	}
	for i, r := range details.Reviews {
		if i >= 3 {
			break
		}
		c.Reviews = append(c.Reviews, model.Review{Author: r.AuthorName, Rating: r.Rating, Text: r.Text})
	}
	for i, ph := range details.Photos {
		if i >= 3 {
			break
		}
		c.Photos = append(c.Photos, ph.PhotoReference)
	}
	return c
}

// existingNames loads the store's dedup set. A store failure only disables
// historical dedup for the round.
func (e *Engine) existingNames(ctx context.Context) map[string]struct{} {
	names, err := e.store.ExistingNames(ctx)
	if err != nil {
		e.log.Warn("existing names lookup failed", zap.Error(err))
		return nil
	}
	return names
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
