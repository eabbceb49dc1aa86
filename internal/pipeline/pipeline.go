// Package pipeline runs the per-lead enrichment state machine: maps fields,
// website scrape and extraction, social capture and vision analysis, scoring.
// Leads are processed strictly one at a time with a politeness delay; the
// upstream APIs and the browser session are all rate- or session-limited.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Moirius/La-Station-Prospection/internal/config"
	"github.com/Moirius/La-Station-Prospection/internal/discovery"
	"github.com/Moirius/La-Station-Prospection/internal/model"
	"github.com/Moirius/La-Station-Prospection/internal/scorer"
	"github.com/Moirius/La-Station-Prospection/internal/store"
	"github.com/Moirius/La-Station-Prospection/pkg/capture"
	"github.com/Moirius/La-Station-Prospection/pkg/webfetch"
)

// RunSummary reports the outcome of one pipeline run.
type RunSummary struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	LeadsProcessed int    `json:"leads_processed"`
	LeadsCreated   int    `json:"leads_created"`
	LeadsUpdated   int    `json:"leads_updated"`
}

// Searcher finds business candidates for a discovery request.
type Searcher interface {
	Search(ctx context.Context, req discovery.Request) ([]model.BusinessCandidate, error)
}

// Pipeline enriches discovered business candidates into stored leads.
type Pipeline struct {
	store     store.Store
	web       webfetch.Client
	capture   capture.Client
	extractor *Extractor
	cfg       config.PipelineConfig
	log       *zap.Logger
}

// New creates a pipeline. A nil logger falls back to the global.
func New(st store.Store, web webfetch.Client, capc capture.Client, ex *Extractor, cfg config.PipelineConfig, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.L()
	}
	return &Pipeline{store: st, web: web, capture: capc, extractor: ex, cfg: cfg, log: log}
}

// DiscoverAndEnrich runs discovery then enriches every candidate found.
// A discovery failure is reported in the summary, never panicked.
func (p *Pipeline) DiscoverAndEnrich(ctx context.Context, engine Searcher, req discovery.Request) *RunSummary {
	candidates, err := engine.Search(ctx, req)
	if err != nil {
		p.log.Error("discovery failed",
			zap.String("location", req.Location),
			zap.Error(err),
		)
		return &RunSummary{Success: false, Message: eris.ToString(err, false)}
	}
	if len(candidates) == 0 {
		return &RunSummary{Success: true, Message: "no new businesses found"}
	}
	return p.Enrich(ctx, candidates)
}

// Enrich processes candidates sequentially with a fixed delay between leads.
// One browser session is acquired for the whole batch and released after; when
// none is available the social stage is skipped, the rest still runs. A
// failing lead never aborts the batch.
func (p *Pipeline) Enrich(ctx context.Context, candidates []model.BusinessCandidate) *RunSummary {
	summary := &RunSummary{Success: true}
	if len(candidates) == 0 {
		summary.Message = "no candidates to process"
		return summary
	}

	sess, err := p.capture.AcquireSession(ctx)
	if err != nil {
		p.log.Warn("capture session unavailable, skipping social captures", zap.Error(err))
		sess = nil
	} else {
		defer func() {
			if err := sess.Close(); err != nil {
				p.log.Warn("capture session close failed", zap.Error(err))
			}
		}()
	}

	failed := 0
	for i, c := range candidates {
		created, err := p.processCandidate(ctx, sess, c)
		summary.LeadsProcessed++
		switch {
		case err != nil:
			failed++
			p.log.Warn("lead processing failed",
				zap.String("name", c.Name),
				zap.Error(err),
			)
		case created:
			summary.LeadsCreated++
		default:
			summary.LeadsUpdated++
		}

		if i < len(candidates)-1 {
			sleepCtx(ctx, time.Duration(p.cfg.LeadDelaySecs)*time.Second)
		}
	}

	summary.Message = fmt.Sprintf("processed %d leads (%d created, %d updated, %d failed)",
		summary.LeadsProcessed, summary.LeadsCreated, summary.LeadsUpdated, failed)
	p.log.Info("enrichment batch complete",
		zap.Int("processed", summary.LeadsProcessed),
		zap.Int("created", summary.LeadsCreated),
		zap.Int("updated", summary.LeadsUpdated),
		zap.Int("failed", failed),
	)
	return summary
}

// processCandidate runs the state machine for one candidate. An error marks
// this lead only; the stored record carries status error and the cause in its
// audit log.
func (p *Pipeline) processCandidate(ctx context.Context, sess capture.Session, c model.BusinessCandidate) (created bool, err error) {
	if strings.TrimSpace(c.Name) == "" {
		return false, eris.New("pipeline: candidate has no name")
	}

	lead, err := p.store.GetLeadByName(ctx, c.Name)
	if err != nil {
		return false, eris.Wrapf(err, "pipeline: lookup lead %s", c.Name)
	}

	if lead == nil {
		lead = newLeadFromCandidate(c)
		if err := p.store.CreateLead(ctx, lead); err != nil {
			return false, eris.Wrapf(err, "pipeline: create lead %s", c.Name)
		}
		created = true
	} else {
		fillFromCandidate(lead, c)
	}

	if err := p.enrichLead(ctx, sess, lead); err != nil {
		lead.ScrapeStatus = model.StatusError
		lead.AppendLog("error: " + eris.ToString(err, false))
		if saveErr := p.store.SaveLead(ctx, lead); saveErr != nil {
			p.log.Warn("failed to persist lead error state",
				zap.String("lead_id", lead.ID),
				zap.Error(saveErr),
			)
		}
		return created, err
	}
	return created, nil
}

func (p *Pipeline) enrichLead(ctx context.Context, sess capture.Session, lead *model.Lead) error {
	lead.ScrapeStatus = model.StatusInProgress
	lead.AppendLog("enrichment started")
	if err := p.store.SaveLead(ctx, lead); err != nil {
		return eris.Wrap(err, "pipeline: checkpoint after maps fields")
	}

	if lead.Website != "" {
		if platform := SocialPlatform(lead.Website); platform != "" {
			// The maps "website" is actually a social profile.
			switch platform {
			case "facebook":
				if lead.FacebookURL == "" {
					lead.FacebookURL = lead.Website
				}
			case "instagram":
				if lead.InstagramURL == "" {
					lead.InstagramURL = lead.Website
				}
			}
			lead.AppendLog("website is a " + platform + " profile")
		} else {
			p.scrapeWebsite(ctx, lead)
		}
	}

	p.scrapeSocial(ctx, sess, lead)
	if err := p.store.SaveLead(ctx, lead); err != nil {
		return eris.Wrap(err, "pipeline: checkpoint after social stage")
	}

	lead.ScrapeStatus = model.StatusSuccess
	lead.AppendLog("enrichment complete")
	lead.RefreshInfoFlags()

	// Scoring is best-effort and never flips the lead to error.
	opp := scorer.Opportunity(lead)
	prop, rationale := scorer.Propensity(lead)
	lead.OpportunityScore = &opp
	lead.PropensityScore = &prop
	lead.PropensityRationale = rationale
	lead.AppendAILog(fmt.Sprintf("scores computed: opportunity %.1f, propensity %.1f", opp, prop))

	if err := p.store.SaveLead(ctx, lead); err != nil {
		return eris.Wrap(err, "pipeline: final save")
	}
	p.log.Info("lead enriched",
		zap.String("lead_id", lead.ID),
		zap.String("name", lead.Name),
		zap.Float64("opportunity", opp),
		zap.Float64("propensity", prop),
	)
	return nil
}

// scrapeWebsite fetches and extracts the lead's website. Every failure here
// is logged on the lead and swallowed: a dead website must not fail the lead.
func (p *Pipeline) scrapeWebsite(ctx context.Context, lead *model.Lead) {
	content, err := p.web.Fetch(ctx, lead.Website)
	if err != nil {
		p.log.Warn("website fetch failed",
			zap.String("lead_id", lead.ID),
			zap.String("url", lead.Website),
			zap.Error(err),
		)
		lead.AppendLog(fmt.Sprintf("website fetch failed: %v", err))
		return
	}

	lead.HasContactForm = detectContactForm(content)

	ex := p.extractor.ExtractWebsite(ctx, lead.Website, content)
	mergeWebsiteExtraction(lead, ex.Result)
	if ex.Source == model.ExtractionSourceFallback {
		lead.AppendAILog("website extraction degraded: " + ex.Reason)
	} else {
		lead.AppendAILog("website extraction done")
	}
	lead.AppendLog("website scraped: " + lead.Website)
}

// fillFromCandidate folds a fresh search result into an existing lead.
// Populated maps-sourced fields are preserved; only blank ones are filled.
func fillFromCandidate(lead *model.Lead, c model.BusinessCandidate) {
	if lead.Category == "" {
		lead.Category = c.Category
	}
	if lead.Address == "" {
		lead.Address = c.Address
	}
	if lead.Phone == "" {
		lead.Phone = c.Phone
	}
	if lead.Website == "" {
		lead.Website = c.Website
	}
	if lead.GoogleMapsURL == "" {
		lead.GoogleMapsURL = c.GoogleMapsURL
	}
	if lead.Rating == nil {
		lead.Rating = c.Rating
	}
	if lead.ReviewCount == nil {
		lead.ReviewCount = c.ReviewCount
	}
	if lead.PriceLevel == nil {
		lead.PriceLevel = c.PriceLevel
	}
	if lead.Latitude == nil {
		lead.Latitude = c.Latitude
	}
	if lead.Longitude == nil {
		lead.Longitude = c.Longitude
	}
	if len(lead.OpeningHours) == 0 {
		lead.OpeningHours = c.OpeningHours
	}
	if len(lead.Reviews) == 0 {
		lead.Reviews = c.Reviews
	}
}

func newLeadFromCandidate(c model.BusinessCandidate) *model.Lead {
	return &model.Lead{
		Name:          c.Name,
		Category:      c.Category,
		Address:       c.Address,
		Phone:         c.Phone,
		Website:       c.Website,
		GoogleMapsURL: c.GoogleMapsURL,
		Rating:        c.Rating,
		ReviewCount:   c.ReviewCount,
		PriceLevel:    c.PriceLevel,
		Latitude:      c.Latitude,
		Longitude:     c.Longitude,
		OpeningHours:  c.OpeningHours,
		Reviews:       c.Reviews,
	}
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
