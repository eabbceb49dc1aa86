package scorer

import (
	"context"

	"go.uber.org/zap"

	"github.com/Moirius/La-Station-Prospection/internal/store"
)

// Summary reports the outcome of a recompute-all pass.
type Summary struct {
	Total     int `json:"total"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Errors    int `json:"errors"`
}

const recomputePageSize = 500

// RecomputeAll rescans every stored lead, recomputes both scores, and saves
// leads whose scores changed. Per-lead failures are counted, never fatal.
func RecomputeAll(ctx context.Context, st store.Store) Summary {
	var summary Summary

	offset := 0
	for {
		leads, err := st.ListLeads(ctx, store.LeadFilter{Limit: recomputePageSize, Offset: offset})
		if err != nil {
			zap.L().Error("scorer: list leads failed", zap.Int("offset", offset), zap.Error(err))
			summary.Errors++
			return summary
		}
		if len(leads) == 0 {
			break
		}

		for i := range leads {
			lead := &leads[i]
			summary.Total++

			opp := Opportunity(lead)
			prop, rationale := Propensity(lead)

			changed := lead.OpportunityScore == nil || *lead.OpportunityScore != opp ||
				lead.PropensityScore == nil || *lead.PropensityScore != prop ||
				lead.PropensityRationale != rationale
			if !changed {
				summary.Unchanged++
				continue
			}

			lead.OpportunityScore = &opp
			lead.PropensityScore = &prop
			lead.PropensityRationale = rationale

			if err := st.SaveLead(ctx, lead); err != nil {
				zap.L().Warn("scorer: save lead failed",
					zap.String("lead_id", lead.ID),
					zap.Error(err),
				)
				summary.Errors++
				continue
			}
			summary.Updated++
		}

		if len(leads) < recomputePageSize {
			break
		}
		offset += recomputePageSize
	}

	zap.L().Info("scorer: recompute complete",
		zap.Int("total", summary.Total),
		zap.Int("updated", summary.Updated),
		zap.Int("unchanged", summary.Unchanged),
		zap.Int("errors", summary.Errors),
	)
	return summary
}
