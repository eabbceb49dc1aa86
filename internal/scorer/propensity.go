package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/Moirius/La-Station-Prospection/internal/model"
)

// Propensity computes the 0-100 contact-propensity score: how reachable and
// responsive this lead is likely to be. The returned rationale lists each
// contributing signal in evaluation order, pipe-separated.
func Propensity(lead *model.Lead) (float64, string) {
	score := 0.0
	var reasons []string

	add := func(pts float64, reason string) {
		score += pts
		reasons = append(reasons, reason)
	}

	// Direct contact channels.
	if lead.Email != "" {
		add(10, "email available")
	}
	if lead.Phone != "" {
		add(10, "phone available")
	}
	if lead.Address != "" {
		add(5, "address available")
	}

	// Social reachability.
	if lead.FacebookURL != "" {
		add(8, "Facebook presence")
	}
	if lead.InstagramURL != "" {
		add(8, "Instagram presence")
	}

	// Maps reputation.
	if lead.Rating != nil && *lead.Rating >= 4.0 {
		add(15, fmt.Sprintf("strong rating (%.1f)", *lead.Rating))
	}
	if lead.ReviewCount != nil && *lead.ReviewCount >= 10 {
		add(10, fmt.Sprintf("significant review count (%d)", *lead.ReviewCount))
	}

	// Website extraction results.
	if lead.SiteAnalysis != nil {
		if len(lead.SiteAnalysis.Contact.Emails) > 0 {
			add(5, "emails extracted from site")
		}
		if len(lead.SiteAnalysis.Contact.Phones) > 0 {
			add(5, "phones extracted from site")
		}
		if lead.SiteAnalysis.Company.Description != "" {
			add(3, "company description available")
		}
	}

	// Social stats.
	if lead.FacebookFollowers != nil || lead.FacebookLikes != nil {
		add(5, "Facebook stats available")
	}
	if lead.InstagramFollowers != nil && *lead.InstagramFollowers > 100 {
		add(8, fmt.Sprintf("Instagram audience (%d followers)", *lead.InstagramFollowers))
	}

	rationale := "limited data"
	if len(reasons) > 0 {
		rationale = strings.Join(reasons, " | ")
	}
	return round1(math.Min(score, 100.0)), rationale
}
