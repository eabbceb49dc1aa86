// Package scorer computes heuristic lead scores from collected data. Scoring
// is pure: the same lead always yields the same scores.
package scorer

import (
	"math"
	"strings"

	"github.com/Moirius/La-Station-Prospection/internal/model"
)

// highValueCategories are business types that benefit most from video content
// and therefore score highest.
var highValueCategories = []string{
	"restaurant", "bar", "cafe", "hotel", "spa", "salon",
	"gym", "fitness", "art_gallery", "museum", "theater",
	"event_venue", "wedding_venue", "tourist_attraction",
}

// Opportunity computes the 0-100 opportunity score for a lead. Points
// accumulate per signal group: maps reputation (25 max), website richness
// (20), Facebook presence (25), Instagram presence (20), business type (10).
func Opportunity(lead *model.Lead) float64 {
	score := 0.0

	// Maps reputation.
	if lead.Rating != nil {
		score += (*lead.Rating / 5.0) * 15
	}
	if lead.ReviewCount != nil && *lead.ReviewCount > 0 {
		switch n := *lead.ReviewCount; {
		case n >= 100:
			score += 10
		case n >= 50:
			score += 7
		case n >= 20:
			score += 5
		case n >= 10:
			score += 3
		default:
			score += 1
		}
	}

	// Website richness. Sub-signals only count when a site exists.
	if lead.Website != "" {
		score += 5
		if lead.HasVideo {
			score += 5
		}
		if lead.HasImages {
			score += 3
		}
		if lead.HasContactForm {
			score += 3
		}
		if lead.HasProductsServices {
			score += 2
		}
		if lead.Email != "" {
			score += 2
		}
	}

	// Facebook presence and audience.
	if lead.FacebookURL != "" {
		score += 5
		if lead.FacebookFollowers != nil && *lead.FacebookFollowers > 0 {
			switch n := *lead.FacebookFollowers; {
			case n >= 10000:
				score += 15
			case n >= 5000:
				score += 12
			case n >= 1000:
				score += 10
			case n >= 500:
				score += 7
			case n >= 100:
				score += 5
			default:
				score += 2
			}
		}
		if lead.FacebookDescription != "" {
			score += 3
		}
		if lead.FacebookIntro != "" {
			score += 2
		}
	}

	// Instagram presence and activity.
	if lead.InstagramURL != "" {
		score += 5
		if lead.InstagramFollowers != nil && *lead.InstagramFollowers > 0 {
			switch n := *lead.InstagramFollowers; {
			case n >= 10000:
				score += 10
			case n >= 5000:
				score += 8
			case n >= 1000:
				score += 6
			case n >= 500:
				score += 4
			case n >= 100:
				score += 2
			default:
				score += 1
			}
		}
		if lead.InstagramPosts != nil && *lead.InstagramPosts > 10 {
			score += 3
		}
		if lead.InstagramBio != "" {
			score += 2
		}
	}

	// Business type.
	if lead.Category != "" {
		cat := strings.ToLower(lead.Category)
		switch {
		case matchesAny(cat, highValueCategories):
			score += 10
		case strings.Contains(cat, "retail") || strings.Contains(cat, "store"):
			score += 7
		default:
			score += 3
		}
	}

	return round1(math.Min(score, 100.0))
}

func matchesAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
