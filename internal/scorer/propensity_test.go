package scorer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Moirius/La-Station-Prospection/internal/model"
)

func TestPropensity_EmptyLead(t *testing.T) {
	score, rationale := Propensity(&model.Lead{})
	assert.Equal(t, 0.0, score)
	assert.Equal(t, "limited data", rationale)
}

func TestPropensity_ContactChannels(t *testing.T) {
	lead := &model.Lead{
		Email:   "a@b.fr",
		Phone:   "02 99 00 00 00",
		Address: "1 rue du Four",
	}
	score, rationale := Propensity(lead)
	assert.Equal(t, 25.0, score)
	assert.Equal(t, "email available | phone available | address available", rationale)
}

func TestPropensity_FullSignals(t *testing.T) {
	lead := &model.Lead{
		Email:             "a@b.fr",                          // 10
		Phone:             "02 99 00 00 00",                  // 10
		Address:           "1 rue du Four",                   // 5
		FacebookURL:       "https://facebook.com/x",          // 8
		InstagramURL:      "https://instagram.com/x",         // 8
		Rating:            fptr(4.5),                         // 15
		ReviewCount:       iptr(42),                          // 10
		FacebookFollowers: iptr(2000),                        // stats: 5
		InstagramFollowers: iptr(350),                        // audience: 8
		SiteAnalysis: &model.WebsiteExtraction{
			Contact: model.ContactInfo{
				Emails: []string{"contact@b.fr"}, // 5
				Phones: []string{"02 99 11 11 11"}, // 5
			},
			Company: model.CompanyInfo{Description: "Bistro"}, // 3
		},
	}
	score, rationale := Propensity(lead)
	assert.Equal(t, 92.0, score)
	assert.Contains(t, rationale, "strong rating (4.5)")
	assert.Contains(t, rationale, "Instagram audience (350 followers)")

	// Rationale follows evaluation order.
	parts := strings.Split(rationale, " | ")
	assert.Equal(t, "email available", parts[0])
	assert.Len(t, parts, 12)
}

func TestPropensity_RatingThreshold(t *testing.T) {
	score, _ := Propensity(&model.Lead{Rating: fptr(3.9)})
	assert.Equal(t, 0.0, score)

	score, _ = Propensity(&model.Lead{Rating: fptr(4.0)})
	assert.Equal(t, 15.0, score)
}

func TestPropensity_Idempotent(t *testing.T) {
	lead := &model.Lead{Email: "a@b.fr", Rating: fptr(4.4)}
	s1, r1 := Propensity(lead)
	s2, r2 := Propensity(lead)
	assert.Equal(t, s1, s2)
	assert.Equal(t, r1, r2)
}
