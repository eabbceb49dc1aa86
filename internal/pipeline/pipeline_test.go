package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Moirius/La-Station-Prospection/internal/config"
	"github.com/Moirius/La-Station-Prospection/internal/discovery"
	"github.com/Moirius/La-Station-Prospection/internal/model"
	"github.com/Moirius/La-Station-Prospection/internal/store"
)

func newTestPipeline(t *testing.T, ai *mockAI, web *mockWeb, capc *mockCapture) (*Pipeline, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	ex := NewExtractor(ai, testAnthropicConfig(), zap.NewNop())
	return New(st, web, capc, ex, config.PipelineConfig{}, zap.NewNop()), st
}

func noSession(capc *mockCapture) {
	capc.On("AcquireSession", mock.Anything).Return(nil, assert.AnError)
}

func TestDiscoverAndEnrich_DiscoveryFailure(t *testing.T) {
	p, _ := newTestPipeline(t, &mockAI{}, &mockWeb{}, &mockCapture{})

	searcher := &mockSearcher{}
	searcher.On("Search", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	summary := p.DiscoverAndEnrich(context.Background(), searcher, discovery.Request{Location: "Nulle Part"})
	assert.False(t, summary.Success)
	assert.NotEmpty(t, summary.Message)
	assert.Equal(t, 0, summary.LeadsProcessed)
}

func TestDiscoverAndEnrich_NoCandidates(t *testing.T) {
	p, _ := newTestPipeline(t, &mockAI{}, &mockWeb{}, &mockCapture{})

	searcher := &mockSearcher{}
	searcher.On("Search", mock.Anything, mock.Anything).Return([]model.BusinessCandidate{}, nil)

	summary := p.DiscoverAndEnrich(context.Background(), searcher, discovery.Request{Location: "Rennes"})
	assert.True(t, summary.Success)
	assert.Equal(t, "no new businesses found", summary.Message)
}

func TestEnrich_CreatesAndScoresLead(t *testing.T) {
	capc := &mockCapture{}
	noSession(capc)
	p, st := newTestPipeline(t, &mockAI{}, &mockWeb{}, capc)

	rating := 4.6
	reviews := 87
	summary := p.Enrich(context.Background(), []model.BusinessCandidate{{
		Name:        "Chez Marcel",
		Category:    "restaurant",
		Address:     "1 rue du Four, Rennes",
		Phone:       "02 99 00 00 00",
		Rating:      &rating,
		ReviewCount: &reviews,
	}})

	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.LeadsProcessed)
	assert.Equal(t, 1, summary.LeadsCreated)
	assert.Equal(t, 0, summary.LeadsUpdated)

	lead, err := st.GetLeadByName(context.Background(), "chez marcel")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, model.StatusSuccess, lead.ScrapeStatus)
	assert.Equal(t, model.StatusPending, lead.AIStatus)
	require.NotNil(t, lead.OpportunityScore)
	require.NotNil(t, lead.PropensityScore)
	assert.Greater(t, *lead.OpportunityScore, 0.0)
	assert.True(t, lead.HasPhone)
	assert.Contains(t, lead.ScrapeLog, "enrichment complete")
}

func TestEnrich_UpdateNeverOverwrites(t *testing.T) {
	capc := &mockCapture{}
	noSession(capc)
	p, st := newTestPipeline(t, &mockAI{}, &mockWeb{}, capc)
	ctx := context.Background()

	existing := &model.Lead{
		Name:    "Chez Marcel",
		Address: "1 rue du Four, Rennes",
		Phone:   "02 99 00 00 00",
	}
	require.NoError(t, st.CreateLead(ctx, existing))

	summary := p.Enrich(ctx, []model.BusinessCandidate{{
		Name:     "CHEZ MARCEL",
		Category: "restaurant",
		Address:  "une autre adresse",
		Phone:    "09 00 00 00 00",
	}})

	assert.Equal(t, 1, summary.LeadsProcessed)
	assert.Equal(t, 0, summary.LeadsCreated)
	assert.Equal(t, 1, summary.LeadsUpdated)

	lead, err := st.GetLead(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "02 99 00 00 00", lead.Phone, "populated field must be preserved")
	assert.Equal(t, "1 rue du Four, Rennes", lead.Address)
	assert.Equal(t, "restaurant", lead.Category, "blank category gets backfilled")
	assert.Equal(t, model.StatusSuccess, lead.ScrapeStatus)
}

func TestEnrich_UpdateFillsBlankFields(t *testing.T) {
	capc := &mockCapture{}
	noSession(capc)

	web := &mockWeb{}
	web.On("Fetch", mock.Anything, "https://marcel.fr").Return("", assert.AnError)

	p, st := newTestPipeline(t, &mockAI{}, web, capc)
	ctx := context.Background()

	// A bare lead from an earlier pass: name only.
	existing := &model.Lead{Name: "Chez Marcel"}
	require.NoError(t, st.CreateLead(ctx, existing))

	rating := 4.6
	reviews := 87
	lat, lng := 48.1113, -1.6800
	summary := p.Enrich(ctx, []model.BusinessCandidate{{
		Name:          "chez marcel",
		Category:      "restaurant",
		Address:       "1 rue du Four, Rennes",
		Phone:         "02 99 00 00 00",
		Website:       "https://marcel.fr",
		GoogleMapsURL: "https://maps.google.com/?cid=42",
		Rating:        &rating,
		ReviewCount:   &reviews,
		Latitude:      &lat,
		Longitude:     &lng,
		OpeningHours:  []string{"Monday: Closed"},
	}})

	assert.Equal(t, 0, summary.LeadsCreated)
	assert.Equal(t, 1, summary.LeadsUpdated)

	lead, err := st.GetLead(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "restaurant", lead.Category)
	assert.Equal(t, "1 rue du Four, Rennes", lead.Address)
	assert.Equal(t, "02 99 00 00 00", lead.Phone)
	assert.Equal(t, "https://marcel.fr", lead.Website, "filled website feeds the scrape stage")
	assert.Equal(t, "https://maps.google.com/?cid=42", lead.GoogleMapsURL)
	require.NotNil(t, lead.Rating)
	assert.Equal(t, 4.6, *lead.Rating)
	require.NotNil(t, lead.ReviewCount)
	assert.Equal(t, 87, *lead.ReviewCount)
	require.NotNil(t, lead.Latitude)
	assert.Equal(t, 48.1113, *lead.Latitude)
	assert.Equal(t, []string{"Monday: Closed"}, lead.OpeningHours)
	assert.True(t, lead.HasPhone)
	web.AssertExpectations(t)
}

func TestEnrich_NamelessCandidateFailsAlone(t *testing.T) {
	capc := &mockCapture{}
	noSession(capc)
	p, st := newTestPipeline(t, &mockAI{}, &mockWeb{}, capc)

	summary := p.Enrich(context.Background(), []model.BusinessCandidate{
		{Name: "   "},
		{Name: "Bar du Marché"},
	})

	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.LeadsProcessed)
	assert.Equal(t, 1, summary.LeadsCreated)
	assert.Contains(t, summary.Message, "1 failed")

	lead, err := st.GetLeadByName(context.Background(), "Bar du Marché")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, model.StatusSuccess, lead.ScrapeStatus)
}

func TestEnrich_WebsiteExtractionFallsBack(t *testing.T) {
	ai := &mockAI{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	web := &mockWeb{}
	web.On("Fetch", mock.Anything, "https://marcel.fr").Return(`<html><body>
		<form action="/contact"><input name="email"></form>
		contact@marcel.fr
		<a href="https://www.facebook.com/chezmarcel">suivez-nous</a>
	</body></html>`, nil)

	capc := &mockCapture{}
	noSession(capc)
	p, st := newTestPipeline(t, ai, web, capc)

	summary := p.Enrich(context.Background(), []model.BusinessCandidate{{
		Name:    "Chez Marcel",
		Website: "https://marcel.fr",
	}})
	assert.Equal(t, 1, summary.LeadsCreated)

	lead, err := st.GetLeadByName(context.Background(), "Chez Marcel")
	require.NoError(t, err)
	require.NotNil(t, lead)

	// The model failure degrades extraction but never fails the lead.
	assert.Equal(t, model.StatusSuccess, lead.ScrapeStatus)
	require.NotNil(t, lead.SiteAnalysis)
	assert.NotEmpty(t, lead.SiteAnalysis.Error)
	assert.Contains(t, lead.AILog, "degraded")

	assert.Equal(t, "contact@marcel.fr", lead.Email)
	assert.Equal(t, []string{"contact@marcel.fr"}, lead.SiteEmails)
	assert.Equal(t, "https://www.facebook.com/chezmarcel", lead.FacebookURL)
	assert.True(t, lead.HasContactForm)
	assert.True(t, lead.SocialDetected)
}

func TestEnrich_SocialProfileWebsite(t *testing.T) {
	pngPath := filepath.Join(t.TempDir(), "facebook_lead_x.png")
	require.NoError(t, os.WriteFile(pngPath, []byte("not-a-real-png"), 0o644))

	ai := &mockAI{}
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{
			"followers": "1.2K",
			"likes": "Non visible",
			"intro": "Bar à cocktails du centre-ville",
			"contact_info": {"phone": "Non visible", "email": "marcel@facebook-page.fr"}
		}`), nil)

	sess := &mockSession{}
	sess.On("Capture", mock.Anything, "https://www.facebook.com/chezmarcel", mock.Anything, "facebook").
		Return(pngPath, nil)
	sess.On("Close").Return(nil)

	capc := &mockCapture{}
	capc.On("AcquireSession", mock.Anything).Return(sess, nil)

	p, st := newTestPipeline(t, ai, &mockWeb{}, capc)

	summary := p.Enrich(context.Background(), []model.BusinessCandidate{{
		Name:    "Chez Marcel",
		Website: "https://www.facebook.com/chezmarcel",
	}})
	assert.Equal(t, 1, summary.LeadsCreated)

	lead, err := st.GetLeadByName(context.Background(), "Chez Marcel")
	require.NoError(t, err)
	require.NotNil(t, lead)

	assert.Equal(t, "https://www.facebook.com/chezmarcel", lead.FacebookURL)
	assert.Equal(t, model.StatusSuccess, lead.AIStatus)
	assert.Equal(t, pngPath, lead.FacebookScreenshot)

	require.NotNil(t, lead.FacebookFollowers)
	assert.Equal(t, 1200, *lead.FacebookFollowers)
	assert.Nil(t, lead.FacebookLikes, "not-visible value stays unset")
	assert.Equal(t, "Bar à cocktails du centre-ville", lead.FacebookIntro)
	assert.Equal(t, "marcel@facebook-page.fr", lead.FacebookEmail)
	assert.Empty(t, lead.FacebookPhone)
	assert.True(t, lead.HasFacebook)

	sess.AssertExpectations(t)
	capc.AssertExpectations(t)
}

func TestEnrich_CaptureFailureMarksAIError(t *testing.T) {
	sess := &mockSession{}
	sess.On("Capture", mock.Anything, mock.Anything, mock.Anything, "facebook").
		Return("", assert.AnError)
	sess.On("Close").Return(nil)

	capc := &mockCapture{}
	capc.On("AcquireSession", mock.Anything).Return(sess, nil)

	p, st := newTestPipeline(t, &mockAI{}, &mockWeb{}, capc)

	p.Enrich(context.Background(), []model.BusinessCandidate{{
		Name:    "Chez Marcel",
		Website: "https://www.facebook.com/chezmarcel",
	}})

	lead, err := st.GetLeadByName(context.Background(), "Chez Marcel")
	require.NoError(t, err)
	require.NotNil(t, lead)

	// Capture failure degrades the AI phase, not the overall lead.
	assert.Equal(t, model.StatusError, lead.AIStatus)
	assert.Equal(t, model.StatusSuccess, lead.ScrapeStatus)
	assert.Contains(t, lead.ScrapeLog, "facebook capture failed")
}
