package scorer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moirius/La-Station-Prospection/internal/model"
	"github.com/Moirius/La-Station-Prospection/internal/store"
)

func TestRecomputeAll(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(ctx))

	// Unscored lead: gets scored.
	fresh := &model.Lead{Name: "Chez Marcel", Category: "restaurant", Rating: fptr(4.5)}
	require.NoError(t, st.CreateLead(ctx, fresh))

	// Already-correct lead: left unchanged.
	settled := &model.Lead{Name: "Spa Zen", Category: "spa"}
	opp := Opportunity(settled)
	prop, rationale := Propensity(settled)
	settled.OpportunityScore = &opp
	settled.PropensityScore = &prop
	settled.PropensityRationale = rationale
	require.NoError(t, st.CreateLead(ctx, settled))
	require.NoError(t, st.SaveLead(ctx, settled))

	summary := RecomputeAll(ctx, st)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Unchanged)
	assert.Equal(t, 0, summary.Errors)

	got, err := st.GetLead(ctx, fresh.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OpportunityScore)
	assert.Equal(t, Opportunity(got), *got.OpportunityScore)
	require.NotNil(t, got.PropensityScore)
	assert.NotEmpty(t, got.PropensityRationale)
}

func TestRecomputeAll_Idempotent(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(ctx))

	require.NoError(t, st.CreateLead(ctx, &model.Lead{Name: "A", Category: "bar"}))

	first := RecomputeAll(ctx, st)
	assert.Equal(t, 1, first.Updated)

	second := RecomputeAll(ctx, st)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 1, second.Unchanged)
}
