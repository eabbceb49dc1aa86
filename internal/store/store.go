package store

import (
	"context"

	"github.com/Moirius/La-Station-Prospection/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Status   model.Status `json:"status,omitempty"`
	Category string       `json:"category,omitempty"`
	MinScore *float64     `json:"min_score,omitempty"`
	Limit    int          `json:"limit,omitempty"`
	Offset   int          `json:"offset,omitempty"`
}

// Store defines the persistence interface for the prospection pipeline.
// Lead names are unique per store, compared case-insensitively.
type Store interface {
	// Leads
	CreateLead(ctx context.Context, lead *model.Lead) error
	SaveLead(ctx context.Context, lead *model.Lead) error
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	// GetLeadByName looks a lead up by its case-insensitive name key and
	// returns nil when no lead matches.
	GetLeadByName(ctx context.Context, name string) (*model.Lead, error)
	// ExistingNames returns the set of lowercased lead names already stored,
	// used by discovery for cross-run deduplication.
	ExistingNames(ctx context.Context) (map[string]struct{}, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
