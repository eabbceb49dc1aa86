package discovery

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Moirius/La-Station-Prospection/internal/model"
	"github.com/Moirius/La-Station-Prospection/internal/store"
	"github.com/Moirius/La-Station-Prospection/pkg/places"
)

type mockPlaces struct {
	mock.Mock
}

func (m *mockPlaces) Geocode(ctx context.Context, location string) (*places.LatLng, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.LatLng), args.Error(1)
}

func (m *mockPlaces) NearbySearch(ctx context.Context, req places.NearbySearchRequest) (*places.NearbySearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.NearbySearchResponse), args.Error(1)
}

func (m *mockPlaces) PlaceDetails(ctx context.Context, placeID string) (*places.PlaceDetails, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*places.PlaceDetails), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

var _ store.Store = (*mockStore)(nil)

func (m *mockStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *mockStore) SaveLead(ctx context.Context, lead *model.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *mockStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *mockStore) GetLeadByName(ctx context.Context, name string) (*model.Lead, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *mockStore) ExistingNames(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *mockStore) ListLeads(ctx context.Context, filter store.LeadFilter) ([]model.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}
