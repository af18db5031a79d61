package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/stwalsh4118/valuator/api/internal/enrichment"
	"github.com/stwalsh4118/valuator/api/internal/models"
)

// MockPropertyRepository is a mock implementation of PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, identity models.Identity) (int64, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPropertyRepository) Exists(ctx context.Context, fileNumber string) (bool, error) {
	args := m.Called(ctx, fileNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPropertyRepository) FindByFileNumber(ctx context.Context, fileNumber string) (*models.PropertyRecord, error) {
	args := m.Called(ctx, fileNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyRecord), args.Error(1)
}

func (m *MockPropertyRepository) UpdateEnrichment(ctx context.Context, fileNumber string, e models.Enrichment) error {
	return m.Called(ctx, fileNumber, e).Error(0)
}

func (m *MockPropertyRepository) UpdateComparableEnrichment(ctx context.Context, fileNumber string, compIndex int, e models.Enrichment) error {
	return m.Called(ctx, fileNumber, compIndex, e).Error(0)
}

func (m *MockPropertyRepository) UpsertFull(ctx context.Context, fileNumber string, sub models.FullSubmission) error {
	return m.Called(ctx, fileNumber, sub).Error(0)
}

func (m *MockPropertyRepository) ReadSubjectProjection(ctx context.Context, fileNumber string) (*models.SubjectView, error) {
	args := m.Called(ctx, fileNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubjectView), args.Error(1)
}

func (m *MockPropertyRepository) ReadCompProjection(ctx context.Context, fileNumber string, compIndex int, filter models.CompFilter) (*models.CompView, error) {
	args := m.Called(ctx, fileNumber, compIndex, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompView), args.Error(1)
}

func (m *MockPropertyRepository) ListRecent(ctx context.Context, limit int) ([]models.RecordSummary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecordSummary), args.Error(1)
}

// MockGeocoder is a mock implementation of enrichment.Geocoder
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (*enrichment.LatLng, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrichment.LatLng), args.Error(1)
}

// MockPropertyLookup is a mock implementation of enrichment.PropertyLookup
type MockPropertyLookup struct {
	mock.Mock
}

func (m *MockPropertyLookup) LookupProperty(ctx context.Context, addr enrichment.Address) (*enrichment.PropertyDetails, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrichment.PropertyDetails), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	args := m.Called(ctx, username, passwordHash)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }
