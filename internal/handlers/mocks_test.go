package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/stwalsh4118/valuator/api/internal/enrichment"
	"github.com/stwalsh4118/valuator/api/internal/models"
	"github.com/stwalsh4118/valuator/api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockIntakeService is a mock implementation of services.IntakeService for testing
type MockIntakeService struct {
	mock.Mock
}

func (m *MockIntakeService) Start(ctx context.Context, identity models.Identity) (*services.StartResult, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.StartResult), args.Error(1)
}

func (m *MockIntakeService) Enrich(ctx context.Context, fileNumber string) (*services.EnrichResult, error) {
	args := m.Called(ctx, fileNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EnrichResult), args.Error(1)
}

func (m *MockIntakeService) EnrichComparable(ctx context.Context, fileNumber string, compIndex int, addr enrichment.Address) (*services.EnrichResult, error) {
	args := m.Called(ctx, fileNumber, compIndex, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EnrichResult), args.Error(1)
}

func (m *MockIntakeService) Complete(ctx context.Context, fileNumber string, sub models.FullSubmission) error {
	return m.Called(ctx, fileNumber, sub).Error(0)
}

func (m *MockIntakeService) CheckFileNumber(ctx context.Context, fileNumber string) (bool, error) {
	args := m.Called(ctx, fileNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockIntakeService) GetRecord(ctx context.Context, fileNumber string) (*models.PropertyRecord, error) {
	args := m.Called(ctx, fileNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyRecord), args.Error(1)
}

func (m *MockIntakeService) GetSubject(ctx context.Context, fileNumber string) (*models.SubjectView, error) {
	args := m.Called(ctx, fileNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubjectView), args.Error(1)
}

func (m *MockIntakeService) GetComparable(ctx context.Context, fileNumber string, compIndex int, filter models.CompFilter) (*models.CompView, error) {
	args := m.Called(ctx, fileNumber, compIndex, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompView), args.Error(1)
}

func (m *MockIntakeService) Geocode(ctx context.Context, address string) (*enrichment.LatLng, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrichment.LatLng), args.Error(1)
}

func (m *MockIntakeService) Dashboard(ctx context.Context) ([]models.RecordSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecordSummary), args.Error(1)
}

// MockAuthService is a mock implementation of services.AuthService for testing
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Validate(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func strPtr(s string) *string { return &s }
