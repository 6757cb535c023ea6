package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vbilous/signalbot/internal/core/domain"
	"github.com/vbilous/signalbot/internal/core/ports"
)

// MockKeyRepo implements ports.KeyRepository for testing.
type MockKeyRepo struct {
	mock.Mock
}

func (m *MockKeyRepo) CreateKey(ctx context.Context, key *domain.AccessKey) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockKeyRepo) GetKeyByValue(ctx context.Context, value string) (*domain.AccessKey, error) {
	args := m.Called(value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessKey), args.Error(1)
}

func (m *MockKeyRepo) GetKeyByID(ctx context.Context, id string) (*domain.AccessKey, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessKey), args.Error(1)
}

func (m *MockKeyRepo) ClaimKey(ctx context.Context, id string, telegramID int64) (domain.ClaimOutcome, error) {
	args := m.Called(id, telegramID)
	return args.Get(0).(domain.ClaimOutcome), args.Error(1)
}

func (m *MockKeyRepo) DeactivateKey(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockKeyRepo) ListKeys(ctx context.Context) ([]domain.AccessKey, error) {
	args := m.Called()
	return args.Get(0).([]domain.AccessKey), args.Error(1)
}

func (m *MockKeyRepo) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

// MockUserRepo implements ports.UserRepository for testing.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetOrCreateUser(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) BindKey(ctx context.Context, telegramID int64, keyID string) error {
	args := m.Called(telegramID, keyID)
	return args.Error(0)
}

func (m *MockUserRepo) UnbindKey(ctx context.Context, telegramID int64) error {
	args := m.Called(telegramID)
	return args.Error(0)
}

func (m *MockUserRepo) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	args := m.Called(telegramID, lang)
	return args.Error(0)
}

func (m *MockUserRepo) ApplyUsage(ctx context.Context, telegramID int64, decide domain.UsageFunc) (domain.UsageDecision, error) {
	args := m.Called(telegramID, decide)
	return args.Get(0).(domain.UsageDecision), args.Error(1)
}

// MockAccessService implements ports.AccessService for transport tests.
type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) Authorize(ctx context.Context, telegramID int64) (domain.AccessResult, error) {
	args := m.Called(telegramID)
	return args.Get(0).(domain.AccessResult), args.Error(1)
}

func (m *MockAccessService) Claim(ctx context.Context, telegramID int64, value string) (ports.ClaimResult, error) {
	args := m.Called(telegramID, value)
	return args.Get(0).(ports.ClaimResult), args.Error(1)
}

func (m *MockAccessService) IssueKey(ctx context.Context, adminID int64, d domain.KeyDuration) (*ports.IssuedKey, error) {
	args := m.Called(adminID, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.IssuedKey), args.Error(1)
}

func (m *MockAccessService) SubscriptionInfo(ctx context.Context, telegramID int64) (*ports.Subscription, error) {
	args := m.Called(telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Subscription), args.Error(1)
}

func (m *MockAccessService) Profile(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAccessService) SetLanguage(ctx context.Context, telegramID int64, lang string) error {
	args := m.Called(telegramID, lang)
	return args.Error(0)
}

func (m *MockAccessService) HealthCheck(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}
