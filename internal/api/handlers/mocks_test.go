package handlers_test

import (
	"context"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"proptech/portal/internal/models"
	"proptech/portal/internal/services"
	"proptech/portal/internal/tasks"
	"proptech/portal/internal/upload"
)

// --- Mocks ---

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, params url.Values) ([]models.Listing, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

type MockSales struct {
	mock.Mock
}

func (m *MockSales) ByProperty(ctx context.Context, propertyID string) ([]models.SaleTransaction, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SaleTransaction), args.Error(1)
}

type MockRentals struct {
	mock.Mock
}

func (m *MockRentals) ByProperty(ctx context.Context, propertyID string) ([]models.RentalTransaction, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RentalTransaction), args.Error(1)
}

type MockProfileListingService struct {
	mock.Mock
}

func (m *MockProfileListingService) MyListings(ctx context.Context, agentID string, page, size int) (*services.ListingPage, error) {
	args := m.Called(ctx, agentID, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ListingPage), args.Error(1)
}

func (m *MockProfileListingService) Listing(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockProfileListingService) Properties(ctx context.Context, page, size int) ([]models.Property, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockProfileListingService) Create(ctx context.Context, agentID string, req *models.AddListingRequest) (*models.Listing, error) {
	args := m.Called(ctx, agentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockProfileListingService) Update(ctx context.Context, id string, req *models.UpdateListingRequest) (*models.Listing, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockProfileListingService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProfileListingService) MarkSold(ctx context.Context, listingID string, req *services.MarkSoldRequest) (*models.Listing, error) {
	args := m.Called(ctx, listingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockProfileListingService) UploadProgress() upload.Progress {
	return m.Called().Get(0).(upload.Progress)
}

type MockAgentService struct {
	mock.Mock
}

func (m *MockAgentService) AgentListings(ctx context.Context, agentID string) ([]models.Listing, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockAgentService) Stats(ctx context.Context, agentID string, now time.Time) (*services.Stats, error) {
	args := m.Called(ctx, agentID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Stats), args.Error(1)
}

func (m *MockAgentService) PlatformStats(ctx context.Context, now time.Time) (*services.Stats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Stats), args.Error(1)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Overview(ctx context.Context, userID string) (*services.WalletOverview, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.WalletOverview), args.Error(1)
}

func (m *MockWalletService) TopUp(ctx context.Context, userID string, amount decimal.Decimal) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletService) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletService) MonthlyDeposits(ctx context.Context, userID string, now time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletService) DepositQR(ctx context.Context, userID string, amount decimal.Decimal) (*services.DepositCode, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DepositCode), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockAccountService) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	return m.Called(ctx, userID, enabled).Error(0)
}

func (m *MockAccountService) AddRole(ctx context.Context, userID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockAccountService) RemoveRole(ctx context.Context, userID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockAccountService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAccountService) DeleteUser(ctx context.Context, actorID, userID string) error {
	return m.Called(ctx, actorID, userID).Error(0)
}

type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Create(ctx context.Context, req *models.AddPropertyRequest) (*models.Property, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Update(ctx context.Context, id string, req *models.UpdatePropertyRequest) (*models.Property, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Me(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockProfileService) UpdateMe(ctx context.Context, userID string, req *services.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockProfileService) Contact(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockDiscoveryService struct {
	mock.Mock
}

func (m *MockDiscoveryService) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]models.Listing, error) {
	args := m.Called(ctx, lat, lng, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockDiscoveryService) ByAddress(ctx context.Context, keyword string) ([]models.Listing, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

type MockPackageService struct {
	mock.Mock
}

func (m *MockPackageService) Status(ctx context.Context, userID string) (*services.PackageStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PackageStatus), args.Error(1)
}

func (m *MockPackageService) Buy(ctx context.Context, userID, packageID string) (models.QuotaState, error) {
	args := m.Called(ctx, userID, packageID)
	return args.Get(0).(models.QuotaState), args.Error(1)
}

type MockAccountGateway struct {
	mock.Mock
}

func (m *MockAccountGateway) Register(ctx context.Context, req *models.RegisterRequest) (*models.JwtResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JwtResponse), args.Error(1)
}

func (m *MockAccountGateway) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAccountGateway) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAccountGateway) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, req *models.LoginRequest) (*models.JwtResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JwtResponse), args.Error(1)
}

func (m *MockAuthenticator) Refresh(ctx context.Context, refreshToken string) (*models.JwtResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JwtResponse), args.Error(1)
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueMarkSold(ctx context.Context, p tasks.MarkSoldPayload) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}
