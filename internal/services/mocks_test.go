package services

import (
	"context"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"proptech/portal/internal/models"
)

// --- Mocks ---

type MockListingAPI struct {
	mock.Mock
}

func (m *MockListingAPI) Search(ctx context.Context, params url.Values) ([]models.Listing, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}
func (m *MockListingAPI) Get(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingAPI) ByAgent(ctx context.Context, agentID string) ([]models.Listing, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}
func (m *MockListingAPI) Create(ctx context.Context, req *models.AddListingRequest) (*models.Listing, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingAPI) Update(ctx context.Context, id string, req *models.UpdateListingRequest) (*models.Listing, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingAPI) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPropertyAPI struct {
	mock.Mock
}

func (m *MockPropertyAPI) List(ctx context.Context, page, size int) ([]models.Property, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyAPI) Get(ctx context.Context, id string) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}
func (m *MockPropertyAPI) Create(ctx context.Context, req *models.AddPropertyRequest) (*models.Property, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}
func (m *MockPropertyAPI) Update(ctx context.Context, id string, req *models.UpdatePropertyRequest) (*models.Property, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}
func (m *MockPropertyAPI) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockListingLookupAPI struct {
	mock.Mock
}

func (m *MockListingLookupAPI) ByLocation(ctx context.Context, lat, lng, maxDistanceKm float64) ([]models.Listing, error) {
	args := m.Called(ctx, lat, lng, maxDistanceKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}
func (m *MockListingLookupAPI) ByAddress(ctx context.Context, keyword string) ([]models.Listing, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

type MockSaleAPI struct {
	mock.Mock
}

func (m *MockSaleAPI) Create(ctx context.Context, req *models.AddSaleTransactionRequest) (*models.SaleTransaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SaleTransaction), args.Error(1)
}

func (m *MockSaleAPI) ByProperty(ctx context.Context, propertyID string) ([]models.SaleTransaction, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SaleTransaction), args.Error(1)
}

type MockRentalAPI struct {
	mock.Mock
}

func (m *MockRentalAPI) Create(ctx context.Context, req *models.AddRentalTransactionRequest) (*models.RentalTransaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentalTransaction), args.Error(1)
}

func (m *MockRentalAPI) ByProperty(ctx context.Context, propertyID string) ([]models.RentalTransaction, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RentalTransaction), args.Error(1)
}

type MockWalletAPI struct {
	mock.Mock
}

func (m *MockWalletAPI) Create(ctx context.Context, userID string) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}
func (m *MockWalletAPI) ByUser(ctx context.Context, userID string) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}
func (m *MockWalletAPI) TopUp(ctx context.Context, id string, amount decimal.Decimal) (*models.Wallet, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}
func (m *MockWalletAPI) Pay(ctx context.Context, id string, amount decimal.Decimal) (*models.Wallet, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

type MockPaymentAPI struct {
	mock.Mock
}

func (m *MockPaymentAPI) List(ctx context.Context, f models.TransactionFilter) ([]models.PaymentTransaction, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentTransaction), args.Error(1)
}
func (m *MockPaymentAPI) MonthlyDeposits(ctx context.Context, walletID string, now time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, walletID, now)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockUserAPI struct {
	mock.Mock
}

func (m *MockUserAPI) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}
func (m *MockUserAPI) Get(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserAPI) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserAPI) Update(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserAPI) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockUserAPI) Enable(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockUserAPI) Disable(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockUserAPI) AddRole(ctx context.Context, userID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}
func (m *MockUserAPI) RemoveRole(ctx context.Context, userID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}
