package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"proptech/portal/internal/models"
)

// The narrow views of the backend clients the services depend on. The
// clients in internal/backend satisfy them.

type ListingAPI interface {
	Search(ctx context.Context, params url.Values) ([]models.Listing, error)
	Get(ctx context.Context, id string) (*models.Listing, error)
	ByAgent(ctx context.Context, agentID string) ([]models.Listing, error)
	Create(ctx context.Context, req *models.AddListingRequest) (*models.Listing, error)
	Update(ctx context.Context, id string, req *models.UpdateListingRequest) (*models.Listing, error)
	Delete(ctx context.Context, id string) error
}

// ListingLookupAPI covers the location and address lookups that bypass the
// filtered search.
type ListingLookupAPI interface {
	ByLocation(ctx context.Context, lat, lng, maxDistanceKm float64) ([]models.Listing, error)
	ByAddress(ctx context.Context, keyword string) ([]models.Listing, error)
}

type PropertyAPI interface {
	List(ctx context.Context, page, size int) ([]models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)
	Create(ctx context.Context, req *models.AddPropertyRequest) (*models.Property, error)
	Update(ctx context.Context, id string, req *models.UpdatePropertyRequest) (*models.Property, error)
	Delete(ctx context.Context, id string) error
}

type SaleAPI interface {
	ByProperty(ctx context.Context, propertyID string) ([]models.SaleTransaction, error)
	Create(ctx context.Context, req *models.AddSaleTransactionRequest) (*models.SaleTransaction, error)
}

type RentalAPI interface {
	ByProperty(ctx context.Context, propertyID string) ([]models.RentalTransaction, error)
	Create(ctx context.Context, req *models.AddRentalTransactionRequest) (*models.RentalTransaction, error)
}

type WalletAPI interface {
	Create(ctx context.Context, userID string) (*models.Wallet, error)
	ByUser(ctx context.Context, userID string) (*models.Wallet, error)
	TopUp(ctx context.Context, id string, amount decimal.Decimal) (*models.Wallet, error)
	Pay(ctx context.Context, id string, amount decimal.Decimal) (*models.Wallet, error)
}

type PaymentAPI interface {
	List(ctx context.Context, f models.TransactionFilter) ([]models.PaymentTransaction, error)
	MonthlyDeposits(ctx context.Context, walletID string, now time.Time) (decimal.Decimal, error)
}

type UserAPI interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id string) error
	Enable(ctx context.Context, id string) error
	Disable(ctx context.Context, id string) error
	AddRole(ctx context.Context, userID, role string) error
	RemoveRole(ctx context.Context, userID, role string) error
}

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadySold      = errors.New("listing is already sold")
	ErrInsufficientFund = errors.New("insufficient wallet balance")
	ErrProtectedRole    = errors.New("role cannot be removed")
	ErrUnknownPackage   = errors.New("unknown service package")
)

// startOfMonth returns local midnight on the first day of now's month.
func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
