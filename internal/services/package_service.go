package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"proptech/portal/internal/models"
	"proptech/portal/internal/quota"
)

// IPackageService sells listing quota packages.
type IPackageService interface {
	Status(ctx context.Context, userID string) (*PackageStatus, error)
	Buy(ctx context.Context, userID, packageID string) (models.QuotaState, error)
}

type PackageStatus struct {
	State    models.QuotaState   `json:"state"`
	History  []models.QuotaEntry `json:"history"`
	Packages []models.Package    `json:"packages"`
}

var ErrPaymentFailed = errors.New("package payment failed")

type packageService struct {
	ledger  quota.Ledger
	wallets WalletAPI
	log     *slog.Logger
}

func NewPackageService(ledger quota.Ledger, wallets WalletAPI, log *slog.Logger) IPackageService {
	return &packageService{ledger: ledger, wallets: wallets, log: log}
}

func (s *packageService) Status(ctx context.Context, userID string) (*PackageStatus, error) {
	state, err := s.ledger.Remaining(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.ledger.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PackageStatus{State: state, History: history, Packages: models.Packages()}, nil
}

// Buy charges the user's wallet for a paid package, then activates it.
func (s *packageService) Buy(ctx context.Context, userID, packageID string) (models.QuotaState, error) {
	pkg, ok := models.FindPackage(packageID)
	if !ok {
		return models.QuotaState{}, fmt.Errorf("%w: %s", ErrUnknownPackage, packageID)
	}

	if !pkg.Free() {
		wallet, err := s.wallets.ByUser(ctx, userID)
		if err != nil {
			return models.QuotaState{}, fmt.Errorf("failed to load wallet: %w", err)
		}
		price := decimal.NewFromFloat(pkg.Price)
		if decimal.NewFromFloat(wallet.Balance).LessThan(price) {
			return models.QuotaState{}, ErrInsufficientFund
		}
		if _, err := s.wallets.Pay(ctx, wallet.ID, price); err != nil {
			return models.QuotaState{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
		s.log.Info("package paid", "user_id", userID, "package", pkg.ID, "amount", price.String())
	}

	return s.ledger.Activate(ctx, userID, pkg)
}
