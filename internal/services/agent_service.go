package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/models"
)

// IAgentService computes the dashboard figures of agents and administrators.
type IAgentService interface {
	AgentListings(ctx context.Context, agentID string) ([]models.Listing, error)
	Stats(ctx context.Context, agentID string, now time.Time) (*Stats, error)
	PlatformStats(ctx context.Context, now time.Time) (*Stats, error)
}

// Stats are listing counts plus the successful top-ups of the current month.
type Stats struct {
	TotalListings   int             `json:"totalListings"`
	NewThisMonth    int             `json:"newThisMonth"`
	SoldListings    int             `json:"soldListings"`
	MonthlyDeposits decimal.Decimal `json:"monthlyDeposits"`
}

type agentService struct {
	listings ListingAPI
	wallets  WalletAPI
	payments PaymentAPI
	log      *slog.Logger
}

func NewAgentService(listings ListingAPI, wallets WalletAPI, payments PaymentAPI, log *slog.Logger) IAgentService {
	return &agentService{listings: listings, wallets: wallets, payments: payments, log: log}
}

func (s *agentService) AgentListings(ctx context.Context, agentID string) ([]models.Listing, error) {
	return s.listings.ByAgent(ctx, agentID)
}

func (s *agentService) Stats(ctx context.Context, agentID string, now time.Time) (*Stats, error) {
	listings, err := s.listings.ByAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings of agent %s: %w", agentID, err)
	}
	stats := countListings(listings, now)

	wallet, err := s.wallets.ByUser(ctx, agentID)
	switch {
	case errors.Is(err, apiclient.ErrNotFound):
		return stats, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load wallet of agent %s: %w", agentID, err)
	}
	stats.MonthlyDeposits, err = s.payments.MonthlyDeposits(ctx, wallet.ID, now)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// PlatformStats covers every listing and every wallet.
func (s *agentService) PlatformStats(ctx context.Context, now time.Time) (*Stats, error) {
	listings, err := s.listings.Search(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	stats := countListings(listings, now)

	txs, err := s.payments.List(ctx, models.TransactionFilter{
		Type:      models.PaymentTopUp,
		Status:    models.PaymentSuccess,
		StartDate: startOfMonth(now).UTC().Format(time.RFC3339),
		EndDate:   now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load deposits: %w", err)
	}
	for _, tx := range txs {
		if tx.Status == models.PaymentSuccess {
			stats.MonthlyDeposits = stats.MonthlyDeposits.Add(decimal.NewFromFloat(tx.Amount))
		}
	}
	return stats, nil
}

func countListings(listings []models.Listing, now time.Time) *Stats {
	monthStart := startOfMonth(now)
	stats := &Stats{TotalListings: len(listings), MonthlyDeposits: decimal.Zero}
	for _, l := range listings {
		if !l.UpdatedAt.IsZero() && !l.UpdatedAt.Before(monthStart) {
			stats.NewThisMonth++
		}
		if l.IsSold {
			stats.SoldListings++
		}
	}
	return stats
}
