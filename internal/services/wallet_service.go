package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"proptech/portal/internal/models"
)

// IWalletService backs the wallet page.
type IWalletService interface {
	Overview(ctx context.Context, userID string) (*WalletOverview, error)
	TopUp(ctx context.Context, userID string, amount decimal.Decimal) (*models.Wallet, error)
	Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (*models.Wallet, error)
	MonthlyDeposits(ctx context.Context, userID string, now time.Time) (decimal.Decimal, error)
	DepositQR(ctx context.Context, userID string, amount decimal.Decimal) (*DepositCode, error)
}

type WalletOverview struct {
	Wallet       *models.Wallet              `json:"wallet"`
	Transactions []models.PaymentTransaction `json:"transactions"`
}

// DepositCode is a bank transfer QR image whose memo identifies the wallet.
type DepositCode struct {
	ImageURL string          `json:"imageUrl"`
	Amount   decimal.Decimal `json:"amount"`
	Memo     string          `json:"memo"`
}

// VietQR identifies the receiving bank account for deposit codes.
type VietQR struct {
	BankID      string
	AccountNo   string
	AccountName string
	Template    string
}

const vietQRBase = "https://img.vietqr.io/image/"

type walletService struct {
	wallets  WalletAPI
	payments PaymentAPI
	qr       VietQR
	log      *slog.Logger
}

func NewWalletService(wallets WalletAPI, payments PaymentAPI, qr VietQR, log *slog.Logger) IWalletService {
	return &walletService{wallets: wallets, payments: payments, qr: qr, log: log}
}

func (s *walletService) Overview(ctx context.Context, userID string) (*WalletOverview, error) {
	wallet, err := s.wallets.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.payments.List(ctx, models.TransactionFilter{WalletID: wallet.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions of wallet %s: %w", wallet.ID, err)
	}
	if txs == nil {
		txs = []models.PaymentTransaction{}
	}
	return &WalletOverview{Wallet: wallet, Transactions: txs}, nil
}

func (s *walletService) TopUp(ctx context.Context, userID string, amount decimal.Decimal) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	wallet, err := s.wallets.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated, err := s.wallets.TopUp(ctx, wallet.ID, amount)
	if err != nil {
		return nil, err
	}
	s.log.Info("wallet topped up", "wallet_id", wallet.ID, "amount", amount.String())
	return updated, nil
}

func (s *walletService) Withdraw(ctx context.Context, userID string, amount decimal.Decimal) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	wallet, err := s.wallets.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if decimal.NewFromFloat(wallet.Balance).LessThan(amount) {
		return nil, ErrInsufficientFund
	}
	return s.wallets.Pay(ctx, wallet.ID, amount)
}

func (s *walletService) MonthlyDeposits(ctx context.Context, userID string, now time.Time) (decimal.Decimal, error) {
	wallet, err := s.wallets.ByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.payments.MonthlyDeposits(ctx, wallet.ID, now)
}

func (s *walletService) DepositQR(ctx context.Context, userID string, amount decimal.Decimal) (*DepositCode, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if s.qr.BankID == "" || s.qr.AccountNo == "" {
		return nil, fmt.Errorf("%w: deposit account is not configured", ErrInvalidInput)
	}
	wallet, err := s.wallets.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	memo := "NAPTIEN " + wallet.ID
	return &DepositCode{
		ImageURL: s.qr.URL(amount, memo),
		Amount:   amount,
		Memo:     memo,
	}, nil
}

// URL builds the img.vietqr.io quick link for a transfer of amount.
func (q VietQR) URL(amount decimal.Decimal, memo string) string {
	template := q.Template
	if template == "" {
		template = "compact2"
	}
	query := url.Values{}
	query.Set("amount", amount.Round(0).String())
	query.Set("addInfo", memo)
	if q.AccountName != "" {
		query.Set("accountName", q.AccountName)
	}
	path := url.PathEscape(q.BankID + "-" + q.AccountNo + "-" + template)
	return vietQRBase + path + ".jpg?" + query.Encode()
}
