package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/logger"
	"proptech/portal/internal/models"
)

func ts(s string) models.Timestamp {
	t, _ := models.ParseTimestamp(s)
	return t
}

func TestAgentStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	listings := new(MockListingAPI)
	wallets := new(MockWalletAPI)
	payments := new(MockPaymentAPI)
	svc := NewAgentService(listings, wallets, payments, logger.Discard())

	listings.On("ByAgent", ctx, "a1").Return([]models.Listing{
		{ID: "1", UpdatedAt: ts("2025-03-02T09:00:00Z")},
		{ID: "2", UpdatedAt: ts("2025-02-27T09:00:00Z"), IsSold: true},
		{ID: "3", UpdatedAt: ts("2025-03-01T00:00:00Z")},
	}, nil)
	wallets.On("ByUser", ctx, "a1").Return(&models.Wallet{ID: "w1"}, nil)
	payments.On("MonthlyDeposits", ctx, "w1", now).Return(decimal.NewFromInt(350000), nil)

	stats, err := svc.Stats(ctx, "a1", now)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalListings)
	assert.Equal(t, 2, stats.NewThisMonth)
	assert.Equal(t, 1, stats.SoldListings)
	assert.Equal(t, "350000", stats.MonthlyDeposits.String())
}

func TestAgentStats_NoWallet(t *testing.T) {
	ctx := context.Background()
	listings := new(MockListingAPI)
	wallets := new(MockWalletAPI)
	svc := NewAgentService(listings, wallets, new(MockPaymentAPI), logger.Discard())

	listings.On("ByAgent", ctx, "a2").Return([]models.Listing{}, nil)
	wallets.On("ByUser", ctx, "a2").Return(nil, &apiclient.Error{StatusCode: 404})

	stats, err := svc.Stats(ctx, "a2", time.Now())
	require.NoError(t, err)
	assert.True(t, stats.MonthlyDeposits.IsZero())
}

func TestPlatformStats_SumsSuccessfulTopUps(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	listings := new(MockListingAPI)
	payments := new(MockPaymentAPI)
	svc := NewAgentService(listings, new(MockWalletAPI), payments, logger.Discard())

	listings.On("Search", ctx, mock.Anything).Return([]models.Listing{{ID: "1"}, {ID: "2"}}, nil)
	payments.On("List", ctx, mock.MatchedBy(func(f models.TransactionFilter) bool {
		return f.Type == models.PaymentTopUp && f.StartDate == "2025-03-01T00:00:00Z"
	})).Return([]models.PaymentTransaction{
		{Amount: 100000, Status: models.PaymentSuccess},
		{Amount: 0.1, Status: models.PaymentSuccess},
		{Amount: 0.2, Status: models.PaymentSuccess},
		{Amount: 999, Status: models.PaymentFailed},
	}, nil)

	stats, err := svc.PlatformStats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalListings)
	assert.Equal(t, "100000.3", stats.MonthlyDeposits.String())
}

func TestWallet_OverviewAndTopUp(t *testing.T) {
	ctx := context.Background()
	wallets := new(MockWalletAPI)
	payments := new(MockPaymentAPI)
	svc := NewWalletService(wallets, payments, VietQR{}, logger.Discard())

	wallets.On("ByUser", ctx, "u1").Return(&models.Wallet{ID: "w1", Balance: 1000}, nil)
	payments.On("List", ctx, models.TransactionFilter{WalletID: "w1"}).Return(nil, nil)

	overview, err := svc.Overview(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "w1", overview.Wallet.ID)
	assert.NotNil(t, overview.Transactions)

	_, err = svc.TopUp(ctx, "u1", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidInput)

	amount := decimal.NewFromInt(500000)
	wallets.On("TopUp", ctx, "w1", amount).Return(&models.Wallet{ID: "w1", Balance: 501000}, nil)
	updated, err := svc.TopUp(ctx, "u1", amount)
	require.NoError(t, err)
	assert.Equal(t, float64(501000), updated.Balance)
}

func TestWallet_WithdrawChecksBalance(t *testing.T) {
	ctx := context.Background()
	wallets := new(MockWalletAPI)
	svc := NewWalletService(wallets, new(MockPaymentAPI), VietQR{}, logger.Discard())
	wallets.On("ByUser", ctx, "u1").Return(&models.Wallet{ID: "w1", Balance: 1000}, nil)

	_, err := svc.Withdraw(ctx, "u1", decimal.NewFromInt(1001))
	assert.ErrorIs(t, err, ErrInsufficientFund)
	wallets.AssertNotCalled(t, "Pay", mock.Anything, mock.Anything, mock.Anything)
}

func TestWallet_DepositQR(t *testing.T) {
	ctx := context.Background()
	wallets := new(MockWalletAPI)
	qr := VietQR{BankID: "970436", AccountNo: "0011001234567", AccountName: "PORTAL CO", Template: "compact2"}
	svc := NewWalletService(wallets, new(MockPaymentAPI), qr, logger.Discard())
	wallets.On("ByUser", ctx, "u1").Return(&models.Wallet{ID: "w1"}, nil)

	code, err := svc.DepositQR(ctx, "u1", decimal.NewFromInt(200000))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code.ImageURL, "https://img.vietqr.io/image/970436-0011001234567-compact2.jpg?"))
	assert.Contains(t, code.ImageURL, "amount=200000")
	assert.Contains(t, code.ImageURL, "addInfo=NAPTIEN+w1")
	assert.Equal(t, "NAPTIEN w1", code.Memo)

	unconfigured := NewWalletService(wallets, new(MockPaymentAPI), VietQR{}, logger.Discard())
	_, err = unconfigured.DepositQR(ctx, "u1", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAccount_Roles(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserAPI)
	wallets := new(MockWalletAPI)
	svc := NewAccountService(users, wallets, logger.Discard())

	users.On("AddRole", ctx, "u1", models.RoleAgent).Return(nil)
	wallets.On("Create", ctx, "u1").Return(nil, errors.New("wallet exists"))
	assert.NoError(t, svc.AddRole(ctx, "u1", "agent"), "wallet failure is only logged")
	wallets.AssertCalled(t, "Create", ctx, "u1")

	assert.ErrorIs(t, svc.RemoveRole(ctx, "u1", "ROLE_USER"), ErrProtectedRole)
	users.AssertNotCalled(t, "RemoveRole", mock.Anything, mock.Anything, mock.Anything)

	assert.ErrorIs(t, svc.AddRole(ctx, "u1", "superuser"), ErrInvalidInput)

	users.On("Disable", ctx, "u1").Return(nil)
	require.NoError(t, svc.SetEnabled(ctx, "u1", false))
	users.AssertExpectations(t)
}

func TestPackage_Buy(t *testing.T) {
	ctx := context.Background()
	f := newProfileFixture()
	wallets := new(MockWalletAPI)
	svc := NewPackageService(f.ledger, wallets, logger.Discard())

	t.Run("insufficient balance", func(t *testing.T) {
		wallets.On("ByUser", ctx, "poor").Return(&models.Wallet{ID: "wp", Balance: 199999}, nil).Once()
		_, err := svc.Buy(ctx, "poor", "pro")
		assert.ErrorIs(t, err, ErrInsufficientFund)
	})

	t.Run("paid", func(t *testing.T) {
		price := decimal.NewFromInt(200000)
		wallets.On("ByUser", ctx, "rich").Return(&models.Wallet{ID: "wr", Balance: 200000}, nil).Once()
		wallets.On("Pay", ctx, "wr", price).Return(&models.Wallet{ID: "wr"}, nil).Once()
		state, err := svc.Buy(ctx, "rich", "pro")
		require.NoError(t, err)
		assert.Equal(t, "pro", state.Selected)
		assert.Equal(t, 60, state.Remaining)
	})

	t.Run("payment failure leaves quota", func(t *testing.T) {
		wallets.On("ByUser", ctx, "flaky").Return(&models.Wallet{ID: "wf", Balance: 1e6}, nil).Once()
		wallets.On("Pay", ctx, "wf", mock.Anything).Return(nil, errors.New("502")).Once()
		_, err := svc.Buy(ctx, "flaky", "pro")
		assert.ErrorIs(t, err, ErrPaymentFailed)
		state, _ := f.ledger.Remaining(ctx, "flaky")
		assert.Equal(t, 10, state.Remaining)
	})

	t.Run("free package skips wallet", func(t *testing.T) {
		state, err := svc.Buy(ctx, "nowallet", "basic")
		require.NoError(t, err)
		assert.Equal(t, 20, state.Remaining)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := svc.Buy(ctx, "u", "platinum")
		assert.ErrorIs(t, err, ErrUnknownPackage)
	})

	status, err := svc.Status(ctx, "rich")
	require.NoError(t, err)
	assert.Len(t, status.Packages, 2)
	require.NotEmpty(t, status.History)
	assert.Equal(t, "Mua Pro Package", status.History[0].Action)
}

func TestAccount_FindAndDelete(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserAPI)
	svc := NewAccountService(users, new(MockWalletAPI), logger.Discard())

	users.On("GetByUsername", ctx, "minh").Return(&models.User{ID: "u7", Username: "minh"}, nil)
	got, err := svc.FindByUsername(ctx, " minh ")
	require.NoError(t, err)
	assert.Equal(t, "u7", got.ID)

	_, err = svc.FindByUsername(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, svc.DeleteUser(ctx, "admin-1", "admin-1"), ErrInvalidInput)
	users.On("Delete", ctx, "u7").Return(nil)
	require.NoError(t, svc.DeleteUser(ctx, "admin-1", "u7"))
	users.AssertExpectations(t)
}
