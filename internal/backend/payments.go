package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/models"
)

const (
	walletsPath      = "/payments/wallets"
	transactionsPath = "/payments/transactions"
)

type WalletClient struct {
	c *apiclient.Client
}

func (w *WalletClient) Create(ctx context.Context, userID string) (*models.Wallet, error) {
	return w.one(ctx, apiclient.Request{Method: http.MethodPost, Path: walletsPath, Body: map[string]string{"userId": userID}})
}

func (w *WalletClient) ByUser(ctx context.Context, userID string) (*models.Wallet, error) {
	return w.one(ctx, apiclient.Request{Method: http.MethodGet, Path: walletsPath + "/" + url.PathEscape(userID)})
}

// TopUp credits amount to the wallet.
func (w *WalletClient) TopUp(ctx context.Context, id string, amount decimal.Decimal) (*models.Wallet, error) {
	return w.one(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   walletsPath + "/" + url.PathEscape(id) + "/topup",
		Query:  url.Values{"amount": {amount.String()}},
	})
}

// Pay debits amount from the wallet.
func (w *WalletClient) Pay(ctx context.Context, id string, amount decimal.Decimal) (*models.Wallet, error) {
	return w.one(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   walletsPath + "/" + url.PathEscape(id) + "/payment",
		Query:  url.Values{"amount": {amount.String()}},
	})
}

func (w *WalletClient) one(ctx context.Context, req apiclient.Request) (*models.Wallet, error) {
	resp, err := w.c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return apiclient.DecodeOne[models.Wallet](resp.Body)
}

type PaymentTransactionClient struct {
	c *apiclient.Client
}

func (t *PaymentTransactionClient) List(ctx context.Context, f models.TransactionFilter) ([]models.PaymentTransaction, error) {
	resp, err := t.c.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: transactionsPath, Query: filterQuery(f)})
	if err != nil {
		return nil, err
	}
	return apiclient.DecodeList[models.PaymentTransaction](resp.Body)
}

// MonthlyDeposits sums the successful top-ups of walletID since the start of
// the month containing now.
func (t *PaymentTransactionClient) MonthlyDeposits(ctx context.Context, walletID string, now time.Time) (decimal.Decimal, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	txs, err := t.List(ctx, models.TransactionFilter{
		WalletID:  walletID,
		Type:      models.PaymentTopUp,
		StartDate: start.UTC().Format(time.RFC3339),
		EndDate:   now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Status == models.PaymentSuccess {
			total = total.Add(decimal.NewFromFloat(tx.Amount))
		}
	}
	return total, nil
}

func filterQuery(f models.TransactionFilter) url.Values {
	q := pageQuery(f.Page, f.Size)
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("walletId", f.WalletID)
	set("type", string(f.Type))
	set("status", string(f.Status))
	set("startDate", f.StartDate)
	set("endDate", f.EndDate)
	return q
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	return q
}
