package detail

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"proptech/portal/internal/models"
)

type SaleHistory interface {
	ByProperty(ctx context.Context, propertyID string) ([]models.SaleTransaction, error)
}

type RentalHistory interface {
	ByProperty(ctx context.Context, propertyID string) ([]models.RentalTransaction, error)
}

// Row is one price history line. PercentChange is nil on the oldest row and
// whenever the previous price is not positive; PricePerArea is nil when the
// listing has no area.
type Row struct {
	ID            string                   `json:"id"`
	UpdatedAt     models.Timestamp         `json:"updatedAt"`
	Price         float64                  `json:"price"`
	Status        models.TransactionStatus `json:"status"`
	Party         string                   `json:"party,omitempty"`
	PercentChange *float64                 `json:"percentChange,omitempty"`
	PricePerArea  *float64                 `json:"pricePerArea,omitempty"`
}

func salesToRows(txs []models.SaleTransaction) []Row {
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, Row{ID: tx.ID, UpdatedAt: tx.UpdatedAt, Price: tx.Price, Status: tx.Status, Party: tx.BuyerName})
	}
	return rows
}

func rentalsToRows(txs []models.RentalTransaction) []Row {
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, Row{ID: tx.ID, UpdatedAt: tx.UpdatedAt, Price: tx.Price, Status: tx.Status, Party: tx.TenantName})
	}
	return rows
}

// Annotate sorts rows newest first and fills in the derived columns. Each
// row is compared with the row chronologically before it, which after the
// sort is the next one in the slice.
func Annotate(rows []Row, area float64) []Row {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].UpdatedAt.After(rows[j].UpdatedAt.Time)
	})
	for i := range rows {
		rows[i].PercentChange = nil
		rows[i].PricePerArea = nil
		if i+1 < len(rows) {
			if pct, ok := PercentChange(rows[i].Price, rows[i+1].Price); ok {
				rows[i].PercentChange = &pct
			}
		}
		if ppa, ok := PricePerArea(rows[i].Price, area); ok {
			rows[i].PricePerArea = &ppa
		}
	}
	return rows
}

// PercentChange is the change from prev to cur in percent, rounded to one
// decimal place with halves rounded up (-1.25 becomes -1.2).
func PercentChange(cur, prev float64) (float64, bool) {
	if prev <= 0 {
		return 0, false
	}
	c, p := decimal.NewFromFloat(cur), decimal.NewFromFloat(prev)
	pct := roundHalfUp(c.Sub(p).Div(p).Mul(decimal.NewFromInt(1000))).Div(decimal.NewFromInt(10))
	return pct.InexactFloat64(), true
}

// PricePerArea is price divided by area, rounded to a whole amount.
func PricePerArea(price, area float64) (float64, bool) {
	if area <= 0 {
		return 0, false
	}
	return roundHalfUp(decimal.NewFromFloat(price).Div(decimal.NewFromFloat(area))).InexactFloat64(), true
}

// roundHalfUp rounds to a whole number, ties towards positive infinity.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(decimal.NewFromFloat(0.5)).Floor()
}
