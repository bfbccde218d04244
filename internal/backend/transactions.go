package backend

import (
	"context"
	"net/http"
	"net/url"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/contracts"
	"proptech/portal/internal/models"
)

const (
	salesPath   = "/sales/transactions"
	rentalsPath = "/rentals/transactions"
)

type SaleTransactionClient struct {
	c *apiclient.Client
}

// ByProperty returns the sale history of a property.
func (s *SaleTransactionClient) ByProperty(ctx context.Context, propertyID string) ([]models.SaleTransaction, error) {
	return getValidatedList[models.SaleTransaction](ctx, s.c, apiclient.Request{
		Path:  salesPath,
		Query: url.Values{"propertyId": {propertyID}},
	}, contracts.SaleTransaction)
}

func (s *SaleTransactionClient) Create(ctx context.Context, req *models.AddSaleTransactionRequest) (*models.SaleTransaction, error) {
	return doValidatedOne[models.SaleTransaction](ctx, s.c, apiclient.Request{
		Method: http.MethodPost,
		Path:   salesPath,
		Body:   req,
	}, contracts.SaleTransaction)
}

type RentalTransactionClient struct {
	c *apiclient.Client
}

// ByProperty returns the rental history of a property.
func (r *RentalTransactionClient) ByProperty(ctx context.Context, propertyID string) ([]models.RentalTransaction, error) {
	return getValidatedList[models.RentalTransaction](ctx, r.c, apiclient.Request{
		Path:  rentalsPath,
		Query: url.Values{"propertyId": {propertyID}},
	}, contracts.RentalTransaction)
}

func (r *RentalTransactionClient) Create(ctx context.Context, req *models.AddRentalTransactionRequest) (*models.RentalTransaction, error) {
	return doValidatedOne[models.RentalTransaction](ctx, r.c, apiclient.Request{
		Method: http.MethodPost,
		Path:   rentalsPath,
		Body:   req,
	}, contracts.RentalTransaction)
}
