// Package backend holds typed clients for the marketplace REST resources.
package backend

import (
	"context"
	"fmt"
	"net/http"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/contracts"
)

// Backend groups the resource clients that share one authenticated apiclient.
type Backend struct {
	Listings     *ListingClient
	Properties   *PropertyClient
	Users        *UserClient
	Auth         *AuthClient
	Wallets      *WalletClient
	Transactions *PaymentTransactionClient
	Sales        *SaleTransactionClient
	Rentals      *RentalTransactionClient
}

// New wires every resource client onto c.
func New(c *apiclient.Client) *Backend {
	return &Backend{
		Listings:     &ListingClient{c: c},
		Properties:   &PropertyClient{c: c},
		Users:        &UserClient{c: c},
		Auth:         &AuthClient{c: c},
		Wallets:      &WalletClient{c: c},
		Transactions: &PaymentTransactionClient{c: c},
		Sales:        &SaleTransactionClient{c: c},
		Rentals:      &RentalTransactionClient{c: c},
	}
}

// getValidatedList fetches a list endpoint and validates each element against kind.
func getValidatedList[T any](ctx context.Context, c *apiclient.Client, req apiclient.Request, kind contracts.Kind) ([]T, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := validateBody(resp.Body, kind); err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return apiclient.DecodeList[T](resp.Body)
}

// doValidatedOne performs req and decodes a single entity, validating it when kind is set.
func doValidatedOne[T any](ctx context.Context, c *apiclient.Client, req apiclient.Request, kind contracts.Kind) (*T, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if kind != "" {
		if err := validateBody(resp.Body, kind); err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
		}
	}
	return apiclient.DecodeOne[T](resp.Body)
}

func validateBody(body []byte, kind contracts.Kind) error {
	env, err := apiclient.Unwrap(body)
	if err != nil {
		return err
	}
	items, err := apiclient.Items(env.Data)
	if err != nil {
		return err
	}
	return contracts.ValidateAll(kind, items)
}
