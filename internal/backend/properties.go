package backend

import (
	"context"
	"net/http"
	"net/url"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/contracts"
	"proptech/portal/internal/models"
)

const propertiesPath = "/listings/properties"

type PropertyClient struct {
	c *apiclient.Client
}

func (p *PropertyClient) List(ctx context.Context, page, size int) ([]models.Property, error) {
	return getValidatedList[models.Property](ctx, p.c, apiclient.Request{Path: propertiesPath, Query: pageQuery(page, size)}, contracts.Property)
}

// Get returns one property. The backend wraps it in an array; DecodeOne normalises that.
func (p *PropertyClient) Get(ctx context.Context, id string) (*models.Property, error) {
	return doValidatedOne[models.Property](ctx, p.c, apiclient.Request{
		Method: http.MethodGet,
		Path:   propertiesPath + "/" + url.PathEscape(id),
	}, contracts.Property)
}

func (p *PropertyClient) Create(ctx context.Context, req *models.AddPropertyRequest) (*models.Property, error) {
	return doValidatedOne[models.Property](ctx, p.c, apiclient.Request{
		Method: http.MethodPost,
		Path:   propertiesPath,
		Body:   req,
	}, contracts.Property)
}

func (p *PropertyClient) Update(ctx context.Context, id string, req *models.UpdatePropertyRequest) (*models.Property, error) {
	return doValidatedOne[models.Property](ctx, p.c, apiclient.Request{
		Method: http.MethodPut,
		Path:   propertiesPath + "/" + url.PathEscape(id),
		Body:   req,
	}, contracts.Property)
}

func (p *PropertyClient) Delete(ctx context.Context, id string) error {
	_, err := p.c.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: propertiesPath + "/" + url.PathEscape(id)})
	return err
}
