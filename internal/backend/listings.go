package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/contracts"
	"proptech/portal/internal/models"
)

const listingsPath = "/listings/listings"

type ListingClient struct {
	c *apiclient.Client
}

// Search queries the listing search endpoint with already-filtered params.
func (l *ListingClient) Search(ctx context.Context, params url.Values) ([]models.Listing, error) {
	return getValidatedList[models.Listing](ctx, l.c, apiclient.Request{Path: listingsPath, Query: params}, contracts.Listing)
}

func (l *ListingClient) Get(ctx context.Context, id string) (*models.Listing, error) {
	return doValidatedOne[models.Listing](ctx, l.c, apiclient.Request{
		Method: http.MethodGet,
		Path:   listingsPath + "/" + url.PathEscape(id),
	}, contracts.Listing)
}

func (l *ListingClient) ByAgent(ctx context.Context, agentID string) ([]models.Listing, error) {
	return getValidatedList[models.Listing](ctx, l.c, apiclient.Request{
		Path: listingsPath + "/agent/" + url.PathEscape(agentID),
	}, contracts.Listing)
}

// ByLocation returns listings within maxDistanceKm of the point.
func (l *ListingClient) ByLocation(ctx context.Context, lat, lng, maxDistanceKm float64) ([]models.Listing, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("maxDistanceKm", strconv.FormatFloat(maxDistanceKm, 'f', -1, 64))
	return getValidatedList[models.Listing](ctx, l.c, apiclient.Request{Path: listingsPath + "/location", Query: q}, contracts.Listing)
}

func (l *ListingClient) ByAddress(ctx context.Context, keyword string) ([]models.Listing, error) {
	return getValidatedList[models.Listing](ctx, l.c, apiclient.Request{
		Path:  listingsPath + "/address",
		Query: url.Values{"keyword": {keyword}},
	}, contracts.Listing)
}

// Create uploads a new listing with its images as multipart/form-data.
func (l *ListingClient) Create(ctx context.Context, req *models.AddListingRequest) (*models.Listing, error) {
	form := &apiclient.Multipart{
		Fields: map[string]string{
			"propertyId":  req.PropertyID,
			"name":        req.Name,
			"description": req.Description,
			"price":       strconv.FormatFloat(req.Price, 'f', -1, 64),
			"listingType": string(req.ListingType),
			"agentId":     req.AgentID,
			"bedrooms":    strconv.Itoa(req.Bedrooms),
			"bathrooms":   strconv.Itoa(req.Bathrooms),
			"area":        strconv.FormatFloat(req.Area, 'f', -1, 64),
		},
	}
	for _, img := range req.Images {
		form.Files = append(form.Files, apiclient.FilePart{Field: "images", Filename: img.Filename, Data: img.Data})
	}
	if req.FeaturedImage != nil {
		form.Files = append(form.Files, apiclient.FilePart{
			Field: "featuredImage", Filename: req.FeaturedImage.Filename, Data: req.FeaturedImage.Data,
		})
	}
	listing, err := doValidatedOne[models.Listing](ctx, l.c, apiclient.Request{
		Method:    http.MethodPost,
		Path:      listingsPath,
		Multipart: form,
	}, contracts.Listing)
	if err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return listing, nil
}

// Update sends a partial update, e.g. {isSold: true}.
func (l *ListingClient) Update(ctx context.Context, id string, req *models.UpdateListingRequest) (*models.Listing, error) {
	return doValidatedOne[models.Listing](ctx, l.c, apiclient.Request{
		Method: http.MethodPut,
		Path:   listingsPath + "/" + url.PathEscape(id),
		Body:   req,
	}, contracts.Listing)
}

func (l *ListingClient) Delete(ctx context.Context, id string) error {
	_, err := l.c.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: listingsPath + "/" + url.PathEscape(id)})
	return err
}
