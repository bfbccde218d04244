package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"proptech/portal/internal/models"
	"proptech/portal/internal/quota"
	"proptech/portal/internal/upload"
)

// IProfileListingService backs the agent's "my listings" page.
type IProfileListingService interface {
	MyListings(ctx context.Context, agentID string, page, size int) (*ListingPage, error)
	Listing(ctx context.Context, id string) (*models.Listing, error)
	Properties(ctx context.Context, page, size int) ([]models.Property, error)
	Create(ctx context.Context, agentID string, req *models.AddListingRequest) (*models.Listing, error)
	Update(ctx context.Context, id string, req *models.UpdateListingRequest) (*models.Listing, error)
	Delete(ctx context.Context, id string) error
	MarkSold(ctx context.Context, listingID string, req *MarkSoldRequest) (*models.Listing, error)
	UploadProgress() upload.Progress
}

// ListingPage is one page of the agent's listings, unsold first.
type ListingPage struct {
	Items      []models.Listing `json:"items"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
}

// MarkSoldRequest records the buyer (or tenant) of a listing. Rentals also
// need the lease dates.
type MarkSoldRequest struct {
	BuyerName     string `json:"buyerName" binding:"required"`
	BuyerIdentity string `json:"buyerIdentity" binding:"required"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
}

const (
	DefaultPageSize = 5
	spendReason     = "Đăng tin"
)

type profileListingService struct {
	listings     ListingAPI
	properties   PropertyAPI
	sales        SaleAPI
	rentals      RentalAPI
	ledger       quota.Ledger
	tracker      *upload.Tracker
	progressTick time.Duration
	maxImageDim  uint
	log          *slog.Logger
}

func NewProfileListingService(listings ListingAPI, properties PropertyAPI, sales SaleAPI, rentals RentalAPI, ledger quota.Ledger, progressTick time.Duration, maxImageDim uint, log *slog.Logger) IProfileListingService {
	return &profileListingService{
		listings:     listings,
		properties:   properties,
		sales:        sales,
		rentals:      rentals,
		ledger:       ledger,
		tracker:      &upload.Tracker{},
		progressTick: progressTick,
		maxImageDim:  maxImageDim,
		log:          log,
	}
}

func (s *profileListingService) MyListings(ctx context.Context, agentID string, page, size int) (*ListingPage, error) {
	all, err := s.listings.ByAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings of agent %s: %w", agentID, err)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return !all[i].IsSold && all[j].IsSold
	})

	if size <= 0 {
		size = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	out := &ListingPage{
		Items:      []models.Listing{},
		Page:       page,
		Size:       size,
		Total:      len(all),
		TotalPages: (len(all) + size - 1) / size,
	}
	start := (page - 1) * size
	if start < len(all) {
		end := min(start+size, len(all))
		out.Items = all[start:end]
	}
	return out, nil
}

func (s *profileListingService) Listing(ctx context.Context, id string) (*models.Listing, error) {
	return s.listings.Get(ctx, id)
}

func (s *profileListingService) Properties(ctx context.Context, page, size int) ([]models.Property, error) {
	return s.properties.List(ctx, page, size)
}

// Create posts a listing for agentID. One quota unit is spent after the
// backend accepts the listing.
func (s *profileListingService) Create(ctx context.Context, agentID string, req *models.AddListingRequest) (*models.Listing, error) {
	if req.PropertyID == "" || req.FeaturedImage == nil {
		return nil, fmt.Errorf("%w: a property and a featured image are required", ErrInvalidInput)
	}
	if !req.ListingType.Valid() {
		return nil, fmt.Errorf("%w: listing type %q", ErrInvalidInput, req.ListingType)
	}
	state, err := s.ledger.Remaining(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if state.Remaining <= 0 {
		return nil, quota.ErrQuotaExhausted
	}
	if err := upload.DownscaleAll(req, s.maxImageDim); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.AgentID = agentID

	created, err := s.withProgress(ctx, func() (*models.Listing, error) {
		return s.listings.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.Spend(ctx, agentID, 1, spendReason); err != nil {
		// The listing exists; the ledger is advisory.
		s.log.Warn("listing created but quota not spent", "agent_id", agentID, "listing_id", created.ID, "error", err)
	}
	s.log.Info("listing created", "agent_id", agentID, "listing_id", created.ID)
	return created, nil
}

func (s *profileListingService) Update(ctx context.Context, id string, req *models.UpdateListingRequest) (*models.Listing, error) {
	if req.ListingType != nil && !req.ListingType.Valid() {
		return nil, fmt.Errorf("%w: listing type %q", ErrInvalidInput, *req.ListingType)
	}
	return s.withProgress(ctx, func() (*models.Listing, error) {
		return s.listings.Update(ctx, id, req)
	})
}

func (s *profileListingService) Delete(ctx context.Context, id string) error {
	if err := s.listings.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("listing deleted", "listing_id", id)
	return nil
}

// MarkSold records the completed sale or rental and flags the listing sold.
// A completed transaction already recorded for the listing is reused, so a
// retry after a failed flag update only repeats the update.
func (s *profileListingService) MarkSold(ctx context.Context, listingID string, req *MarkSoldRequest) (*models.Listing, error) {
	if req.BuyerName == "" || req.BuyerIdentity == "" {
		return nil, fmt.Errorf("%w: buyer name and identity are required", ErrInvalidInput)
	}
	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.IsSold {
		return nil, ErrAlreadySold
	}

	var recorded bool
	switch listing.ListingType {
	case models.ListingTypeSale:
		recorded, err = s.saleRecorded(ctx, listing)
		if err == nil && !recorded {
			_, err = s.sales.Create(ctx, &models.AddSaleTransactionRequest{
				ListingID:     listing.ID,
				BuyerName:     req.BuyerName,
				BuyerIdentity: req.BuyerIdentity,
				Price:         listing.Price,
				AgentID:       listing.AgentID,
				Status:        models.TransactionCompleted,
			})
		}
	case models.ListingTypeRent:
		start, end, perr := leaseDates(req)
		if perr != nil {
			return nil, perr
		}
		recorded, err = s.rentalRecorded(ctx, listing)
		if err == nil && !recorded {
			_, err = s.rentals.Create(ctx, &models.AddRentalTransactionRequest{
				ListingID:      listing.ID,
				TenantName:     req.BuyerName,
				TenantIdentity: req.BuyerIdentity,
				Price:          listing.Price,
				AgentID:        listing.AgentID,
				StartDate:      start.UTC().Format(time.RFC3339),
				EndDate:        end.UTC().Format(time.RFC3339),
				Status:         models.TransactionCompleted,
			})
		}
	default:
		return nil, fmt.Errorf("%w: listing %s has type %q", ErrInvalidInput, listing.ID, listing.ListingType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}
	if recorded {
		s.log.Info("transaction already recorded, flagging listing only", "listing_id", listing.ID)
	}

	sold := true
	updated, err := s.listings.Update(ctx, listing.ID, &models.UpdateListingRequest{IsSold: &sold})
	if err != nil {
		return nil, fmt.Errorf("transaction recorded but listing not flagged sold: %w", err)
	}
	s.log.Info("listing marked sold", "listing_id", listing.ID, "type", listing.ListingType)
	return updated, nil
}

func (s *profileListingService) saleRecorded(ctx context.Context, listing *models.Listing) (bool, error) {
	history, err := s.sales.ByProperty(ctx, listing.PropertyID)
	if err != nil {
		return false, err
	}
	for _, tx := range history {
		if tx.ListingID == listing.ID && tx.Status == models.TransactionCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *profileListingService) rentalRecorded(ctx context.Context, listing *models.Listing) (bool, error) {
	history, err := s.rentals.ByProperty(ctx, listing.PropertyID)
	if err != nil {
		return false, err
	}
	for _, tx := range history {
		if tx.ListingID == listing.ID && tx.Status == models.TransactionCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *profileListingService) UploadProgress() upload.Progress {
	return s.tracker.Progress()
}

func (s *profileListingService) withProgress(ctx context.Context, call func() (*models.Listing, error)) (*models.Listing, error) {
	progressCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.tracker.Run(progressCtx, s.progressTick, rand.Float64)
	}()

	out, err := call()
	stop()
	<-done
	s.tracker.Finish(err == nil)
	return out, err
}

func leaseDates(req *MarkSoldRequest) (time.Time, time.Time, error) {
	if req.StartDate == "" || req.EndDate == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: rentals need a start and end date", ErrInvalidInput)
	}
	start, err := models.ParseTimestamp(req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date: %v", ErrInvalidInput, err)
	}
	end, err := models.ParseTimestamp(req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date: %v", ErrInvalidInput, err)
	}
	if !end.After(start.Time) {
		return time.Time{}, time.Time{}, errors.Join(ErrInvalidInput, errors.New("end date must be after start date"))
	}
	return start.Time, end.Time, nil
}
