package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"proptech/portal/internal/api/middleware"
	"proptech/portal/internal/models"
	"proptech/portal/internal/services"
	"proptech/portal/internal/tasks"
)

// maxImageBytes bounds each uploaded image before downscaling.
const maxImageBytes = 10 << 20

// RestProfileHandler serves the signed-in user's profile pages: listings,
// quota packages, wallet and statistics.
type RestProfileHandler struct {
	// enqueuer is nil when mark-sold runs inline.
	enqueuer tasks.Enqueuer
	now      func() time.Time
	log      *slog.Logger
}

func NewRestProfileHandler(enqueuer tasks.Enqueuer, log *slog.Logger) *RestProfileHandler {
	return &RestProfileHandler{enqueuer: enqueuer, now: time.Now, log: log}
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// MyListings handles GET /v1/profile/listings?page=&size=.
func (h *RestProfileHandler) MyListings(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	page, err := sess.Listings.MyListings(c.Request.Context(), c.GetString(middleware.ContextKeyUserID),
		queryInt(c, "page", 1), queryInt(c, "size", services.DefaultPageSize))
	if err != nil {
		respondError(c, err, "Failed to load your listings")
		return
	}
	c.JSON(http.StatusOK, page)
}

// Properties handles GET /v1/profile/properties, the property picker of the
// new listing form.
func (h *RestProfileHandler) Properties(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	props, err := sess.Listings.Properties(c.Request.Context(), queryInt(c, "page", 1)-1, queryInt(c, "size", 50))
	if err != nil {
		respondError(c, err, "Failed to load properties")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": props})
}

// CreateListing handles the multipart POST /v1/profile/listings.
func (h *RestProfileHandler) CreateListing(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	req, err := parseListingForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := sess.Listings.Create(c.Request.Context(), c.GetString(middleware.ContextKeyUserID), req)
	if err != nil {
		respondError(c, err, "Failed to create listing")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UploadProgress handles GET /v1/profile/listings/upload-progress.
func (h *RestProfileHandler) UploadProgress(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Listings.UploadProgress())
}

// UpdateListing handles PUT /v1/profile/listings/:id.
func (h *RestProfileHandler) UpdateListing(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	updated, err := sess.Listings.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update listing")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteListing handles DELETE /v1/profile/listings/:id.
func (h *RestProfileHandler) DeleteListing(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	if err := sess.Listings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete listing")
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkSold handles POST /v1/profile/listings/:id/sold. With a task queue the
// work is accepted and finished in the background; the outcome arrives as a
// notification.
func (h *RestProfileHandler) MarkSold(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req services.MarkSoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Buyer name and identity are required"})
		return
	}
	listingID := c.Param("id")

	if h.enqueuer != nil {
		taskID, err := h.enqueuer.EnqueueMarkSold(c.Request.Context(), tasks.MarkSoldPayload{
			SessionID: sess.ID,
			ListingID: listingID,
			Request:   req,
		})
		if err != nil {
			respondError(c, err, "Failed to schedule the sale")
			return
		}
		h.log.Info("mark sold queued", "browse_session", sess.ID, "listing_id", listingID, "task_id", taskID)
		c.JSON(http.StatusAccepted, gin.H{"taskId": taskID})
		return
	}

	listing, err := sess.Listings.MarkSold(c.Request.Context(), listingID, &req)
	if err != nil {
		respondError(c, err, "Failed to mark the listing as sold")
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Stats handles GET /v1/profile/stats.
func (h *RestProfileHandler) Stats(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	stats, err := sess.Agents.Stats(c.Request.Context(), c.GetString(middleware.ContextKeyUserID), h.now())
	if err != nil {
		respondError(c, err, "Failed to load statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Quota handles GET /v1/profile/quota.
func (h *RestProfileHandler) Quota(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	status, err := sess.Packages.Status(c.Request.Context(), c.GetString(middleware.ContextKeyUserID))
	if err != nil {
		respondError(c, err, "Failed to load your package")
		return
	}
	c.JSON(http.StatusOK, status)
}

// BuyPackage handles POST /v1/profile/packages/:id/buy.
func (h *RestProfileHandler) BuyPackage(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	state, err := sess.Packages.Buy(c.Request.Context(), c.GetString(middleware.ContextKeyUserID), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to buy package")
		return
	}
	c.JSON(http.StatusOK, state)
}

// Wallet handles GET /v1/profile/wallet.
func (h *RestProfileHandler) Wallet(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	overview, err := sess.Wallets.Overview(c.Request.Context(), c.GetString(middleware.ContextKeyUserID))
	if err != nil {
		respondError(c, err, "Failed to load wallet")
		return
	}
	c.JSON(http.StatusOK, overview)
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func bindAmount(c *gin.Context) (decimal.Decimal, bool) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A positive amount is required"})
		return decimal.Zero, false
	}
	return req.Amount, true
}

// TopUp handles POST /v1/profile/wallet/topup.
func (h *RestProfileHandler) TopUp(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	amount, ok := bindAmount(c)
	if !ok {
		return
	}
	wallet, err := sess.Wallets.TopUp(c.Request.Context(), c.GetString(middleware.ContextKeyUserID), amount)
	if err != nil {
		respondError(c, err, "Top up failed")
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// Withdraw handles POST /v1/profile/wallet/pay.
func (h *RestProfileHandler) Withdraw(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	amount, ok := bindAmount(c)
	if !ok {
		return
	}
	wallet, err := sess.Wallets.Withdraw(c.Request.Context(), c.GetString(middleware.ContextKeyUserID), amount)
	if err != nil {
		respondError(c, err, "Payment failed")
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// DepositQR handles POST /v1/profile/wallet/deposit.
func (h *RestProfileHandler) DepositQR(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	amount, ok := bindAmount(c)
	if !ok {
		return
	}
	code, err := sess.Wallets.DepositQR(c.Request.Context(), c.GetString(middleware.ContextKeyUserID), amount)
	if err != nil {
		respondError(c, err, "Failed to create deposit code")
		return
	}
	c.JSON(http.StatusOK, code)
}

func parseListingForm(c *gin.Context) (*models.AddListingRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("expected a multipart form: %w", err)
	}
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	number := func(key string) (float64, error) {
		raw := value(key)
		if raw == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid %s %q", key, raw)
		}
		return v, nil
	}

	req := &models.AddListingRequest{
		PropertyID:  value("propertyId"),
		Name:        value("name"),
		Description: value("description"),
		ListingType: models.ListingType(value("listingType")),
	}
	var errs []error
	var bedrooms, bathrooms float64
	if req.Price, err = number("price"); err != nil {
		errs = append(errs, err)
	}
	if req.Area, err = number("area"); err != nil {
		errs = append(errs, err)
	}
	if bedrooms, err = number("bedrooms"); err != nil {
		errs = append(errs, err)
	}
	if bathrooms, err = number("bathrooms"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	req.Bedrooms = int(bedrooms)
	req.Bathrooms = int(bathrooms)

	for _, fh := range form.File["images"] {
		img, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		req.Images = append(req.Images, img)
	}
	if files := form.File["featuredImage"]; len(files) > 0 {
		img, err := readUpload(files[0])
		if err != nil {
			return nil, err
		}
		req.FeaturedImage = &img
	}
	return req, nil
}

func readUpload(fh *multipart.FileHeader) (models.ImageUpload, error) {
	if fh.Size > maxImageBytes {
		return models.ImageUpload{}, fmt.Errorf("image %s is larger than %d MB", fh.Filename, maxImageBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return models.ImageUpload{}, fmt.Errorf("failed to read image %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return models.ImageUpload{}, fmt.Errorf("failed to read image %s: %w", fh.Filename, err)
	}
	return models.ImageUpload{Filename: fh.Filename, Data: data}, nil
}
