package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"proptech/portal/internal/filter"
	"proptech/portal/internal/models"
	"proptech/portal/internal/render"
)

// RestBrowseHandler serves the listing page: filters, result list and map.
type RestBrowseHandler struct {
	opts render.Options
}

func NewRestBrowseHandler(opts render.Options) *RestBrowseHandler {
	return &RestBrowseHandler{opts: opts}
}

type browseResponse struct {
	Filter filter.Snapshot `json:"filter"`
	View   render.View     `json:"view"`
}

func (h *RestBrowseHandler) respond(c *gin.Context, snap filter.Snapshot) {
	c.JSON(http.StatusOK, browseResponse{
		Filter: snap,
		View:   render.Render(snap.Listings, snap.Loading, h.opts),
	})
}

// InitListings handles GET /v1/listings?type=&province=. It mounts the page:
// the URL seeds the filter and exactly one search runs.
func (h *RestBrowseHandler) InitListings(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	h.respond(c, sess.Filter.Init(c.Request.Context(), c.Request.URL.Query()))
}

// UpdateFilter handles PATCH /v1/listings/filter.
func (h *RestBrowseHandler) UpdateFilter(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var patch filter.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter: " + err.Error()})
		return
	}
	snap, err := sess.Filter.Update(c.Request.Context(), patch.Apply)
	if err != nil {
		respondError(c, err, "Failed to update filter")
		return
	}
	h.respond(c, snap)
}

// GetView handles GET /v1/listings/view.
func (h *RestBrowseHandler) GetView(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	h.respond(c, sess.Filter.Snapshot())
}

type lookupResponse struct {
	Data []models.Listing `json:"data"`
	View render.View      `json:"view"`
}

// Nearby handles GET /v1/listings/nearby?lat=&lng=&radiusKm=, the "near me"
// search fed by the browser's geolocation. It leaves the filter untouched.
func (h *RestBrowseHandler) Nearby(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required numbers"})
		return
	}
	radius := 0.0
	if raw := c.Query("radiusKm"); raw != "" {
		var err error
		if radius, err = strconv.ParseFloat(raw, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid radiusKm " + strconv.Quote(raw)})
			return
		}
	}
	found, err := sess.Discovery.Nearby(c.Request.Context(), lat, lng, radius)
	if err != nil {
		respondError(c, err, "Failed to load nearby listings")
		return
	}
	c.JSON(http.StatusOK, lookupResponse{Data: found, View: render.Render(found, false, h.opts)})
}

// SearchAddress handles GET /v1/listings/search?q=.
func (h *RestBrowseHandler) SearchAddress(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	found, err := sess.Discovery.ByAddress(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "Failed to search listings")
		return
	}
	c.JSON(http.StatusOK, lookupResponse{Data: found, View: render.Render(found, false, h.opts)})
}

// FilterOptions handles GET /v1/listings/filter/options.
func (h *RestBrowseHandler) FilterOptions(c *gin.Context) {
	type pricePreset struct {
		Key   string  `json:"key"`
		Label string  `json:"label"`
		Min   float64 `json:"min"`
		Max   float64 `json:"max"`
	}
	prices := make([]pricePreset, 0, len(filter.PricePresets))
	for _, p := range filter.PricePresets {
		prices = append(prices, pricePreset{Key: p.Key(), Label: p.Label, Min: p.Min, Max: p.Max})
	}
	c.JSON(http.StatusOK, gin.H{
		"prices":       prices,
		"bedrooms":     filter.BedroomPresets,
		"listingTypes": filter.ListingTypeOptions,
		"sold":         filter.SoldOptions,
	})
}
