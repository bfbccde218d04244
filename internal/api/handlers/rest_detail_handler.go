package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"proptech/portal/internal/models"
)

// RestDetailHandler drives the listing detail overlay.
type RestDetailHandler struct{}

func NewRestDetailHandler() *RestDetailHandler {
	return &RestDetailHandler{}
}

// OpenDetail handles POST /v1/listings/:id/open. The listing is taken from
// the current results when present, otherwise fetched.
func (h *RestDetailHandler) OpenDetail(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id := c.Param("id")

	var listing *models.Listing
	for _, l := range sess.Filter.Snapshot().Listings {
		if l.ID == id {
			found := l
			listing = &found
			break
		}
	}
	if listing == nil {
		fetched, err := sess.Listings.Listing(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Failed to load listing")
			return
		}
		listing = fetched
	}

	c.JSON(http.StatusOK, sess.Detail.Open(c.Request.Context(), *listing))
}

// GetDetail handles GET /v1/listings/detail.
func (h *RestDetailHandler) GetDetail(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Detail.View())
}

// Back handles POST /v1/listings/detail/back.
func (h *RestDetailHandler) Back(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Detail.Back())
}

// SelectSlide handles POST /v1/listings/detail/slides/:index.
func (h *RestDetailHandler) SelectSlide(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slide index"})
		return
	}
	view, err := sess.Detail.SelectSlide(index)
	if err != nil {
		respondError(c, err, "Failed to select slide")
		return
	}
	c.JSON(http.StatusOK, view)
}
