package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"proptech/portal/internal/api/middleware"
	"proptech/portal/internal/models"
	"proptech/portal/internal/services"
)

// Me handles GET /v1/profile/me.
func (h *RestProfileHandler) Me(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	user, err := sess.Profile.Me(c.Request.Context(), c.GetString(middleware.ContextKeyUserID))
	if err != nil {
		respondError(c, err, "Failed to load your profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

type profileRequest struct {
	FullName    *string `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber"`
}

// UpdateMe handles PUT /v1/profile/me. A multipart body may carry an avatar
// file next to the fullName and phoneNumber fields; a JSON body only the
// text fields.
func (h *RestProfileHandler) UpdateMe(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	update, err := parseProfileUpdate(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := sess.Profile.UpdateMe(c.Request.Context(), c.GetString(middleware.ContextKeyUserID), update)
	if err != nil {
		respondError(c, err, "Failed to update your profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func parseProfileUpdate(c *gin.Context) (*services.ProfileUpdate, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		return &services.ProfileUpdate{FullName: req.FullName, PhoneNumber: req.PhoneNumber}, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("expected a multipart form: %w", err)
	}
	update := &services.ProfileUpdate{}
	if v, ok := form.Value["fullName"]; ok && len(v) > 0 {
		update.FullName = &v[0]
	}
	if v, ok := form.Value["phoneNumber"]; ok && len(v) > 0 {
		update.PhoneNumber = &v[0]
	}
	if files := form.File["avatar"]; len(files) > 0 {
		img, err := readUpload(files[0])
		if err != nil {
			return nil, err
		}
		update.Avatar = &img
	}
	return update, nil
}

// AmenityOptions handles GET /v1/profile/properties/amenities.
func (h *RestProfileHandler) AmenityOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"amenities":     services.AmenityOptions,
		"propertyTypes": propertyTypes,
	})
}

var propertyTypes = []models.PropertyType{
	models.PropertyTypeUnknown, models.PropertyTypeApartment, models.PropertyTypeHouse,
	models.PropertyTypeVilla, models.PropertyTypeOffice, models.PropertyTypeRetail,
	models.PropertyTypeIndustrial, models.PropertyTypeLand,
}

// GetProperty handles GET /v1/profile/properties/:id.
func (h *RestProfileHandler) GetProperty(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	prop, err := sess.Properties.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load property")
		return
	}
	c.JSON(http.StatusOK, prop)
}

// CreateProperty handles POST /v1/profile/properties, the inline property
// dialog of the new listing form.
func (h *RestProfileHandler) CreateProperty(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.AddPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	created, err := sess.Properties.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create property")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateProperty handles PUT /v1/profile/properties/:id.
func (h *RestProfileHandler) UpdateProperty(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	updated, err := sess.Properties.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update property")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteProperty handles DELETE /v1/profile/properties/:id.
func (h *RestProfileHandler) DeleteProperty(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	if err := sess.Properties.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete property")
		return
	}
	c.Status(http.StatusNoContent)
}
