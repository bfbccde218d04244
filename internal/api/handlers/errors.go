package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"proptech/portal/internal/api/middleware"
	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/browse"
	"proptech/portal/internal/carousel"
	"proptech/portal/internal/detail"
	"proptech/portal/internal/filter"
	"proptech/portal/internal/quota"
	"proptech/portal/internal/services"
	"proptech/portal/internal/session"
)

// Messages shown verbatim by the portal UI.
const (
	msgQuotaExhausted    = "Bạn đã hết lượt đăng tin. Vui lòng mua thêm gói dịch vụ!"
	msgInsufficientFunds = "Số dư ví không đủ để mua gói này!"
	msgPaymentFailed     = "Có lỗi xảy ra khi thanh toán!"
	msgSessionExpired    = "Your session has expired, please log in again"
)

// respondError maps err onto a status and a JSON body. fallback is the
// message for failures the user cannot act on.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, apiclient.ErrSessionExpired),
		errors.Is(err, session.ErrNotLoggedIn),
		errors.Is(err, session.ErrRefreshFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgSessionExpired, "redirect": middleware.LoginPath})
	case errors.Is(err, apiclient.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
	case errors.Is(err, apiclient.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apiclient.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, quota.ErrQuotaExhausted):
		c.JSON(http.StatusConflict, gin.H{"error": msgQuotaExhausted})
	case errors.Is(err, services.ErrInsufficientFund):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": msgInsufficientFunds})
	case errors.Is(err, services.ErrPaymentFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": msgPaymentFailed})
	case errors.Is(err, services.ErrAlreadySold):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, detail.ErrClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrProtectedRole),
		errors.Is(err, services.ErrUnknownPackage),
		errors.Is(err, filter.ErrInvalidFilter),
		errors.Is(err, carousel.ErrSlideOutOfRange),
		errors.Is(err, quota.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apiclient.StatusCode(err) != 0 || apiclient.Classify(err) == apiclient.Transient:
		c.JSON(http.StatusBadGateway, gin.H{"error": fallback})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// currentSession returns the request's browse session or aborts with 500
// when the session middleware did not run.
func currentSession(c *gin.Context) (*browse.Session, bool) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "No browse session"})
		return nil, false
	}
	return sess, true
}
