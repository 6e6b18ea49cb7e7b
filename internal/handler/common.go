package handler

import (
	"errors"
	"net/http"

	"backoffice/internal/logger"
	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Guards are the role checks routes are registered behind
type Guards struct {
	Any     gin.HandlerFunc
	Manager gin.HandlerFunc
}

func NewGuards(secret []byte) Guards {
	return Guards{
		Any:     middleware.RequireRole(secret, model.RoleManager, model.RoleStaff),
		Manager: middleware.RequireRole(secret, model.RoleManager),
	}
}

// bindJSON decodes the body and answers 400 itself when it cannot
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return false
	}
	return true
}

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, response.ValidationFailed(http.StatusBadRequest, "Validation failed", ve.Problems))
	case errors.Is(err, service.ErrInvoiceNotFound), errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, service.ErrInvoiceCancelled), errors.Is(err, service.ErrProductInUse),
		errors.Is(err, service.ErrProductExists), errors.Is(err, service.ErrSequenceExhausted):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
	default:
		_ = c.Error(err)
		logger.FromContext(c.Request.Context(), zap.L()).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}
