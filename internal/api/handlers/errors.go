package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/voshodshop/cartengine/pkg/errors"
)

// respondError maps typed errors to HTTP statuses
func respondError(c *gin.Context, err error, logger *zap.Logger, extra gin.H) {
	body := gin.H{"error": err.Error()}
	for k, v := range extra {
		body[k] = v
	}

	var (
		notFound   *apperrors.ErrNotFound
		validation *apperrors.ErrValidation
		parse      *apperrors.ErrParse
		transport  *apperrors.ErrTransport
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, body)
	case errors.As(err, &validation):
		if len(validation.Fields) > 0 {
			body["details"] = validation.Fields
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.As(err, &parse), errors.As(err, &transport):
		logger.Warn("Storefront call failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, body)
	default:
		logger.Error("Request failed", zap.Error(err))
		body["error"] = "internal error"
		c.JSON(http.StatusInternalServerError, body)
	}
}

// bindError reports a malformed request body
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation failed",
		"details": err.Error(),
	})
}
