package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/domain"
	"github.com/voshodshop/cartengine/internal/service"
)

// HandleCheckout handles POST /v1/checkout
func HandleCheckout(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.CustomerData
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		outcome := svcs.Payment.Submit(c.Request.Context(), req)

		status := http.StatusOK
		switch {
		case outcome.Status == domain.PaymentStatusSuccess:
		case len(outcome.InsufficientItems) > 0:
			status = http.StatusConflict
		default:
			status = http.StatusBadGateway
		}

		logger.Info("Checkout finished",
			zap.String("status", string(outcome.Status)),
			zap.Int("insufficient_items", len(outcome.InsufficientItems)),
		)
		c.JSON(status, outcome)
	}
}
