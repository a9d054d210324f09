package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/domain"
	"github.com/voshodshop/cartengine/internal/service"
)

// StateResponse is the session snapshot with the derived checkout total
type StateResponse struct {
	domain.Snapshot
	TotalWithShipping decimal.Decimal `json:"total_with_shipping"`
}

// HandleGetState handles GET /v1/state
func HandleGetState(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := svcs.Session.Snapshot()
		c.JSON(http.StatusOK, StateResponse{
			Snapshot:          snap,
			TotalWithShipping: snap.TotalWithShipping(),
		})
	}
}

// HandleListProducts handles GET /v1/products
func HandleListProducts(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svcs.Catalog.ListProducts(c.Request.Context())
		if err != nil {
			respondError(c, err, logger, nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

// HandleGetCartSummary handles GET /v1/cart/summary
func HandleGetCartSummary(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		quantity, err := svcs.Cart.FetchSummary(c.Request.Context())
		if err != nil {
			respondError(c, err, logger, nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"total_quantity": quantity})
	}
}

// HandleRefreshCart handles POST /v1/cart/refresh
func HandleRefreshCart(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svcs.Cart.Refresh(c.Request.Context())
		if err != nil {
			respondError(c, err, logger, gin.H{"cart": cart})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}

// HandleAddItem handles POST /v1/cart/items/:id
func HandleAddItem(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svcs.Cart.AddItem(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err, logger, gin.H{"cart": cart})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}

// HandleRemoveItem handles DELETE /v1/cart/items/:id
func HandleRemoveItem(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svcs.Cart.RemoveItem(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err, logger, gin.H{"cart": cart})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}
