package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/api/handlers"
	"github.com/voshodshop/cartengine/internal/api/middleware"
	"github.com/voshodshop/cartengine/internal/config"
	"github.com/voshodshop/cartengine/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svcs *service.Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "session_id": svcs.Session.ID().String()})
	})

	v1 := router.Group("/v1")
	{
		v1.GET("/state", handlers.HandleGetState(svcs))
		v1.GET("/products", handlers.HandleListProducts(svcs, logger))

		cart := v1.Group("/cart")
		{
			cart.GET("/summary", handlers.HandleGetCartSummary(svcs, logger))
			cart.POST("/refresh", handlers.HandleRefreshCart(svcs, logger))
			cart.POST("/items/:id", handlers.HandleAddItem(svcs, logger))
			cart.DELETE("/items/:id", handlers.HandleRemoveItem(svcs, logger))
		}

		delivery := v1.Group("/delivery")
		{
			delivery.PUT("/method", handlers.HandleSelectMethod(svcs, logger))
			delivery.PUT("/postal-index", handlers.HandleSetPostalIndex(svcs))
			delivery.PUT("/city", handlers.HandleSelectCity(svcs))
			delivery.PUT("/pickup-point", handlers.HandleSelectPickupPoint(svcs))
		}

		v1.POST("/address/normalize", handlers.HandleNormalizeAddress(svcs, logger))
		v1.POST("/shipping/calculate", handlers.HandleCalculateShipping(svcs))
		v1.POST("/checkout", handlers.HandleCheckout(svcs, logger))
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
	}
}
