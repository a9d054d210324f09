package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/domain"
	"github.com/voshodshop/cartengine/internal/service"
)

type SelectMethodRequest struct {
	Method domain.DeliveryMethod `json:"method" binding:"required"`
}

type PostalIndexRequest struct {
	PostalIndex string `json:"postal_index"`
}

type CityRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name"`
}

type PickupPointRequest struct {
	Address string `json:"address" binding:"required"`
}

type NormalizeAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

// NormalizeAddressResponse carries the parsed address and its one-line rendering
type NormalizeAddressResponse struct {
	Address     domain.NormalizedAddress `json:"address"`
	Formatted   string                   `json:"formatted"`
	PostalIndex string                   `json:"postal_index,omitempty"`
}

// HandleSelectMethod handles PUT /v1/delivery/method
func HandleSelectMethod(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SelectMethodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		if err := svcs.Shipping.SelectMethod(req.Method); err != nil {
			respondError(c, err, logger, nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"shipping": svcs.Session.Shipping()})
	}
}

// HandleSetPostalIndex handles PUT /v1/delivery/postal-index. The index is validated when
// shipping is calculated, not here.
func HandleSetPostalIndex(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PostalIndexRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		svcs.Session.SetPostalIndex(req.PostalIndex)
		c.JSON(http.StatusOK, gin.H{"shipping": svcs.Session.Shipping()})
	}
}

// HandleSelectCity handles PUT /v1/delivery/city
func HandleSelectCity(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		svcs.Session.SelectCity(domain.City{
			Code: strings.TrimSpace(req.Code),
			Name: strings.TrimSpace(req.Name),
		})
		c.JSON(http.StatusOK, gin.H{"shipping": svcs.Session.Shipping()})
	}
}

// HandleSelectPickupPoint handles PUT /v1/delivery/pickup-point
func HandleSelectPickupPoint(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PickupPointRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		svcs.Session.SelectPickupPoint(domain.PickupPoint{Address: strings.TrimSpace(req.Address)})
		c.JSON(http.StatusOK, gin.H{"shipping": svcs.Session.Shipping()})
	}
}

// HandleNormalizeAddress handles POST /v1/address/normalize
func HandleNormalizeAddress(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NormalizeAddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		addr, err := svcs.Address.Normalize(c.Request.Context(), req.Address)
		if err != nil {
			respondError(c, err, logger, nil)
			return
		}

		c.JSON(http.StatusOK, NormalizeAddressResponse{
			Address:     *addr,
			Formatted:   service.FormatAddress(*addr),
			PostalIndex: addr.Index,
		})
	}
}

// HandleCalculateShipping handles POST /v1/shipping/calculate. It always answers 200 with the quote.
func HandleCalculateShipping(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		quote := svcs.Shipping.Calculate(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"quote":    quote,
			"shipping": svcs.Session.Shipping(),
		})
	}
}
