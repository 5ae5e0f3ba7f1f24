package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/smallbiznis/cushionly/internal/pricing/domain"
)

// GetConfiguration serves the resolved options the storefront widget renders.
func (s *Server) GetConfiguration(c *gin.Context) {
	shop := strings.TrimSpace(c.Param("shop"))
	profileID := strings.TrimSpace(c.Query("profile_id"))

	resp, err := s.pricingSvc.Configuration(c.Request.Context(), shop, profileID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateQuote(c *gin.Context) {
	var req pricingdomain.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.Shop = strings.TrimSpace(c.Param("shop"))
	req.ProfileID = strings.TrimSpace(req.ProfileID)

	resp, err := s.pricingSvc.Quote(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) InvalidateCache(c *gin.Context) {
	shop := strings.TrimSpace(c.Param("shop"))
	if err := s.pricingSvc.Invalidate(c.Request.Context(), shop); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
