package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
)

// entityKinds maps the plural path segment to the catalog entity it deletes.
var entityKinds = map[string]catalogdomain.EntityKind{
	"shapes":            catalogdomain.EntityShape,
	"fill-types":        catalogdomain.EntityFillType,
	"fabric-categories": catalogdomain.EntityFabricCategory,
	"fabrics":           catalogdomain.EntityFabric,
	"add-ons":           catalogdomain.EntityAddOn,
	"profiles":          catalogdomain.EntityProfile,
}

type saveShapeResponse struct {
	Shape       *catalogdomain.Shape            `json:"shape"`
	Diagnostics []catalogdomain.ShapeDiagnostic `json:"diagnostics"`
}

type replacePriceTiersRequest struct {
	Tiers []catalogdomain.PriceTier `json:"tiers"`
}

func (s *Server) SaveShape(c *gin.Context) {
	var req catalogdomain.Shape
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Shop = c.Param("shop")

	diagnostics, err := s.catalogSvc.SaveShape(c.Request.Context(), &req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if diagnostics == nil {
		diagnostics = []catalogdomain.ShapeDiagnostic{}
	}

	c.JSON(http.StatusOK, gin.H{"data": saveShapeResponse{Shape: &req, Diagnostics: diagnostics}})
}

func (s *Server) SaveFillType(c *gin.Context) {
	var req catalogdomain.FillType
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Shop = c.Param("shop")

	if err := s.catalogSvc.SaveFillType(c.Request.Context(), &req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) SaveFabricCategory(c *gin.Context) {
	var req catalogdomain.FabricCategory
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Shop = c.Param("shop")

	if err := s.catalogSvc.SaveFabricCategory(c.Request.Context(), &req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) SaveFabric(c *gin.Context) {
	var req catalogdomain.Fabric
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Shop = c.Param("shop")

	if err := s.catalogSvc.SaveFabric(c.Request.Context(), &req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) SaveAddOn(c *gin.Context) {
	var req catalogdomain.AddOnOption
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Shop = c.Param("shop")

	if err := s.catalogSvc.SaveAddOn(c.Request.Context(), &req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) SaveProfile(c *gin.Context) {
	var req catalogdomain.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Shop = c.Param("shop")

	if err := s.catalogSvc.SaveProfile(c.Request.Context(), &req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}

func (s *Server) DeleteCatalogEntity(c *gin.Context) {
	kind, ok := entityKinds[strings.TrimSpace(c.Param("kind"))]
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	if err := s.catalogSvc.Delete(c.Request.Context(), kind, c.Param("shop"), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) DiagnoseShapes(c *gin.Context) {
	resp, err := s.catalogSvc.DiagnoseShapes(c.Request.Context(), c.Param("shop"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		resp = []catalogdomain.ShapeDiagnostic{}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReplacePriceTiers(c *gin.Context) {
	var req replacePriceTiersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.ReplacePriceTiers(c.Request.Context(), c.Param("shop"), req.Tiers)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaveSettings(c *gin.Context) {
	var req catalogdomain.CalculatorSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Shop = c.Param("shop")

	if err := s.catalogSvc.SaveSettings(c.Request.Context(), &req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}
