package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayudapp/ayudapp-api/internal/bucket"
	"github.com/ayudapp/ayudapp-api/internal/models"
	"github.com/ayudapp/ayudapp-api/pkg/response"
)

type catalogProvider interface {
	Semesters() []string
	SalaryOptions() []bucket.Option
	HoursOptions() []bucket.Option
	Prefixes(ctx context.Context) ([]models.CoursePrefix, error)
	TaTypes(ctx context.Context) ([]models.TaType, error)
}

// CatalogHandler exposes the form and filter option lists.
type CatalogHandler struct {
	catalog catalogProvider
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog catalogProvider) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Options godoc
// @Summary Static form options
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/options [get]
func (h *CatalogHandler) Options(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"semesters":      h.catalog.Semesters(),
		"salary_buckets": h.catalog.SalaryOptions(),
		"hours_buckets":  h.catalog.HoursOptions(),
	}, nil)
}

// Prefixes godoc
// @Summary Subject-area prefixes
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/prefixes [get]
func (h *CatalogHandler) Prefixes(c *gin.Context) {
	prefixes, err := h.catalog.Prefixes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefixes, nil)
}

// TaTypes godoc
// @Summary TA role types
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/ta-types [get]
func (h *CatalogHandler) TaTypes(c *gin.Context) {
	types, err := h.catalog.TaTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}
