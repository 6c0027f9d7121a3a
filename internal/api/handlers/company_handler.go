package handlers

import (
	"net/http"

	"github.com/Hecoloko/procurement-app-sub000/internal/services"
	"github.com/Hecoloko/procurement-app-sub000/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// CompanyHandler serves the composed per-company data graph
type CompanyHandler struct {
	loader *services.Loader
	tracer tracing.Tracer
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(loader *services.Loader, tracer tracing.Tracer) *CompanyHandler {
	return &CompanyHandler{
		loader: loader,
		tracer: tracer,
	}
}

// HandleLoadCompanyData fetches everything a company session needs in
// one call: collections, freshly spawned template carts, and the
// composed object graph
func (h *CompanyHandler) HandleLoadCompanyData(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-load-company-data")
	defer h.tracer.EndTransaction(txn)

	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return
	}

	h.tracer.AddAttribute(txn, "company_id", companyID.String())

	graph, err := h.loader.LoadCompanyData(c, companyID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLoadTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "company data load timed out"})
		case errors.Is(err, services.ErrLoadSuperseded):
			c.JSON(http.StatusConflict, gin.H{"error": "load superseded by a newer request"})
		default:
			log.Error().Err(err).Msg("Failed to load company data")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.tracer.RecordError(txn, err)
		}
		return
	}

	c.JSON(http.StatusOK, graph)
}

// RegisterRoutes registers the handler's routes
func (h *CompanyHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/companies/:id/data", h.HandleLoadCompanyData)
}
