package handlers

import (
	"net/http"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
	"github.com/Hecoloko/procurement-app-sub000/internal/repositories"
	"github.com/Hecoloko/procurement-app-sub000/internal/services"
	"github.com/Hecoloko/procurement-app-sub000/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// CartHandler handles cart-related HTTP requests
type CartHandler struct {
	cartService *services.CartService
	validate    *validator.Validate
	tracer      tracing.Tracer
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *services.CartService, tracer tracing.Tracer) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validate:    validator.New(),
		tracer:      tracer,
	}
}

// CreateCartRequest represents an incoming cart creation request
type CreateCartRequest struct {
	CompanyID     uuid.UUID `json:"company_id" binding:"required"`
	Name          string    `json:"name"`
	Type          string    `json:"type" validate:"omitempty,oneof=Standard Scheduled Recurring"`
	ScheduledDate *string   `json:"scheduled_date"`
	Frequency     *string   `json:"frequency" validate:"omitempty,oneof=Weekly Bi-weekly Monthly Quarterly"`
	StartDate     *string   `json:"start_date"`
	DayOfWeek     *int      `json:"day_of_week" validate:"omitempty,min=0,max=6"`
	DayOfMonth    *int      `json:"day_of_month" validate:"omitempty,min=1,max=31"`
}

// CartItemRequest represents a cart line in a request body
type CartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	VendorID  uuid.UUID `json:"vendor_id" binding:"required"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity" binding:"required"`
	UnitPrice float64   `json:"unit_price"`
}

// HandleCreateCart creates a cart or a cart template
func (h *CartHandler) HandleCreateCart(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-create-cart")
	defer h.tracer.EndTransaction(txn)

	var req CreateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart := &models.Cart{
		CompanyID:  req.CompanyID,
		Name:       req.Name,
		Type:       req.Type,
		Frequency:  req.Frequency,
		DayOfWeek:  req.DayOfWeek,
		DayOfMonth: req.DayOfMonth,
	}

	if req.ScheduledDate != nil {
		t, err := parseDate(*req.ScheduledDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_date"})
			return
		}
		cart.ScheduledDate = &t
	}
	if req.StartDate != nil {
		t, err := parseDate(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		cart.StartDate = &t
	}

	h.tracer.AddAttribute(txn, "company_id", req.CompanyID.String())
	h.tracer.AddAttribute(txn, "cart_type", cart.Type)

	if err := h.cartService.CreateCart(c, cart); err != nil {
		log.Error().Err(err).Msg("Failed to create cart")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusCreated, cart)
}

// HandleGetCart returns a single cart with its items
func (h *CartHandler) HandleGetCart(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-get-cart")
	defer h.tracer.EndTransaction(txn)

	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart id"})
		return
	}

	cart, err := h.cartService.GetCart(c, cartID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
			return
		}
		log.Error().Err(err).Msg("Failed to fetch cart")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// HandleAddItem adds a line to a cart and returns the updated cart
func (h *CartHandler) HandleAddItem(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-add-cart-item")
	defer h.tracer.EndTransaction(txn)

	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart id"})
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := &models.CartItem{
		ProductID: &req.ProductID,
		VendorID:  &req.VendorID,
		SKU:       req.SKU,
		Name:      req.Name,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}

	cart, err := h.cartService.AddItem(c, cartID, item)
	if err != nil {
		if errors.Is(err, services.ErrInvalidItem) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("Failed to add cart item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// HandleUpdateItem updates a cart line. A non-positive quantity removes it.
func (h *CartHandler) HandleUpdateItem(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-update-cart-item")
	defer h.tracer.EndTransaction(txn)

	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart id"})
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := &models.CartItem{
		ID:        itemID,
		CartID:    cartID,
		ProductID: &req.ProductID,
		VendorID:  &req.VendorID,
		SKU:       req.SKU,
		Name:      req.Name,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}

	cart, err := h.cartService.UpdateItem(c, cartID, item)
	if err != nil {
		log.Error().Err(err).Msg("Failed to update cart item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// HandleRemoveItem removes a cart line
func (h *CartHandler) HandleRemoveItem(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-remove-cart-item")
	defer h.tracer.EndTransaction(txn)

	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart id"})
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	cart, err := h.cartService.RemoveItem(c, cartID, itemID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to remove cart item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// HandleDeleteCart deletes a cart and its items
func (h *CartHandler) HandleDeleteCart(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-delete-cart")
	defer h.tracer.EndTransaction(txn)

	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart id"})
		return
	}

	if err := h.cartService.DeleteCart(c, cartID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
			return
		}
		log.Error().Err(err).Msg("Failed to delete cart")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterRoutes registers the handler's routes
func (h *CartHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/carts", h.HandleCreateCart)
	router.GET("/carts/:id", h.HandleGetCart)
	router.DELETE("/carts/:id", h.HandleDeleteCart)
	router.POST("/carts/:id/items", h.HandleAddItem)
	router.PUT("/carts/:id/items/:itemId", h.HandleUpdateItem)
	router.DELETE("/carts/:id/items/:itemId", h.HandleRemoveItem)
}
