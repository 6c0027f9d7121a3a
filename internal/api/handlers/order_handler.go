package handlers

import (
	"net/http"

	"github.com/Hecoloko/procurement-app-sub000/internal/repositories"
	"github.com/Hecoloko/procurement-app-sub000/internal/search"
	"github.com/Hecoloko/procurement-app-sub000/internal/services"
	"github.com/Hecoloko/procurement-app-sub000/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *services.OrderService
	elastic      *search.ElasticClient
	validate     *validator.Validate
	tracer       tracing.Tracer
}

// NewOrderHandler creates a new order handler. elastic may be nil when
// search is not configured.
func NewOrderHandler(orderService *services.OrderService, elastic *search.ElasticClient, tracer tracing.Tracer) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		elastic:      elastic,
		validate:     validator.New(),
		tracer:       tracer,
	}
}

// SubmitCartRequest identifies the cart to turn into an order
type SubmitCartRequest struct {
	CartID uuid.UUID `json:"cart_id" binding:"required"`
}

// ApprovalDecisionRequest carries per-item approval decisions
type ApprovalDecisionRequest struct {
	Decisions []ApprovalDecision `json:"decisions" binding:"required,min=1"`
}

// ApprovalDecision is one reviewer decision for one order item
type ApprovalDecision struct {
	ItemID          uuid.UUID `json:"item_id" binding:"required"`
	ApprovalStatus  string    `json:"approval_status" validate:"required,oneof=Pending Approved Rejected"`
	RejectionReason string    `json:"rejection_reason"`
}

// SetStatusRequest carries an explicit order status change
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// FulfillmentRequest carries purchase order fulfillment changes. Nil
// fields are left untouched.
type FulfillmentRequest struct {
	Status           *string `json:"status" validate:"omitempty,oneof=Processing 'In Transit' Received"`
	ETA              *string `json:"eta"`
	Carrier          *string `json:"carrier"`
	TrackingNumber   *string `json:"tracking_number"`
	DeliveryProofURL *string `json:"delivery_proof_url"`
}

// HandleSubmitCart converts a draft cart into an order with its
// per-vendor purchase orders
func (h *OrderHandler) HandleSubmitCart(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-submit-cart")
	defer h.tracer.EndTransaction(txn)

	var req SubmitCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.tracer.AddAttribute(txn, "cart_id", req.CartID.String())

	order, err := h.orderService.Submit(c, req.CartID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
		case errors.Is(err, services.ErrCartNotDraft), errors.Is(err, services.ErrEmptyCart):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("Failed to submit cart")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.tracer.RecordError(txn, err)
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

// HandleGetOrder returns an order with items, history and purchase orders
func (h *OrderHandler) HandleGetOrder(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-get-order")
	defer h.tracer.EndTransaction(txn)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.orderService.GetOrder(c, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		log.Error().Err(err).Msg("Failed to fetch order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// HandleApplyApprovals records item approval decisions and rolls the
// order status up from them
func (h *OrderHandler) HandleApplyApprovals(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-apply-approvals")
	defer h.tracer.EndTransaction(txn)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req ApprovalDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decisions := make([]services.ItemDecision, 0, len(req.Decisions))
	for _, d := range req.Decisions {
		decisions = append(decisions, services.ItemDecision{
			ItemID:          d.ItemID,
			ApprovalStatus:  d.ApprovalStatus,
			RejectionReason: d.RejectionReason,
		})
	}

	order, err := h.orderService.ApplyApprovalDecision(c, orderID, decisions)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		log.Error().Err(err).Msg("Failed to apply approval decisions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// HandleSetStatus sets an order's status directly and appends a history
// event
func (h *OrderHandler) HandleSetStatus(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-set-order-status")
	defer h.tracer.EndTransaction(txn)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orderService.SetOrderStatus(c, orderID, req.Status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		log.Error().Err(err).Msg("Failed to set order status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// HandleUpdateFulfillment updates a purchase order's fulfillment fields
// and reconciles the parent order's status
func (h *OrderHandler) HandleUpdateFulfillment(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-update-fulfillment")
	defer h.tracer.EndTransaction(txn)

	poID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase order id"})
		return
	}

	var req FulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Carrier != nil {
		fields["carrier"] = *req.Carrier
	}
	if req.TrackingNumber != nil {
		fields["tracking_number"] = *req.TrackingNumber
	}
	if req.DeliveryProofURL != nil {
		fields["delivery_proof_url"] = *req.DeliveryProofURL
	}
	if req.ETA != nil {
		eta, err := parseDate(*req.ETA)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid eta"})
			return
		}
		fields["eta"] = eta
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	po, err := h.orderService.UpdateFulfillment(c, poID, fields)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "purchase order not found"})
			return
		}
		log.Error().Err(err).Msg("Failed to update fulfillment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusOK, po)
}

// HandleSearchOrders runs a full-text search over indexed orders
func (h *OrderHandler) HandleSearchOrders(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-search-orders")
	defer h.tracer.EndTransaction(txn)

	if h.elastic == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not configured"})
		return
	}

	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  term,
				"fields": []string{"name", "work_order_id", "skus", "status"},
			},
		},
	}
	if companyID := c.Query("company_id"); companyID != "" {
		query["query"] = map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":  term,
							"fields": []string{"name", "work_order_id", "skus", "status"},
						},
					},
					map[string]interface{}{
						"term": map[string]interface{}{"company_id": companyID},
					},
				},
			},
		}
	}

	results, err := h.elastic.SearchOrders(c, query)
	if err != nil {
		log.Error().Err(err).Msg("Order search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// RegisterRoutes registers the handler's routes
func (h *OrderHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/orders/submit", h.HandleSubmitCart)
	router.GET("/orders/search", h.HandleSearchOrders)
	router.GET("/orders/:id", h.HandleGetOrder)
	router.POST("/orders/:id/approvals", h.HandleApplyApprovals)
	router.PUT("/orders/:id/status", h.HandleSetStatus)
	router.PUT("/purchase-orders/:id/fulfillment", h.HandleUpdateFulfillment)
}
