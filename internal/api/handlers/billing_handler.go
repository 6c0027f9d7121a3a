package handlers

import (
	"net/http"

	"github.com/Hecoloko/procurement-app-sub000/internal/billing"
	"github.com/Hecoloko/procurement-app-sub000/internal/repositories"
	"github.com/Hecoloko/procurement-app-sub000/internal/services"
	"github.com/Hecoloko/procurement-app-sub000/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// BillingHandler handles purchase order payment and billback requests
type BillingHandler struct {
	billingService *services.BillingService
	billback       billing.Service
	validate       *validator.Validate
	tracer         tracing.Tracer
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *services.BillingService, billback billing.Service, tracer tracing.Tracer) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		billback:       billback,
		validate:       validator.New(),
		tracer:         tracer,
	}
}

// PaymentUpdateRequest carries purchase order billing changes. Nil
// fields are left untouched.
type PaymentUpdateRequest struct {
	PaymentStatus *string  `json:"payment_status" validate:"omitempty,oneof=Unbilled Billed Paid"`
	InvoiceNumber *string  `json:"invoice_number"`
	InvoiceDate   *string  `json:"invoice_date"`
	InvoiceURL    *string  `json:"invoice_url"`
	DueDate       *string  `json:"due_date"`
	AmountDue     *float64 `json:"amount_due" validate:"omitempty,min=0"`
	PaymentDate   *string  `json:"payment_date"`
	PaymentMethod *string  `json:"payment_method"`

	ProcessPayment bool   `json:"process_payment"`
	PaymentToken   string `json:"payment_token"`
}

// PaymentUpdateResponse reports the committed update and any non-fatal
// side effect warning
type PaymentUpdateResponse struct {
	PurchaseOrder interface{} `json:"purchase_order"`
	TransactionID string      `json:"transaction_id,omitempty"`
	Warning       string      `json:"warning,omitempty"`
}

// VendorInvoiceBillbackRequest creates a billback line from a standalone
// vendor invoice that has no purchase order
type VendorInvoiceBillbackRequest struct {
	CompanyID   uuid.UUID `json:"company_id" binding:"required"`
	InvoiceID   uuid.UUID `json:"invoice_id" binding:"required"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount" binding:"required"`
}

// HandleRecordPaymentUpdate updates a purchase order's billing fields,
// optionally authorizing the payment through the gateway first
func (h *BillingHandler) HandleRecordPaymentUpdate(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-record-payment-update")
	defer h.tracer.EndTransaction(txn)

	poID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase order id"})
		return
	}

	var req PaymentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := services.PaymentUpdate{
		PaymentStatus:  req.PaymentStatus,
		InvoiceNumber:  req.InvoiceNumber,
		InvoiceURL:     req.InvoiceURL,
		AmountDue:      req.AmountDue,
		PaymentMethod:  req.PaymentMethod,
		ProcessPayment: req.ProcessPayment,
		PaymentToken:   req.PaymentToken,
	}
	if req.InvoiceDate != nil {
		t, err := parseDate(*req.InvoiceDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice_date"})
			return
		}
		update.InvoiceDate = &t
	}
	if req.DueDate != nil {
		t, err := parseDate(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
			return
		}
		update.DueDate = &t
	}
	if req.PaymentDate != nil {
		t, err := parseDate(*req.PaymentDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment_date"})
			return
		}
		update.PaymentDate = &t
	}

	h.tracer.AddAttribute(txn, "purchase_order_id", poID.String())
	h.tracer.AddAttribute(txn, "process_payment", req.ProcessPayment)

	result, err := h.billingService.RecordPaymentUpdate(c, poID, update)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "purchase order not found"})
		case errors.Is(err, services.ErrPaymentDeclined):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("Failed to record payment update")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.tracer.RecordError(txn, err)
		}
		return
	}

	c.JSON(http.StatusOK, PaymentUpdateResponse{
		PurchaseOrder: result.PurchaseOrder,
		TransactionID: result.TransactionID,
		Warning:       result.Warning,
	})
}

// HandleVendorInvoiceBillback creates a billback line for a vendor
// invoice that is not tied to a purchase order
func (h *BillingHandler) HandleVendorInvoiceBillback(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-vendor-invoice-billback")
	defer h.tracer.EndTransaction(txn)

	var req VendorInvoiceBillbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.billback.CreateBillableItemsFromVendorInvoice(c, req.CompanyID, req.InvoiceID, req.Description, req.Amount)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create vendor invoice billback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"billable_items": items})
}

// RegisterRoutes registers the handler's routes
func (h *BillingHandler) RegisterRoutes(router *gin.Engine) {
	router.PUT("/purchase-orders/:id/payment", h.HandleRecordPaymentUpdate)
	router.POST("/billbacks/vendor-invoice", h.HandleVendorInvoiceBillback)
}
