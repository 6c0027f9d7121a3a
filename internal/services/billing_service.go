package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Hecoloko/procurement-app-sub000/internal/billing"
	"github.com/Hecoloko/procurement-app-sub000/internal/metrics"
	"github.com/Hecoloko/procurement-app-sub000/internal/models"
	"github.com/Hecoloko/procurement-app-sub000/internal/payments"
)

// PaymentUpdate carries the billing fields a caller may change on a
// purchase order. Nil pointers leave the field untouched.
type PaymentUpdate struct {
	PaymentStatus *string
	InvoiceNumber *string
	InvoiceDate   *time.Time
	InvoiceURL    *string
	DueDate       *time.Time
	AmountDue     *float64
	PaymentDate   *time.Time
	PaymentMethod *string

	// ProcessPayment opts in to authorizing the payment with the
	// external gateway before anything is persisted
	ProcessPayment bool
	PaymentToken   string
}

// PaymentResult reports a committed payment update. Warning is set when a
// downstream side effect failed after the update was already committed.
type PaymentResult struct {
	PurchaseOrder *models.PurchaseOrder
	TransactionID string
	Warning       string
}

// BillingService reconciles purchase order payment state and triggers
// accounts-receivable billback when a vendor bill is paid
type BillingService struct {
	pos       PurchaseOrderStore
	billback  billing.Service
	processor payments.Processor
	collector *metrics.Metrics
}

// NewBillingService creates a new billing service. processor may be nil
// when no gateway is configured; ProcessPayment requests then fail.
func NewBillingService(pos PurchaseOrderStore, billback billing.Service, processor payments.Processor, collector *metrics.Metrics) *BillingService {
	return &BillingService{
		pos:       pos,
		billback:  billback,
		processor: processor,
		collector: collector,
	}
}

// RecordPaymentUpdate applies a payment update to a purchase order.
//
// When ProcessPayment is set the gateway authorization runs first and a
// failure or decline aborts the whole update with nothing persisted.
// When the update transitions the PO to Paid, billback creation is
// attempted exactly once; its failure does not roll the committed payment
// back and is reported as a warning instead.
func (s *BillingService) RecordPaymentUpdate(ctx context.Context, poID uuid.UUID, update PaymentUpdate) (*PaymentResult, error) {
	po, err := s.pos.GetByID(ctx, poID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load purchase order")
	}

	result := &PaymentResult{}

	if update.ProcessPayment {
		if s.processor == nil {
			return nil, errors.New("payment processing requested but no gateway is configured")
		}

		amount := po.AmountDue
		if update.AmountDue != nil {
			amount = *update.AmountDue
		}

		auth, err := s.processor.ProcessPayment(ctx, po.ID.String(), update.PaymentToken, amount, map[string]string{
			"order_id":  po.OrderID.String(),
			"vendor_id": po.VendorID.String(),
		})
		if err != nil {
			return nil, errors.Wrap(err, "payment authorization failed")
		}
		if !auth.Success {
			if s.collector != nil {
				s.collector.IncrementCounter(metrics.CounterPaymentsDeclined)
			}
			return nil, errors.Wrapf(ErrPaymentDeclined, "%s", auth.Error)
		}
		result.TransactionID = auth.TransactionID
	}

	fields := paymentFields(update)
	if err := s.pos.UpdatePayment(ctx, poID, fields); err != nil {
		return nil, errors.Wrap(err, "failed to persist payment update")
	}

	if s.collector != nil {
		s.collector.IncrementCounter(metrics.CounterPaymentsRecorded)
	}

	becamePaid := update.PaymentStatus != nil &&
		*update.PaymentStatus == models.PaymentPaid &&
		po.PaymentStatus != models.PaymentPaid

	if becamePaid {
		if _, err := s.billback.CreateBillableItemsFromPurchaseOrder(ctx, poID); err != nil {
			// The payment is already recorded; billback failure must not
			// undo it. Surface as a warning only.
			if s.collector != nil {
				s.collector.IncrementCounter(metrics.CounterBillbackFailures)
			}
			result.Warning = fmt.Sprintf("payment recorded, but billback creation failed: %v", err)
			log.Warn().Err(err).Str("po_id", poID.String()).Msg("Billback creation failed after payment")
		}
	}

	updated, err := s.pos.GetByID(ctx, poID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload purchase order")
	}
	result.PurchaseOrder = updated

	return result, nil
}

// paymentFields maps the set pointers of an update onto column updates
func paymentFields(update PaymentUpdate) map[string]interface{} {
	fields := make(map[string]interface{})
	if update.PaymentStatus != nil {
		fields["payment_status"] = *update.PaymentStatus
	}
	if update.InvoiceNumber != nil {
		fields["invoice_number"] = *update.InvoiceNumber
	}
	if update.InvoiceDate != nil {
		fields["invoice_date"] = *update.InvoiceDate
	}
	if update.InvoiceURL != nil {
		fields["invoice_url"] = *update.InvoiceURL
	}
	if update.DueDate != nil {
		fields["due_date"] = *update.DueDate
	}
	if update.AmountDue != nil {
		fields["amount_due"] = *update.AmountDue
	}
	if update.PaymentDate != nil {
		fields["payment_date"] = *update.PaymentDate
	}
	if update.PaymentMethod != nil {
		fields["payment_method"] = *update.PaymentMethod
	}
	return fields
}
