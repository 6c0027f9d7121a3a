package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// paymentUpdateMessage is the inbound queue payload from the AP system
type paymentUpdateMessage struct {
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	PaymentStatus   *string   `json:"payment_status"`
	InvoiceNumber   *string   `json:"invoice_number"`
	InvoiceDate     *string   `json:"invoice_date"`
	InvoiceURL      *string   `json:"invoice_url"`
	DueDate         *string   `json:"due_date"`
	AmountDue       *float64  `json:"amount_due"`
	PaymentDate     *string   `json:"payment_date"`
	PaymentMethod   *string   `json:"payment_method"`
}

// ProcessPaymentMessage handles one payment update message from the
// queue. A malformed message is dropped rather than retried forever; a
// failed update is returned so the message is redelivered.
func (s *BillingService) ProcessPaymentMessage(ctx context.Context, message *azservicebus.ReceivedMessage) error {
	var msg paymentUpdateMessage
	if err := json.Unmarshal(message.Body, &msg); err != nil {
		log.Error().Err(err).
			Str("message_id", message.MessageID).
			Msg("Dropping malformed payment update message")
		return nil
	}

	if msg.PurchaseOrderID == uuid.Nil {
		log.Error().
			Str("message_id", message.MessageID).
			Msg("Dropping payment update message without purchase order id")
		return nil
	}

	update := PaymentUpdate{
		PaymentStatus: msg.PaymentStatus,
		InvoiceNumber: msg.InvoiceNumber,
		InvoiceURL:    msg.InvoiceURL,
		AmountDue:     msg.AmountDue,
		PaymentMethod: msg.PaymentMethod,
	}
	update.InvoiceDate = parseMessageDate(msg.InvoiceDate)
	update.DueDate = parseMessageDate(msg.DueDate)
	update.PaymentDate = parseMessageDate(msg.PaymentDate)

	result, err := s.RecordPaymentUpdate(ctx, msg.PurchaseOrderID, update)
	if err != nil {
		return errors.Wrap(err, "failed to apply queued payment update")
	}

	if result.Warning != "" {
		log.Warn().
			Str("purchase_order_id", msg.PurchaseOrderID.String()).
			Str("warning", result.Warning).
			Msg("Queued payment update committed with warning")
	}

	return nil
}

func parseMessageDate(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, *value); err == nil {
			return &t
		}
	}
	log.Warn().Str("value", *value).Msg("Ignoring unparseable date in payment update message")
	return nil
}
