package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

func receivedMessage(body string) *azservicebus.ReceivedMessage {
	return &azservicebus.ReceivedMessage{
		MessageID: uuid.New().String(),
		Body:      []byte(body),
	}
}

func TestProcessPaymentMessageAppliesUpdate(t *testing.T) {
	poID := uuid.New()

	pos := new(MockPurchaseOrderStore)
	pos.On("GetByID", mock.Anything, poID).Return(&models.PurchaseOrder{
		ID:            poID,
		Status:        models.POStatusProcessing,
		PaymentStatus: models.PaymentUnbilled,
	}, nil)
	pos.On("UpdatePayment", mock.Anything, poID, mock.Anything).Return(nil)

	service := NewBillingService(pos, nil, nil, nil)

	body := fmt.Sprintf(`{
		"purchase_order_id": %q,
		"payment_status": "Billed",
		"invoice_number": "INV-1001",
		"due_date": "2024-04-01",
		"amount_due": 142.5
	}`, poID)

	err := service.ProcessPaymentMessage(context.Background(), receivedMessage(body))
	require.NoError(t, err)
	pos.AssertCalled(t, "UpdatePayment", mock.Anything, poID, mock.Anything)
}

func TestProcessPaymentMessageDropsMalformedBody(t *testing.T) {
	pos := new(MockPurchaseOrderStore)
	service := NewBillingService(pos, nil, nil, nil)

	err := service.ProcessPaymentMessage(context.Background(), receivedMessage(`{not json`))
	require.NoError(t, err, "malformed messages complete instead of redelivering forever")
	pos.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestProcessPaymentMessageDropsMissingPurchaseOrderID(t *testing.T) {
	pos := new(MockPurchaseOrderStore)
	service := NewBillingService(pos, nil, nil, nil)

	err := service.ProcessPaymentMessage(context.Background(), receivedMessage(`{"payment_status":"Paid"}`))
	require.NoError(t, err)
	pos.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestProcessPaymentMessageReturnsUpdateFailureForRedelivery(t *testing.T) {
	poID := uuid.New()

	pos := new(MockPurchaseOrderStore)
	pos.On("GetByID", mock.Anything, poID).Return(nil, errors.New("connection refused"))

	service := NewBillingService(pos, nil, nil, nil)

	body := fmt.Sprintf(`{"purchase_order_id": %q, "payment_status": "Paid"}`, poID)
	err := service.ProcessPaymentMessage(context.Background(), receivedMessage(body))
	require.Error(t, err)
}

func TestParseMessageDate(t *testing.T) {
	rfc := "2024-03-18T09:00:00Z"
	dateOnly := "2024-04-01"
	garbage := "next tuesday"
	empty := ""

	require.Equal(t, 18, parseMessageDate(&rfc).Day())
	require.Equal(t, 1, parseMessageDate(&dateOnly).Day())
	require.Nil(t, parseMessageDate(&garbage))
	require.Nil(t, parseMessageDate(&empty))
	require.Nil(t, parseMessageDate(nil))
}
