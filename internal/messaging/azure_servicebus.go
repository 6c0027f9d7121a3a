package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/rs/zerolog/log"

	"github.com/Hecoloko/procurement-app-sub000/config"
)

// Event types published to the procurement event queue
const (
	EventBillbackCreated    = "BillbackCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventCartSpawned        = "CartSpawned"
)

// Event is the common envelope for outbound messages
type Event struct {
	EventType string          `json:"eventType"`
	Data      json.RawMessage `json:"data"`
}

// MessageHandler processes one inbound service bus message
type MessageHandler func(ctx context.Context, message *azservicebus.ReceivedMessage) error

// ServiceBusClient is an interface for Azure Service Bus operations
type ServiceBusClient interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
	ProcessMessages(ctx context.Context, handler MessageHandler) error
	Close() error
}

// serviceBusClient implements the ServiceBusClient interface
type serviceBusClient struct {
	client       *azservicebus.Client
	sender       *azservicebus.Sender
	receiveQueue string
}

// NewServiceBusClient creates a new Azure Service Bus client with a sender
// on the event queue and a receiver on the payment update queue
func NewServiceBusClient(cfg config.AzureConfig) (ServiceBusClient, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("Azure Service Bus connection string is empty")
	}

	client, err := azservicebus.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus client: %w", err)
	}

	sender, err := client.NewSender(cfg.EventQueueName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus sender: %w", err)
	}

	return &serviceBusClient{
		client:       client,
		sender:       sender,
		receiveQueue: cfg.PaymentQueueName,
	}, nil
}

// Publish sends an event envelope to the event queue
func (s *serviceBusClient) Publish(ctx context.Context, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	body, err := json.Marshal(Event{EventType: eventType, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	msg := &azservicebus.Message{
		Body: body,
		ApplicationProperties: map[string]interface{}{
			"eventType": eventType,
			"time":      time.Now().UTC().Format(time.RFC3339),
		},
	}

	return s.sender.SendMessage(ctx, msg, nil)
}

// ProcessMessages receives from the payment update queue until the context
// is cancelled. Failed messages are abandoned back to the queue.
func (s *serviceBusClient) ProcessMessages(ctx context.Context, handler MessageHandler) error {
	receiver, err := s.client.NewReceiverForQueue(s.receiveQueue, nil)
	if err != nil {
		return fmt.Errorf("failed to create Service Bus receiver: %w", err)
	}
	defer func() {
		if err := receiver.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error closing Service Bus receiver")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		messages, err := receiver.ReceiveMessages(ctx, 10, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Msg("Error receiving messages")
			time.Sleep(2 * time.Second)
			continue
		}

		for _, message := range messages {
			if err := handler(ctx, message); err != nil {
				log.Error().Err(err).Str("message_id", message.MessageID).Msg("Error processing message")
				if err := receiver.AbandonMessage(ctx, message, nil); err != nil {
					log.Error().Err(err).Msg("(AbandonMessage) failed")
				}
				continue
			}

			if err := receiver.CompleteMessage(ctx, message, nil); err != nil {
				log.Error().Err(err).Msg("(CompleteMessage) failed")
			}
		}
	}
}

// Close closes the Service Bus client
func (s *serviceBusClient) Close() error {
	if s.sender != nil {
		if err := s.sender.Close(context.Background()); err != nil {
			return err
		}
	}

	if s.client != nil {
		return s.client.Close(context.Background())
	}

	return nil
}
