package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Hecoloko/procurement-app-sub000/internal/messaging"
	"github.com/Hecoloko/procurement-app-sub000/internal/metrics"
	"github.com/Hecoloko/procurement-app-sub000/internal/models"
	"github.com/Hecoloko/procurement-app-sub000/internal/recurrence"
	"github.com/Hecoloko/procurement-app-sub000/internal/repositories"
)

// spawnMarkerStore claims the best-effort idempotency marker for a
// template firing; the Redis cache implements it
type spawnMarkerStore interface {
	ClaimSpawnMarker(ctx context.Context, templateID uuid.UUID, day time.Time) (bool, error)
}

// CartService owns cart mutation and template recurrence
type CartService struct {
	carts     CartStore
	markers   spawnMarkerStore
	bus       messaging.ServiceBusClient
	collector *metrics.Metrics
}

// NewCartService creates a new cart service. markers may be nil when no
// cache is configured; the LastRunAt stamp alone then guards re-firing.
// bus may be nil when messaging is not configured.
func NewCartService(carts CartStore, markers spawnMarkerStore, bus messaging.ServiceBusClient, collector *metrics.Metrics) *CartService {
	return &CartService{
		carts:     carts,
		markers:   markers,
		bus:       bus,
		collector: collector,
	}
}

// CreateCart creates a new cart with a freshly generated work order ID
func (s *CartService) CreateCart(ctx context.Context, cart *models.Cart) error {
	workOrderID, err := GenerateWorkOrderID(ctx, s.carts)
	if err != nil {
		return err
	}

	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	cart.WorkOrderID = workOrderID
	if cart.Name == "" {
		cart.Name = "Untitled"
	}
	if cart.Type == "" {
		cart.Type = models.CartTypeStandard
	}
	if cart.Status == "" {
		cart.Status = models.CartStatusDraft
	}
	cart.ItemCount, cart.TotalCost = RecomputeTotals(cart.Items)

	for i := range cart.Items {
		if cart.Items[i].ID == uuid.Nil {
			cart.Items[i].ID = uuid.New()
		}
		cart.Items[i].CartID = cart.ID
	}

	if err := s.carts.Create(ctx, cart); err != nil {
		// Two concurrent creates can pass the exists check with the same
		// work order ID; the unique index catches the loser. Retry once
		// with a fresh ID before giving up.
		if errors.Is(err, repositories.ErrDuplicateKey) {
			workOrderID, genErr := GenerateWorkOrderID(ctx, s.carts)
			if genErr != nil {
				return genErr
			}
			cart.WorkOrderID = workOrderID
			err = s.carts.Create(ctx, cart)
		}
		if err != nil {
			return errors.Wrap(err, "failed to create cart")
		}
	}

	log.Info().
		Str("cart_id", cart.ID.String()).
		Str("work_order_id", cart.WorkOrderID).
		Msg("Cart created")

	return nil
}

// GetCart returns a cart with its items
func (s *CartService) GetCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	return s.carts.GetByID(ctx, cartID)
}

// AddItem adds a line item to a cart and refreshes the cart's totals
func (s *CartService) AddItem(ctx context.Context, cartID uuid.UUID, item *models.CartItem) (*models.Cart, error) {
	if item.Quantity <= 0 || item.UnitPrice < 0 {
		return nil, ErrInvalidItem
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CartID = cartID
	if item.TotalPrice == 0 {
		item.TotalPrice = float64(item.Quantity) * item.UnitPrice
	}
	if item.ApprovalStatus == "" {
		item.ApprovalStatus = models.ApprovalPending
	}

	if err := s.carts.AddItem(ctx, item); err != nil {
		return nil, err
	}

	return s.refreshTotals(ctx, cartID)
}

// UpdateItem saves changes to a line item. A quantity of zero or less
// deletes the item instead.
func (s *CartService) UpdateItem(ctx context.Context, cartID uuid.UUID, item *models.CartItem) (*models.Cart, error) {
	if item.Quantity <= 0 {
		return s.RemoveItem(ctx, cartID, item.ID)
	}

	item.TotalPrice = float64(item.Quantity) * item.UnitPrice

	if err := s.carts.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	return s.refreshTotals(ctx, cartID)
}

// RemoveItem deletes a line item and refreshes the cart's totals
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.Cart, error) {
	if err := s.carts.DeleteItem(ctx, itemID); err != nil {
		return nil, err
	}

	return s.refreshTotals(ctx, cartID)
}

// DeleteCart removes a cart and its items
func (s *CartService) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	return s.carts.Delete(ctx, cartID)
}

// refreshTotals recomputes the cached aggregate pair from the cart's
// current items and writes it back
func (s *CartService) refreshTotals(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	items, err := s.carts.GetItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	itemCount, totalCost := RecomputeTotals(items)
	if err := s.carts.UpdateTotals(ctx, cartID, itemCount, totalCost); err != nil {
		return nil, err
	}

	return s.carts.GetByID(ctx, cartID)
}

// RunRecurrence evaluates every template cart of a company against today
// and spawns draft carts for the ones that are due. Spawn creation and
// the LastRunAt stamp are two separate writes, create first and stamp
// second; a crash between them yields at most one duplicate spawn on the
// next evaluation. This is an accepted at-least-once guarantee.
func (s *CartService) RunRecurrence(ctx context.Context, companyID uuid.UUID, today time.Time) (int, error) {
	templates, err := s.carts.ListTemplates(ctx, companyID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list template carts")
	}

	spawned := 0
	for i := range templates {
		template := &templates[i]

		decision := recurrence.Evaluate(template, today)
		if !decision.ShouldRun {
			continue
		}

		if s.markers != nil {
			claimed, err := s.markers.ClaimSpawnMarker(ctx, template.ID, recurrence.Midnight(today))
			if err != nil {
				log.Warn().Err(err).
					Str("template_id", template.ID.String()).
					Msg("Spawn marker check failed, relying on last run stamp")
			} else if !claimed {
				log.Info().
					Str("template_id", template.ID.String()).
					Msg("Spawn already claimed for today, skipping")
				continue
			}
		}

		workOrderID, err := GenerateWorkOrderID(ctx, s.carts)
		if err != nil {
			log.Error().Err(err).
				Str("template_id", template.ID.String()).
				Msg("Skipping template, no work order ID available")
			continue
		}
		decision.Spawn.WorkOrderID = workOrderID

		if err := s.carts.Create(ctx, decision.Spawn); err != nil {
			log.Error().Err(err).
				Str("template_id", template.ID.String()).
				Msg("Failed to create spawned cart")
			continue
		}

		if err := s.carts.StampLastRun(ctx, template.ID, recurrence.Midnight(today)); err != nil {
			// The spawn exists but the template is unstamped; the next
			// evaluation may fire again. Accepted at-least-once behavior.
			log.Error().Err(err).
				Str("template_id", template.ID.String()).
				Str("spawn_id", decision.Spawn.ID.String()).
				Msg("Failed to stamp template last run after spawning")
		}

		spawned++
		if s.collector != nil {
			s.collector.IncrementCounter(metrics.CounterCartsSpawned)
		}

		if s.bus != nil {
			err := s.bus.Publish(ctx, messaging.EventCartSpawned, map[string]interface{}{
				"template_id":   template.ID.String(),
				"cart_id":       decision.Spawn.ID.String(),
				"work_order_id": workOrderID,
			})
			if err != nil {
				log.Warn().Err(err).
					Str("template_id", template.ID.String()).
					Msg("Failed to publish cart spawned event")
			}
		}

		log.Info().
			Str("template_id", template.ID.String()).
			Str("spawn_id", decision.Spawn.ID.String()).
			Str("work_order_id", workOrderID).
			Msg("Template cart spawned a draft")
	}

	return spawned, nil
}
