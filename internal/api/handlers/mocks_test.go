package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Hecoloko/procurement-app-sub000/config"
	"github.com/Hecoloko/procurement-app-sub000/internal/models"
	"github.com/Hecoloko/procurement-app-sub000/internal/tracing"
)

// noopTracer returns a disabled tracer for handler construction
func noopTracer() tracing.Tracer {
	tracer, _ := tracing.NewTracer(config.TracingConfig{})
	return tracer
}

type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) Create(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCartStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, id)
	if cart, ok := args.Get(0).(*models.Cart); ok {
		return cart, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartStore) ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Cart, error) {
	args := m.Called(ctx, companyID, limit)
	if carts, ok := args.Get(0).([]models.Cart); ok {
		return carts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartStore) ListTemplates(ctx context.Context, companyID uuid.UUID) ([]models.Cart, error) {
	args := m.Called(ctx, companyID)
	if carts, ok := args.Get(0).([]models.Cart); ok {
		return carts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartStore) UpdateTotals(ctx context.Context, id uuid.UUID, itemCount int, totalCost float64) error {
	args := m.Called(ctx, id, itemCount, totalCost)
	return args.Error(0)
}

func (m *MockCartStore) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockCartStore) StampLastRun(ctx context.Context, id uuid.UUID, runDate time.Time) error {
	args := m.Called(ctx, id, runDate)
	return args.Error(0)
}

func (m *MockCartStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCartStore) AddItem(ctx context.Context, item *models.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCartStore) UpdateItem(ctx context.Context, item *models.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCartStore) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockCartStore) GetItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	args := m.Called(ctx, cartID)
	if items, ok := args.Get(0).([]models.CartItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartStore) WorkOrderIDExists(ctx context.Context, workOrderID string) (bool, error) {
	args := m.Called(ctx, workOrderID)
	return args.Bool(0), args.Error(1)
}

type MockBillbackService struct {
	mock.Mock
}

func (m *MockBillbackService) CreateBillableItemsFromPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]models.BillableItem, error) {
	args := m.Called(ctx, poID)
	if items, ok := args.Get(0).([]models.BillableItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBillbackService) CreateBillableItemsFromVendorInvoice(ctx context.Context, companyID, invoiceID uuid.UUID, description string, amount float64) ([]models.BillableItem, error) {
	args := m.Called(ctx, companyID, invoiceID, description, amount)
	if items, ok := args.Get(0).([]models.BillableItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}
