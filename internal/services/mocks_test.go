package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Hecoloko/procurement-app-sub000/internal/messaging"
	"github.com/Hecoloko/procurement-app-sub000/internal/models"
	"github.com/Hecoloko/procurement-app-sub000/internal/payments"
)

// Mock stores shared by the service tests

type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) Create(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCartStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartStore) ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Cart, error) {
	args := m.Called(ctx, companyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Cart), args.Error(1)
}

func (m *MockCartStore) ListTemplates(ctx context.Context, companyID uuid.UUID) ([]models.Cart, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Cart), args.Error(1)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartItem), args.Error(1)
}

func (m *MockCartStore) WorkOrderIDExists(ctx context.Context, workOrderID string) (bool, error) {
	args := m.Called(ctx, workOrderID)
	return args.Bool(0), args.Error(1)
}

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) SubmitCart(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderStore) ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.Order, error) {
	args := m.Called(ctx, companyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderStore) SetStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}

func (m *MockOrderStore) UpdateItemApproval(ctx context.Context, itemID uuid.UUID, status, reason string) error {
	args := m.Called(ctx, itemID, status, reason)
	return args.Error(0)
}

func (m *MockOrderStore) GetItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderItem), args.Error(1)
}

type MockPurchaseOrderStore struct {
	mock.Mock
}

func (m *MockPurchaseOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderStore) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PurchaseOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderStore) ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.PurchaseOrder, error) {
	args := m.Called(ctx, companyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderStore) UpdateFulfillment(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockPurchaseOrderStore) UpdatePayment(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

type MockCatalogStore struct {
	mock.Mock
}

func (m *MockCatalogStore) ListProducts(ctx context.Context, companyID uuid.UUID) ([]models.Product, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockCatalogStore) ListVendors(ctx context.Context, companyID uuid.UUID) ([]models.Vendor, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vendor), args.Error(1)
}

type MockReferenceStore struct {
	mock.Mock
}

func (m *MockReferenceStore) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockReferenceStore) ListProperties(ctx context.Context, companyID uuid.UUID) ([]models.Property, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockReferenceStore) ListAccounts(ctx context.Context, companyID uuid.UUID) ([]models.Account, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockReferenceStore) ListCustomers(ctx context.Context, companyID uuid.UUID) ([]models.Customer, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockReferenceStore) ListAdminUsers(ctx context.Context, companyID uuid.UUID) ([]models.AdminUser, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdminUser), args.Error(1)
}

func (m *MockReferenceStore) ListRoles(ctx context.Context, companyID uuid.UUID) ([]models.Role, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Role), args.Error(1)
}

type MockBillableItemStore struct {
	mock.Mock
}

func (m *MockBillableItemStore) ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]models.BillableItem, error) {
	args := m.Called(ctx, companyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BillableItem), args.Error(1)
}

type MockMarkerStore struct {
	mock.Mock
}

func (m *MockMarkerStore) ClaimSpawnMarker(ctx context.Context, templateID uuid.UUID, day time.Time) (bool, error) {
	args := m.Called(ctx, templateID, day)
	return args.Bool(0), args.Error(1)
}

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) IndexOrder(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockBus struct {
	mock.Mock
}

func (m *MockBus) Publish(ctx context.Context, eventType string, data interface{}) error {
	args := m.Called(ctx, eventType, data)
	return args.Error(0)
}

func (m *MockBus) ProcessMessages(ctx context.Context, handler messaging.MessageHandler) error {
	args := m.Called(ctx, handler)
	return args.Error(0)
}

func (m *MockBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockBillback struct {
	mock.Mock
}

func (m *MockBillback) CreateBillableItemsFromPurchaseOrder(ctx context.Context, poID uuid.UUID) ([]models.BillableItem, error) {
	args := m.Called(ctx, poID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BillableItem), args.Error(1)
}

func (m *MockBillback) CreateBillableItemsFromVendorInvoice(ctx context.Context, companyID, invoiceID uuid.UUID, description string, amount float64) ([]models.BillableItem, error) {
	args := m.Called(ctx, companyID, invoiceID, description, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BillableItem), args.Error(1)
}

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) ProcessPayment(ctx context.Context, referenceID, token string, amount float64, metadata map[string]string) (*payments.Result, error) {
	args := m.Called(ctx, referenceID, token, amount, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Result), args.Error(1)
}
