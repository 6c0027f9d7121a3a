package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Hecoloko/procurement-app-sub000/internal/cache"
	"github.com/Hecoloko/procurement-app-sub000/internal/metrics"
	"github.com/Hecoloko/procurement-app-sub000/internal/models"
)

// collectionLimit bounds every list fetch to the most recent records
const collectionLimit = 100

// CompanyGraph is the assembled in-memory view of one company's data
type CompanyGraph struct {
	Company        models.Company        `json:"company"`
	Carts          []models.Cart         `json:"carts"`
	Orders         []models.Order        `json:"orders"`
	PurchaseOrders []models.PurchaseOrder `json:"purchase_orders"`
	Products       []models.Product      `json:"products"`
	Vendors        []models.Vendor       `json:"vendors"`
	Properties     []models.Property     `json:"properties"`
	Accounts       []models.Account      `json:"accounts"`
	Customers      []models.Customer     `json:"customers"`
	AdminUsers     []models.AdminUser    `json:"admin_users"`
	Roles          []models.Role         `json:"roles"`
	BillableItems  []models.BillableItem `json:"billable_items"`
	SpawnedCarts   int                   `json:"spawned_carts"`
	LoadedAt       time.Time             `json:"loaded_at"`
}

// graphCache is the slice of the Redis cache the loader uses
type graphCache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Loader is the top-level load/refresh sequencer. It fetches all company
// collections, runs template recurrence, and assembles the composed
// graph handed to the presentation layer.
type Loader struct {
	carts     CartStore
	orders    OrderStore
	pos       PurchaseOrderStore
	catalog   CatalogStore
	refs      ReferenceStore
	billables BillableItemStore
	cartSvc   *CartService
	cache     graphCache
	session   *Session
	collector *metrics.Metrics
	timeout   time.Duration

	mu            sync.Mutex
	activeCompany uuid.UUID
}

// NewLoader creates a new data orchestrator. cache may be nil.
func NewLoader(
	carts CartStore,
	orders OrderStore,
	pos PurchaseOrderStore,
	catalog CatalogStore,
	refs ReferenceStore,
	billables BillableItemStore,
	cartSvc *CartService,
	graphC graphCache,
	session *Session,
	collector *metrics.Metrics,
	timeout time.Duration,
) *Loader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Loader{
		carts:     carts,
		orders:    orders,
		pos:       pos,
		catalog:   catalog,
		refs:      refs,
		billables: billables,
		cartSvc:   cartSvc,
		cache:     graphC,
		session:   session,
		collector: collector,
		timeout:   timeout,
	}
}

// ActiveCompany returns the company of the most recent load request
func (l *Loader) ActiveCompany() uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeCompany
}

func (l *Loader) setActiveCompany(id uuid.UUID) {
	l.mu.Lock()
	l.activeCompany = id
	l.mu.Unlock()
}

// LoadCompanyData fetches, normalizes and composes all data for one
// company. The whole sequence races a fixed deadline. A newer load for a
// different company supersedes an in-flight one: stale results are
// discarded rather than applied.
func (l *Loader) LoadCompanyData(ctx context.Context, companyID uuid.UUID) (*CompanyGraph, error) {
	l.setActiveCompany(companyID)
	started := time.Now()

	tctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	graph, err := l.load(tctx, companyID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return nil, ErrLoadTimeout
		}
		if isAuthError(err) && l.session != nil {
			l.session.Clear()
		}
		return nil, err
	}

	// Last-writer-wins on company identity, not on arrival order: a
	// result arriving after a company switch is thrown away.
	if l.ActiveCompany() != companyID {
		if l.collector != nil {
			l.collector.IncrementCounter(metrics.CounterLoadsSuperseded)
		}
		log.Info().
			Str("company_id", companyID.String()).
			Msg("Discarding stale load result after company switch")
		return nil, ErrLoadSuperseded
	}

	if l.collector != nil {
		l.collector.RecordTime(metrics.TimerCompanyLoad, time.Since(started))
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, cache.GraphCacheKey(companyID), graph, 5*time.Minute); err != nil {
			log.Warn().Err(err).Msg("Failed to cache company graph")
		}
	}

	return graph, nil
}

func (l *Loader) load(ctx context.Context, companyID uuid.UUID) (*CompanyGraph, error) {
	company, err := l.refs.GetCompany(ctx, companyID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve company")
	}

	graph := &CompanyGraph{Company: *company}

	// All collection fetches run concurrently; nothing below depends on
	// their relative order.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		carts, err := l.carts.ListByCompany(gctx, companyID, collectionLimit)
		graph.Carts = carts
		return err
	})
	g.Go(func() error {
		orders, err := l.orders.ListByCompany(gctx, companyID, collectionLimit)
		graph.Orders = orders
		return err
	})
	g.Go(func() error {
		pos, err := l.pos.ListByCompany(gctx, companyID, collectionLimit)
		graph.PurchaseOrders = pos
		return err
	})
	g.Go(func() error {
		products, err := l.catalog.ListProducts(gctx, companyID)
		graph.Products = products
		return err
	})
	g.Go(func() error {
		vendors, err := l.catalog.ListVendors(gctx, companyID)
		graph.Vendors = vendors
		return err
	})
	g.Go(func() error {
		properties, err := l.refs.ListProperties(gctx, companyID)
		graph.Properties = properties
		return err
	})
	g.Go(func() error {
		accounts, err := l.refs.ListAccounts(gctx, companyID)
		graph.Accounts = accounts
		return err
	})
	g.Go(func() error {
		customers, err := l.refs.ListCustomers(gctx, companyID)
		graph.Customers = customers
		return err
	})
	g.Go(func() error {
		users, err := l.refs.ListAdminUsers(gctx, companyID)
		graph.AdminUsers = users
		return err
	})
	g.Go(func() error {
		roles, err := l.refs.ListRoles(gctx, companyID)
		graph.Roles = roles
		return err
	})
	g.Go(func() error {
		items, err := l.billables.ListByCompany(gctx, companyID, collectionLimit)
		graph.BillableItems = items
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Template recurrence runs after the fetch; the cart re-fetch below
	// happens strictly after any spawn writes complete.
	spawned, err := l.cartSvc.RunRecurrence(ctx, companyID, time.Now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to run template recurrence")
	}
	graph.SpawnedCarts = spawned

	if spawned > 0 {
		carts, err := l.carts.ListByCompany(ctx, companyID, collectionLimit)
		if err != nil {
			return nil, errors.Wrap(err, "failed to re-fetch carts after spawning")
		}
		graph.Carts = carts
	}

	composeGraph(graph)
	graph.LoadedAt = time.Now()

	return graph, nil
}

// composeGraph wires the cross-references the presentation layer reads:
// purchase orders are attached to their orders, and vendor names are
// resolved onto product vendor options
func composeGraph(graph *CompanyGraph) {
	posByOrder := make(map[uuid.UUID][]models.PurchaseOrder, len(graph.Orders))
	for _, po := range graph.PurchaseOrders {
		posByOrder[po.OrderID] = append(posByOrder[po.OrderID], po)
	}
	for i := range graph.Orders {
		if pos, ok := posByOrder[graph.Orders[i].ID]; ok {
			graph.Orders[i].PurchaseOrders = pos
		}
	}

	vendorsByID := make(map[uuid.UUID]models.Vendor, len(graph.Vendors))
	for _, vendor := range graph.Vendors {
		vendorsByID[vendor.ID] = vendor
	}
	for i := range graph.Products {
		for j := range graph.Products[i].VendorOptions {
			option := &graph.Products[i].VendorOptions[j]
			if vendor, ok := vendorsByID[option.VendorID]; ok {
				option.Vendor = vendor
			}
		}
	}
}

// isAuthError sniffs store errors for authentication failures. The
// hosted backend reports them only through message text.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"jwt", "not authenticated", "invalid token", "session expired", "401"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
