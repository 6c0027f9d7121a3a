package cmd

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Hecoloko/procurement-app-sub000/config"
	"github.com/Hecoloko/procurement-app-sub000/internal/billing"
	"github.com/Hecoloko/procurement-app-sub000/internal/cache"
	"github.com/Hecoloko/procurement-app-sub000/internal/messaging"
	"github.com/Hecoloko/procurement-app-sub000/internal/metrics"
	"github.com/Hecoloko/procurement-app-sub000/internal/models"
	"github.com/Hecoloko/procurement-app-sub000/internal/payments"
	"github.com/Hecoloko/procurement-app-sub000/internal/repositories"
	"github.com/Hecoloko/procurement-app-sub000/internal/search"
	"github.com/Hecoloko/procurement-app-sub000/internal/services"
	"github.com/Hecoloko/procurement-app-sub000/internal/tracing"
)

// appDeps holds the wired application components shared by the api and
// worker commands
type appDeps struct {
	db      *gorm.DB
	cache   *cache.RedisCache
	tracer  tracing.Tracer
	elastic *search.ElasticClient
	bus     messaging.ServiceBusClient
	metrics *metrics.Metrics

	cartService    *services.CartService
	orderService   *services.OrderService
	billingService *services.BillingService
	billback       billing.Service
	loader         *services.Loader
	session        *services.Session

	cartRepo      *repositories.CartRepository
	orderRepo     *repositories.OrderRepository
	poRepo        *repositories.PurchaseOrderRepository
	catalogRepo   *repositories.CatalogRepository
	referenceRepo *repositories.ReferenceRepository
}

// buildDeps connects to the backing stores and wires the service graph.
// Optional backends (cache, tracing, search, service bus) degrade to
// warnings; the database is required.
func buildDeps(cfg config.Config) (*appDeps, error) {
	db, err := initDatabase(cfg)
	if err != nil {
		return nil, err
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
	}

	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
		elasticClient = nil
	}

	bus, err := messaging.NewServiceBusClient(cfg.Azure)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Service Bus client, continuing without messaging")
		bus = nil
	}

	metricsCollector := metrics.NewMetrics()

	cartRepo := repositories.NewCartRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	poRepo := repositories.NewPurchaseOrderRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	referenceRepo := repositories.NewReferenceRepository(db)
	billableRepo := repositories.NewBillableItemRepository(db)

	billbackService := billing.NewBillbackService(poRepo, orderRepo, billableRepo, bus, metricsCollector)

	var processor payments.Processor
	if cfg.Gateway.APIKey != "" {
		processor = payments.NewGatewayClient(cfg.Gateway)
	} else {
		log.Warn().Msg("No payment gateway API key configured, payment processing is disabled")
	}

	cartService := services.NewCartService(cartRepo, redisCache, bus, metricsCollector)

	var orderService *services.OrderService
	if elasticClient != nil {
		orderService = services.NewOrderService(orderRepo, cartRepo, poRepo, elasticClient, bus, metricsCollector)
	} else {
		orderService = services.NewOrderService(orderRepo, cartRepo, poRepo, nil, bus, metricsCollector)
	}
	billingService := services.NewBillingService(poRepo, billbackService, processor, metricsCollector)

	session := services.NewSession()
	loader := services.NewLoader(
		cartRepo, orderRepo, poRepo, catalogRepo, referenceRepo, billableRepo,
		cartService, redisCache, session, metricsCollector, cfg.LoadTimeout,
	)

	return &appDeps{
		db:             db,
		cache:          redisCache,
		tracer:         tracer,
		elastic:        elasticClient,
		bus:            bus,
		metrics:        metricsCollector,
		cartService:    cartService,
		orderService:   orderService,
		billingService: billingService,
		billback:       billbackService,
		loader:         loader,
		session:        session,
		cartRepo:       cartRepo,
		orderRepo:      orderRepo,
		poRepo:         poRepo,
		catalogRepo:    catalogRepo,
		referenceRepo:  referenceRepo,
	}, nil
}

func initDatabase(cfg config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := models.SetupModels(db); err != nil {
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying DB connection")
	}

	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	return db, nil
}
