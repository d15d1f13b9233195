package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"pricing-engine/internal/config"
	infraCache "pricing-engine/internal/infrastructure/cache"
	infraDB "pricing-engine/internal/infrastructure/database"
	"pricing-engine/pkg/cache"
	"pricing-engine/pkg/database"
	"pricing-engine/pkg/logger"

	catalogHandler "pricing-engine/internal/domains/catalog/handler"
	catalogRepo "pricing-engine/internal/domains/catalog/repository"
	catalogService "pricing-engine/internal/domains/catalog/service"
	checkoutHandler "pricing-engine/internal/domains/checkout/handler"
	checkoutService "pricing-engine/internal/domains/checkout/service"
	pricingHandler "pricing-engine/internal/domains/pricing/handler"
	pricingService "pricing-engine/internal/domains/pricing/service"
	promoHandler "pricing-engine/internal/domains/promotion/handler"
	promoRepo "pricing-engine/internal/domains/promotion/repository"
	promoService "pricing-engine/internal/domains/promotion/service"
	ruleHandler "pricing-engine/internal/domains/rule/handler"
	ruleRepo "pricing-engine/internal/domains/rule/repository"
	ruleService "pricing-engine/internal/domains/rule/service"
)

// Container is the root of the dependency graph. Initialization order
// is config, infrastructure, repositories, services, handlers; getting
// it wrong is a nil dereference at startup, not at request time.
type Container struct {
	Config *config.Config
	DB     *infraDB.PostgresDB
	Cache  cache.Cache

	RuleRepo    ruleRepo.RuleRepository
	PromoRepo   promoRepo.PromoRepository
	CatalogRepo catalogRepo.CatalogRepository

	RuleService    ruleService.ServiceInterface
	PromoService   promoService.ServiceInterface
	MutatorService catalogService.ServiceInterface
	Engine         *pricingService.Engine
	Applicator     *pricingService.Applicator
	Finalizer      *checkoutService.Finalizer

	RuleHandler     *ruleHandler.RuleHandler
	PromoHandler    *promoHandler.PromoHandler
	CatalogHandler  *catalogHandler.CatalogHandler
	PricingHandler  *pricingHandler.PricingHandler
	CheckoutHandler *checkoutHandler.CheckoutHandler
}

// NewContainer builds and wires the whole application.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	db := infraDB.NewPostgresDB(infraDB.FromAppConfig(cfg.Database))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err := redisCache.Ping(ctx); err != nil {
		// The rule cache degrades to repository reads, so a missing
		// Redis is a warning, not a startup failure.
		logger.Warn("redis unavailable at startup", map[string]interface{}{"error": err.Error()})
	}
	c.Cache = redisCache

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.RuleRepo = ruleRepo.NewPostgresRepository(pool)
	c.PromoRepo = promoRepo.NewPostgresRepository(pool)
	c.CatalogRepo = catalogRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	runInTx := func(ctx context.Context, fn func(pgx.Tx) error) error {
		return database.WithTransaction(ctx, c.DB.Pool, fn)
	}

	c.RuleService = ruleService.NewRuleService(c.RuleRepo, c.Cache, c.Config.Pricing.RuleCacheTTL)
	c.PromoService = promoService.NewPromoService(c.PromoRepo)
	c.MutatorService = catalogService.NewMutatorService(c.CatalogRepo, c.RuleRepo, c.RuleService, runInTx)
	c.Engine = pricingService.NewEngine(c.CatalogRepo, c.RuleService)
	c.Applicator = pricingService.NewApplicator(c.Engine, c.PromoService)
	c.Finalizer = checkoutService.NewFinalizer(c.Engine, c.Applicator, c.PromoRepo, runInTx)
}

func (c *Container) initHandlers() {
	c.RuleHandler = ruleHandler.NewRuleHandler(c.RuleService)
	c.PromoHandler = promoHandler.NewPromoHandler(c.PromoService)
	c.CatalogHandler = catalogHandler.NewCatalogHandler(c.MutatorService)
	c.PricingHandler = pricingHandler.NewPricingHandler(c.Engine, c.Applicator)
	c.CheckoutHandler = checkoutHandler.NewCheckoutHandler(c.Finalizer)
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				logger.Warn("failed to close redis", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	logger.Info("container cleanup completed", nil)
}
