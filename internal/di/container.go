package di

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-mapsync/internal/logging"
	"github.com/goliatone/go-mapsync/internal/logging/gologger"
	"github.com/goliatone/go-mapsync/internal/mapdoc"
	"github.com/goliatone/go-mapsync/internal/runtimeconfig"
	"github.com/goliatone/go-mapsync/internal/stores"
	"github.com/goliatone/go-mapsync/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Container wires module dependencies. Memory-backed repositories are the
// default; binding a bun.DB switches every repository to SQL storage.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	clock          func() time.Time

	memoryRepo *mapdoc.MemoryRepository

	elementRepo   mapdoc.ElementRepository
	linkRepo      mapdoc.LinkRepository
	storeFlagRepo mapdoc.StoreFlagRepository
	storeRepo     stores.Repository

	documentSvc mapdoc.Service
	storeSvc    stores.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB binds the SQL database every repository runs against.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the cache service used by the store registry reads.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the logger provider built from config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithClock overrides the clock injected into services.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

// WithDocumentService overrides the default document service binding.
func WithDocumentService(svc mapdoc.Service) Option {
	return func(c *Container) {
		c.documentSvc = svc
	}
}

// WithStoreService overrides the default store registry binding.
func WithStoreService(svc stores.Service) Option {
	return func(c *Container) {
		c.storeSvc = svc
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	memoryRepo := mapdoc.NewMemoryRepository()

	c := &Container{
		Config:        cfg,
		cacheTTL:      cacheTTL,
		memoryRepo:    memoryRepo,
		elementRepo:   memoryRepo,
		linkRepo:      memoryRepo,
		storeFlagRepo: memoryRepo,
		storeRepo:     &memoryStoreRegistry{docs: memoryRepo},
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()

	if c.documentSvc == nil {
		svcOpts := []mapdoc.ServiceOption{
			mapdoc.WithLogger(logging.DocumentLogger(c.loggerProvider)),
		}
		if c.clock != nil {
			svcOpts = append(svcOpts, mapdoc.WithClock(c.clock))
		}
		c.documentSvc = mapdoc.NewService(c.elementRepo, c.linkRepo, c.storeFlagRepo, svcOpts...)
	}

	if c.storeSvc == nil {
		svcOpts := []stores.ServiceOption{
			stores.WithLogger(logging.StoresLogger(c.loggerProvider)),
		}
		if c.clock != nil {
			svcOpts = append(svcOpts, stores.WithClock(c.clock))
		}
		c.storeSvc = stores.NewService(c.storeRepo, svcOpts...)
	}

	return c, nil
}

// DocumentService returns the configured document synchronization service.
func (c *Container) DocumentService() mapdoc.Service {
	return c.documentSvc
}

// StoreService returns the configured store registry service.
func (c *Container) StoreService() stores.Service {
	return c.storeSvc
}

// DB returns the bound database, nil when running on memory storage.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// MemoryRepository exposes the in-memory backing repository for seeding in
// tests and scaffolding. Returns nil when a database is bound.
func (c *Container) MemoryRepository() *mapdoc.MemoryRepository {
	return c.memoryRepo
}

// Logger returns a module-scoped logger from the configured provider.
func (c *Container) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

// LoggerProvider returns the configured logger provider, nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	provider := strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider))
	switch provider {
	case "noop", "":
		return nil
	case "console", "gologger":
		format := c.Config.Logging.Format
		if provider == "console" && strings.TrimSpace(format) == "" {
			format = "console"
		}
		built, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    format,
			AddSource: c.Config.Logging.AddSource,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = built
	}
	return nil
}

// configureCacheDefaults builds an in-process cache service for store
// registry reads when the cache feature is on and the host injected none.
func (c *Container) configureCacheDefaults() {
	if !c.Config.Features.Cache || !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		if service, err := repocache.NewCacheService(cfg); err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}

	docRepo := mapdoc.NewBunRepository(c.bunDB)
	c.elementRepo = docRepo
	c.linkRepo = docRepo
	c.storeFlagRepo = docRepo

	if c.Config.Cache.Enabled && c.cacheService != nil {
		c.storeRepo = stores.NewBunStoreRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	} else {
		c.storeRepo = stores.NewBunStoreRepository(c.bunDB)
	}

	c.memoryRepo = nil
}

// memoryStoreRegistry adapts the in-memory document repository so the store
// registry and the document engine share one store map in memory mode.
type memoryStoreRegistry struct {
	docs *mapdoc.MemoryRepository
}

var _ stores.Repository = (*memoryStoreRegistry)(nil)

func (r *memoryStoreRegistry) Create(_ context.Context, record *mapdoc.Store) (*mapdoc.Store, error) {
	r.docs.PutStore(record)
	copied := *record
	return &copied, nil
}

func (r *memoryStoreRegistry) GetByID(ctx context.Context, id uuid.UUID) (*mapdoc.Store, error) {
	return r.docs.GetStore(ctx, id)
}

func (r *memoryStoreRegistry) GetBySlug(_ context.Context, slug string) (*mapdoc.Store, error) {
	return r.docs.GetStoreBySlug(slug)
}

func (r *memoryStoreRegistry) List(_ context.Context) ([]*mapdoc.Store, error) {
	return r.docs.ListStores(), nil
}
