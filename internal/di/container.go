// Package di wires the module's services, repositories, and adapters from a
// runtime configuration. Memory repositories are the default; a bun.DB swaps
// in the persistent repositories, optionally fronted by the repository cache.
package di

import (
	"io/fs"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-epub/internal/bake"
	"github.com/goliatone/go-epub/internal/collation"
	"github.com/goliatone/go-epub/internal/ingest"
	"github.com/goliatone/go-epub/internal/library"
	"github.com/goliatone/go-epub/internal/logging"
	"github.com/goliatone/go-epub/internal/logging/console"
	"github.com/goliatone/go-epub/internal/logging/gologger"
	"github.com/goliatone/go-epub/internal/routes"
	"github.com/goliatone/go-epub/internal/runtimeconfig"
	"github.com/goliatone/go-epub/pkg/interfaces"
)

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider

	bookRepo      library.BookRepository
	docRepo       library.DocRepository
	assetRepo     library.AssetRepository
	bookDocRepo   library.BookDocRepository
	bookAssetRepo library.BookAssetRepository
	docAssetRepo  library.DocAssetRepository

	baker        collation.Baker
	routeManager *urlkit.RouteManager
	routeSpace   *routes.Space
	sourceFS     fs.FS
	clock        func() time.Time

	librarySvc library.Service
	ingestSvc  ingest.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB binds the persistent repositories to the supplied database.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default repository cache bindings.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the logger provider built from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBaker overrides the collation baker binding.
func WithBaker(baker collation.Baker) Option {
	return func(c *Container) {
		c.baker = baker
	}
}

// WithSourceFS supplies the filesystem markdown ingestion reads from.
func WithSourceFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.sourceFS = fsys
	}
}

// WithClock overrides the time source used for archive record timestamps.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

// WithLibraryService overrides the default archive service binding.
func WithLibraryService(svc library.Service) Option {
	return func(c *Container) {
		c.librarySvc = svc
	}
}

// WithIngestService overrides the default ingest service binding.
func WithIngestService(svc ingest.Service) Option {
	return func(c *Container) {
		c.ingestSvc = svc
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) *Container {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:        cfg,
		cacheTTL:      cacheTTL,
		bookRepo:      library.NewMemoryBookRepository(),
		docRepo:       library.NewMemoryDocRepository(),
		assetRepo:     library.NewMemoryAssetRepository(),
		bookDocRepo:   library.NewMemoryBookDocRepository(),
		bookAssetRepo: library.NewMemoryBookAssetRepository(),
		docAssetRepo:  library.NewMemoryDocAssetRepository(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.configureLogging()
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureRoutes()
	c.configureBaker()

	if c.librarySvc == nil {
		serviceOpts := []library.ServiceOption{
			library.WithLogger(logging.LibraryLogger(c.loggerProvider)),
		}
		if c.clock != nil {
			serviceOpts = append(serviceOpts, library.WithClock(c.clock))
		}
		c.librarySvc = library.NewService(
			c.bookRepo,
			c.docRepo,
			c.assetRepo,
			c.bookDocRepo,
			c.bookAssetRepo,
			c.docAssetRepo,
			serviceOpts...,
		)
	}

	if c.ingestSvc == nil && c.Config.Ingest.Enabled && c.sourceFS != nil {
		svc, err := ingest.NewService(c.sourceFS, ingest.Config{
			Pattern:   c.Config.Ingest.Pattern,
			Recursive: c.Config.Ingest.Recursive,
			IndexFile: c.Config.Ingest.IndexFile,
			Parser: ingest.ParseOptions{
				Extensions: c.Config.Ingest.Parser.Extensions,
				HardWraps:  c.Config.Ingest.Parser.HardWraps,
				SafeMode:   c.Config.Ingest.Parser.SafeMode,
			},
		}, ingest.WithLogger(logging.IngestLogger(c.loggerProvider)))
		if err == nil {
			c.ingestSvc = svc
		}
	}

	return c
}

func (c *Container) configureLogging() {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err == nil {
			c.loggerProvider = provider
			return
		}
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: consoleLevel(c.Config.Logging.Level)})
	default:
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: consoleLevel(c.Config.Logging.Level)})
	}
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
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

	c.bookRepo = library.NewBunBookRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.docRepo = library.NewBunDocRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.assetRepo = library.NewBunAssetRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.bookDocRepo = library.NewBunBookDocRepository(c.bunDB)
	c.bookAssetRepo = library.NewBunBookAssetRepository(c.bunDB)
	c.docAssetRepo = library.NewBunDocAssetRepository(c.bunDB)
}

func (c *Container) configureRoutes() {
	if c.routeManager == nil && c.Config.Routes.RouteConfig != nil {
		c.routeManager = urlkit.NewRouteManager(c.Config.Routes.RouteConfig)
	}
	if c.routeManager == nil {
		c.routeSpace = routes.Default()
		return
	}
	c.routeSpace = routes.FromManager(c.routeManager,
		c.Config.Routes.ContentsGroup,
		c.Config.Routes.ResourcesGroup,
		c.Config.Routes.ContentsRoute,
		c.Config.Routes.ResourcesRoute,
		c.Config.Routes.IdentParam,
		c.Config.Routes.NameParam,
	)
}

func (c *Container) configureBaker() {
	if c.baker != nil {
		return
	}
	if !c.Config.Features.Collation {
		c.baker = collation.NoopBaker{}
		return
	}
	c.baker = collation.NewRulesetBaker(
		bake.WithLogger(logging.CollationLogger(c.loggerProvider)),
	)
}

// LoggerProvider exposes the configured logger provider, which may be nil
// when the logging feature is disabled and no provider was injected.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns the module-scoped logger for the given name.
func (c *Container) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

// BunDB exposes the bound database, nil when running on memory repositories.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// CacheService exposes the configured repository cache service.
func (c *Container) CacheService() repocache.CacheService {
	return c.cacheService
}

// RouteManager exposes the route manager built from the routes configuration.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}

// RouteSpace exposes the route space single-page rendering and collation link
// against. Without a routes configuration it is the default space.
func (c *Container) RouteSpace() *routes.Space {
	return c.routeSpace
}

// Baker exposes the configured collation baker.
func (c *Container) Baker() collation.Baker {
	return c.baker
}

// BookRepository exposes the configured book repository.
func (c *Container) BookRepository() library.BookRepository {
	return c.bookRepo
}

// DocRepository exposes the configured document repository.
func (c *Container) DocRepository() library.DocRepository {
	return c.docRepo
}

// AssetRepository exposes the configured asset repository.
func (c *Container) AssetRepository() library.AssetRepository {
	return c.assetRepo
}

// BookDocRepository exposes the configured book/document join repository.
func (c *Container) BookDocRepository() library.BookDocRepository {
	return c.bookDocRepo
}

// BookAssetRepository exposes the configured book/asset join repository.
func (c *Container) BookAssetRepository() library.BookAssetRepository {
	return c.bookAssetRepo
}

// DocAssetRepository exposes the configured document/asset join repository.
func (c *Container) DocAssetRepository() library.DocAssetRepository {
	return c.docAssetRepo
}

// LibraryService returns the configured archive service.
func (c *Container) LibraryService() library.Service {
	return c.librarySvc
}

// IngestService returns the configured ingest service, nil unless ingestion
// is enabled and a source filesystem was supplied.
func (c *Container) IngestService() ingest.Service {
	return c.ingestSvc
}

func consoleLevel(level string) *console.Level {
	var resolved console.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		resolved = console.LevelTrace
	case "debug":
		resolved = console.LevelDebug
	case "info":
		resolved = console.LevelInfo
	case "warn", "warning":
		resolved = console.LevelWarn
	case "error":
		resolved = console.LevelError
	case "fatal":
		resolved = console.LevelFatal
	default:
		return nil
	}
	return &resolved
}
