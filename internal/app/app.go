package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/localpress/localpress/internal/aggregator"
	"github.com/localpress/localpress/internal/articles"
	"github.com/localpress/localpress/internal/cache"
	"github.com/localpress/localpress/internal/cms"
	"github.com/localpress/localpress/internal/config"
	"github.com/localpress/localpress/internal/coverage"
	"github.com/localpress/localpress/internal/crypto"
	"github.com/localpress/localpress/internal/database"
	"github.com/localpress/localpress/internal/httpapi"
	"github.com/localpress/localpress/internal/logging"
	"github.com/localpress/localpress/internal/mcp"
	"github.com/localpress/localpress/internal/ratelimit"
	"github.com/localpress/localpress/internal/sources"
	"github.com/localpress/localpress/internal/tips"
)

// App holds all application dependencies
type App struct {
	Config     *config.Config
	Logger     *logging.Logger
	CMS        cms.Provider
	Store      *database.ObjectStore
	Areas      *coverage.Resolver
	Articles   *articles.Gateway
	External   *sources.Gateway
	Aggregator *aggregator.Aggregator
	Tips       *tips.Service
	HTTPServer *httpapi.Server
	MCPServer  *mcp.Server

	db          *database.DB
	redis       *redis.Client
	memCache    *cache.MemoryCache
	limiter     ratelimit.RateLimiter
	tipLimiter  ratelimit.RateLimiter
	sourceCache cache.Cache
}

// New creates and initializes a new App instance
func New(cfg *config.Config) (*App, error) {
	return NewWithLogger(cfg, logging.New(logging.ParseLevel(cfg.Logging.Level)))
}

func NewWithLogger(cfg *config.Config, logger *logging.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	app.initRedis()
	app.initLimiters()
	app.initCache()

	if err := app.initCMS(); err != nil {
		app.Close()
		return nil, err
	}

	provider, err := app.initProvider()
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Areas = coverage.NewResolver(app.CMS)
	app.Articles = articles.NewGateway(app.CMS)
	app.External = sources.NewGateway(provider, app.Logger)
	app.Aggregator = aggregator.New(app.Areas, app.Articles, app.External, app.Logger)
	app.Tips = tips.NewService(app.CMS, app.Logger)
	if key := app.Config.CMS.EmailKey; key != "" {
		sealer, err := crypto.NewSealer(key)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to configure tip email sealing: %w", err)
		}
		app.Tips.WithEmailSealer(sealer)
	}

	app.HTTPServer = httpapi.New(app.Aggregator, app.Articles, app.Areas, app.Tips, app.tipLimiter, app.Logger)
	app.MCPServer = mcp.NewServer(mcp.NewHandler(app.Aggregator, app.Logger), app.Logger)

	return app, nil
}

// Run starts the application in the appropriate mode and blocks until ctx
// is cancelled or the server stops.
func (a *App) Run(ctx context.Context) error {
	if a.Config.Server.MCPMode {
		a.Logger.Info("Starting MCP server in stdio mode")
		return a.MCPServer.Run(ctx)
	}
	return a.runHTTPMode(ctx)
}

func (a *App) runHTTPMode(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.HTTPServer.Start(a.Config.Server.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Logger.Info("Shutting down HTTP server")
		return a.HTTPServer.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error("HTTP server shutdown error", logging.WithField("error", err.Error()))
		}
	}
	a.Close()
	return nil
}

// Close releases connections without touching the HTTP server. It is safe
// to call more than once.
func (a *App) Close() {
	if a.memCache != nil {
		a.memCache.Stop()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error("Database close error", logging.WithField("error", err.Error()))
		}
		a.db = nil
	}
	if a.redis != nil {
		a.redis.Close()
		a.redis = nil
	}
}

// initRedis connects only when a component is configured to use Redis. A
// failed ping leaves a.redis nil and those components fall back to memory.
func (a *App) initRedis() {
	if a.Config.Server.RateLimitBackend != "redis" && a.Config.Cache.Backend != "redis" {
		return
	}

	client := redis.NewClient(&redis.Options{Addr: a.Config.Redis.Addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		a.Logger.Error("Failed to connect to Redis, falling back to memory", logging.WithFields(map[string]interface{}{
			"addr":  a.Config.Redis.Addr,
			"error": err.Error(),
		}))
		client.Close()
		return
	}

	a.Logger.Info("Connected to Redis", logging.WithField("addr", a.Config.Redis.Addr))
	a.redis = client
}

func (a *App) initLimiters() {
	if a.Config.Server.RateLimitBackend == "redis" && a.redis != nil {
		a.Logger.Info("Using Redis for distributed rate limiting")
		a.limiter = ratelimit.NewRedis(a.redis, "localpress:ratelimit:provider:", a.Config.Server.RateLimitDur)
		a.tipLimiter = ratelimit.NewRedis(a.redis, "localpress:ratelimit:", a.Config.Server.TipRateLimit)
		return
	}
	a.limiter = ratelimit.New(a.Config.Server.RateLimitDur)
	a.tipLimiter = ratelimit.New(a.Config.Server.TipRateLimit)
}

func (a *App) initCache() {
	switch a.Config.Cache.Backend {
	case "none":
		a.Logger.Info("Provider response cache disabled")
	case "redis":
		if a.redis != nil {
			a.Logger.Info("Using Redis provider cache", logging.WithField("ttl", a.Config.Cache.TTL.String()))
			a.sourceCache = cache.NewRedis(a.redis, "localpress:cache:")
			return
		}
		fallthrough
	default:
		a.Logger.Info("Using in-memory provider cache", logging.WithField("ttl", a.Config.Cache.TTL.String()))
		a.memCache = cache.NewMemory()
		a.sourceCache = a.memCache
	}
}

func (a *App) initCMS() error {
	switch a.Config.CMS.Backend {
	case "cosmic":
		a.Logger.Info("Using Cosmic CMS", logging.WithField("bucket", a.Config.CMS.BucketSlug))
		a.CMS = cms.NewCosmicClient(cms.CosmicConfig{
			BaseURL:    a.Config.CMS.APIURL,
			BucketSlug: a.Config.CMS.BucketSlug,
			ReadKey:    a.Config.CMS.ReadKey,
			WriteKey:   a.Config.CMS.WriteKey,
			Timeout:    a.Config.News.Timeout,
		})
		return nil

	case "postgres":
		db, err := database.New(database.Config{
			Host:     a.Config.Database.Host,
			Port:     a.Config.Database.Port,
			User:     a.Config.Database.User,
			Password: a.Config.Database.Password,
			Database: a.Config.Database.Database,
			SSLMode:  a.Config.Database.SSLMode,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.Logger.Info("Connected to PostgreSQL")
		return a.useDatabase(db)

	case "sqlite":
		db, err := database.NewSQLite(a.Config.CMS.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open SQLite database: %w", err)
		}
		a.Logger.Info("Opened SQLite database", logging.WithField("path", a.Config.CMS.SQLitePath))
		return a.useDatabase(db)

	default:
		return fmt.Errorf("unknown CMS backend %q", a.Config.CMS.Backend)
	}
}

func (a *App) useDatabase(db *database.DB) error {
	a.db = db
	if err := db.Migrate(context.Background()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.Store = database.NewObjectStore(db)
	a.CMS = a.Store
	return nil
}

func (a *App) initProvider() (sources.Provider, error) {
	fetcherConfig := sources.DefaultConfig()
	if a.Config.News.Timeout > 0 {
		fetcherConfig.Timeout = a.Config.News.Timeout
	}

	var provider sources.Provider
	switch a.Config.News.Provider {
	case "newsdata":
		client, err := sources.NewNewsDataClient(a.Config.News.APIKey, a.Config.News.BaseURL, a.limiter, fetcherConfig)
		if err != nil {
			return nil, err
		}
		provider = client
	case "rss":
		provider = sources.NewRSSProvider(a.Config.News.RSSSearchURL, a.limiter, fetcherConfig)
	default:
		return nil, fmt.Errorf("unknown news provider %q", a.Config.News.Provider)
	}
	a.Logger.Info("Using external news provider", logging.WithField("provider", provider.Name()))

	if a.sourceCache != nil {
		provider = sources.NewCachedProvider(provider, a.sourceCache, a.Config.Cache.TTL, a.Logger)
	}
	return provider, nil
}
