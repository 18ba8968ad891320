package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/aquaroute/aquaroute-api/app/repository"
	"github.com/aquaroute/aquaroute-api/internal/pkg/cache"
	"github.com/aquaroute/aquaroute-api/internal/pkg/config"
	"github.com/aquaroute/aquaroute-api/internal/pkg/database"
	"github.com/aquaroute/aquaroute-api/internal/pkg/env"
	"github.com/aquaroute/aquaroute-api/internal/pkg/expiry"
	"github.com/aquaroute/aquaroute-api/internal/pkg/health"
	"github.com/aquaroute/aquaroute-api/internal/pkg/imageprocessor"
	"github.com/aquaroute/aquaroute-api/internal/pkg/ingestion"
	"github.com/aquaroute/aquaroute-api/internal/pkg/metrics"
	"github.com/aquaroute/aquaroute-api/internal/pkg/objectstore"
	"github.com/aquaroute/aquaroute-api/internal/pkg/reports"
	"github.com/aquaroute/aquaroute-api/internal/pkg/router"
)

var logLevels = map[string]log.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("[Main] %v", err)
	}
}

func run() error {
	if f := env.SetupEnvFile(); f != "" {
		log.Infof("[Main] Loaded environment from %s", f)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log.SetLevel(logLevels[cfg.LogLevel])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	m := metrics.NewMetrics()
	checker := health.NewChecker(health.DefaultTimeout)

	// STORE
	var repos *repository.Repositories
	var store *database.Store
	switch cfg.DBDriver {
	case config.DriverMemory:
		log.Warn("[Main] Using the in-memory store; data is lost on restart")
		repos = repository.NewMemoryRepositories()
	default:
		store, err = database.Connect(ctx, cfg.MongoURL, cfg.DBName, cfg.DBTimeout)
		if err != nil {
			return err
		}
		idxCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
		err = store.EnsureIndexes(idxCtx)
		cancel()
		if err != nil {
			return err
		}
		checker.Register("mongo", store.Ping)
		repos = repository.NewFactory(store.DB()).GetRepositories()
	}

	// CACHE
	var listCache *cache.ListCache
	var cacheStore interface{ Close() error }
	if cfg.Cache.Enabled {
		rs := cache.NewRedisStorage(cfg.Cache)
		cacheStore = rs
		var rc goredis.UniversalClient = rs.Conn()
		checker.Register("redis", func(ctx context.Context) error {
			return rc.Ping(ctx).Err()
		})
		listCache = cache.NewListCache(rs, cfg.Cache.TTL, m)
		log.Infof("[Main] Report list cache enabled (ttl %s)", cfg.Cache.TTL)
	}

	// OBJECT STORAGE
	var uploader ingestion.Uploader
	s3cfg, err := objectstore.LoadConfig()
	if err != nil {
		return err
	}
	if s3cfg.IsEnabled() {
		client, err := objectstore.NewClient(ctx, s3cfg)
		if err != nil {
			log.Errorf("[Main] Object storage unavailable, images stay inline: %v", err)
		} else {
			uploader = client
		}
	}

	processor := imageprocessor.New(imageprocessor.Options{
		MaxWidth:  cfg.Image.MaxWidth,
		MaxHeight: cfg.Image.MaxHeight,
		Quality:   cfg.Image.Quality,
	})
	svc := reports.NewService(reports.Deps{
		Repos:        repos,
		Ingester:     ingestion.New(processor, uploader, clock, m),
		Cache:        listCache,
		Clock:        clock,
		Metrics:      m,
		StoreTimeout: cfg.DBTimeout,
	})

	sweeper := expiry.NewSweeper(svc, cfg.ExpirySweepInterval, cfg.DBTimeout, clock)
	sweeper.Start()

	app := NewApplication(cfg, svc, checker)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("[Main] Listening on %s", cfg.Addr())
		errCh <- app.Listen(cfg.Addr())
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info("[Main] Shutting down")
		err = app.ShutdownWithTimeout(cfg.ShutdownTimeout)
	}

	sweeper.Stop()
	if cacheStore != nil {
		if cerr := cacheStore.Close(); cerr != nil {
			log.Warnf("[Main] Closing cache: %v", cerr)
		}
	}
	if store != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := store.Close(closeCtx); cerr != nil {
			log.Warnf("[Main] Closing database: %v", cerr)
		}
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// NewApplication builds the Fiber app with middleware and all routes.
func NewApplication(cfg *config.Config, svc *reports.Service, checker *health.Checker) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "AquaRoute API",
		BodyLimit: cfg.BodyLimit,
	})

	// MIDDLEWARE
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// ROUTER
	router.InstallRouter(app,
		router.NewSystemRouter(checker, findDocsFile()),
		router.NewApiRouter(svc),
	)
	return app
}

// findDocsFile looks for the OpenAPI document relative to the usual
// working directories.
func findDocsFile() string {
	basePaths := []string{
		"./",     // project root
		"../../", // from cmd/aquaroute
	}
	for _, path := range basePaths {
		if _, err := os.Stat(path + router.DefaultDocsFile); err == nil {
			return path + router.DefaultDocsFile
		}
	}
	return ""
}
