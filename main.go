package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"proptech/portal/internal/api"
	"proptech/portal/internal/api/middleware"
	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/backend"
	"proptech/portal/internal/browse"
	"proptech/portal/internal/cache"
	"proptech/portal/internal/config"
	"proptech/portal/internal/db"
	"proptech/portal/internal/logger"
	"proptech/portal/internal/notify"
	"proptech/portal/internal/quota"
	"proptech/portal/internal/storage"
	"proptech/portal/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default)")

const (
	inboxSize        = 50
	inboxTTL         = 24 * time.Hour
	sweepInterval    = time.Minute
	shutdownDeadline = 15 * time.Second
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, closeLog, err := logger.New(logger.Config{
		Level:           logger.ParseLevel(cfg.LogLevel),
		IsJSON:          cfg.LogJSON,
		UseColor:        cfg.LogColor,
		FluentHost:      fluentHost(cfg),
		FluentPort:      cfg.FluentPort,
		FluentTagPrefix: cfg.FluentTagPrefix,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logg)

	// Redis backs shared storage, the notification inbox and the task queue.
	var redisClient *redis.Client
	if needsRedis(cfg) {
		redisClient, err = cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logg)
		if err != nil {
			logg.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.DisconnectRedis(redisClient, logg); err != nil {
				logg.Error("error disconnecting from redis", "error", err)
			}
		}()
	}

	var store storage.Storage
	switch cfg.StorageDriver {
	case "redis":
		store = storage.NewRedis(redisClient, "portal")
	case "mongo":
		mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName, logg)
		if err != nil {
			logg.Error("failed to connect to mongodb", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := db.DisconnectDB(mongoClient, logg); err != nil {
				logg.Error("error disconnecting from mongodb", "error", err)
			}
		}()
		store = storage.NewMongo(mongoDb)
	default:
		store = storage.NewMemory()
	}

	var inbox notify.Inbox = notify.NewMemoryInbox(inboxSize)
	if redisClient != nil {
		inbox = notify.NewRedisInbox(redisClient, inboxSize, inboxTTL)
	}
	notifier := notify.NewComposite(inbox, notify.NewLogNotifier(logg))

	base := apiclient.New(cfg.BackendURL,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithRateLimit(cfg.BackendRatePerSecond, cfg.BackendBurst),
		apiclient.WithLogger(logg),
	)

	registry := browse.NewRegistry(browse.Deps{
		Base:     base,
		Storage:  store,
		Ledger:   quota.NewLedger(store),
		Notifier: notifier,
		Config:   cfg,
		Log:      logg,
	}, cfg.SessionIdleTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		registry.Cleanup(ctx, sweepInterval)
	}()

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(registry, inbox, shutdownChan, logg),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logg.Info("service api listening", "port", cfg.ServiceApiPort)
		if err := serviceSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("service api stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server
	var taskClient *asynq.Client

	logg.Info("starting application", "mode", cfg.RunMode, "storage", cfg.StorageDriver)

	apiMode := func() {
		var enqueuer tasks.Enqueuer
		if cfg.MarkSoldAsync {
			taskClient = tasks.NewClient(redisClient)
			enqueuer = tasks.NewEnqueuer(taskClient)
		}

		limiter := middleware.NewRateLimiterMiddleware(cfg.RateLimitRefillRate, cfg.RateLimitBucketSize, logg)
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.Cleanup(ctx, sweepInterval)
		}()

		router := api.SetupRouter(cfg, api.Dependencies{
			Sessions: registry,
			Inbox:    inbox,
			Accounts: backend.New(base).Auth,
			Enqueuer: enqueuer,
			Limiter:  limiter,
			Log:      logg,
		})
		mainApiSrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			logg.Info("main api listening", "port", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error("main api stopped unexpectedly", "error", err)
				os.Exit(1)
			}
		}()
	}

	bgMode := func() {
		if redisClient == nil {
			logg.Info("no task queue configured; background worker not started")
			return
		}
		processor := tasks.NewTaskProcessor(registry, notifier, logg)
		srv, mux := tasks.SetupServer(redisClient, processor, logg)
		backgroundTaskSrv = srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			logg.Info("background task server starting")
			if err := backgroundTaskSrv.Run(mux); err != nil {
				logg.Error("background task server error", "error", err)
				os.Exit(1)
			}
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		logg.Error("invalid run mode", "mode", cfg.RunMode)
		os.Exit(1)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logg.Info("shutting down gracefully", "signal", sig.String())
	case <-shutdownChan:
		logg.Info("shutdown requested via service api")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		logg.Error("service api shutdown error", "error", err)
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			logg.Error("main api shutdown error", "error", err)
		}
	}
	if backgroundTaskSrv != nil {
		backgroundTaskSrv.Shutdown()
	}
	if taskClient != nil {
		if err := taskClient.Close(); err != nil {
			logg.Error("task client close error", "error", err)
		}
	}

	// Stops the sweepers.
	cancel()
	wg.Wait()

	logg.Info("server gracefully stopped", "sessions", registry.Len())
}

func needsRedis(cfg *config.Config) bool {
	return cfg.StorageDriver == "redis" || cfg.MarkSoldAsync || cfg.RunMode == "bg"
}

func fluentHost(cfg *config.Config) string {
	if !cfg.FluentEnabled {
		return ""
	}
	return cfg.FluentHost
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-m api|bg|all]\n", os.Args[0])
		flag.PrintDefaults()
	}
}
