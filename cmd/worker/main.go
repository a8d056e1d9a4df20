package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atelierno/storefront-backend/internal/basket"
	"github.com/atelierno/storefront-backend/internal/catalog"
	"github.com/atelierno/storefront-backend/internal/delivery"
	"github.com/atelierno/storefront-backend/internal/orders"
	"github.com/atelierno/storefront-backend/internal/promo"
	"github.com/atelierno/storefront-backend/internal/reviews"
	"github.com/atelierno/storefront-backend/pkg/config"
	"github.com/atelierno/storefront-backend/pkg/db"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/instance"
	"github.com/atelierno/storefront-backend/pkg/logger"
	"github.com/atelierno/storefront-backend/pkg/metrics"
	"github.com/atelierno/storefront-backend/pkg/redis"
	"github.com/atelierno/storefront-backend/pkg/taskqueue"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	queue, err := taskqueue.NewQueue(redisClient)
	if err != nil {
		logg.Error(ctx, "failed to create task queue", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)

	deliveryService, err := delivery.NewService(delivery.ServiceParams{
		Repo:   delivery.NewRepository(conn),
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create delivery service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:        orders.NewRepository(conn),
		BasketRepo:  basket.NewRepository(conn),
		CatalogRepo: catalogRepo,
		PromoRepo:   promo.NewRepository(conn),
		Delivery:    deliveryService,
		Client:      dbClient,
		Queue:       queue,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviews.ServiceParams{
		Repo:        reviews.NewRepository(conn),
		CatalogRepo: catalogRepo,
		Client:      dbClient,
		Queue:       queue,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create reviews service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	taskMetrics := metrics.NewTaskMetrics(registry)

	worker, err := taskqueue.NewWorker(taskqueue.WorkerParams{
		Queue:       queue,
		Logger:      logg,
		Metrics:     taskMetrics,
		PopTimeout:  cfg.Worker.PopTimeout,
		Concurrency: cfg.Worker.Concurrency,
	})
	if err != nil {
		logg.Error(ctx, "failed to create worker", err)
		os.Exit(1)
	}

	worker.Register(orders.TaskRecalculateTotal, uuidHandler(ordersService.RecalculateTotal))
	worker.Register(reviews.TaskAggregateReviews, uuidHandler(reviewsService.RecomputeAggregate))

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Worker.MetricsPort,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer metricsServer.Close()

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})
	logg.Info(startCtx, "starting worker")

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shut down gracefully")
}

// uuidHandler adapts an entity-id task handler to the queue's string keys.
func uuidHandler(fn func(context.Context, uuid.UUID) error) taskqueue.Handler {
	return func(ctx context.Context, key string) error {
		id, err := uuid.Parse(key)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "task key is not a uuid")
		}
		return fn(ctx, id)
	}
}
