package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/atelierno/storefront-backend/api/routes"
	"github.com/atelierno/storefront-backend/internal/basket"
	"github.com/atelierno/storefront-backend/internal/catalog"
	"github.com/atelierno/storefront-backend/internal/delivery"
	"github.com/atelierno/storefront-backend/internal/favorites"
	"github.com/atelierno/storefront-backend/internal/news"
	"github.com/atelierno/storefront-backend/internal/orders"
	"github.com/atelierno/storefront-backend/internal/promo"
	"github.com/atelierno/storefront-backend/internal/reviews"
	"github.com/atelierno/storefront-backend/internal/users"
	"github.com/atelierno/storefront-backend/pkg/config"
	"github.com/atelierno/storefront-backend/pkg/db"
	"github.com/atelierno/storefront-backend/pkg/instance"
	"github.com/atelierno/storefront-backend/pkg/logger"
	"github.com/atelierno/storefront-backend/pkg/migrate"
	"github.com/atelierno/storefront-backend/pkg/redis"
	"github.com/atelierno/storefront-backend/pkg/taskqueue"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	queue, err := taskqueue.NewQueue(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create task queue", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, dbClient, queue, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client, queue *taskqueue.Queue, logg *logger.Logger) (routes.Services, error) {
	conn := dbClient.DB()

	catalogRepo := catalog.NewRepository(conn)
	basketRepo := basket.NewRepository(conn)
	promoRepo := promo.NewRepository(conn)

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:   catalogRepo,
		Client: dbClient,
		Logger: logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	basketService, err := basket.NewService(basket.ServiceParams{
		Repo:        basketRepo,
		CatalogRepo: catalogRepo,
	})
	if err != nil {
		return routes.Services{}, err
	}

	favoritesService, err := favorites.NewService(favorites.ServiceParams{
		Repo:        favorites.NewRepository(conn),
		CatalogRepo: catalogRepo,
	})
	if err != nil {
		return routes.Services{}, err
	}

	deliveryService, err := delivery.NewService(delivery.ServiceParams{
		Repo:   delivery.NewRepository(conn),
		Logger: logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:        orders.NewRepository(conn),
		BasketRepo:  basketRepo,
		CatalogRepo: catalogRepo,
		PromoRepo:   promoRepo,
		Delivery:    deliveryService,
		Client:      dbClient,
		Queue:       queue,
		Logger:      logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	promoService, err := promo.NewService(promo.ServiceParams{Repo: promoRepo})
	if err != nil {
		return routes.Services{}, err
	}

	reviewsService, err := reviews.NewService(reviews.ServiceParams{
		Repo:        reviews.NewRepository(conn),
		CatalogRepo: catalogRepo,
		Client:      dbClient,
		Queue:       queue,
		Logger:      logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	newsService, err := news.NewService(news.ServiceParams{
		Repo: news.NewRepository(conn),
	})
	if err != nil {
		return routes.Services{}, err
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo:     users.NewRepository(conn),
		JWT:      cfg.JWT,
		Password: cfg.Password,
		Logger:   logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Catalog:   catalogService,
		Basket:    basketService,
		Favorites: favoritesService,
		Orders:    ordersService,
		Promo:     promoService,
		Reviews:   reviewsService,
		News:      newsService,
		Users:     usersService,
	}, nil
}
