package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelierno/storefront-backend/api/controllers"
	"github.com/atelierno/storefront-backend/api/middleware"
	"github.com/atelierno/storefront-backend/internal/basket"
	"github.com/atelierno/storefront-backend/internal/catalog"
	"github.com/atelierno/storefront-backend/internal/favorites"
	"github.com/atelierno/storefront-backend/internal/news"
	"github.com/atelierno/storefront-backend/internal/orders"
	"github.com/atelierno/storefront-backend/internal/promo"
	"github.com/atelierno/storefront-backend/internal/reviews"
	"github.com/atelierno/storefront-backend/internal/users"
	"github.com/atelierno/storefront-backend/pkg/config"
	"github.com/atelierno/storefront-backend/pkg/logger"
	"github.com/atelierno/storefront-backend/pkg/redis"
)

// Services bundles everything the route tree hangs handlers off.
type Services struct {
	Catalog   catalog.Service
	Basket    basket.Service
	Favorites favorites.Service
	Orders    orders.Service
	Promo     promo.Service
	Reviews   reviews.Service
	News      news.Service
	Users     users.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database controllers.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	// A typed nil must not reach the interface params below.
	var cache controllers.Pinger
	var limiter middleware.RateLimiterStore
	if redisClient != nil {
		cache = redisClient
		limiter = redisClient
	}

	apiPolicy := middleware.RateLimitPolicy{
		Name:   "api",
		Window: cfg.RateLimit.Window,
		Limit:  cfg.RateLimit.RequestLimit,
	}
	loginPolicy := middleware.RateLimitPolicy{
		Name:   "login",
		Window: cfg.RateLimit.LoginWindow,
		Limit:  cfg.RateLimit.LoginLimit,
	}
	registerPolicy := middleware.RateLimitPolicy{
		Name:   "register",
		Window: cfg.RateLimit.LoginWindow,
		Limit:  cfg.RateLimit.RegisterLimit,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, cache, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(apiPolicy, limiter, logg))
		r.Use(middleware.ResolveIdentity(cfg.JWT, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.Register(svcs.Users, logg))
			r.With(middleware.RateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.Login(svcs.Users, logg))
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.ProductsList(svcs.Catalog, logg))
			r.Get("/products/{slug}", controllers.ProductGet(svcs.Catalog, logg))
			r.Get("/categories", controllers.CategoriesList(svcs.Catalog, logg))
			r.Get("/brands", controllers.BrandsList(svcs.Catalog, logg))
		})

		r.Route("/basket", func(r chi.Router) {
			r.Get("/", controllers.BasketGet(svcs.Basket, logg))
			r.Post("/lines", controllers.BasketAddLine(svcs.Basket, logg))
			r.Patch("/lines/{lineId}", controllers.BasketUpdateLine(svcs.Basket, logg))
			r.Delete("/lines/{lineId}", controllers.BasketRemoveLine(svcs.Basket, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoritesList(svcs.Favorites, logg))
			r.Post("/", controllers.FavoritesAdd(svcs.Favorites, logg))
			r.Delete("/{productId}", controllers.FavoritesRemove(svcs.Favorites, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/checkout", controllers.Checkout(svcs.Orders, logg))
			r.Get("/", controllers.OrdersList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(svcs.Orders, logg))
		})

		r.Post("/promo/validate", controllers.PromoValidate(svcs.Promo, logg))

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/product/{productId}", controllers.ReviewsList(svcs.Reviews, logg))
			r.With(middleware.RequireAuth(logg)).Post("/", controllers.ReviewSubmit(svcs.Reviews, logg))
		})

		r.Route("/news", func(r chi.Router) {
			r.Get("/", controllers.NewsList(svcs.News, logg))
			r.Get("/categories", controllers.NewsCategories(svcs.News, logg))
			r.Get("/{slug}", controllers.NewsGet(svcs.News, logg))
			r.Post("/subscribe", controllers.NewsSubscribe(svcs.News, logg))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(middleware.RequireAuth(logg))
			r.Get("/", controllers.ProfileGet(svcs.Users, logg))
			r.Put("/", controllers.ProfileUpdate(svcs.Users, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/products", controllers.AdminCreateProduct(svcs.Catalog, logg))
			r.Put("/products/{productId}", controllers.AdminUpdateProduct(svcs.Catalog, logg))
			r.Patch("/sizes/{sizeId}/availability", controllers.AdminSetSizeAvailability(svcs.Catalog, logg))
			r.Patch("/colors/{colorId}/availability", controllers.AdminSetColorAvailability(svcs.Catalog, logg))
			r.Patch("/orders/{orderId}/status", controllers.AdminUpdateOrderStatus(svcs.Orders, logg))
		})
	})

	return r
}
