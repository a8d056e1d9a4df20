package routes

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/atelierno/storefront-backend/internal/basket"
	"github.com/atelierno/storefront-backend/internal/catalog"
	"github.com/atelierno/storefront-backend/internal/favorites"
	"github.com/atelierno/storefront-backend/internal/news"
	"github.com/atelierno/storefront-backend/internal/orders"
	"github.com/atelierno/storefront-backend/internal/promo"
	"github.com/atelierno/storefront-backend/internal/reviews"
	"github.com/atelierno/storefront-backend/internal/users"
	pkgauth "github.com/atelierno/storefront-backend/pkg/auth"
	"github.com/atelierno/storefront-backend/pkg/config"
	"github.com/atelierno/storefront-backend/pkg/enums"
	"github.com/atelierno/storefront-backend/pkg/identity"
	"github.com/atelierno/storefront-backend/pkg/logger"
	"github.com/atelierno/storefront-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) ListProducts(context.Context, catalog.ListFilter, pagination.Params) (catalog.ProductPage, error) {
	return catalog.ProductPage{Items: []catalog.ProductSummary{}}, nil
}

func (stubCatalogService) GetProductBySlug(context.Context, string) (catalog.ProductDetail, error) {
	return catalog.ProductDetail{}, nil
}

func (stubCatalogService) ListCategories(context.Context) ([]catalog.CategoryDTO, error) {
	return nil, nil
}

func (stubCatalogService) ListBrands(context.Context) ([]catalog.BrandDTO, error) {
	return nil, nil
}

func (stubCatalogService) CreateProduct(context.Context, catalog.ProductInput) (catalog.ProductDetail, error) {
	return catalog.ProductDetail{}, nil
}

func (stubCatalogService) UpdateProduct(context.Context, uuid.UUID, catalog.ProductInput) (catalog.ProductDetail, error) {
	return catalog.ProductDetail{}, nil
}

func (stubCatalogService) SetSizeAvailability(context.Context, uuid.UUID, bool) (catalog.SizeVariantDTO, error) {
	return catalog.SizeVariantDTO{}, nil
}

func (stubCatalogService) SetColorAvailability(context.Context, uuid.UUID, bool) (catalog.ColorVariantDTO, error) {
	return catalog.ColorVariantDTO{}, nil
}

type stubBasketService struct{}

func (stubBasketService) Get(context.Context, identity.Identity) (basket.BasketDTO, error) {
	return basket.BasketDTO{Lines: []basket.LineDTO{}}, nil
}

func (stubBasketService) AddLine(context.Context, identity.Identity, basket.AddLineInput) (basket.BasketDTO, error) {
	return basket.BasketDTO{}, nil
}

func (stubBasketService) UpdateLine(context.Context, identity.Identity, uuid.UUID, int) (basket.BasketDTO, error) {
	return basket.BasketDTO{}, nil
}

func (stubBasketService) RemoveLine(context.Context, identity.Identity, uuid.UUID) (basket.BasketDTO, error) {
	return basket.BasketDTO{}, nil
}

type stubFavoritesService struct{}

func (stubFavoritesService) List(context.Context, identity.Identity) ([]favorites.FavoriteDTO, error) {
	return nil, nil
}

func (stubFavoritesService) Add(context.Context, identity.Identity, favorites.AddInput) error {
	return nil
}

func (stubFavoritesService) Remove(context.Context, identity.Identity, uuid.UUID) error {
	return nil
}

type stubOrdersService struct{}

func (stubOrdersService) Checkout(context.Context, identity.Identity, orders.CheckoutInput) (orders.OrderDTO, error) {
	return orders.OrderDTO{}, nil
}

func (stubOrdersService) List(context.Context, identity.Identity) ([]orders.OrderDTO, error) {
	return nil, nil
}

func (stubOrdersService) Get(context.Context, identity.Identity, uuid.UUID) (orders.OrderDTO, error) {
	return orders.OrderDTO{}, nil
}

func (stubOrdersService) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) (orders.OrderDTO, error) {
	return orders.OrderDTO{}, nil
}

func (stubOrdersService) RecalculateTotal(context.Context, uuid.UUID) error {
	return nil
}

type stubPromoService struct{}

func (stubPromoService) Validate(context.Context, string) (promo.PromoDTO, error) {
	return promo.PromoDTO{}, nil
}

type stubReviewsService struct{}

func (stubReviewsService) Submit(context.Context, uuid.UUID, reviews.SubmitInput) (reviews.ReviewDTO, error) {
	return reviews.ReviewDTO{}, nil
}

func (stubReviewsService) ListByProduct(context.Context, uuid.UUID) ([]reviews.ReviewDTO, error) {
	return nil, nil
}

func (stubReviewsService) RecomputeAggregate(context.Context, uuid.UUID) error {
	return nil
}

type stubNewsService struct{}

func (stubNewsService) ListArticles(context.Context, string, pagination.Params) (news.ArticlePage, error) {
	return news.ArticlePage{}, nil
}

func (stubNewsService) GetArticle(context.Context, string) (news.ArticleDTO, error) {
	return news.ArticleDTO{}, nil
}

func (stubNewsService) ListCategories(context.Context) ([]news.CategoryDTO, error) {
	return nil, nil
}

func (stubNewsService) Subscribe(context.Context, string) error {
	return nil
}

type stubUsersService struct{}

func (stubUsersService) Register(context.Context, users.RegisterInput) (users.AuthResult, error) {
	return users.AuthResult{}, nil
}

func (stubUsersService) Login(context.Context, string, string) (users.AuthResult, error) {
	return users.AuthResult{}, nil
}

func (stubUsersService) Get(context.Context, uuid.UUID) (users.UserDTO, error) {
	return users.UserDTO{}, nil
}

func (stubUsersService) UpdateProfile(context.Context, uuid.UUID, users.ProfileInput) (users.UserDTO, error) {
	return users.UserDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "storefront",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // redis is optional: throttling policies are disabled in tests
		Services{
			Catalog:   stubCatalogService{},
			Basket:    stubBasketService{},
			Favorites: stubFavoritesService{},
			Orders:    stubOrdersService{},
			Promo:     stubPromoService{},
			Reviews:   stubReviewsService{},
			News:      stubNewsService{},
			Users:     stubUsersService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, isAdmin bool) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), uuid.New(), "user@example.com", isAdmin)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCatalogIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestBasketWorksAnonymously(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/basket/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	found := false
	for _, c := range resp.Result().Cookies() {
		if c.Name == "storefront_session" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a session cookie for anonymous basket access")
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	anonymous := httptest.NewRequest(http.MethodGet, "/api/v1/profile/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anonymous)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/profile/", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminFlag(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"available":true}`
	target := "/api/v1/admin/sizes/" + uuid.NewString() + "/availability"

	customer := httptest.NewRequest(http.MethodPatch, target, bytes.NewBufferString(body))
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPatch, target, bytes.NewBufferString(body))
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, true))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestReviewSubmitRequiresAuth(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"product_id":"` + uuid.NewString() + `","rating":5,"text":"great"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews/", bytes.NewBufferString(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}
