package basket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/internal/catalog"
	"github.com/atelierno/storefront-backend/pkg/db/models"
	"github.com/atelierno/storefront-backend/pkg/identity"
)

func setupBasketTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:basket_tests?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  category_id TEXT,
  brand_id TEXT,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  base_price TEXT NOT NULL,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  current_price TEXT NOT NULL,
  available INTEGER NOT NULL DEFAULT 1,
  sale_count INTEGER NOT NULL DEFAULT 0,
  rating REAL,
  review_count INTEGER NOT NULL DEFAULT 0,
  tags TEXT NOT NULL DEFAULT '{}',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS color_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  color TEXT NOT NULL,
  available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS size_variants (
  id TEXT PRIMARY KEY,
  color_variant_id TEXT NOT NULL,
  size TEXT NOT NULL,
  available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS basket_lines (
  id TEXT PRIMARY KEY,
  identity_key TEXT NOT NULL,
  product_id TEXT NOT NULL,
  color_variant_id TEXT NOT NULL,
  size_variant_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price TEXT NOT NULL,
  line_total TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (identity_key, product_id, color_variant_id, size_variant_id)
);`}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type basketFixture struct {
	svc     Service
	conn    *gorm.DB
	product *models.Product
	color   *models.ColorVariant
	size    *models.SizeVariant
}

func newBasketFixture(t *testing.T, price string) basketFixture {
	t.Helper()

	conn := setupBasketTestDB(t)
	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(conn),
		CatalogRepo: catalog.NewRepository(conn),
	})
	require.NoError(t, err)

	product := &models.Product{
		ID:           uuid.New(),
		Title:        "Jacket",
		Slug:         "jacket-" + uuid.NewString(),
		BasePrice:    decimal.RequireFromString(price),
		CurrentPrice: decimal.RequireFromString(price),
		Available:    true,
		Tags:         []string{},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, conn.Create(product).Error)

	color := &models.ColorVariant{ID: uuid.New(), ProductID: product.ID, Color: "navy", Available: true}
	require.NoError(t, conn.Create(color).Error)

	size := &models.SizeVariant{ID: uuid.New(), ColorVariantID: color.ID, Size: "M", Available: true}
	require.NoError(t, conn.Create(size).Error)

	return basketFixture{svc: svc, conn: conn, product: product, color: color, size: size}
}

func (f basketFixture) addInput(qty int) AddLineInput {
	return AddLineInput{
		ProductID:      f.product.ID,
		ColorVariantID: f.color.ID,
		SizeVariantID:  f.size.ID,
		Quantity:       qty,
	}
}

func TestAddLineCapturesCurrentPrice(t *testing.T) {
	f := newBasketFixture(t, "80.00")
	ident := identity.Anonymous(uuid.NewString())
	ctx := context.Background()

	dto, err := f.svc.AddLine(ctx, ident, f.addInput(2))
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, "80.00", dto.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "160.00", dto.Lines[0].LineTotal.StringFixed(2))
	assert.Equal(t, "160.00", dto.Amount.StringFixed(2))
}

func TestAddLineMergesDuplicateVariant(t *testing.T) {
	f := newBasketFixture(t, "10.00")
	ident := identity.Anonymous(uuid.NewString())
	ctx := context.Background()

	_, err := f.svc.AddLine(ctx, ident, f.addInput(1))
	require.NoError(t, err)
	dto, err := f.svc.AddLine(ctx, ident, f.addInput(2))
	require.NoError(t, err)

	require.Len(t, dto.Lines, 1)
	assert.Equal(t, 3, dto.Lines[0].Quantity)
	assert.Equal(t, "30.00", dto.Amount.StringFixed(2))
}

func TestExistingLineIsNotRepricedByCatalogChanges(t *testing.T) {
	f := newBasketFixture(t, "50.00")
	ident := identity.Anonymous(uuid.NewString())
	ctx := context.Background()

	_, err := f.svc.AddLine(ctx, ident, f.addInput(1))
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.Product{}).
		Where("id = ?", f.product.ID).
		UpdateColumn("current_price", "99.00").Error)

	dto, err := f.svc.Get(ctx, ident)
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, "50.00", dto.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "50.00", dto.Amount.StringFixed(2))
}

func TestUpdateLineRecapturesPrice(t *testing.T) {
	f := newBasketFixture(t, "50.00")
	ident := identity.Anonymous(uuid.NewString())
	ctx := context.Background()

	first, err := f.svc.AddLine(ctx, ident, f.addInput(1))
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.Product{}).
		Where("id = ?", f.product.ID).
		UpdateColumn("current_price", "40.00").Error)

	dto, err := f.svc.UpdateLine(ctx, ident, first.Lines[0].ID, 2)
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.Equal(t, "40.00", dto.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "80.00", dto.Lines[0].LineTotal.StringFixed(2))
}

func TestAmountExcludesUnavailableSizes(t *testing.T) {
	f := newBasketFixture(t, "25.00")
	ident := identity.Anonymous(uuid.NewString())
	ctx := context.Background()

	_, err := f.svc.AddLine(ctx, ident, f.addInput(2))
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.SizeVariant{}).
		Where("id = ?", f.size.ID).
		UpdateColumn("available", false).Error)

	dto, err := f.svc.Get(ctx, ident)
	require.NoError(t, err)
	require.Len(t, dto.Lines, 1)
	assert.False(t, dto.Lines[0].Available)
	assert.True(t, dto.Amount.IsZero())
}

func TestAddLineRejectsUnavailableSize(t *testing.T) {
	f := newBasketFixture(t, "25.00")
	require.NoError(t, f.conn.Model(&models.SizeVariant{}).
		Where("id = ?", f.size.ID).
		UpdateColumn("available", false).Error)

	_, err := f.svc.AddLine(context.Background(), identity.Anonymous(uuid.NewString()), f.addInput(1))
	require.Error(t, err)
}

func TestAddLineRejectsForeignVariant(t *testing.T) {
	f := newBasketFixture(t, "25.00")
	other := newBasketFixture(t, "30.00")

	input := f.addInput(1)
	input.SizeVariantID = other.size.ID

	_, err := f.svc.AddLine(context.Background(), identity.Anonymous(uuid.NewString()), input)
	require.Error(t, err)
}

func TestBasketScopedToIdentity(t *testing.T) {
	f := newBasketFixture(t, "15.00")
	ctx := context.Background()
	alice := identity.Authenticated(uuid.New(), "alice@example.com")
	bob := identity.Anonymous(uuid.NewString())

	_, err := f.svc.AddLine(ctx, alice, f.addInput(1))
	require.NoError(t, err)

	dto, err := f.svc.Get(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, dto.Lines)
}
