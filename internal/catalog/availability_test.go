package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/pkg/db"
	"github.com/atelierno/storefront-backend/pkg/db/models"
	"github.com/atelierno/storefront-backend/pkg/logger"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One named in-memory database per test so seed rows stay isolated.
	dbName := "catalog_" + strings.ReplaceAll(t.Name(), "/", "_")
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)), &gorm.Config{})
	require.NoError(t, err)

	products := `
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
);`
	colorVariants := `
CREATE TABLE IF NOT EXISTS color_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  color TEXT NOT NULL,
  available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	sizeVariants := `
CREATE TABLE IF NOT EXISTS size_variants (
  id TEXT PRIMARY KEY,
  color_variant_id TEXT NOT NULL,
  size TEXT NOT NULL,
  available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(products).Error)
	require.NoError(t, conn.Exec(colorVariants).Error)
	require.NoError(t, conn.Exec(sizeVariants).Error)
	return conn
}

func newCatalogService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(conn),
		Client: db.NewWithConn(conn),
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, conn *gorm.DB, slug string) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:           uuid.New(),
		Title:        "Product " + slug,
		Slug:         slug,
		BasePrice:    decimal.RequireFromString("100.00"),
		CurrentPrice: decimal.RequireFromString("100.00"),
		Available:    true,
		Tags:         []string{},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func seedColor(t *testing.T, conn *gorm.DB, productID uuid.UUID, color string, available bool) *models.ColorVariant {
	t.Helper()

	variant := &models.ColorVariant{
		ID:        uuid.New(),
		ProductID: productID,
		Color:     color,
		Available: available,
	}
	require.NoError(t, conn.Create(variant).Error)
	return variant
}

func seedSize(t *testing.T, conn *gorm.DB, colorID uuid.UUID, size string, available bool) *models.SizeVariant {
	t.Helper()

	variant := &models.SizeVariant{
		ID:             uuid.New(),
		ColorVariantID: colorID,
		Size:           size,
		Available:      available,
	}
	require.NoError(t, conn.Create(variant).Error)
	return variant
}

func reloadAvailability(t *testing.T, conn *gorm.DB, table string, id uuid.UUID) bool {
	t.Helper()

	var available bool
	require.NoError(t, conn.Table(table).Select("available").Where("id = ?", id).Scan(&available).Error)
	return available
}

func TestDisablingLastSizeCascadesToProduct(t *testing.T) {
	conn := setupCatalogTestDB(t)
	svc := newCatalogService(t, conn)
	ctx := context.Background()

	product := seedProduct(t, conn, "cascade-"+uuid.NewString())
	color := seedColor(t, conn, product.ID, "black", true)
	only := seedSize(t, conn, color.ID, "M", true)

	dto, err := svc.SetSizeAvailability(ctx, only.ID, false)
	require.NoError(t, err)
	assert.False(t, dto.Available)

	assert.False(t, reloadAvailability(t, conn, "color_variants", color.ID))
	assert.False(t, reloadAvailability(t, conn, "products", product.ID))
}

func TestDisablingSizeWithAvailableSiblingKeepsColor(t *testing.T) {
	conn := setupCatalogTestDB(t)
	svc := newCatalogService(t, conn)
	ctx := context.Background()

	product := seedProduct(t, conn, "sibling-"+uuid.NewString())
	color := seedColor(t, conn, product.ID, "red", true)
	target := seedSize(t, conn, color.ID, "S", true)
	seedSize(t, conn, color.ID, "L", true)

	_, err := svc.SetSizeAvailability(ctx, target.ID, false)
	require.NoError(t, err)

	assert.True(t, reloadAvailability(t, conn, "color_variants", color.ID))
	assert.True(t, reloadAvailability(t, conn, "products", product.ID))
}

func TestDisablingLastSizeKeepsProductWhenAnotherColorAvailable(t *testing.T) {
	conn := setupCatalogTestDB(t)
	svc := newCatalogService(t, conn)
	ctx := context.Background()

	product := seedProduct(t, conn, "colors-"+uuid.NewString())
	dark := seedColor(t, conn, product.ID, "dark", true)
	light := seedColor(t, conn, product.ID, "light", true)
	only := seedSize(t, conn, dark.ID, "M", true)
	seedSize(t, conn, light.ID, "M", true)

	_, err := svc.SetSizeAvailability(ctx, only.ID, false)
	require.NoError(t, err)

	assert.False(t, reloadAvailability(t, conn, "color_variants", dark.ID))
	assert.True(t, reloadAvailability(t, conn, "color_variants", light.ID))
	assert.True(t, reloadAvailability(t, conn, "products", product.ID))
}

func TestEnablingSizeRestoresAncestorsUnconditionally(t *testing.T) {
	conn := setupCatalogTestDB(t)
	svc := newCatalogService(t, conn)
	ctx := context.Background()

	product := seedProduct(t, conn, "restore-"+uuid.NewString())
	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", product.ID).UpdateColumn("available", false).Error)
	color := seedColor(t, conn, product.ID, "green", false)
	size := seedSize(t, conn, color.ID, "XL", false)

	dto, err := svc.SetSizeAvailability(ctx, size.ID, true)
	require.NoError(t, err)
	assert.True(t, dto.Available)

	assert.True(t, reloadAvailability(t, conn, "color_variants", color.ID))
	assert.True(t, reloadAvailability(t, conn, "products", product.ID))
}

func TestDisablingLastColorDisablesProduct(t *testing.T) {
	conn := setupCatalogTestDB(t)
	svc := newCatalogService(t, conn)
	ctx := context.Background()

	product := seedProduct(t, conn, "lastcolor-"+uuid.NewString())
	color := seedColor(t, conn, product.ID, "blue", true)

	dto, err := svc.SetColorAvailability(ctx, color.ID, false)
	require.NoError(t, err)
	assert.False(t, dto.Available)
	assert.False(t, reloadAvailability(t, conn, "products", product.ID))
}

func TestSetSizeAvailabilityUnknownID(t *testing.T) {
	conn := setupCatalogTestDB(t)
	svc := newCatalogService(t, conn)

	_, err := svc.SetSizeAvailability(context.Background(), uuid.New(), false)
	require.Error(t, err)
}
