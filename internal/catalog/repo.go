package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/pkg/db/models"
	"github.com/atelierno/storefront-backend/pkg/pagination"
)

// Repository encapsulates catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a product without its variant tree.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySlug loads a product with its color and size variants.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Colors", func(db *gorm.DB) *gorm.DB { return db.Order("color_variants.color ASC") }).
		Preload("Colors.Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("size_variants.size ASC") }).
		First(&product, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Save persists all product columns.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// List returns a filtered, cursor-paginated product page ordered by
// availability, then sale count, then recency.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) (ProductPage, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	decodedCursor, err := parseListCursor(params.Cursor)
	if err != nil {
		return ProductPage{}, err
	}

	query := r.db.WithContext(ctx).Model(&models.Product{})
	query, err = r.applyFilter(ctx, query, filter)
	if err != nil {
		return ProductPage{}, err
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return ProductPage{}, err
	}

	if decodedCursor != nil {
		// Strictly after the cursor in the full sort order. A predicate on
		// (created_at, id) alone would drop newer rows with a worse rank.
		query = query.Where(
			"available < ? OR (available = ? AND (sale_count < ? OR (sale_count = ? AND (created_at < ? OR (created_at = ? AND id < ?)))))",
			decodedCursor.Available, decodedCursor.Available,
			decodedCursor.SaleCount, decodedCursor.SaleCount,
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var rows []models.Product
	err = query.
		Order("available DESC").
		Order("sale_count DESC").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return ProductPage{}, err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = encodeListCursor(listCursor{
			Available: last.Available,
			SaleCount: last.SaleCount,
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]ProductSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, toSummary(row))
	}

	return ProductPage{Items: items, NextCursor: nextCursor, Total: total}, nil
}

func (r *Repository) applyFilter(ctx context.Context, query *gorm.DB, filter ListFilter) (*gorm.DB, error) {
	if filter.CategorySlug != "" {
		ids, err := r.categorySubtreeIDs(ctx, filter.CategorySlug)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			query = query.Where("1 = 0")
		} else {
			query = query.Where("category_id IN ?", ids)
		}
	}
	if filter.BrandSlug != "" {
		query = query.Where("brand_id IN (?)",
			r.db.Model(&models.Brand{}).Select("id").Where("slug = ?", filter.BrandSlug))
	}
	if filter.Tag != "" {
		query = query.Where("? = ANY(tags)", filter.Tag)
	}
	if filter.PriceMin != nil {
		query = query.Where("current_price >= ?", filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("current_price <= ?", filter.PriceMax)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}
	if filter.OnlyAvailable {
		query = query.Where("available = ?", true)
	}
	return query, nil
}

// categorySubtreeIDs resolves the slug's category and every descendant.
// The tree is small, so it is walked in memory rather than with a CTE.
func (r *Repository) categorySubtreeIDs(ctx context.Context, slug string) ([]uuid.UUID, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, err
	}

	var rootID *uuid.UUID
	childrenByParent := make(map[uuid.UUID][]uuid.UUID, len(categories))
	for _, category := range categories {
		if category.Slug == slug {
			id := category.ID
			rootID = &id
		}
		if category.ParentID != nil {
			childrenByParent[*category.ParentID] = append(childrenByParent[*category.ParentID], category.ID)
		}
	}
	if rootID == nil {
		return nil, nil
	}

	ids := []uuid.UUID{*rootID}
	for cursor := 0; cursor < len(ids); cursor++ {
		ids = append(ids, childrenByParent[ids[cursor]]...)
	}
	return ids, nil
}

// ListCategories returns every category ordered by title.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListBrands returns every brand ordered by title.
func (r *Repository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

// FindColorVariant loads a color variant by ID.
func (r *Repository) FindColorVariant(ctx context.Context, id uuid.UUID) (*models.ColorVariant, error) {
	var variant models.ColorVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindSizeVariant loads a size variant by ID.
func (r *Repository) FindSizeVariant(ctx context.Context, id uuid.UUID) (*models.SizeVariant, error) {
	var variant models.SizeVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// IncrementSaleCount bumps a product's sale counter by quantity.
func (r *Repository) IncrementSaleCount(ctx context.Context, productID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("sale_count", gorm.Expr("sale_count + ?", quantity)).
		Error
}

func toSummary(product models.Product) ProductSummary {
	return ProductSummary{
		ID:              product.ID,
		Title:           product.Title,
		Slug:            product.Slug,
		BasePrice:       product.BasePrice,
		DiscountPercent: product.DiscountPercent,
		CurrentPrice:    product.CurrentPrice,
		Available:       product.Available,
		SaleCount:       product.SaleCount,
		Rating:          product.Rating,
		ReviewCount:     product.ReviewCount,
		Tags:            product.Tags,
		CategoryID:      product.CategoryID,
		BrandID:         product.BrandID,
		CreatedAt:       product.CreatedAt,
	}
}

func toDetail(product models.Product) ProductDetail {
	colors := make([]ColorVariantDTO, 0, len(product.Colors))
	for _, color := range product.Colors {
		sizes := make([]SizeVariantDTO, 0, len(color.Sizes))
		for _, size := range color.Sizes {
			sizes = append(sizes, SizeVariantDTO{ID: size.ID, Size: size.Size, Available: size.Available})
		}
		colors = append(colors, ColorVariantDTO{ID: color.ID, Color: color.Color, Available: color.Available, Sizes: sizes})
	}
	return ProductDetail{
		ProductSummary: toSummary(product),
		Description:    product.Description,
		Colors:         colors,
	}
}
