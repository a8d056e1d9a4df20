package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/internal/pricing"
	"github.com/atelierno/storefront-backend/pkg/db"
	"github.com/atelierno/storefront-backend/pkg/db/models"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/logger"
	"github.com/atelierno/storefront-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo   *Repository
	Client *db.Client
	Logger *logger.Logger
}

// Service exposes the storefront catalog: listing, detail, taxonomy and the
// operator-facing availability toggles.
type Service interface {
	ListProducts(ctx context.Context, filter ListFilter, params pagination.Params) (ProductPage, error)
	GetProductBySlug(ctx context.Context, slug string) (ProductDetail, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListBrands(ctx context.Context) ([]BrandDTO, error)
	CreateProduct(ctx context.Context, input ProductInput) (ProductDetail, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (ProductDetail, error)
	SetSizeAvailability(ctx context.Context, sizeID uuid.UUID, available bool) (SizeVariantDTO, error)
	SetColorAvailability(ctx context.Context, colorID uuid.UUID, available bool) (ColorVariantDTO, error)
}

type service struct {
	repo   *Repository
	client *db.Client
	logg   *logger.Logger
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{repo: params.Repo, client: params.Client, logg: params.Logger}, nil
}

// ListProducts returns the filtered catalog page.
func (s *service) ListProducts(ctx context.Context, filter ListFilter, params pagination.Params) (ProductPage, error) {
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return ProductPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return page, nil
}

// GetProductBySlug returns the product detail with its variant tree.
func (s *service) GetProductBySlug(ctx context.Context, slug string) (ProductDetail, error) {
	if strings.TrimSpace(slug) == "" {
		return ProductDetail{}, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return toDetail(*product), nil
}

// ListCategories returns the category tree.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return buildCategoryTree(categories), nil
}

// ListBrands returns every brand.
func (s *service) ListBrands(ctx context.Context) ([]BrandDTO, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brands")
	}
	out := make([]BrandDTO, 0, len(brands))
	for _, brand := range brands {
		out = append(out, BrandDTO{ID: brand.ID, Title: brand.Title, Slug: brand.Slug})
	}
	return out, nil
}

// CreateProduct inserts a product, deriving its current price.
func (s *service) CreateProduct(ctx context.Context, input ProductInput) (ProductDetail, error) {
	product, err := productFromInput(input)
	if err != nil {
		return ProductDetail{}, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product slug already exists")
		}
		return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return toDetail(*product), nil
}

// UpdateProduct rewrites the product's writable fields and re-derives its
// current price from the new base price and discount.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (ProductDetail, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	updated, err := productFromInput(input)
	if err != nil {
		return ProductDetail{}, err
	}
	updated.ID = existing.ID
	updated.Available = existing.Available
	updated.SaleCount = existing.SaleCount
	updated.Rating = existing.Rating
	updated.ReviewCount = existing.ReviewCount
	updated.CreatedAt = existing.CreatedAt

	if err := s.repo.Save(ctx, updated); err != nil {
		return ProductDetail{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return toDetail(*updated), nil
}

// SetSizeAvailability toggles a size and propagates the change up to the
// color variant and product in a single transaction.
func (s *service) SetSizeAvailability(ctx context.Context, sizeID uuid.UUID, available bool) (SizeVariantDTO, error) {
	if sizeID == uuid.Nil {
		return SizeVariantDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "size variant id is required")
	}

	var updated models.SizeVariant
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var size models.SizeVariant
		if err := tx.First(&size, "id = ?", sizeID).Error; err != nil {
			return err
		}
		if err := setSizeAvailability(tx, &size, available); err != nil {
			return err
		}
		updated = size
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SizeVariantDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "size variant not found")
		}
		return SizeVariantDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update size availability")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"size_variant_id": sizeID.String(), "available": available})
	s.logg.Info(ctx, "size availability updated")
	return SizeVariantDTO{ID: updated.ID, Size: updated.Size, Available: updated.Available}, nil
}

// SetColorAvailability toggles a color variant and propagates up to the product.
func (s *service) SetColorAvailability(ctx context.Context, colorID uuid.UUID, available bool) (ColorVariantDTO, error) {
	if colorID == uuid.Nil {
		return ColorVariantDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "color variant id is required")
	}

	var updated models.ColorVariant
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var color models.ColorVariant
		if err := tx.First(&color, "id = ?", colorID).Error; err != nil {
			return err
		}
		if err := setColorAvailability(tx, &color, available); err != nil {
			return err
		}
		updated = color
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ColorVariantDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "color variant not found")
		}
		return ColorVariantDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update color availability")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"color_variant_id": colorID.String(), "available": available})
	s.logg.Info(ctx, "color availability updated")
	return ColorVariantDTO{ID: updated.ID, Color: updated.Color, Available: updated.Available}, nil
}

func productFromInput(input ProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product title is required")
	}
	if strings.TrimSpace(input.Slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	if input.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative")
	}

	currentPrice, err := pricing.CurrentPrice(input.BasePrice, input.DiscountPercent)
	if err != nil {
		return nil, err
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	return &models.Product{
		Title:           input.Title,
		Slug:            input.Slug,
		Description:     input.Description,
		BasePrice:       input.BasePrice,
		DiscountPercent: input.DiscountPercent,
		CurrentPrice:    currentPrice,
		Available:       true,
		CategoryID:      input.CategoryID,
		BrandID:         input.BrandID,
		Tags:            tags,
	}, nil
}

func buildCategoryTree(categories []models.Category) []CategoryDTO {
	childrenByParent := make(map[uuid.UUID][]models.Category)
	var roots []models.Category
	for _, category := range categories {
		if category.ParentID == nil {
			roots = append(roots, category)
			continue
		}
		childrenByParent[*category.ParentID] = append(childrenByParent[*category.ParentID], category)
	}

	var build func(nodes []models.Category) []CategoryDTO
	build = func(nodes []models.Category) []CategoryDTO {
		out := make([]CategoryDTO, 0, len(nodes))
		for _, node := range nodes {
			out = append(out, CategoryDTO{
				ID:       node.ID,
				Title:    node.Title,
				Slug:     node.Slug,
				Children: build(childrenByParent[node.ID]),
			})
		}
		return out
	}
	return build(roots)
}
