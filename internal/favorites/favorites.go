// Package favorites stores per-identity product likes.
package favorites

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/internal/catalog"
	"github.com/atelierno/storefront-backend/pkg/db/models"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/identity"
)

// Repository encapsulates favorites persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a favorites repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts a favorite and ignores duplicates.
func (r *Repository) Add(ctx context.Context, favorite *models.Favorite) error {
	return r.db.WithContext(ctx).
		Where("identity_key = ? AND product_id = ?", favorite.IdentityKey, favorite.ProductID).
		FirstOrCreate(favorite).Error
}

// Remove deletes the identity's favorite for a product if it exists.
func (r *Repository) Remove(ctx context.Context, identityKey string, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("identity_key = ? AND product_id = ?", identityKey, productID).
		Delete(&models.Favorite{}).Error
}

// List returns the identity's favorites with products attached, newest first.
func (r *Repository) List(ctx context.Context, identityKey string) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("identity_key = ?", identityKey).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

// FavoriteDTO is a liked product entry.
type FavoriteDTO struct {
	ProductID      uuid.UUID  `json:"product_id"`
	ProductTitle   string     `json:"product_title"`
	ProductSlug    string     `json:"product_slug"`
	Available      bool       `json:"available"`
	ColorVariantID *uuid.UUID `json:"color_variant_id,omitempty"`
	SizeVariantID  *uuid.UUID `json:"size_variant_id,omitempty"`
}

// AddInput identifies the product (and optionally a variant) being liked.
type AddInput struct {
	ProductID      uuid.UUID
	ColorVariantID *uuid.UUID
	SizeVariantID  *uuid.UUID
}

// ServiceParams groups dependencies for the favorites service.
type ServiceParams struct {
	Repo        *Repository
	CatalogRepo *catalog.Repository
}

// Service exposes favorites management for an identity.
type Service interface {
	List(ctx context.Context, ident identity.Identity) ([]FavoriteDTO, error)
	Add(ctx context.Context, ident identity.Identity, input AddInput) error
	Remove(ctx context.Context, ident identity.Identity, productID uuid.UUID) error
}

type service struct {
	repo        *Repository
	catalogRepo *catalog.Repository
}

// NewService builds a favorites service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites repo is required")
	}
	if params.CatalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{repo: params.Repo, catalogRepo: params.CatalogRepo}, nil
}

// List returns the identity's liked products.
func (s *service) List(ctx context.Context, ident identity.Identity) ([]FavoriteDTO, error) {
	if ident.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity is required")
	}
	favorites, err := s.repo.List(ctx, ident.Key())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}

	out := make([]FavoriteDTO, 0, len(favorites))
	for _, favorite := range favorites {
		dto := FavoriteDTO{
			ProductID:      favorite.ProductID,
			ColorVariantID: favorite.ColorVariantID,
			SizeVariantID:  favorite.SizeVariantID,
		}
		if favorite.Product != nil {
			dto.ProductTitle = favorite.Product.Title
			dto.ProductSlug = favorite.Product.Slug
			dto.Available = favorite.Product.Available
		}
		out = append(out, dto)
	}
	return out, nil
}

// Add records a like after checking the product exists.
func (s *service) Add(ctx context.Context, ident identity.Identity, input AddInput) error {
	if ident.IsZero() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "identity is required")
	}
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.catalogRepo.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	favorite := &models.Favorite{
		ID:             uuid.New(),
		IdentityKey:    ident.Key(),
		ProductID:      input.ProductID,
		ColorVariantID: input.ColorVariantID,
		SizeVariantID:  input.SizeVariantID,
	}
	if err := s.repo.Add(ctx, favorite); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add favorite")
	}
	return nil
}

// Remove drops the like regardless of prior state.
func (s *service) Remove(ctx context.Context, ident identity.Identity, productID uuid.UUID) error {
	if ident.IsZero() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "identity is required")
	}
	if err := s.repo.Remove(ctx, ident.Key(), productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
	}
	return nil
}
