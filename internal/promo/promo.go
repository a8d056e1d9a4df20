// Package promo validates flat-discount promo codes.
package promo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/pkg/db/models"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
)

// Repository encapsulates promo code persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a promo repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByCode loads a promo code regardless of its active flag.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.WithContext(ctx).First(&promo, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

// FindByID loads a promo code by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.WithContext(ctx).First(&promo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

// PromoDTO is the validated code returned to callers.
type PromoDTO struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	DiscountPrice decimal.Decimal `json:"discount_price"`
}

// ServiceParams groups dependencies for the promo service.
type ServiceParams struct {
	Repo *Repository
}

// Service validates promo codes at checkout time.
type Service interface {
	Validate(ctx context.Context, code string) (PromoDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds a promo service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo repo is required")
	}
	return &service{repo: params.Repo}, nil
}

// Validate resolves a code and rejects unknown or deactivated ones.
func (s *service) Validate(ctx context.Context, code string) (PromoDTO, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return PromoDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}

	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PromoDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "promo code not found")
		}
		return PromoDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promo code")
	}
	if !promo.IsActive {
		return PromoDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "promo code is no longer active")
	}

	return PromoDTO{ID: promo.ID, Code: promo.Code, DiscountPrice: promo.DiscountPrice}, nil
}
