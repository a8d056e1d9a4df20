package basket

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/internal/catalog"
	"github.com/atelierno/storefront-backend/internal/pricing"
	"github.com/atelierno/storefront-backend/pkg/db"
	"github.com/atelierno/storefront-backend/pkg/db/models"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/identity"
)

// ServiceParams groups dependencies for the basket service.
type ServiceParams struct {
	Repo        *Repository
	CatalogRepo *catalog.Repository
}

// Service exposes basket management for an identity (logged-in user or
// anonymous session).
type Service interface {
	Get(ctx context.Context, ident identity.Identity) (BasketDTO, error)
	AddLine(ctx context.Context, ident identity.Identity, input AddLineInput) (BasketDTO, error)
	UpdateLine(ctx context.Context, ident identity.Identity, lineID uuid.UUID, quantity int) (BasketDTO, error)
	RemoveLine(ctx context.Context, ident identity.Identity, lineID uuid.UUID) (BasketDTO, error)
}

type service struct {
	repo        *Repository
	catalogRepo *catalog.Repository
}

// NewService builds a basket service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket repo is required")
	}
	if params.CatalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{repo: params.Repo, catalogRepo: params.CatalogRepo}, nil
}

// Get returns the identity's basket.
func (s *service) Get(ctx context.Context, ident identity.Identity) (BasketDTO, error) {
	if ident.IsZero() {
		return BasketDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity is required")
	}
	lines, err := s.repo.List(ctx, ident.Key())
	if err != nil {
		return BasketDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list basket")
	}
	return toBasketDTO(lines), nil
}

// AddLine adds a variant to the basket, merging into an existing line when
// the exact combination is already present. The unit price is captured from
// the product's current price at this moment.
func (s *service) AddLine(ctx context.Context, ident identity.Identity, input AddLineInput) (BasketDTO, error) {
	if ident.IsZero() {
		return BasketDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity is required")
	}
	if input.Quantity < 1 {
		return BasketDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, color, size, err := s.resolveVariant(ctx, input.ProductID, input.ColorVariantID, input.SizeVariantID)
	if err != nil {
		return BasketDTO{}, err
	}
	if !size.Available {
		return BasketDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "variant is not available")
	}

	existing, err := s.repo.FindLine(ctx, ident.Key(), product.ID, color.ID, size.ID)
	switch {
	case err == nil:
		existing.Quantity += input.Quantity
		s.reprice(existing, product)
		if err := s.repo.Save(ctx, existing); err != nil {
			return BasketDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket line")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		line := &models.BasketLine{
			ID:             uuid.New(),
			IdentityKey:    ident.Key(),
			ProductID:      product.ID,
			ColorVariantID: color.ID,
			SizeVariantID:  size.ID,
			Quantity:       input.Quantity,
		}
		s.reprice(line, product)
		if err := s.repo.Create(ctx, line); err != nil {
			if db.IsUniqueViolation(err, "") {
				return BasketDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "basket line already exists")
			}
			return BasketDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create basket line")
		}
	default:
		return BasketDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket line")
	}

	return s.Get(ctx, ident)
}

// UpdateLine replaces a line's quantity and re-captures the unit price.
func (s *service) UpdateLine(ctx context.Context, ident identity.Identity, lineID uuid.UUID, quantity int) (BasketDTO, error) {
	if ident.IsZero() {
		return BasketDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity is required")
	}
	if quantity < 1 {
		return BasketDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	line, err := s.repo.FindByID(ctx, ident.Key(), lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BasketDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "basket line not found")
		}
		return BasketDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket line")
	}

	product, err := s.catalogRepo.FindByID(ctx, line.ProductID)
	if err != nil {
		return BasketDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	line.Quantity = quantity
	s.reprice(line, product)
	if err := s.repo.Save(ctx, line); err != nil {
		return BasketDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket line")
	}
	return s.Get(ctx, ident)
}

// RemoveLine drops a line from the basket.
func (s *service) RemoveLine(ctx context.Context, ident identity.Identity, lineID uuid.UUID) (BasketDTO, error) {
	if ident.IsZero() {
		return BasketDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity is required")
	}
	if err := s.repo.Delete(ctx, ident.Key(), lineID); err != nil {
		return BasketDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete basket line")
	}
	return s.Get(ctx, ident)
}

func (s *service) reprice(line *models.BasketLine, product *models.Product) {
	line.UnitPrice = product.CurrentPrice
	line.LineTotal = pricing.LineTotal(line.Quantity, line.UnitPrice)
}

func (s *service) resolveVariant(ctx context.Context, productID, colorID, sizeID uuid.UUID) (*models.Product, *models.ColorVariant, *models.SizeVariant, error) {
	product, err := s.catalogRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	color, err := s.catalogRepo.FindColorVariant(ctx, colorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "color variant not found")
		}
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load color variant")
	}
	if color.ProductID != product.ID {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "color variant does not belong to product")
	}

	size, err := s.catalogRepo.FindSizeVariant(ctx, sizeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "size variant not found")
		}
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load size variant")
	}
	if size.ColorVariantID != color.ID {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "size variant does not belong to color variant")
	}

	return product, color, size, nil
}

func toBasketDTO(lines []models.BasketLine) BasketDTO {
	dto := BasketDTO{Lines: make([]LineDTO, 0, len(lines)), Amount: decimal.Zero}
	for _, line := range lines {
		item := LineDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
			Available: true,
		}
		if line.Product != nil {
			item.ProductTitle = line.Product.Title
			item.ProductSlug = line.Product.Slug
		}
		if line.ColorVariant != nil {
			item.Color = line.ColorVariant.Color
		}
		if line.SizeVariant != nil {
			item.Size = line.SizeVariant.Size
			item.Available = line.SizeVariant.Available
		}
		if item.Available {
			dto.Amount = dto.Amount.Add(line.LineTotal)
		}
		dto.Lines = append(dto.Lines, item)
		dto.ItemCount += line.Quantity
	}
	return dto
}
