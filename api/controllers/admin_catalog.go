package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/atelierno/storefront-backend/api/responses"
	"github.com/atelierno/storefront-backend/api/validators"
	"github.com/atelierno/storefront-backend/internal/catalog"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/logger"
)

type productRequest struct {
	Title           string   `json:"title" validate:"required"`
	Slug            string   `json:"slug" validate:"required"`
	Description     *string  `json:"description,omitempty"`
	BasePrice       string   `json:"base_price" validate:"required"`
	DiscountPercent int      `json:"discount_percent" validate:"gte=0,lte=100"`
	CategoryID      *string  `json:"category_id,omitempty" validate:"omitempty,uuid"`
	BrandID         *string  `json:"brand_id,omitempty" validate:"omitempty,uuid"`
	Tags            []string `json:"tags,omitempty"`
}

type setAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

func (p productRequest) toInput() (catalog.ProductInput, error) {
	basePrice, err := decimal.NewFromString(p.BasePrice)
	if err != nil {
		return catalog.ProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid base price")
	}

	input := catalog.ProductInput{
		Title:           p.Title,
		Slug:            p.Slug,
		Description:     p.Description,
		BasePrice:       basePrice,
		DiscountPercent: p.DiscountPercent,
		Tags:            p.Tags,
	}
	if p.CategoryID != nil {
		id, err := parseIDField(*p.CategoryID, "category_id")
		if err != nil {
			return catalog.ProductInput{}, err
		}
		input.CategoryID = &id
	}
	if p.BrandID != nil {
		id, err := parseIDField(*p.BrandID, "brand_id")
		if err != nil {
			return catalog.ProductInput{}, err
		}
		input.BrandID = &id
	}
	return input, nil
}

// AdminCreateProduct adds a product to the catalog.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.CreateProduct(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct rewrites a product's fields and reprices it.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(ctx, productID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminSetSizeAvailability toggles one size and propagates the change
// up through its color and product.
func AdminSetSizeAvailability(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sizeID, err := parseIDParam(r, "sizeId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload setAvailabilityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		size, err := svc.SetSizeAvailability(ctx, sizeID, *payload.Available)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, size)
	}
}

// AdminSetColorAvailability toggles a color variant and its sizes.
func AdminSetColorAvailability(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		colorID, err := parseIDParam(r, "colorId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload setAvailabilityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		color, err := svc.SetColorAvailability(ctx, colorID, *payload.Available)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, color)
	}
}
