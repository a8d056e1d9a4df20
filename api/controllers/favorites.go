package controllers

import (
	"net/http"

	"github.com/atelierno/storefront-backend/api/middleware"
	"github.com/atelierno/storefront-backend/api/responses"
	"github.com/atelierno/storefront-backend/api/validators"
	"github.com/atelierno/storefront-backend/internal/favorites"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/logger"
)

type addFavoriteRequest struct {
	ProductID      string  `json:"product_id" validate:"required,uuid"`
	ColorVariantID *string `json:"color_variant_id,omitempty" validate:"omitempty,uuid"`
	SizeVariantID  *string `json:"size_variant_id,omitempty" validate:"omitempty,uuid"`
}

// FavoritesList returns the identity's saved products.
func FavoritesList(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		items, err := svc.List(ctx, middleware.IdentityFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// FavoritesAdd saves a product, optionally pinning a variant.
func FavoritesAdd(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		var payload addFavoriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, err := parseIDField(payload.ProductID, "product_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := favorites.AddInput{ProductID: productID}
		if payload.ColorVariantID != nil {
			colorID, err := parseIDField(*payload.ColorVariantID, "color_variant_id")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.ColorVariantID = &colorID
		}
		if payload.SizeVariantID != nil {
			sizeID, err := parseIDField(*payload.SizeVariantID, "size_variant_id")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.SizeVariantID = &sizeID
		}

		if err := svc.Add(ctx, middleware.IdentityFromContext(ctx), input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]bool{"added": true})
	}
}

// FavoritesRemove drops a saved product.
func FavoritesRemove(svc favorites.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "favorites service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Remove(ctx, middleware.IdentityFromContext(ctx), productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}
