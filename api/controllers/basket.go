package controllers

import (
	"net/http"

	"github.com/atelierno/storefront-backend/api/middleware"
	"github.com/atelierno/storefront-backend/api/responses"
	"github.com/atelierno/storefront-backend/api/validators"
	"github.com/atelierno/storefront-backend/internal/basket"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/logger"
)

type addBasketLineRequest struct {
	ProductID      string `json:"product_id" validate:"required,uuid"`
	ColorVariantID string `json:"color_variant_id" validate:"required,uuid"`
	SizeVariantID  string `json:"size_variant_id" validate:"required,uuid"`
	Quantity       int    `json:"quantity" validate:"required,gte=1"`
}

type updateBasketLineRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// BasketGet returns the basket scoped to the resolved identity.
func BasketGet(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		result, err := svc.Get(ctx, middleware.IdentityFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// BasketAddLine adds a product variant to the basket.
func BasketAddLine(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		var payload addBasketLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, err := parseIDField(payload.ProductID, "product_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		colorID, err := parseIDField(payload.ColorVariantID, "color_variant_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		sizeID, err := parseIDField(payload.SizeVariantID, "size_variant_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := basket.AddLineInput{
			ProductID:      productID,
			ColorVariantID: colorID,
			SizeVariantID:  sizeID,
			Quantity:       payload.Quantity,
		}

		result, err := svc.AddLine(ctx, middleware.IdentityFromContext(ctx), input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// BasketUpdateLine changes a line's quantity.
func BasketUpdateLine(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		lineID, err := parseIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateBasketLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.UpdateLine(ctx, middleware.IdentityFromContext(ctx), lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// BasketRemoveLine deletes a line from the basket.
func BasketRemoveLine(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		lineID, err := parseIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.RemoveLine(ctx, middleware.IdentityFromContext(ctx), lineID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

