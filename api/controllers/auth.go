package controllers

import (
	"net/http"

	"github.com/atelierno/storefront-backend/api/middleware"
	"github.com/atelierno/storefront-backend/api/responses"
	"github.com/atelierno/storefront-backend/api/validators"
	"github.com/atelierno/storefront-backend/internal/users"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/logger"
)

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a customer account and returns an access token.
func Register(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Register(ctx, users.RegisterInput{
			Email:     payload.Email,
			Password:  payload.Password,
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// Login checks credentials and returns an access token.
func Login(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Login(ctx, payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProfileGet returns the signed-in customer's account.
func ProfileGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		ident := middleware.IdentityFromContext(ctx)
		profile, err := svc.Get(ctx, ident.UserID())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type updateProfileRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name"`
	City      *string `json:"city,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	Postcode  *string `json:"postcode,omitempty"`
	ExtraInfo *string `json:"extra_info,omitempty"`
	Birthday  *string `json:"birthday,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ProfileUpdate rewrites the signed-in customer's profile fields.
func ProfileUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := users.ProfileInput{
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			City:      payload.City,
			Phone:     payload.Phone,
			Address:   payload.Address,
			Postcode:  payload.Postcode,
			ExtraInfo: payload.ExtraInfo,
		}
		if payload.Birthday != nil {
			birthday, err := parseDateField(*payload.Birthday, "birthday")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.Birthday = &birthday
		}

		ident := middleware.IdentityFromContext(ctx)
		profile, err := svc.UpdateProfile(ctx, ident.UserID(), input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
