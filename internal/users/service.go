package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/pkg/auth"
	"github.com/atelierno/storefront-backend/pkg/config"
	"github.com/atelierno/storefront-backend/pkg/db"
	"github.com/atelierno/storefront-backend/pkg/db/models"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/logger"
	"github.com/atelierno/storefront-backend/pkg/security"
)

// RegisterInput is a signup request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	FirstName string
	LastName  string
	City      *string
	Phone     *string
	Address   *string
	Postcode  *string
	ExtraInfo *string
	Birthday  *time.Time
}

// UserDTO is the customer-visible account payload.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	City      *string    `json:"city,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Address   *string    `json:"address,omitempty"`
	Postcode  *string    `json:"postcode,omitempty"`
	ExtraInfo *string    `json:"extra_info,omitempty"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// AuthResult pairs a user with a freshly minted access token.
type AuthResult struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// ServiceParams groups dependencies for the users service.
type ServiceParams struct {
	Repo     *Repository
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Logger   *logger.Logger
}

// Service handles registration, login and profile management.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Get(ctx context.Context, userID uuid.UUID) (UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (UserDTO, error)
}

type service struct {
	repo        *Repository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewService builds a users service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jwt config is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:        params.Repo,
		jwtCfg:      params.JWT,
		passwordCfg: params.Password,
		logg:        params.Logger,
	}, nil
}

// Register creates an account and returns it with an access token.
func (s *service) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return AuthResult{}, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < 8 {
		return AuthResult{}, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return AuthResult{}, pkgerrors.New(pkgerrors.CodeValidation, "first name is required")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	ctx = s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(ctx, "user registered")
	return s.issueToken(user)
}

// Login checks credentials and returns the account with a fresh token.
func (s *service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return AuthResult{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return AuthResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logg.Error(ctx, "stamp last login", err)
	}

	ctx = s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(ctx, "user logged in")
	return s.issueToken(user)
}

// Get returns the account for a user ID.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	return toUserDTO(*user), nil
}

// UpdateProfile rewrites the editable profile fields.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (UserDTO, error) {
	if strings.TrimSpace(input.FirstName) == "" {
		return UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "first name is required")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}

	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.City = input.City
	user.Phone = input.Phone
	user.Address = input.Address
	user.Postcode = input.Postcode
	user.ExtraInfo = input.ExtraInfo
	user.Birthday = input.Birthday

	if err := s.repo.Save(ctx, user); err != nil {
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return toUserDTO(*user), nil
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) issueToken(user *models.User) (AuthResult, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, time.Now(), user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return AuthResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return AuthResult{User: toUserDTO(*user), Token: token}, nil
}

func toUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		City:      user.City,
		Phone:     user.Phone,
		Address:   user.Address,
		Postcode:  user.Postcode,
		ExtraInfo: user.ExtraInfo,
		Birthday:  user.Birthday,
		CreatedAt: user.CreatedAt,
	}
}
