package delivery

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierno/storefront-backend/pkg/db/models"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/logger"
)

// Resolution is the delivery choice for an order subtotal. TierID is nil when
// no tiers are configured; Price is zero in that case.
type Resolution struct {
	TierID *uuid.UUID      `json:"tier_id,omitempty"`
	Title  string          `json:"title,omitempty"`
	Price  decimal.Decimal `json:"price"`
}

// ServiceParams groups dependencies for the delivery service.
type ServiceParams struct {
	Repo   *Repository
	Logger *logger.Logger
}

// Service resolves the delivery tier for an order subtotal.
type Service interface {
	Resolve(ctx context.Context, subtotal decimal.Decimal) (Resolution, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService builds a delivery service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery repo is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

// Resolve scans active tiers by descending threshold and returns the first
// one the subtotal reaches. When the subtotal is below every threshold the
// lowest tier applies. An empty tier table is tolerated: the order simply
// carries no delivery charge.
func (s *service) Resolve(ctx context.Context, subtotal decimal.Decimal) (Resolution, error) {
	tiers, err := s.repo.ListActive(ctx)
	if err != nil {
		return Resolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery tiers")
	}
	if len(tiers) == 0 {
		s.logg.Warn(ctx, "no active delivery tiers configured")
		return Resolution{Price: decimal.Zero}, nil
	}
	return resolveTier(tiers, subtotal), nil
}

func resolveTier(tiers []models.DeliveryTier, subtotal decimal.Decimal) Resolution {
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].Threshold.GreaterThan(tiers[j].Threshold)
	})

	chosen := tiers[len(tiers)-1]
	for _, tier := range tiers {
		if tier.Threshold.LessThanOrEqual(subtotal) {
			chosen = tier
			break
		}
	}

	id := chosen.ID
	return Resolution{TierID: &id, Title: chosen.Title, Price: chosen.Price}
}
