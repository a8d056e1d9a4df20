package reviews

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/internal/catalog"
	"github.com/atelierno/storefront-backend/pkg/db"
	"github.com/atelierno/storefront-backend/pkg/db/models"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/logger"
)

// TaskAggregateReviews recomputes a product's rating aggregate. The task key
// is the product ID.
const TaskAggregateReviews = "product.aggregate_reviews"

// Enqueuer schedules deduplicated background tasks.
type Enqueuer interface {
	Enqueue(ctx context.Context, kind, key string) error
}

// SubmitInput is a review create-or-replace request.
type SubmitInput struct {
	ProductID uuid.UUID
	Rating    int
	Text      string
}

// ReviewDTO is a customer-visible review.
type ReviewDTO struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// ServiceParams groups dependencies for the reviews service.
type ServiceParams struct {
	Repo        *Repository
	CatalogRepo *catalog.Repository
	Client      *db.Client
	Queue       Enqueuer
	Logger      *logger.Logger
}

// Service manages product reviews and their asynchronous aggregation.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (ReviewDTO, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	// RecomputeAggregate is the task handler: it refreshes the product's
	// average rating and review count from the reviews table.
	RecomputeAggregate(ctx context.Context, productID uuid.UUID) error
}

type service struct {
	repo        *Repository
	catalogRepo *catalog.Repository
	client      *db.Client
	queue       Enqueuer
	logg        *logger.Logger
}

// NewService builds a reviews service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviews repo is required")
	}
	if params.CatalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.Queue == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task queue is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:        params.Repo,
		catalogRepo: params.CatalogRepo,
		client:      params.Client,
		queue:       params.Queue,
		logg:        params.Logger,
	}, nil
}

// Submit creates the user's review for a product, or replaces it when one
// already exists, then schedules the rating aggregate refresh.
func (s *service) Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (ReviewDTO, error) {
	if userID == uuid.Nil {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if _, err := s.catalogRepo.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	text := strings.TrimSpace(input.Text)

	review, err := s.repo.FindByUserAndProduct(ctx, userID, input.ProductID)
	switch {
	case err == nil:
		review.Rating = input.Rating
		review.Text = text
		if err := s.repo.Save(ctx, review); err != nil {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		review = &models.Review{
			ID:        uuid.New(),
			UserID:    userID,
			ProductID: input.ProductID,
			Rating:    input.Rating,
			Text:      text,
		}
		if err := s.repo.Create(ctx, review); err != nil {
			if db.IsUniqueViolation(err, "idx_review_user_product") {
				return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "review already exists")
			}
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}
	default:
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}

	if err := s.queue.Enqueue(ctx, TaskAggregateReviews, input.ProductID.String()); err != nil {
		s.logg.Error(ctx, "enqueue review aggregation", err)
	}

	return ReviewDTO{
		ID:        review.ID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
		Text:      review.Text,
		CreatedAt: review.CreatedAt,
	}, nil
}

// ListByProduct returns a product's reviews.
func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}

	out := make([]ReviewDTO, 0, len(reviews))
	for _, review := range reviews {
		dto := ReviewDTO{
			ID:        review.ID,
			ProductID: review.ProductID,
			Rating:    review.Rating,
			Text:      review.Text,
			CreatedAt: review.CreatedAt,
		}
		if review.User != nil {
			dto.AuthorName = review.User.DisplayName()
		}
		out = append(out, dto)
	}
	return out, nil
}

// RecomputeAggregate refreshes the product's rating and review count in one
// transaction. Zero reviews clears the rating back to null.
func (s *service) RecomputeAggregate(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		count, avg, err := s.repo.WithTx(tx).Aggregate(ctx, productID)
		if err != nil {
			return err
		}

		updates := map[string]any{"review_count": count}
		if count == 0 {
			updates["rating"] = nil
		} else {
			updates["rating"] = math.Round(avg*100) / 100
		}

		return tx.Model(&models.Product{}).
			Where("id = ?", productID).
			UpdateColumns(updates).Error
	})
}
