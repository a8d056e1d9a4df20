package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/pkg/db/models"
)

// Repository encapsulates order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order together with its lines.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads an order with lines, delivery tier and promo code attached.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Preload("DeliveryTier").
		Preload("PromoCode").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindForIdentity loads an order only when the identity owns it.
func (r *Repository) FindForIdentity(ctx context.Context, identityKey string, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Preload("DeliveryTier").
		Preload("PromoCode").
		Where("id = ? AND identity_key = ?", id, identityKey).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListForIdentity returns the identity's orders, newest first.
func (r *Repository) ListForIdentity(ctx context.Context, identityKey string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Preload("DeliveryTier").
		Preload("PromoCode").
		Where("identity_key = ?", identityKey).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
