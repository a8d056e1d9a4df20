package delivery

import (
	"context"

	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/pkg/db/models"
)

// Repository encapsulates delivery tier persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a delivery repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListActive returns every active tier. Ordering by threshold happens in the
// resolver because numeric columns round-trip as strings on some drivers.
func (r *Repository) ListActive(ctx context.Context) ([]models.DeliveryTier, error) {
	var tiers []models.DeliveryTier
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}
