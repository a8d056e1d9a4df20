package basket

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/pkg/db/models"
)

// Repository encapsulates basket persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a basket repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns all lines for an identity with product and variants attached,
// oldest first.
func (r *Repository) List(ctx context.Context, identityKey string) ([]models.BasketLine, error) {
	var lines []models.BasketLine
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("ColorVariant").
		Preload("SizeVariant").
		Where("identity_key = ?", identityKey).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// FindLine locates the identity's line for an exact variant combination.
func (r *Repository) FindLine(ctx context.Context, identityKey string, productID, colorID, sizeID uuid.UUID) (*models.BasketLine, error) {
	var line models.BasketLine
	err := r.db.WithContext(ctx).
		Where("identity_key = ? AND product_id = ? AND color_variant_id = ? AND size_variant_id = ?",
			identityKey, productID, colorID, sizeID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindByID loads a line owned by the identity.
func (r *Repository) FindByID(ctx context.Context, identityKey string, lineID uuid.UUID) (*models.BasketLine, error) {
	var line models.BasketLine
	err := r.db.WithContext(ctx).
		Where("id = ? AND identity_key = ?", lineID, identityKey).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// Create inserts a new basket line.
func (r *Repository) Create(ctx context.Context, line *models.BasketLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// Save persists all columns of an existing line.
func (r *Repository) Save(ctx context.Context, line *models.BasketLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// Delete removes a line owned by the identity.
func (r *Repository) Delete(ctx context.Context, identityKey string, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND identity_key = ?", lineID, identityKey).
		Delete(&models.BasketLine{}).Error
}

// DeleteAll clears every line for the identity. Checkout calls this inside
// its transaction after the lines were copied into the order.
func (r *Repository) DeleteAll(ctx context.Context, identityKey string) error {
	return r.db.WithContext(ctx).
		Where("identity_key = ?", identityKey).
		Delete(&models.BasketLine{}).Error
}
