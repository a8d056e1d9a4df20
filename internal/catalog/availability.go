package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/pkg/db/models"
)

// The availability tree is Product -> ColorVariant -> SizeVariant. Toggling a
// node propagates upward inside the caller's transaction: enabling any node
// re-enables its ancestors unconditionally; disabling a node disables an
// ancestor only when its last available child just went dark.

func setSizeAvailability(tx *gorm.DB, size *models.SizeVariant, available bool) error {
	if size.Available != available {
		size.Available = available
		if err := tx.Model(&models.SizeVariant{}).
			Where("id = ?", size.ID).
			UpdateColumn("available", available).Error; err != nil {
			return err
		}
	}

	var color models.ColorVariant
	if err := tx.First(&color, "id = ?", size.ColorVariantID).Error; err != nil {
		return err
	}

	if available {
		return setColorAvailability(tx, &color, true)
	}

	remaining, err := availableSiblingCount(tx, &models.SizeVariant{},
		"color_variant_id = ? AND id <> ? AND available = ?", size.ColorVariantID, size.ID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return setColorAvailability(tx, &color, false)
	}
	return nil
}

func setColorAvailability(tx *gorm.DB, color *models.ColorVariant, available bool) error {
	if color.Available != available {
		color.Available = available
		if err := tx.Model(&models.ColorVariant{}).
			Where("id = ?", color.ID).
			UpdateColumn("available", available).Error; err != nil {
			return err
		}
	}

	if available {
		return setProductAvailability(tx, color.ProductID, true)
	}

	remaining, err := availableSiblingCount(tx, &models.ColorVariant{},
		"product_id = ? AND id <> ? AND available = ?", color.ProductID, color.ID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return setProductAvailability(tx, color.ProductID, false)
	}
	return nil
}

func setProductAvailability(tx *gorm.DB, productID uuid.UUID, available bool) error {
	return tx.Model(&models.Product{}).
		Where("id = ? AND available <> ?", productID, available).
		UpdateColumn("available", available).
		Error
}

func availableSiblingCount(tx *gorm.DB, model any, where string, parentID, selfID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(model).Where(where, parentID, selfID, true).Count(&count).Error
	return count, err
}
