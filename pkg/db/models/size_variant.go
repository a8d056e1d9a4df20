package models

import (
	"time"

	"github.com/google/uuid"
)

// SizeVariant is a size option under a color variant. This is the leaf of the
// availability tree: operators toggle Available here and the change propagates
// upward.
type SizeVariant struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ColorVariantID uuid.UUID `gorm:"column:color_variant_id;type:uuid;not null"`
	Size           string    `gorm:"column:size;not null"`
	Available      bool      `gorm:"column:available;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
