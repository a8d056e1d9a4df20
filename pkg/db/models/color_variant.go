package models

import (
	"time"

	"github.com/google/uuid"
)

// ColorVariant is a color option of a product. Its Available flag is both
// operator-settable and maintained by the availability propagator.
type ColorVariant struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID     `gorm:"column:product_id;type:uuid;not null"`
	Color     string        `gorm:"column:color;not null"`
	Available bool          `gorm:"column:available;not null;default:true"`
	Sizes     []SizeVariant `gorm:"foreignKey:ColorVariantID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
