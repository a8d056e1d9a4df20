package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks a product (optionally a specific variant) for an identity.
type Favorite struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IdentityKey    string     `gorm:"column:identity_key;not null;uniqueIndex:idx_favorite_identity_product,priority:1"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_favorite_identity_product,priority:2"`
	ColorVariantID *uuid.UUID `gorm:"column:color_variant_id;type:uuid"`
	SizeVariantID  *uuid.UUID `gorm:"column:size_variant_id;type:uuid"`
	Product        *Product   `gorm:"foreignKey:ProductID"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
