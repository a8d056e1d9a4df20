package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BasketLine is a basket entry scoped to an identity key ("user:<id>" or
// "session:<id>"). UnitPrice is captured when the line is created or its
// quantity changes; later catalog repricing never rewrites existing lines.
type BasketLine struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IdentityKey    string          `gorm:"column:identity_key;not null;uniqueIndex:idx_basket_identity_variant,priority:1"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_basket_identity_variant,priority:2"`
	ColorVariantID uuid.UUID       `gorm:"column:color_variant_id;type:uuid;not null;uniqueIndex:idx_basket_identity_variant,priority:3"`
	SizeVariantID  uuid.UUID       `gorm:"column:size_variant_id;type:uuid;not null;uniqueIndex:idx_basket_identity_variant,priority:4"`
	Quantity       int             `gorm:"column:quantity;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	LineTotal      decimal.Decimal `gorm:"column:line_total;type:numeric(10,2);not null"`
	Product        *Product        `gorm:"foreignKey:ProductID"`
	ColorVariant   *ColorVariant   `gorm:"foreignKey:ColorVariantID"`
	SizeVariant    *SizeVariant    `gorm:"foreignKey:SizeVariantID"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
