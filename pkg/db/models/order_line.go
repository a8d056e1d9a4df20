package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine snapshots a basket line at checkout time. UnitPrice is the
// product's current price at the moment the line was written.
type OrderLine struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ColorVariantID *uuid.UUID      `gorm:"column:color_variant_id;type:uuid"`
	SizeVariantID  *uuid.UUID      `gorm:"column:size_variant_id;type:uuid"`
	Quantity       int             `gorm:"column:quantity;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	LineTotal      decimal.Decimal `gorm:"column:line_total;type:numeric(10,2);not null"`
	Product        *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
