package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog listing. CurrentPrice and Available are
// derived columns: the price engine recomputes CurrentPrice on every write
// and the availability propagator maintains Available from the variant tree.
type Product struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID      *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	BrandID         *uuid.UUID      `gorm:"column:brand_id;type:uuid"`
	Title           string          `gorm:"column:title;not null"`
	Slug            string          `gorm:"column:slug;not null;uniqueIndex"`
	Description     *string         `gorm:"column:description"`
	BasePrice       decimal.Decimal `gorm:"column:base_price;type:numeric(10,2);not null"`
	DiscountPercent int             `gorm:"column:discount_percent;not null;default:0"`
	CurrentPrice    decimal.Decimal `gorm:"column:current_price;type:numeric(10,2);not null"`
	Available       bool            `gorm:"column:available;not null;default:true"`
	SaleCount       int             `gorm:"column:sale_count;not null;default:0"`
	Rating          *float64        `gorm:"column:rating;type:numeric(3,2)"`
	ReviewCount     int             `gorm:"column:review_count;not null;default:0"`
	Tags            pq.StringArray  `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	Colors          []ColorVariant  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
