package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierno/storefront-backend/pkg/enums"
)

// Order is a placed order with contact details captured at checkout.
// TotalPrice is maintained asynchronously by the recalculation task.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IdentityKey    string              `gorm:"column:identity_key;not null;index"`
	UserID         *uuid.UUID          `gorm:"column:user_id;type:uuid"`
	Name           string              `gorm:"column:name;not null"`
	Email          string              `gorm:"column:email;not null"`
	City           string              `gorm:"column:city;not null;default:''"`
	Phone          string              `gorm:"column:phone;not null;default:''"`
	Address        string              `gorm:"column:address;not null;default:''"`
	Postcode       string              `gorm:"column:postcode;not null;default:''"`
	Note           *string             `gorm:"column:note"`
	Status         enums.OrderStatus   `gorm:"column:status;not null;default:'new'"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null;default:'cash_on_delivery'"`
	DeliveryTierID *uuid.UUID          `gorm:"column:delivery_tier_id;type:uuid"`
	PromoCodeID    *uuid.UUID          `gorm:"column:promo_code_id;type:uuid"`
	TotalPrice     decimal.Decimal     `gorm:"column:total_price;type:numeric(10,2);not null;default:0"`
	Lines          []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveryTier   *DeliveryTier       `gorm:"foreignKey:DeliveryTierID"`
	PromoCode      *PromoCode          `gorm:"foreignKey:PromoCodeID"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
