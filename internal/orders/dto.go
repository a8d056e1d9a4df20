package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelierno/storefront-backend/pkg/enums"
)

// CheckoutInput carries the contact details captured at checkout.
type CheckoutInput struct {
	Name          string
	Email         string
	City          string
	Phone         string
	Address       string
	Postcode      string
	Note          *string
	PaymentMethod enums.PaymentMethod
	PromoCode     string
}

// OrderLineDTO is one snapshotted order row.
type OrderLineDTO struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// OrderDTO is a placed order.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	City          string              `json:"city"`
	Phone         string              `json:"phone"`
	Address       string              `json:"address"`
	Postcode      string              `json:"postcode"`
	Note          *string             `json:"note,omitempty"`
	PromoCode     string              `json:"promo_code,omitempty"`
	DeliveryTitle string              `json:"delivery_title,omitempty"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	Lines         []OrderLineDTO      `json:"lines"`
	CreatedAt     time.Time           `json:"created_at"`
}
