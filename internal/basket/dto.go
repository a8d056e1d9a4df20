package basket

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddLineInput identifies the exact variant being added.
type AddLineInput struct {
	ProductID      uuid.UUID
	ColorVariantID uuid.UUID
	SizeVariantID  uuid.UUID
	Quantity       int
}

// LineDTO is one basket row with its captured pricing and current
// availability.
type LineDTO struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	ProductSlug  string          `json:"product_slug"`
	Color        string          `json:"color"`
	Size         string          `json:"size"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
	Available    bool            `json:"available"`
}

// BasketDTO is the whole basket. Amount counts only lines whose size variant
// is still available.
type BasketDTO struct {
	Lines     []LineDTO       `json:"lines"`
	Amount    decimal.Decimal `json:"amount"`
	ItemCount int             `json:"item_count"`
}
