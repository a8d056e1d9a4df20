package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter narrows the catalog listing. Category filtering covers the whole
// subtree rooted at the slug.
type ListFilter struct {
	CategorySlug  string
	BrandSlug     string
	Tag           string
	PriceMin      *decimal.Decimal
	PriceMax      *decimal.Decimal
	Search        string
	OnlyAvailable bool
}

// ProductSummary is the listing card payload.
type ProductSummary struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	BasePrice       decimal.Decimal `json:"base_price"`
	DiscountPercent int             `json:"discount_percent"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	Available       bool            `json:"available"`
	SaleCount       int             `json:"sale_count"`
	Rating          *float64        `json:"rating"`
	ReviewCount     int             `json:"review_count"`
	Tags            []string        `json:"tags"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	BrandID         *uuid.UUID      `json:"brand_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ProductDetail extends the summary with description and the variant tree.
type ProductDetail struct {
	ProductSummary
	Description *string           `json:"description"`
	Colors      []ColorVariantDTO `json:"colors"`
}

// ColorVariantDTO is a color option with its sizes.
type ColorVariantDTO struct {
	ID        uuid.UUID        `json:"id"`
	Color     string           `json:"color"`
	Available bool             `json:"available"`
	Sizes     []SizeVariantDTO `json:"sizes"`
}

// SizeVariantDTO is a size option under a color.
type SizeVariantDTO struct {
	ID        uuid.UUID `json:"id"`
	Size      string    `json:"size"`
	Available bool      `json:"available"`
}

// ProductPage is a cursor-paginated product listing.
type ProductPage struct {
	Items      []ProductSummary `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
	Total      int64            `json:"total"`
}

// CategoryDTO is a category tree node.
type CategoryDTO struct {
	ID       uuid.UUID     `json:"id"`
	Title    string        `json:"title"`
	Slug     string        `json:"slug"`
	Children []CategoryDTO `json:"children,omitempty"`
}

// BrandDTO is a manufacturer entry.
type BrandDTO struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

// ProductInput carries the writable product fields. The current price is
// derived, never accepted from the caller.
type ProductInput struct {
	Title           string
	Slug            string
	Description     *string
	BasePrice       decimal.Decimal
	DiscountPercent int
	CategoryID      *uuid.UUID
	BrandID         *uuid.UUID
	Tags            []string
}
