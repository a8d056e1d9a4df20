package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating for a product, at most one per (user, product).
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_review_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_review_user_product,priority:2"`
	Rating    int       `gorm:"column:rating;not null"`
	Text      string    `gorm:"column:text;not null;default:''"`
	User      *User     `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
