package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the catalog category tree.
type Category struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid"`
	Title     string     `gorm:"column:title;not null"`
	Slug      string     `gorm:"column:slug;not null;uniqueIndex"`
	Children  []Category `gorm:"foreignKey:ParentID"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
