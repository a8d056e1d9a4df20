package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsArticle is an editorial post; only published articles are served.
type NewsArticle struct {
	ID          uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  *uuid.UUID    `gorm:"column:category_id;type:uuid"`
	Title       string        `gorm:"column:title;not null"`
	Slug        string        `gorm:"column:slug;not null;uniqueIndex"`
	Content     string        `gorm:"column:content;not null;default:''"`
	Published   bool          `gorm:"column:published;not null;default:false"`
	PublishedAt *time.Time    `gorm:"column:published_at"`
	Category    *NewsCategory `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
