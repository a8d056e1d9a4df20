package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical customer identity.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name;not null;default:''"`
	City         *string    `gorm:"column:city"`
	Phone        *string    `gorm:"column:phone"`
	Address      *string    `gorm:"column:address"`
	Postcode     *string    `gorm:"column:postcode"`
	ExtraInfo    *string    `gorm:"column:extra_info"`
	Birthday     *time.Time `gorm:"column:birthday;type:date"`
	IsAdmin      bool       `gorm:"column:is_admin;not null;default:false"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// DisplayName returns the customer-facing name, falling back to the email
// local part when no name was provided.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		if u.LastName != "" {
			return u.FirstName + " " + u.LastName
		}
		return u.FirstName
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}
