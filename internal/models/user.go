package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID         string `gorm:"primaryKey;size:36" json:"user_id"`
	Name       string `gorm:"size:255" json:"name,omitempty"`
	Email      string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string `gorm:"size:255" json:"-"`
	Role       string `gorm:"size:32;not null" json:"role,omitempty"`
	Provider   string `gorm:"size:32" json:"provider,omitempty"` // "google", "facebook" ou vide
	ProviderID string `gorm:"size:128" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
