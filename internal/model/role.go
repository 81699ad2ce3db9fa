package model

import "time"

// Role names seeded at startup.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Role grants an account a permission level.
type Role struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:50;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Users     []User `gorm:"many2many:user_roles"`
}
