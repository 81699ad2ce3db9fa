package model

import "time"

// User is an account holder. TelegramChatID, when set, routes reminder
// notifications to Telegram instead of the log.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"uniqueIndex;size:200"`
	PasswordHash   string
	DisplayName    string
	TelegramChatID int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Roles          []Role `gorm:"many2many:user_roles"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}
