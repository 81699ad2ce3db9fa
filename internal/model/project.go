package model

import "time"

// Project groups tasks under a user-owned bucket.
type Project struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index"`
	Name      string `gorm:"size:200"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Tasks     []Task `gorm:"foreignKey:ProjectID"`
}
