package model

import "time"

// Tag labels tasks; names are unique per user and matched case-sensitively.
type Tag struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index:idx_user_tag_name,unique"`
	Name      string `gorm:"size:50;index:idx_user_tag_name,unique"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Tasks     []Task `gorm:"many2many:task_tags"`
}
