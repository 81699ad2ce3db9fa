package model

import "time"

// Priority levels as stored on a task.
const (
	PriorityNone   = "None"
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Task statuses.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Recurrence rules recognized by the expansion engine.
const (
	RecurDaily   = "Daily"
	RecurWeekly  = "Weekly"
	RecurMonthly = "Monthly"
	RecurYearly  = "Yearly"
)

// Task represents a single item in the planner. Rows generated from a
// recurrence rule are independent tasks with no link back to their siblings.
type Task struct {
	ID                uint   `gorm:"primaryKey"`
	UserID            uint   `gorm:"index"`
	ProjectID         *uint  `gorm:"index"`
	ParentTaskID      *uint  `gorm:"index"`
	Title             string `gorm:"size:200"`
	Description       string
	Status            string `gorm:"size:50;default:Pending"`
	Priority          string `gorm:"size:20;default:None"`
	DueDate           *time.Time
	RecurrenceRule    string
	RecurrenceEndDate *time.Time
	ReminderTime      *time.Time
	IsReminded        bool `gorm:"default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Tags              []Tag `gorm:"many2many:task_tags"`
}
