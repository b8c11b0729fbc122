package models

import "time"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a single to-do item. UserID is the owning user and
// never changes after the task is created.
type Task struct {
	ID        int64
	UserID    int64
	Title     string
	Detail    string
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Completed bool
	Priority  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
