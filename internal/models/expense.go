package models

import "time"

// Expense is an outgoing cost. Category is free text, grouped for reporting.
type Expense struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null"`
	Category    string `gorm:"size:64;index;not null"`
	AmountCents int64  `gorm:"not null"`
	Date        string `gorm:"size:10;index;not null"` // YYYY-MM-DD
	Notes       string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
