package models

import "time"

// Client is a paying customer. TotalProjects/TotalEarningsCents are stored
// snapshots; list endpoints recompute them from the project table.
type Client struct {
	ID                 uint   `gorm:"primaryKey"`
	UserID             uint   `gorm:"index;not null"`
	Name               string `gorm:"size:64;index;not null"`
	Contact            string `gorm:"size:64"`
	TotalProjects      int    `gorm:"default:0"`
	TotalEarningsCents int64  `gorm:"default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
