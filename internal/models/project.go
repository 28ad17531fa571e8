package models

import "time"

// Project types produced by the studio.
const (
	TypeNasheedSong = "NasheedSong"
	TypeAds         = "Ads"
	TypeWaz         = "Waz"
)

// Project statuses.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// ProjectTypes and ProjectStatuses list the accepted enum values.
var (
	ProjectTypes    = []string{TypeNasheedSong, TypeAds, TypeWaz}
	ProjectStatuses = []string{StatusPending, StatusInProgress, StatusCompleted}
)

// Project represents one production job. Amounts are stored in cents to
// avoid float error; PaidCents/DueCents are maintained from income records.
type Project struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index;not null"`
	Name       string `gorm:"size:128;not null"`
	ClientName string `gorm:"size:64;index"` // denormalized, kept in sync on client rename
	Type       string `gorm:"size:32;index;not null"`
	TotalCents int64  `gorm:"not null"` // agreed budget
	PaidCents  int64  `gorm:"not null"` // derived: sum of income records
	DueCents   int64  `gorm:"not null"` // maintained: total - paid, floored in most paths
	Status     string `gorm:"size:16;index;not null"`
	StartDate  string `gorm:"size:10;not null"` // YYYY-MM-DD
	Deadline   string `gorm:"size:10"`          // YYYY-MM-DD, optional
	Notes      string `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
