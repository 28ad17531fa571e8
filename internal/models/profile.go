package models

import "time"

// Profile is the authoritative display record for a user. Token claims carry
// a copy of name/role as a fast path, but this row wins on conflict.
type Profile struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"uniqueIndex;not null"`
	Name       string `gorm:"size:64"`
	Phone      string `gorm:"size:32"`
	Occupation string `gorm:"size:64"`
	AvatarURL  string `gorm:"size:255"`
	Language   string `gorm:"size:8;default:en"`
	Currency   string `gorm:"size:8;default:BDT"`

	// App-lock PIN, pbkdf2-hashed. Empty means the lock is disabled.
	PINHash string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
