package models

import "time"

// Payment channels.
const (
	MethodBkash  = "Bkash"
	MethodCash   = "Cash"
	MethodRocket = "Rocket"
	MethodBank   = "Bank"
	MethodOther  = "Other"
)

// PaymentMethods lists the accepted payment channel values.
var PaymentMethods = []string{MethodBkash, MethodCash, MethodRocket, MethodBank, MethodOther}

// IncomeRecord is one payment against a project. Each record's existence
// implies a contribution of AmountCents toward the project's PaidCents.
// ProjectName/ClientName are denormalized copies, updated on rename.
// Date is a plain YYYY-MM-DD string so month bucketing never depends on
// the host timezone.
type IncomeRecord struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null"`
	ProjectID   uint   `gorm:"index;not null"`
	ProjectName string `gorm:"size:128"`
	ClientName  string `gorm:"size:64;index"`
	AmountCents int64  `gorm:"not null"`
	Date        string `gorm:"size:10;index;not null"`
	Method      string `gorm:"size:16;not null"`
	Notes       string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project Project `gorm:"constraint:OnDelete:RESTRICT"`
}
