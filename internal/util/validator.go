package util

import (
	"fmt"
	"time"

	"studio-ledger/internal/models"
)

// ValidateAmountCents checks a monetary amount (positive, below the cap).
func ValidateAmountCents(cents int64) error {
	if cents <= 0 {
		return fmt.Errorf("amount must be positive, got %d", cents)
	}
	if cents >= 1_000_000_000_00 { // 1 billion cap
		return fmt.Errorf("amount too large, got %d", cents)
	}
	return nil
}

// ValidateBudgetCents is ValidateAmountCents with zero allowed (a project
// budget may start unset).
func ValidateBudgetCents(cents int64) error {
	if cents == 0 {
		return nil
	}
	return ValidateAmountCents(cents)
}

// ValidateDate checks a YYYY-MM-DD date string.
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateProjectType checks the project type enum.
func ValidateProjectType(t string) error {
	for _, v := range models.ProjectTypes {
		if t == v {
			return nil
		}
	}
	return fmt.Errorf("unknown project type %q", t)
}

// ValidateProjectStatus checks the project status enum.
func ValidateProjectStatus(s string) error {
	for _, v := range models.ProjectStatuses {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("unknown project status %q", s)
}

// ValidatePaymentMethod checks the payment channel enum.
func ValidatePaymentMethod(m string) error {
	for _, v := range models.PaymentMethods {
		if m == v {
			return nil
		}
	}
	return fmt.Errorf("unknown payment method %q", m)
}

// ValidatePIN checks the app-lock PIN: exactly 4 digits.
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return fmt.Errorf("pin must be exactly 4 digits")
	}
	for _, ch := range pin {
		if ch < '0' || ch > '9' {
			return fmt.Errorf("pin must be exactly 4 digits")
		}
	}
	return nil
}
