package util

import (
	"testing"

	"studio-ledger/internal/models"
)

func TestValidateAmountCents_Positive(t *testing.T) {
	testCases := []int64{1, 100, 1050, 99999999}

	for _, cents := range testCases {
		err := ValidateAmountCents(cents)
		if err != nil {
			t.Errorf("ValidateAmountCents(%d) error = %v, want nil", cents, err)
		}
	}
}

func TestValidateAmountCents_NonPositive(t *testing.T) {
	testCases := []int64{0, -1, -10000}

	for _, cents := range testCases {
		err := ValidateAmountCents(cents)
		if err == nil {
			t.Errorf("ValidateAmountCents(%d) error = nil, want error", cents)
		}
	}
}

func TestValidateAmountCents_TooLarge(t *testing.T) {
	err := ValidateAmountCents(1_000_000_000_00)

	if err == nil {
		t.Error("ValidateAmountCents(1e11) error = nil, want error")
	}
}

func TestValidateBudgetCents_ZeroAllowed(t *testing.T) {
	if err := ValidateBudgetCents(0); err != nil {
		t.Errorf("ValidateBudgetCents(0) error = %v, want nil", err)
	}
	if err := ValidateBudgetCents(-1); err == nil {
		t.Error("ValidateBudgetCents(-1) error = nil, want error")
	}
}

func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2025-06-15",
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

func TestValidateDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01",
		"2024-01-32",
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

func TestValidateEnums(t *testing.T) {
	for _, v := range models.ProjectTypes {
		if err := ValidateProjectType(v); err != nil {
			t.Errorf("ValidateProjectType(%q) error = %v, want nil", v, err)
		}
	}
	if err := ValidateProjectType("Podcast"); err == nil {
		t.Error("ValidateProjectType(\"Podcast\") error = nil, want error")
	}

	for _, v := range models.ProjectStatuses {
		if err := ValidateProjectStatus(v); err != nil {
			t.Errorf("ValidateProjectStatus(%q) error = %v, want nil", v, err)
		}
	}
	if err := ValidateProjectStatus("Done"); err == nil {
		t.Error("ValidateProjectStatus(\"Done\") error = nil, want error")
	}

	for _, v := range models.PaymentMethods {
		if err := ValidatePaymentMethod(v); err != nil {
			t.Errorf("ValidatePaymentMethod(%q) error = %v, want nil", v, err)
		}
	}
	if err := ValidatePaymentMethod("Paypal"); err == nil {
		t.Error("ValidatePaymentMethod(\"Paypal\") error = nil, want error")
	}
}

func TestValidatePIN(t *testing.T) {
	valid := []string{"0000", "1234", "9999"}
	for _, pin := range valid {
		if err := ValidatePIN(pin); err != nil {
			t.Errorf("ValidatePIN(%q) error = %v, want nil", pin, err)
		}
	}

	invalid := []string{"", "123", "12345", "12a4", "12 4", "১২৩৪"}
	for _, pin := range invalid {
		if err := ValidatePIN(pin); err == nil {
			t.Errorf("ValidatePIN(%q) error = nil, want error", pin)
		}
	}
}
