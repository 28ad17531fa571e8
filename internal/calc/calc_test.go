package calc

import (
	"testing"
)

// TestEvaluate_Empty checks that empty input evaluates to zero.
func TestEvaluate_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "\t"} {
		v, err := Evaluate(input)
		if err != nil {
			t.Errorf("Evaluate(%q) error = %v, want nil", input, err)
		}
		if !v.IsZero() {
			t.Errorf("Evaluate(%q) = %s, want 0", input, v)
		}
	}
}

func TestEvaluate_Basic(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"12+8", "20"},
		{"500+300", "800"},
		{"3.5*2", "7"},
		{"2+3*4", "14"},
		{"(2+3)*4", "20"},
		{"100-30-20", "50"},
		{"10/4", "2.5"},
		{"10/3", "3.33"},
		{"10%3", "1"},
		{"-5+10", "5"},
		{"-(2+3)", "-5"},
		{"  7 * 2 ", "14"},
		{"0.1+0.2", "0.3"},
		{".5*2", "1"},
	}

	for _, tc := range cases {
		v, err := Evaluate(tc.input)
		if err != nil {
			t.Errorf("Evaluate(%q) error = %v, want nil", tc.input, err)
			continue
		}
		if v.String() != tc.want {
			t.Errorf("Evaluate(%q) = %s, want %s", tc.input, v, tc.want)
		}
	}
}

func TestEvaluate_Invalid(t *testing.T) {
	cases := []string{
		"12++",
		"abc",
		"1+2)",
		"(1+2",
		"1..2",
		"5 5",
		"1+",
		"+",
		"1e5",
	}

	for _, input := range cases {
		if _, err := Evaluate(input); err == nil {
			t.Errorf("Evaluate(%q) error = nil, want error", input)
		}
	}
}

// TestEvaluate_DivideByZero checks division by zero fails without panicking.
func TestEvaluate_DivideByZero(t *testing.T) {
	for _, input := range []string{"10/0", "5%0", "1/(2-2)"} {
		_, err := Evaluate(input)
		if err != ErrDivideByZero {
			t.Errorf("Evaluate(%q) error = %v, want ErrDivideByZero", input, err)
		}
	}
}

func TestEvaluate_Rounding(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"1/3", "0.33"},
		{"2/3", "0.67"},
		{"0.005+0", "0.01"},
	}

	for _, tc := range cases {
		v, err := Evaluate(tc.input)
		if err != nil {
			t.Errorf("Evaluate(%q) error = %v, want nil", tc.input, err)
			continue
		}
		if v.String() != tc.want {
			t.Errorf("Evaluate(%q) = %s, want %s", tc.input, v, tc.want)
		}
	}
}

func TestEvaluateCents(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"", 0},
		{"12.34", 1234},
		{"500+300", 80000},
		{"10/3", 333},
	}

	for _, tc := range cases {
		got, err := EvaluateCents(tc.input)
		if err != nil {
			t.Errorf("EvaluateCents(%q) error = %v, want nil", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("EvaluateCents(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}
