package utils

import (
	"strconv"
	"testing"
)

func TestFormatPhoneNumber(t *testing.T) {
	cases := map[string]string{
		"+91 98765 43210": "919876543210",
		"09876543210":     "919876543210",
		"9876543210":      "919876543210",
		"919876543210":    "919876543210",
	}
	for in, want := range cases {
		if got := FormatPhoneNumber(in); got != want {
			t.Errorf("FormatPhoneNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	valid := []string{"9876543210", "+91 98765 43210", "6123456789"}
	for _, in := range valid {
		if !ValidatePhoneNumber(in) {
			t.Errorf("%q should be valid", in)
		}
	}
	invalid := []string{"12345", "5876543210", "98765432101", ""}
	for _, in := range invalid {
		if ValidatePhoneNumber(in) {
			t.Errorf("%q should be invalid", in)
		}
	}
}

func TestGenerateOTP(t *testing.T) {
	for _, length := range []int{4, 6} {
		code := GenerateOTP(length)
		if len(code) != length {
			t.Fatalf("expected %d digits, got %q", length, code)
		}
		if _, err := strconv.Atoi(code); err != nil {
			t.Fatalf("OTP should be numeric, got %q", code)
		}
	}

	// non-positive length falls back to 4
	if code := GenerateOTP(0); len(code) != 4 {
		t.Fatalf("expected fallback to 4 digits, got %q", code)
	}
}
