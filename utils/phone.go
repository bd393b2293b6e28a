package utils

import (
	"regexp"
	"strings"
)

// FormatPhoneNumber formats a phone number to a standard format
// Removes all non-digit characters and ensures it starts with country code
func FormatPhoneNumber(phoneNumber string) string {
	re := regexp.MustCompile(`\D`)
	digits := re.ReplaceAllString(phoneNumber, "")

	// If it doesn't start with country code, assume India (+91)
	if len(digits) > 0 && !strings.HasPrefix(digits, "91") {
		digits = strings.TrimLeft(digits, "0")
		digits = "91" + digits
	}

	return digits
}

// ValidatePhoneNumber validates if a phone number is in correct format
func ValidatePhoneNumber(phoneNumber string) bool {
	re := regexp.MustCompile(`\D`)
	cleaned := re.ReplaceAllString(phoneNumber, "")

	cleaned = strings.TrimPrefix(cleaned, "91")

	// Indian mobile numbers are 10 digits starting with 6-9
	if len(cleaned) != 10 {
		return false
	}

	matched, _ := regexp.MatchString(`^[6-9]\d{9}$`, cleaned)
	return matched
}

// NormalizePhoneNumber normalizes phone number for database storage
func NormalizePhoneNumber(phoneNumber string) string {
	return FormatPhoneNumber(phoneNumber)
}

// DisplayPhoneNumber formats phone number for display
func DisplayPhoneNumber(phoneNumber string) string {
	formatted := FormatPhoneNumber(phoneNumber)
	if len(formatted) == 12 && strings.HasPrefix(formatted, "91") {
		// Format as +91 XXXXX XXXXX
		return "+" + formatted[:2] + " " + formatted[2:7] + " " + formatted[7:]
	}
	return phoneNumber
}
