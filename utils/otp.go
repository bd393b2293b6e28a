package utils

import (
	"crypto/rand"
	"math/big"
)

// GenerateOTP returns a numeric one-time code of the given length,
// zero-padded. Used for pickup/delivery handoff codes and phone login.
func GenerateOTP(length int) string {
	if length <= 0 {
		length = 4
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			digits[i] = '0'
			continue
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}
