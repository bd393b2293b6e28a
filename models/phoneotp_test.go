package models

import (
	"testing"
	"time"
)

func TestPhoneOTPUsable(t *testing.T) {
	now := time.Now()
	fresh := PhoneOTP{Code: "1234", ExpiresAt: now.Add(5 * time.Minute)}
	if !fresh.Usable(now) {
		t.Fatal("fresh code should be usable")
	}

	used := fresh
	used.IsUsed = true
	if used.Usable(now) {
		t.Fatal("redeemed code must not be usable")
	}

	exhausted := fresh
	exhausted.Attempts = 5
	if exhausted.Usable(now) {
		t.Fatal("code with 5 failed attempts must not be usable")
	}

	expired := fresh
	expired.ExpiresAt = now.Add(-time.Minute)
	if expired.Usable(now) {
		t.Fatal("expired code must not be usable")
	}
}
