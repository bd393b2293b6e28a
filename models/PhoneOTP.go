package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OTPPurposeLogin  = "login"
	OTPPurposeSignup = "signup"
)

// PhoneOTP is one short-lived login code for the two-phase phone flow.
// Metadata carries the signup fields sent with the first phase so the
// verify phase can create the account.
type PhoneOTP struct {
	gorm.Model
	Phone      string `gorm:"not null;index"`
	Code       string `gorm:"not null"`
	Purpose    string `gorm:"not null"`
	ExpiresAt  time.Time
	VerifiedAt *time.Time
	Attempts   int    `gorm:"default:0"`
	IsUsed     bool   `gorm:"default:false"`
	Metadata   string `gorm:"type:text"` // JSON of signup metadata, optional
}

// Usable reports whether the code can still be redeemed.
func (o *PhoneOTP) Usable(now time.Time) bool {
	return !o.IsUsed && o.Attempts < 5 && now.Before(o.ExpiresAt)
}
