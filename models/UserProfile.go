package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile holds the display information for a user. Authentication
// lives on the User model; verification here is the trust badge, distinct
// from the approval gate on RoleAssignment.
type UserProfile struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"userID" gorm:"not null;uniqueIndex"`
	User   User `json:"-" gorm:"foreignKey:UserID"`

	FullName  string `json:"fullName" gorm:"size:100"`
	Phone     string `json:"phone" gorm:"size:20"`
	Location  string `json:"location" gorm:"size:200"`
	AvatarURL string `json:"avatarURL" gorm:"size:512"`

	IsVerified        bool   `json:"isVerified" gorm:"default:false"`
	VerificationBadge string `json:"verificationBadge" gorm:"size:50"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"deletedAt" gorm:"index"`
}
