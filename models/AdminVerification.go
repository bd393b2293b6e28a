package models

import (
	"time"
)

// AdminVerification is a pending approval decision for an NGO or other
// entity. An admin resolves it exactly once; the row is then terminal.
type AdminVerification struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	EntityType  string     `json:"entity_type" gorm:"size:50;not null"`
	EntityID    uint       `json:"entity_id" gorm:"not null;index"`
	RequestedBy *uint      `json:"requested_by" gorm:"index"`
	ApprovedBy  *uint      `json:"approved_by" gorm:"index"`
	Status      string     `json:"status" gorm:"size:20;default:'pending';index"` // pending, approved, rejected
	Notes       string     `json:"notes" gorm:"type:text"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
