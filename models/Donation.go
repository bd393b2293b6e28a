package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationApproved  DonationStatus = "approved"
	DonationRejected  DonationStatus = "rejected"
	DonationAssigned  DonationStatus = "assigned"
	DonationPickedUp  DonationStatus = "picked_up"
	DonationDelivered DonationStatus = "delivered"
)

// TransitionError reports an attempt to move a status outside its
// transition table.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: illegal transition %s -> %s", e.Entity, e.From, e.To)
}

// donationTransitions is the full lifecycle. rejected and delivered are
// terminal; assigned may fall back to approved when a volunteer backs out.
var donationTransitions = map[DonationStatus][]DonationStatus{
	DonationPending:  {DonationApproved, DonationRejected},
	DonationApproved: {DonationAssigned},
	DonationAssigned: {DonationPickedUp, DonationApproved},
	DonationPickedUp: {DonationDelivered},
}

type Donation struct {
	gorm.Model
	DonorID      uint        `json:"donorID" gorm:"not null;index"`
	DonorProfile UserProfile `json:"donorProfile" gorm:"foreignKey:DonorID;references:UserID"`

	FoodType     string `json:"foodType" gorm:"size:100;not null"`
	FoodCategory string `json:"foodCategory" gorm:"size:50"`
	Quantity     string `json:"quantity" gorm:"size:50;not null"`
	QuantityUnit string `json:"quantityUnit" gorm:"size:20;default:'servings'"`
	Description  string `json:"description" gorm:"type:text"`
	ImageURL     string `json:"imageURL" gorm:"size:512"`

	ExpiryTime      time.Time  `json:"expiryTime" gorm:"not null"`
	PickupAddress   string     `json:"pickupAddress" gorm:"size:300;not null"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	PickupTimeStart *time.Time `json:"pickupTimeStart"`
	PickupTimeEnd   *time.Time `json:"pickupTimeEnd"`

	HygieneConfirmed bool `json:"hygieneConfirmed" gorm:"default:false"`

	Status        DonationStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	AcceptedByNGO *uint          `json:"acceptedByNGO" gorm:"index"`
	AcceptedAt    *time.Time     `json:"acceptedAt"`
}

func (s DonationStatus) CanTransition(to DonationStatus) bool {
	for _, next := range donationTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the donation to the target status, rejecting anything
// outside the lifecycle table. Falling back to approved (volunteer backed
// out) releases the NGO acceptance: the acceptor is only ever set while the
// donation is assigned or further along.
func (d *Donation) Transition(to DonationStatus) error {
	if !d.Status.CanTransition(to) {
		return &TransitionError{Entity: "donation", From: string(d.Status), To: string(to)}
	}
	d.Status = to
	if to == DonationApproved {
		d.AcceptedByNGO = nil
		d.AcceptedAt = nil
	}
	return nil
}

// Terminal reports whether no further transitions exist.
func (s DonationStatus) Terminal() bool {
	return len(donationTransitions[s]) == 0
}
