package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskUnassigned TaskStatus = "unassigned"
	TaskAssigned   TaskStatus = "assigned"
	TaskAccepted   TaskStatus = "accepted"
	TaskPickedUp   TaskStatus = "picked_up"
	TaskDelivered  TaskStatus = "delivered"
)

// taskTransitions mirrors the donation lifecycle on the task side. A task
// may return to unassigned only from accepted (volunteer backing out before
// pickup); once food is picked up the volunteer is committed.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskUnassigned: {TaskAssigned},
	TaskAssigned:   {TaskAccepted},
	TaskAccepted:   {TaskPickedUp, TaskUnassigned},
	TaskPickedUp:   {TaskDelivered},
}

// VolunteerTask is the pickup-and-delivery assignment for one donation.
// Rows are never deleted; they double as the audit trail of the handoff.
type VolunteerTask struct {
	gorm.Model
	DonationID uint     `json:"donationID" gorm:"not null;uniqueIndex"`
	Donation   Donation `json:"donation" gorm:"foreignKey:DonationID"`

	VolunteerID *uint `json:"volunteerID" gorm:"index"`
	NGOID       *uint `json:"ngoID" gorm:"index"` // nil until an NGO accepts the donation

	Status TaskStatus `json:"status" gorm:"type:varchar(20);default:'unassigned';index"`

	PickupOTP   string `json:"pickupOTP" gorm:"size:8"`
	DeliveryOTP string `json:"deliveryOTP" gorm:"size:8"`

	EstimatedDistance *float64 `json:"estimatedDistance"` // kilometers
	EstimatedTime     *int     `json:"estimatedTime"`     // minutes

	ActualPickupTime   *time.Time `json:"actualPickupTime"`
	ActualDeliveryTime *time.Time `json:"actualDeliveryTime"`

	Notes string `json:"notes" gorm:"type:text"`
}

func (s TaskStatus) CanTransition(to TaskStatus) bool {
	for _, next := range taskTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (t *VolunteerTask) Transition(to TaskStatus) error {
	if !t.Status.CanTransition(to) {
		return &TransitionError{Entity: "volunteer_task", From: string(t.Status), To: string(to)}
	}
	t.Status = to
	return nil
}

// BindVolunteer attaches a volunteer and moves the task to assigned. The
// OTP pair is generated exactly once, on the first binding; a task that is
// re-claimed after an unassignment keeps its original codes.
func (t *VolunteerTask) BindVolunteer(volunteerID uint, otp func() string) error {
	if err := t.Transition(TaskAssigned); err != nil {
		return err
	}
	t.VolunteerID = &volunteerID
	if t.PickupOTP == "" {
		t.PickupOTP = otp()
	}
	if t.DeliveryOTP == "" {
		t.DeliveryOTP = otp()
	}
	return nil
}

// Unbind releases the volunteer before pickup. The OTP pair stays; the NGO
// pointer does not, since the donation falls back to approved and loses its
// acceptance.
func (t *VolunteerTask) Unbind() error {
	if err := t.Transition(TaskUnassigned); err != nil {
		return err
	}
	t.VolunteerID = nil
	t.NGOID = nil
	return nil
}
