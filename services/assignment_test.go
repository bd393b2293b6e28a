package services

import (
	"errors"
	"math"
	"testing"

	"github.com/chaitu2303/FoodChain/models"
)

// fakeAssignmentStore keeps the assignment flow's rows in memory so the
// end-to-end approve-and-assign scenarios run without a database.
type fakeAssignmentStore struct {
	eligible      []models.Volunteer
	task          *models.VolunteerTask
	savedTask     *models.VolunteerTask
	statusUpdates []models.DonationStatus
}

func (f *fakeAssignmentStore) EligibleVolunteers() ([]models.Volunteer, error) {
	return f.eligible, nil
}

func (f *fakeAssignmentStore) TaskForDonation(donationID uint) (*models.VolunteerTask, error) {
	if f.task == nil || f.task.DonationID != donationID {
		return nil, errors.New("record not found")
	}
	return f.task, nil
}

func (f *fakeAssignmentStore) SaveTask(task *models.VolunteerTask) error {
	f.savedTask = task
	return nil
}

func (f *fakeAssignmentStore) UpdateDonationStatus(donation *models.Donation) error {
	f.statusUpdates = append(f.statusUpdates, donation.Status)
	return nil
}

func ptr(f float64) *float64 { return &f }

func TestFirstAvailableMatcher(t *testing.T) {
	if got := (FirstAvailable{}).Match(&models.Donation{}, nil); got != nil {
		t.Fatalf("empty pool should return nil, got %v", got)
	}

	candidates := []models.Volunteer{{UserID: 1}, {UserID: 2}}
	got := FirstAvailable{}.Match(&models.Donation{}, candidates)
	if got == nil || got.UserID != 1 {
		t.Fatalf("expected first candidate, got %v", got)
	}
}

func TestNearestMatcher(t *testing.T) {
	donation := &models.Donation{Latitude: ptr(12.9716), Longitude: ptr(77.5946)} // Bengaluru

	candidates := []models.Volunteer{
		{UserID: 1, CurrentLatitude: ptr(13.0827), CurrentLongitude: ptr(80.2707)}, // Chennai, ~290 km
		{UserID: 2, CurrentLatitude: ptr(12.9352), CurrentLongitude: ptr(77.6245)}, // Koramangala, ~5 km
		{UserID: 3},                                                                // no location
	}

	got := Nearest{}.Match(donation, candidates)
	if got == nil || got.UserID != 2 {
		t.Fatalf("expected nearest candidate (user 2), got %v", got)
	}
}

func TestNearestFallsBackWithoutCoordinates(t *testing.T) {
	// donation has no coordinates
	candidates := []models.Volunteer{{UserID: 5}, {UserID: 6}}
	got := Nearest{}.Match(&models.Donation{}, candidates)
	if got == nil || got.UserID != 5 {
		t.Fatalf("expected first-available fallback, got %v", got)
	}

	// donation located but no candidate has coordinates
	donation := &models.Donation{Latitude: ptr(12.97), Longitude: ptr(77.59)}
	got = Nearest{}.Match(donation, candidates)
	if got == nil || got.UserID != 5 {
		t.Fatalf("expected first-available fallback, got %v", got)
	}

	if got := (Nearest{}).Match(donation, nil); got != nil {
		t.Fatalf("empty pool should return nil, got %v", got)
	}
}

func TestAutoAssignWithOneEligibleVolunteer(t *testing.T) {
	volunteer := models.Volunteer{UserID: 9, Availability: models.AvailabilityAvailable}
	volunteer.ID = 3
	store := &fakeAssignmentStore{eligible: []models.Volunteer{volunteer}}
	as := &AssignmentService{Matcher: FirstAvailable{}, Store: store}

	donation := &models.Donation{Status: models.DonationApproved}
	donation.ID = 5

	task, err := as.AutoAssign(donation)
	if err != nil {
		t.Fatalf("auto-assign failed: %v", err)
	}
	if task == nil {
		t.Fatal("expected a task")
	}
	if task.Status != models.TaskAssigned {
		t.Fatalf("expected task at assigned, got %s", task.Status)
	}
	if task.VolunteerID == nil || *task.VolunteerID != volunteer.ID {
		t.Fatalf("task not bound to the chosen volunteer: %v", task.VolunteerID)
	}
	if len(task.PickupOTP) != 4 || len(task.DeliveryOTP) != 4 {
		t.Fatalf("OTP pair not generated: %q %q", task.PickupOTP, task.DeliveryOTP)
	}
	if donation.Status != models.DonationAssigned {
		t.Fatalf("donation should advance to assigned, got %s", donation.Status)
	}
	if store.savedTask != task {
		t.Fatal("task was not persisted")
	}
	if len(store.statusUpdates) != 1 || store.statusUpdates[0] != models.DonationAssigned {
		t.Fatalf("donation status not persisted: %v", store.statusUpdates)
	}
}

func TestAutoAssignWithNoEligibleVolunteers(t *testing.T) {
	store := &fakeAssignmentStore{}
	as := &AssignmentService{Matcher: Nearest{}, Store: store}

	donation := &models.Donation{Status: models.DonationApproved}
	donation.ID = 7

	task, err := as.AutoAssign(donation)
	if err != nil {
		t.Fatalf("empty pool should not error: %v", err)
	}
	if task != nil {
		t.Fatalf("expected no task, got %v", task)
	}
	if donation.Status != models.DonationApproved {
		t.Fatalf("donation must stay at approved, got %s", donation.Status)
	}
	if store.savedTask != nil {
		t.Fatal("nothing should be persisted with an empty pool")
	}
}

func TestAssignVolunteerRejectsIneligibleDonation(t *testing.T) {
	store := &fakeAssignmentStore{}
	as := &AssignmentService{Matcher: FirstAvailable{}, Store: store}

	for _, status := range []models.DonationStatus{
		models.DonationPending, models.DonationRejected, models.DonationDelivered,
	} {
		donation := &models.Donation{Status: status}
		_, err := as.AssignVolunteer(donation, &models.Volunteer{})
		if err == nil {
			t.Errorf("%s: expected rejection", status)
			continue
		}
		if _, ok := err.(*models.TransitionError); !ok {
			t.Errorf("%s: expected *TransitionError, got %T", status, err)
		}
		if store.savedTask != nil {
			t.Fatalf("%s: no task may be written for an ineligible donation", status)
		}
		if donation.Status != status {
			t.Errorf("%s: donation status mutated to %s", status, donation.Status)
		}
	}
}

func TestAssignVolunteerRebindKeepsOTPs(t *testing.T) {
	donation := &models.Donation{Status: models.DonationApproved}
	donation.ID = 11
	existing := &models.VolunteerTask{
		DonationID:  11,
		Status:      models.TaskUnassigned,
		PickupOTP:   "1234",
		DeliveryOTP: "5678",
	}
	store := &fakeAssignmentStore{task: existing}
	as := &AssignmentService{Matcher: FirstAvailable{}, Store: store}

	volunteer := models.Volunteer{UserID: 2}
	volunteer.ID = 8
	task, err := as.AssignVolunteer(donation, &volunteer)
	if err != nil {
		t.Fatal(err)
	}
	if task.PickupOTP != "1234" || task.DeliveryOTP != "5678" {
		t.Fatalf("re-claim must keep the OTP pair, got %q %q", task.PickupOTP, task.DeliveryOTP)
	}
}

func TestCalculateDistance(t *testing.T) {
	// Bengaluru to Chennai, roughly 290 km
	d := CalculateDistance(12.9716, 77.5946, 13.0827, 80.2707)
	if math.Abs(d-290) > 15 {
		t.Fatalf("expected ~290 km, got %.1f", d)
	}

	if d := CalculateDistance(12.97, 77.59, 12.97, 77.59); d != 0 {
		t.Fatalf("distance to self should be 0, got %f", d)
	}
}
