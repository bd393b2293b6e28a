package models

import (
	"testing"
	"time"
)

func TestDonationTransitions(t *testing.T) {
	cases := []struct {
		from    DonationStatus
		to      DonationStatus
		allowed bool
	}{
		{DonationPending, DonationApproved, true},
		{DonationPending, DonationRejected, true},
		{DonationPending, DonationAssigned, false},
		{DonationPending, DonationDelivered, false},
		{DonationApproved, DonationAssigned, true},
		{DonationApproved, DonationPending, false},
		{DonationApproved, DonationRejected, false},
		{DonationAssigned, DonationPickedUp, true},
		{DonationAssigned, DonationApproved, true}, // volunteer backed out
		{DonationAssigned, DonationPending, false},
		{DonationPickedUp, DonationDelivered, true},
		{DonationPickedUp, DonationAssigned, false},
		{DonationPickedUp, DonationApproved, false},
		{DonationDelivered, DonationApproved, false},
		{DonationDelivered, DonationPickedUp, false},
		{DonationRejected, DonationApproved, false},
		{DonationRejected, DonationPending, false},
	}

	for _, tc := range cases {
		d := Donation{Status: tc.from}
		err := d.Transition(tc.to)
		if tc.allowed && err != nil {
			t.Errorf("%s -> %s: expected allowed, got %v", tc.from, tc.to, err)
		}
		if !tc.allowed && err == nil {
			t.Errorf("%s -> %s: expected rejection, transition succeeded", tc.from, tc.to)
		}
		if tc.allowed && d.Status != tc.to {
			t.Errorf("%s -> %s: status not updated, still %s", tc.from, tc.to, d.Status)
		}
		if !tc.allowed && d.Status != tc.from {
			t.Errorf("%s -> %s: rejected transition mutated status to %s", tc.from, tc.to, d.Status)
		}
	}
}

func TestFallbackToApprovedReleasesAcceptance(t *testing.T) {
	ngo := uint(42)
	now := time.Now()
	d := Donation{Status: DonationAssigned, AcceptedByNGO: &ngo, AcceptedAt: &now}

	if err := d.Transition(DonationApproved); err != nil {
		t.Fatalf("assigned -> approved should be allowed: %v", err)
	}
	if d.AcceptedByNGO != nil || d.AcceptedAt != nil {
		t.Fatalf("acceptance must be released on fallback, got ngo=%v at=%v", d.AcceptedByNGO, d.AcceptedAt)
	}
}

func TestForwardTransitionsKeepAcceptance(t *testing.T) {
	ngo := uint(42)
	d := Donation{Status: DonationAssigned, AcceptedByNGO: &ngo}

	if err := d.Transition(DonationPickedUp); err != nil {
		t.Fatal(err)
	}
	if err := d.Transition(DonationDelivered); err != nil {
		t.Fatal(err)
	}
	if d.AcceptedByNGO == nil || *d.AcceptedByNGO != ngo {
		t.Fatal("acceptor must survive pickup and delivery")
	}
}

func TestDonationTerminalStates(t *testing.T) {
	terminal := []DonationStatus{DonationRejected, DonationDelivered}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	live := []DonationStatus{DonationPending, DonationApproved, DonationAssigned, DonationPickedUp}
	for _, s := range live {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestTransitionErrorMessage(t *testing.T) {
	d := Donation{Status: DonationDelivered}
	err := d.Transition(DonationPending)
	if err == nil {
		t.Fatal("expected error")
	}
	te, ok := err.(*TransitionError)
	if !ok {
		t.Fatalf("expected *TransitionError, got %T", err)
	}
	if te.From != "delivered" || te.To != "pending" || te.Entity != "donation" {
		t.Errorf("unexpected error fields: %+v", te)
	}
}
