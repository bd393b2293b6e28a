package models

import "testing"

func TestResolveRoleAssignmentWins(t *testing.T) {
	user := &User{SignupRole: RoleDonor}
	assignment := &RoleAssignment{Role: RoleNGO}

	role, fallback := ResolveRole(user, assignment)
	if role != RoleNGO {
		t.Fatalf("assignment row should win, got %q", role)
	}
	if fallback {
		t.Fatal("fallback flag should be false when the row resolves")
	}
}

func TestResolveRoleSignupFallback(t *testing.T) {
	user := &User{SignupRole: RoleVolunteer}

	role, fallback := ResolveRole(user, nil)
	if role != RoleVolunteer {
		t.Fatalf("expected signup fallback, got %q", role)
	}
	if !fallback {
		t.Fatal("fallback flag should be set")
	}

	// empty role on the row also falls through
	role, fallback = ResolveRole(user, &RoleAssignment{})
	if role != RoleVolunteer || !fallback {
		t.Fatalf("empty assignment row should fall back, got %q fallback=%v", role, fallback)
	}
}

func TestResolveRoleInvalidSignupMetadata(t *testing.T) {
	user := &User{SignupRole: "superuser"}
	role, fallback := ResolveRole(user, nil)
	if role != "" || fallback {
		t.Fatalf("invalid signup role must not resolve, got %q fallback=%v", role, fallback)
	}
}

func TestIsApproved(t *testing.T) {
	if !IsApproved(RoleAdmin, false) {
		t.Fatal("admins are approved regardless of the stored flag")
	}
	if IsApproved(RoleNGO, false) {
		t.Fatal("unapproved NGO should not clear the gate")
	}
	if !IsApproved(RoleDonor, true) {
		t.Fatal("approved donor should clear the gate")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleDonor, RoleNGO, RoleVolunteer, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("%q should be valid", role)
		}
	}
	for _, role := range []string{"", "superuser", "Donor"} {
		if ValidRole(role) {
			t.Errorf("%q should be invalid", role)
		}
	}
}

func TestSelfServiceRole(t *testing.T) {
	for _, role := range []string{RoleDonor, RoleNGO, RoleVolunteer} {
		if !SelfServiceRole(role) {
			t.Errorf("%q should be available at signup", role)
		}
	}
	if SelfServiceRole(RoleAdmin) {
		t.Error("admin must not be available at signup")
	}
	if SelfServiceRole("superuser") {
		t.Error("unknown roles must not be available at signup")
	}
}
