package models

import (
	"encoding/json"
	"testing"
)

func badgesOf(t *testing.T, v *Volunteer) []string {
	t.Helper()
	if v.Badges == nil {
		return nil
	}
	var badges []string
	if err := json.Unmarshal(v.Badges, &badges); err != nil {
		t.Fatalf("badges column is not a JSON string array: %v", err)
	}
	return badges
}

func TestRecordDeliveryCounters(t *testing.T) {
	v := Volunteer{}

	v.RecordDelivery()
	if v.TotalDeliveries != 1 {
		t.Fatalf("expected 1 delivery, got %d", v.TotalDeliveries)
	}
	if v.ImpactScore != 10 {
		t.Fatalf("expected impact score 10, got %d", v.ImpactScore)
	}

	v.RecordDelivery()
	v.RecordDelivery()
	if v.TotalDeliveries != 3 || v.ImpactScore != 30 {
		t.Fatalf("after 3 deliveries got %d/%d", v.TotalDeliveries, v.ImpactScore)
	}
}

func TestRecordDeliveryBadges(t *testing.T) {
	v := Volunteer{}

	v.RecordDelivery()
	badges := badgesOf(t, &v)
	if len(badges) != 1 || badges[0] != "first_delivery" {
		t.Fatalf("expected first_delivery badge, got %v", badges)
	}

	for i := 0; i < 9; i++ {
		v.RecordDelivery()
	}
	badges = badgesOf(t, &v)
	if len(badges) != 2 || badges[1] != "community_courier" {
		t.Fatalf("expected community_courier at 10 deliveries, got %v", badges)
	}

	// no milestone between 10 and 50
	v.RecordDelivery()
	if got := badgesOf(t, &v); len(got) != 2 {
		t.Fatalf("unexpected badge at 11 deliveries: %v", got)
	}
}

func TestVolunteerMarshalEmptyBadges(t *testing.T) {
	v := Volunteer{}
	raw, err := json.Marshal(&v)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatal(err)
	}
	badges, ok := out["badges"].([]interface{})
	if !ok {
		t.Fatalf("badges should marshal as an array, got %T", out["badges"])
	}
	if len(badges) != 0 {
		t.Fatalf("fresh volunteer should have no badges, got %v", badges)
	}
}
