package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AvailabilityAvailable   = "available"
	AvailabilityBusy        = "busy"
	AvailabilityUnavailable = "unavailable"
)

// deliveredScoreIncrement is the impact-score reward for one completed
// delivery.
const deliveredScoreIncrement = 10

type Volunteer struct {
	gorm.Model
	UserID uint `json:"userID" gorm:"not null;uniqueIndex"`
	User   User `json:"-" gorm:"foreignKey:UserID"`

	Availability string `json:"availability" gorm:"size:20;default:'available';index"`
	VehicleType  string `json:"vehicleType" gorm:"size:50"`

	CurrentLatitude  *float64 `json:"currentLatitude"`
	CurrentLongitude *float64 `json:"currentLongitude"`

	TotalDeliveries int            `json:"totalDeliveries" gorm:"default:0"`
	ImpactScore     int            `json:"impactScore" gorm:"default:0"`
	Badges          datatypes.JSON `json:"badges"`
}

// Custom JSON marshaling to handle JSON fields properly
func (v *Volunteer) MarshalJSON() ([]byte, error) {
	type Alias Volunteer
	aux := &struct {
		Badges []string `json:"badges"`
		*Alias
	}{
		Badges: []string{},
		Alias:  (*Alias)(v),
	}

	if v.Badges != nil {
		var badges []string
		if err := json.Unmarshal(v.Badges, &badges); err == nil {
			aux.Badges = badges
		}
	}

	return json.Marshal(aux)
}

// RecordDelivery bumps the cumulative counters for one completed delivery.
// Counters only ever increase, and only through this path.
func (v *Volunteer) RecordDelivery() {
	v.TotalDeliveries++
	v.ImpactScore += deliveredScoreIncrement
	v.awardBadges()
}

// awardBadges appends milestone badges; existing badges are never removed.
func (v *Volunteer) awardBadges() {
	milestones := map[int]string{
		1:  "first_delivery",
		10: "community_courier",
		50: "hunger_hero",
	}
	badge, ok := milestones[v.TotalDeliveries]
	if !ok {
		return
	}

	var badges []string
	if v.Badges != nil {
		json.Unmarshal(v.Badges, &badges)
	}
	for _, b := range badges {
		if b == badge {
			return
		}
	}
	badges = append(badges, badge)
	if raw, err := json.Marshal(badges); err == nil {
		v.Badges = raw
	}
}
