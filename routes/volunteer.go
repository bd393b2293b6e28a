package routes

import (
	"github.com/chaitu2303/FoodChain/models"
	"github.com/chaitu2303/FoodChain/storage"
	"github.com/chaitu2303/FoodChain/utils"

	"github.com/kataras/iris/v12"
)

// GetMyVolunteer returns the caller's volunteer record.
func GetMyVolunteer(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	volunteer, ok := myVolunteer(userID, ctx)
	if !ok {
		return
	}

	ctx.JSON(iris.Map{"data": volunteer})
}

// UpdateMyVolunteer updates availability, vehicle and last-known location.
func UpdateMyVolunteer(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input UpdateVolunteerInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	volunteer, ok := myVolunteer(userID, ctx)
	if !ok {
		return
	}

	if input.Availability != "" {
		switch input.Availability {
		case models.AvailabilityAvailable, models.AvailabilityBusy, models.AvailabilityUnavailable:
			volunteer.Availability = input.Availability
		default:
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Availability must be available, busy or unavailable.", ctx)
			return
		}
	}
	if input.VehicleType != "" {
		volunteer.VehicleType = input.VehicleType
	}
	if input.Latitude != nil {
		volunteer.CurrentLatitude = input.Latitude
	}
	if input.Longitude != nil {
		volunteer.CurrentLongitude = input.Longitude
	}

	if err := storage.DB.Save(volunteer).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": volunteer})
}

// VolunteerLeaderboard returns the top volunteers by impact score with
// display names resolved in one batched profile lookup.
func VolunteerLeaderboard(ctx iris.Context) {
	limit := ctx.URLParamIntDefault("limit", 10)
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var volunteers []models.Volunteer
	if err := storage.DB.Order("impact_score DESC").Limit(limit).Find(&volunteers).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	userIDs := make([]uint, 0, len(volunteers))
	for _, v := range volunteers {
		userIDs = append(userIDs, v.UserID)
	}

	var profiles []models.UserProfile
	if len(userIDs) > 0 {
		storage.DB.Where("user_id IN ?", userIDs).Find(&profiles)
	}
	names := make(map[uint]string, len(profiles))
	for _, p := range profiles {
		names[p.UserID] = p.FullName
	}

	entries := make([]iris.Map, 0, len(volunteers))
	for i := range volunteers {
		v := &volunteers[i]
		name := names[v.UserID]
		if name == "" {
			name = "Unknown"
		}
		entries = append(entries, iris.Map{
			"volunteer": v,
			"fullName":  name,
		})
	}

	ctx.JSON(iris.Map{"data": entries})
}

type UpdateVolunteerInput struct {
	Availability string   `json:"availability"`
	VehicleType  string   `json:"vehicleType" validate:"max=50"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}
