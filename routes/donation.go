package routes

import (
	"fmt"
	"time"

	"github.com/chaitu2303/FoodChain/models"
	"github.com/chaitu2303/FoodChain/storage"
	"github.com/chaitu2303/FoodChain/utils"

	"github.com/kataras/iris/v12"
)

// CreateDonation posts a new surplus-food offer. Donor only; starts at
// pending awaiting admin moderation.
func CreateDonation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateDonationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !input.HygieneConfirmed {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Hygiene confirmation is required before posting food.", ctx)
		return
	}

	if input.ExpiryTime.Before(time.Now()) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Expiry time must be in the future.", ctx)
		return
	}

	donation := models.Donation{
		DonorID:          userID,
		FoodType:         input.FoodType,
		FoodCategory:     input.FoodCategory,
		Quantity:         input.Quantity,
		QuantityUnit:     input.QuantityUnit,
		Description:      input.Description,
		ExpiryTime:       input.ExpiryTime,
		PickupAddress:    input.PickupAddress,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		PickupTimeStart:  input.PickupTimeStart,
		PickupTimeEnd:    input.PickupTimeEnd,
		HygieneConfirmed: input.HygieneConfirmed,
		Status:           models.DonationPending,
	}

	if input.ImageBase64 != "" {
		uploaded := storage.UploadBase64Image(input.ImageBase64, fmt.Sprintf("donation_%d_%d", userID, time.Now().Unix()))
		donation.ImageURL = uploaded["url"]
	}

	if err := storage.DB.Create(&donation).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"data": &donation})
}

// ListDonations returns donations newest first with optional status/donor
// filters. The donor profile comes back in the same query.
func ListDonations(ctx iris.Context) {
	status := ctx.URLParamDefault("status", "")
	donorID := ctx.URLParamIntDefault("donor_id", 0)

	query := storage.DB.Model(&models.Donation{}).Preload("DonorProfile").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if donorID > 0 {
		query = query.Where("donor_id = ?", donorID)
	}

	var donations []models.Donation
	if err := query.Find(&donations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": donations})
}

// ListMyDonations returns the caller's own donations.
func ListMyDonations(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var donations []models.Donation
	if err := storage.DB.Where("donor_id = ?", userID).
		Order("created_at DESC").Find(&donations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": donations})
}

func GetDonation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid donation id.", ctx)
		return
	}

	var donation models.Donation
	if err := storage.DB.Preload("DonorProfile").First(&donation, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": &donation})
}

// UpdateDonation edits a donation. Donors may only edit their own, and only
// while it is still pending.
func UpdateDonation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid donation id.", ctx)
		return
	}

	var donation models.Donation
	if err := storage.DB.First(&donation, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if donation.DonorID != userID {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "You can only edit your own donations.", ctx)
		return
	}

	if donation.Status != models.DonationPending {
		utils.CreateError(iris.StatusConflict, "Conflict", "Only pending donations can be edited.", ctx)
		return
	}

	var input UpdateDonationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.FoodType != "" {
		donation.FoodType = input.FoodType
	}
	if input.FoodCategory != "" {
		donation.FoodCategory = input.FoodCategory
	}
	if input.Quantity != "" {
		donation.Quantity = input.Quantity
	}
	if input.QuantityUnit != "" {
		donation.QuantityUnit = input.QuantityUnit
	}
	if input.Description != "" {
		donation.Description = input.Description
	}
	if input.PickupAddress != "" {
		donation.PickupAddress = input.PickupAddress
	}
	if input.ExpiryTime != nil {
		donation.ExpiryTime = *input.ExpiryTime
	}
	if input.PickupTimeStart != nil {
		donation.PickupTimeStart = input.PickupTimeStart
	}
	if input.PickupTimeEnd != nil {
		donation.PickupTimeEnd = input.PickupTimeEnd
	}
	if input.Latitude != nil {
		donation.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		donation.Longitude = input.Longitude
	}

	if err := storage.DB.Save(&donation).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": &donation})
}

// AcceptDonation marks an assigned donation as claimed by the calling NGO:
// the acceptor reference and timestamp land on the donation and the task
// learns its destination. The acceptor is only ever set from assigned
// onward.
func AcceptDonation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid donation id.", ctx)
		return
	}

	var donation models.Donation
	if err := storage.DB.First(&donation, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if donation.Status != models.DonationAssigned {
		utils.CreateError(iris.StatusConflict, "Conflict", "Donation is not ready for acceptance.", ctx)
		return
	}

	if donation.AcceptedByNGO != nil {
		utils.CreateError(iris.StatusConflict, "Conflict", "Donation already accepted by an NGO.", ctx)
		return
	}

	now := time.Now()
	donation.AcceptedByNGO = &userID
	donation.AcceptedAt = &now

	if err := storage.DB.Model(&donation).Updates(map[string]interface{}{
		"accepted_by_ngo": userID,
		"accepted_at":     now,
	}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Point the task at its destination
	storage.DB.Model(&models.VolunteerTask{}).
		Where("donation_id = ?", donation.ID).
		Update("ngo_id", userID)

	ctx.JSON(iris.Map{"data": &donation})
}

type CreateDonationInput struct {
	FoodType         string     `json:"foodType" validate:"required,max=100"`
	FoodCategory     string     `json:"foodCategory" validate:"max=50"`
	Quantity         string     `json:"quantity" validate:"required,max=50"`
	QuantityUnit     string     `json:"quantityUnit" validate:"max=20"`
	Description      string     `json:"description"`
	ImageBase64      string     `json:"imageBase64"`
	ExpiryTime       time.Time  `json:"expiryTime" validate:"required"`
	PickupAddress    string     `json:"pickupAddress" validate:"required,max=300"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	PickupTimeStart  *time.Time `json:"pickupTimeStart"`
	PickupTimeEnd    *time.Time `json:"pickupTimeEnd"`
	HygieneConfirmed bool       `json:"hygieneConfirmed"`
}

type UpdateDonationInput struct {
	FoodType        string     `json:"foodType" validate:"max=100"`
	FoodCategory    string     `json:"foodCategory" validate:"max=50"`
	Quantity        string     `json:"quantity" validate:"max=50"`
	QuantityUnit    string     `json:"quantityUnit" validate:"max=20"`
	Description     string     `json:"description"`
	ExpiryTime      *time.Time `json:"expiryTime"`
	PickupAddress   string     `json:"pickupAddress" validate:"max=300"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	PickupTimeStart *time.Time `json:"pickupTimeStart"`
	PickupTimeEnd   *time.Time `json:"pickupTimeEnd"`
}
