package routes

import (
	"github.com/chaitu2303/FoodChain/models"
	"github.com/chaitu2303/FoodChain/storage"
	"github.com/chaitu2303/FoodChain/utils"

	"github.com/kataras/iris/v12"
)

// RequestVerification opens an approval request for the calling entity
// (typically an NGO after registration). Admins resolve it exactly once.
func RequestVerification(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input VerificationRequestInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existing models.AdminVerification
	err := storage.DB.Where("entity_type = ? AND entity_id = ? AND status = ?",
		input.EntityType, userID, "pending").First(&existing).Error
	if err == nil {
		utils.CreateError(iris.StatusConflict, "Conflict", "A verification request is already pending.", ctx)
		return
	}

	verification := models.AdminVerification{
		EntityType:  input.EntityType,
		EntityID:    userID,
		RequestedBy: &userID,
		Status:      "pending",
		Notes:       input.Notes,
	}
	if err := storage.DB.Create(&verification).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"data": &verification})
}

// GetMyVerification returns the caller's latest verification request.
func GetMyVerification(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var verification models.AdminVerification
	if err := storage.DB.Where("entity_id = ?", userID).
		Order("created_at DESC").First(&verification).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": &verification})
}

type VerificationRequestInput struct {
	EntityType string `json:"entityType" validate:"required,max=50"`
	Notes      string `json:"notes" validate:"max=500"`
}
