package routes

import (
	"time"

	"github.com/chaitu2303/FoodChain/models"
	"github.com/chaitu2303/FoodChain/storage"
	"github.com/chaitu2303/FoodChain/utils"

	"github.com/kataras/iris/v12"
)

// ListNotifications returns the caller's notification feed, newest first.
func ListNotifications(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	unreadOnly := ctx.URLParamBoolDefault("unread", false)

	query := storage.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(100)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": notifications})
}

// MarkNotificationRead - PATCH /notifications/:id/read
func MarkNotificationRead(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid notification id.", ctx)
		return
	}

	var notification models.Notification
	if err := storage.DB.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	now := time.Now()
	if err := storage.DB.Model(&notification).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

// AllowsNotifications toggles push delivery for the caller.
func AllowsNotifications(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input struct {
		Allows bool `json:"allows"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if err := storage.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("allows_notifications", input.Allows).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}
