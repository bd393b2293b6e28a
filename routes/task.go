package routes

import (
	"time"

	"github.com/chaitu2303/FoodChain/models"
	"github.com/chaitu2303/FoodChain/services"
	"github.com/chaitu2303/FoodChain/storage"
	"github.com/chaitu2303/FoodChain/utils"

	"github.com/kataras/iris/v12"
)

// ListMyTasks returns the calling volunteer's tasks, optionally filtered by
// status, with donation details joined in.
func ListMyTasks(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	volunteer, ok := myVolunteer(userID, ctx)
	if !ok {
		return
	}

	status := ctx.URLParamDefault("status", "")

	query := storage.DB.Preload("Donation").
		Where("volunteer_id = ?", volunteer.ID).
		Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []models.VolunteerTask
	if err := query.Find(&tasks).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": tasks})
}

// ClaimDonation is the volunteer self-claim path: binds the caller to an
// approved donation, creating the task and its one-time OTP pair.
func ClaimDonation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input ClaimDonationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	volunteer, ok := myVolunteer(userID, ctx)
	if !ok {
		return
	}

	var donation models.Donation
	if err := storage.DB.First(&donation, input.DonationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if donation.Status != models.DonationApproved {
		utils.CreateError(iris.StatusConflict, "Conflict", "Donation is not open for claiming.", ctx)
		return
	}

	assignments := services.NewAssignmentService()
	task, err := assignments.AssignVolunteer(&donation, volunteer)
	if err != nil {
		if _, illegal := err.(*models.TransitionError); illegal {
			utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	services.NewNotificationService().NotifyDonationStatus(&donation)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"data": task})
}

// AcceptTask confirms the volunteer is taking the assignment. Task status
// only; the donation stays at assigned until pickup.
func AcceptTask(ctx iris.Context) {
	transitionTask(ctx, models.TaskAccepted, false, func(task *models.VolunteerTask, donation *models.Donation) error {
		return nil
	})
}

// PickupTask confirms the handoff at the pickup point against the pickup
// OTP and converges donation and task on picked_up.
func PickupTask(ctx iris.Context) {
	var input TaskOTPInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	transitionTask(ctx, models.TaskPickedUp, false, func(task *models.VolunteerTask, donation *models.Donation) error {
		if task.PickupOTP != input.OTP {
			return errWrongOTP
		}
		now := time.Now()
		task.ActualPickupTime = &now
		if err := donation.Transition(models.DonationPickedUp); err != nil {
			return err
		}
		return nil
	})
}

// DeliverTask confirms the handoff at the NGO against the delivery OTP,
// converges both rows on delivered and credits the volunteer's counters.
func DeliverTask(ctx iris.Context) {
	var input TaskOTPInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// NGO confirmation is also accepted on the delivery leg
	transitionTask(ctx, models.TaskDelivered, true, func(task *models.VolunteerTask, donation *models.Donation) error {
		if task.DeliveryOTP != input.OTP {
			return errWrongOTP
		}
		now := time.Now()
		task.ActualDeliveryTime = &now
		if err := donation.Transition(models.DonationDelivered); err != nil {
			return err
		}
		return nil
	})
}

// UnassignTask lets a volunteer back out after accepting but before pickup.
// The donation reverts to approved and sheds any NGO acceptance; the task
// keeps its OTP pair for a later re-claim.
func UnassignTask(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	task, donation, ok := taskWithDonation(userID, ctx, false)
	if !ok {
		return
	}

	if err := task.Unbind(); err != nil {
		utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
		return
	}

	if err := donation.Transition(models.DonationApproved); err != nil {
		utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
		return
	}

	if err := storage.DB.Save(task).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	storage.DB.Model(donation).Updates(map[string]interface{}{
		"status":          donation.Status,
		"accepted_by_ngo": nil,
		"accepted_at":     nil,
	})

	ctx.JSON(iris.Map{"data": task})
}

var errWrongOTP = &otpError{}

type otpError struct{}

func (*otpError) Error() string { return "incorrect OTP code" }

// transitionTask loads the task, applies the transition plus the
// step-specific side effects, and persists task, donation and, on
// delivery, the volunteer counters. Sequential single-row writes, matching
// the rest of the lifecycle.
func transitionTask(ctx iris.Context, to models.TaskStatus, allowNGO bool, sideEffects func(*models.VolunteerTask, *models.Donation) error) {
	userID := ctx.Values().Get("userID").(uint)

	task, donation, ok := taskWithDonation(userID, ctx, allowNGO)
	if !ok {
		return
	}

	if err := task.Transition(to); err != nil {
		utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
		return
	}

	donationBefore := donation.Status
	if err := sideEffects(task, donation); err != nil {
		if err == errWrongOTP {
			utils.CreateError(iris.StatusUnauthorized, "Verification Error", "Incorrect OTP code.", ctx)
			return
		}
		utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
		return
	}

	if err := storage.DB.Save(task).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if donation.Status != donationBefore {
		if err := storage.DB.Model(donation).Update("status", donation.Status).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		services.NewNotificationService().NotifyDonationStatus(donation)
	}

	if to == models.TaskDelivered && task.VolunteerID != nil {
		var volunteer models.Volunteer
		if err := storage.DB.First(&volunteer, *task.VolunteerID).Error; err == nil {
			volunteer.RecordDelivery()
			storage.DB.Model(&volunteer).Updates(map[string]interface{}{
				"total_deliveries": volunteer.TotalDeliveries,
				"impact_score":     volunteer.ImpactScore,
				"badges":           volunteer.Badges,
			})
		}
	}

	ctx.JSON(iris.Map{"data": task})
}

// taskWithDonation loads the task in the URL and checks the caller is its
// volunteer, or its destination NGO when the step allows NGO confirmation.
func taskWithDonation(userID uint, ctx iris.Context, allowNGO bool) (*models.VolunteerTask, *models.Donation, bool) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid task id.", ctx)
		return nil, nil, false
	}

	var task models.VolunteerTask
	if err := storage.DB.First(&task, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil, nil, false
	}

	isOwner := false
	var volunteer models.Volunteer
	if err := storage.DB.Where("user_id = ?", userID).First(&volunteer).Error; err == nil {
		isOwner = task.VolunteerID != nil && *task.VolunteerID == volunteer.ID
	}
	isDestinationNGO := allowNGO && task.NGOID != nil && *task.NGOID == userID

	if !isOwner && !isDestinationNGO {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "This task belongs to another volunteer.", ctx)
		return nil, nil, false
	}

	var donation models.Donation
	if err := storage.DB.First(&donation, task.DonationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil, nil, false
	}

	return &task, &donation, true
}

func myVolunteer(userID uint, ctx iris.Context) (*models.Volunteer, bool) {
	var volunteer models.Volunteer
	if err := storage.DB.Where("user_id = ?", userID).First(&volunteer).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "No volunteer record for this account.", ctx)
		return nil, false
	}
	return &volunteer, true
}

type ClaimDonationInput struct {
	DonationID uint `json:"donationID" validate:"required"`
}

type TaskOTPInput struct {
	OTP string `json:"otp" validate:"required,min=4,max=6"`
}
