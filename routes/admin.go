package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/chaitu2303/FoodChain/models"
	"github.com/chaitu2303/FoodChain/services"
	"github.com/chaitu2303/FoodChain/storage"
	"github.com/chaitu2303/FoodChain/utils"

	"github.com/kataras/iris/v12"
)

// AdminListUsers - GET /admin/users?role=&q=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	// Basic pagination
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))

	query := storage.DB.Model(&models.UserProfile{}).
		Select("user_profiles.*, role_assignments.role, role_assignments.approved").
		Joins("LEFT JOIN role_assignments ON role_assignments.user_id = user_profiles.user_id")
	if role != "" {
		query = query.Where("role_assignments.role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(user_profiles.full_name) LIKE ?", like)
	}

	var total int64
	query.Count(&total)
	query = query.Offset((page - 1) * perPage).Limit(perPage)

	var rows []struct {
		models.UserProfile
		Role     string `json:"role"`
		Approved bool   `json:"approved"`
	}
	if err := query.Find(&rows).Error; err != nil {
		ctx.StatusCode(http.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "server_error", "message": err.Error()})
		return
	}

	utils.JSONPage(ctx, rows, page, perPage, total)
}

// AdminApproveUser - PATCH /admin/users/:id/approve { approved: bool }
// Flips the approval gate on the user's role assignment.
func AdminApproveUser(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var body struct {
		Approved bool `json:"approved"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_body"})
		return
	}

	var assignment models.RoleAssignment
	if err := storage.DB.Where("user_id = ?", id).First(&assignment).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := assignment
	assignment.Approved = body.Approved
	adminID := ctx.Values().Get("userID").(uint)
	assignment.ApprovedBy = &adminID
	if err := storage.DB.Save(&assignment).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, "user.approval_update", "role_assignment", assignment.ID, before, assignment)

	if body.Approved {
		services.NewNotificationService().NotifyApprovalGranted(assignment.UserID)
	}

	ctx.JSON(iris.Map{"data": assignment})
}

// AdminSetVerificationBadge - PATCH /admin/users/:id/badge
// Sets the profile trust badge, distinct from the approval gate.
func AdminSetVerificationBadge(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var body struct {
		Verified bool   `json:"verified"`
		Badge    string `json:"badge"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_body"})
		return
	}

	var profile models.UserProfile
	if err := storage.DB.Where("user_id = ?", id).First(&profile).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := profile
	profile.IsVerified = body.Verified
	profile.VerificationBadge = body.Badge
	if err := storage.DB.Save(&profile).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, "user.badge_update", "user_profile", profile.ID, before, profile)

	ctx.JSON(iris.Map{"data": profile})
}

// AdminApproveDonation - POST /admin/donations/:id/approve
// Moves pending -> approved, then attempts auto-assignment. When a
// volunteer is found the donation advances straight to assigned; otherwise
// it waits at approved for a manual assignment.
func AdminApproveDonation(ctx iris.Context) {
	donation, ok := loadDonation(ctx)
	if !ok {
		return
	}

	before := donation.Status
	if err := donation.Transition(models.DonationApproved); err != nil {
		ctx.StopWithJSON(http.StatusConflict, iris.Map{"error": "illegal_transition", "message": err.Error()})
		return
	}
	if err := storage.DB.Model(donation).Update("status", donation.Status).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, "donation.approve", "donation", donation.ID, before, donation.Status)

	notifications := services.NewNotificationService()
	notifications.NotifyDonationStatus(donation)

	task, err := services.NewAssignmentService().AutoAssign(donation)
	if err != nil {
		// The donation is approved; assignment can be retried manually.
		ctx.JSON(iris.Map{"data": donation, "task": nil, "warning": "auto-assignment failed, retry manually"})
		return
	}

	if task != nil {
		notifications.NotifyDonationStatus(donation)
		if task.VolunteerID != nil {
			var volunteer models.Volunteer
			if err := storage.DB.First(&volunteer, *task.VolunteerID).Error; err == nil {
				notifications.NotifyTaskAssigned(task, volunteer.UserID)
			}
		}
	}

	ctx.JSON(iris.Map{"data": donation, "task": task})
}

// AdminRejectDonation - POST /admin/donations/:id/reject
func AdminRejectDonation(ctx iris.Context) {
	donation, ok := loadDonation(ctx)
	if !ok {
		return
	}

	before := donation.Status
	if err := donation.Transition(models.DonationRejected); err != nil {
		ctx.StopWithJSON(http.StatusConflict, iris.Map{"error": "illegal_transition", "message": err.Error()})
		return
	}
	if err := storage.DB.Model(donation).Update("status", donation.Status).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, "donation.reject", "donation", donation.ID, before, donation.Status)
	services.NewNotificationService().NotifyDonationStatus(donation)

	ctx.JSON(iris.Map{"data": donation})
}

// AdminAssignVolunteer - POST /admin/donations/:id/assign { volunteerID }
// Manual assignment for donations waiting at approved.
func AdminAssignVolunteer(ctx iris.Context) {
	donation, ok := loadDonation(ctx)
	if !ok {
		return
	}

	var body struct {
		VolunteerID uint `json:"volunteerID" validate:"required"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_body"})
		return
	}

	var volunteer models.Volunteer
	if err := storage.DB.First(&volunteer, body.VolunteerID).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	task, err := services.NewAssignmentService().AssignVolunteer(donation, &volunteer)
	if err != nil {
		if _, illegal := err.(*models.TransitionError); illegal {
			ctx.StopWithJSON(http.StatusConflict, iris.Map{"error": "illegal_transition", "message": err.Error()})
			return
		}
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, "donation.assign", "donation", donation.ID, nil, task)

	notifications := services.NewNotificationService()
	notifications.NotifyDonationStatus(donation)
	notifications.NotifyTaskAssigned(task, volunteer.UserID)

	ctx.JSON(iris.Map{"data": donation, "task": task})
}

// AdminDeleteDonation - DELETE /admin/donations/:id
func AdminDeleteDonation(ctx iris.Context) {
	donation, ok := loadDonation(ctx)
	if !ok {
		return
	}

	before := *donation
	if err := storage.DB.Delete(donation).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, "donation.delete", "donation", donation.ID, before, nil)

	ctx.JSON(iris.Map{"success": true})
}

// AdminListVerifications - GET /admin/verifications?status=
func AdminListVerifications(ctx iris.Context) {
	status := ctx.URLParamDefault("status", "")

	query := storage.DB.Model(&models.AdminVerification{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var verifications []models.AdminVerification
	if err := query.Find(&verifications).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	ctx.JSON(iris.Map{"data": verifications})
}

// AdminProcessVerification - PATCH /admin/verifications/:id
// A verification decision is terminal; a second decision is rejected.
func AdminProcessVerification(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var body struct {
		Approved bool   `json:"approved"`
		Notes    string `json:"notes"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_body"})
		return
	}

	var verification models.AdminVerification
	if err := storage.DB.First(&verification, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	if verification.Status != "pending" {
		ctx.StopWithJSON(http.StatusConflict, iris.Map{"error": "already_processed"})
		return
	}

	before := verification
	adminID := ctx.Values().Get("userID").(uint)
	now := time.Now()

	verification.Status = "rejected"
	if body.Approved {
		verification.Status = "approved"
	}
	verification.ApprovedBy = &adminID
	verification.Notes = body.Notes
	verification.ReviewedAt = &now

	if err := storage.DB.Save(&verification).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, "verification.process", "admin_verification", verification.ID, before, verification)

	ctx.JSON(iris.Map{"data": verification})
}

// AdminStats - GET /admin/stats
func AdminStats(ctx iris.Context) {
	var totalUsers, totalVolunteers, verifiedNgos, pendingNgos int64
	storage.DB.Model(&models.UserProfile{}).Count(&totalUsers)
	storage.DB.Model(&models.Volunteer{}).Count(&totalVolunteers)
	storage.DB.Model(&models.RoleAssignment{}).
		Where("role = ? AND approved = ?", models.RoleNGO, true).Count(&verifiedNgos)
	storage.DB.Model(&models.RoleAssignment{}).
		Where("role = ? AND approved = ?", models.RoleNGO, false).Count(&pendingNgos)

	statuses := []models.DonationStatus{
		models.DonationPending, models.DonationApproved, models.DonationRejected,
		models.DonationAssigned, models.DonationPickedUp, models.DonationDelivered,
	}
	donationCounts := iris.Map{}
	var totalDonations int64
	for _, s := range statuses {
		var count int64
		storage.DB.Model(&models.Donation{}).Where("status = ?", s).Count(&count)
		donationCounts[string(s)] = count
		totalDonations += count
	}

	ctx.JSON(iris.Map{
		"totalUsers":        totalUsers,
		"totalVolunteers":   totalVolunteers,
		"verifiedNgos":      verifiedNgos,
		"pendingNgos":       pendingNgos,
		"totalDonations":    totalDonations,
		"donationsByStatus": donationCounts,
	})
}

// AdminListAuditLogs - GET /admin/audit?page=&per_page=
func AdminListAuditLogs(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 50)
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	var total int64
	storage.DB.Model(&models.AuditLog{}).Count(&total)

	var logs []models.AuditLog
	if err := storage.DB.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).Find(&logs).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.JSONPage(ctx, logs, page, perPage, total)
}

func loadDonation(ctx iris.Context) (*models.Donation, bool) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return nil, false
	}

	var donation models.Donation
	if err := storage.DB.First(&donation, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return nil, false
	}

	return &donation, true
}
