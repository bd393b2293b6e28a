package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/chaitu2303/FoodChain/models"
	"github.com/chaitu2303/FoodChain/storage"
	"github.com/chaitu2303/FoodChain/utils"
)

// NotificationService handles all push notification logic
type NotificationService struct{}

// NewNotificationService creates a new notification service instance
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotificationData represents the data payload for notifications
type NotificationData struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	DonationID string `json:"donationId,omitempty"`
	TaskID     string `json:"taskId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	Screen     string `json:"screen"` // Target screen to navigate to
}

// getUserPushTokens retrieves all push tokens for a user
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}

	return tokens, nil
}

// SendNotificationToUser records an in-app notification row and fans the
// message out to the user's push tokens. Push delivery is best-effort; the
// row is the source of truth for the notification feed.
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body string, data NotificationData) error {
	refID, _ := strconv.ParseUint(data.ID, 10, 32)
	notification := models.Notification{
		UserID:  userID,
		Type:    data.Type,
		Title:   title,
		Message: body,
		RefType: data.Screen,
		RefID:   uint(refID),
	}
	if err := storage.DB.Create(&notification).Error; err != nil {
		log.Printf("notifications: failed to persist row for user %d: %v", userID, err)
	}

	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("notifications: skipping push for user %d: %v", userID, err)
		return nil
	}

	dataMap := map[string]string{
		"type":       data.Type,
		"id":         data.ID,
		"donationId": data.DonationID,
		"taskId":     data.TaskID,
		"userId":     data.UserID,
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, dataMap); err != nil {
			log.Printf("notifications: failed to send to token %s: %v", token, err)
			lastError = err
		}
	}

	return lastError
}

// NotifyDonationStatus tells the donor their donation moved through the
// lifecycle.
func (ns *NotificationService) NotifyDonationStatus(donation *models.Donation) {
	titles := map[models.DonationStatus]string{
		models.DonationApproved:  "Donation Approved",
		models.DonationRejected:  "Donation Rejected",
		models.DonationAssigned:  "Volunteer Assigned",
		models.DonationPickedUp:  "Food Picked Up",
		models.DonationDelivered: "Delivery Complete",
	}
	bodies := map[models.DonationStatus]string{
		models.DonationApproved:  "Your donation was approved and is awaiting a volunteer.",
		models.DonationRejected:  "Your donation could not be accepted.",
		models.DonationAssigned:  "A volunteer is on the way to collect your donation.",
		models.DonationPickedUp:  "Your donation has been collected.",
		models.DonationDelivered: "Your donation reached its destination. Thank you!",
	}

	title, ok := titles[donation.Status]
	if !ok {
		return
	}

	ns.SendNotificationToUser(donation.DonorID, title, bodies[donation.Status], NotificationData{
		Type:       "donation_" + string(donation.Status),
		ID:         strconv.FormatUint(uint64(donation.ID), 10),
		DonationID: strconv.FormatUint(uint64(donation.ID), 10),
		Screen:     "donation",
	})
}

// NotifyTaskAssigned tells a volunteer they have a new pickup.
func (ns *NotificationService) NotifyTaskAssigned(task *models.VolunteerTask, volunteerUserID uint) {
	ns.SendNotificationToUser(volunteerUserID, "New Pickup Task",
		"You have been assigned a food pickup. Check your dashboard for details.",
		NotificationData{
			Type:       "task_assigned",
			ID:         strconv.FormatUint(uint64(task.ID), 10),
			TaskID:     strconv.FormatUint(uint64(task.ID), 10),
			DonationID: strconv.FormatUint(uint64(task.DonationID), 10),
			Screen:     "task",
		})
}

// NotifyApprovalGranted tells a user an admin approved their account.
func (ns *NotificationService) NotifyApprovalGranted(userID uint) {
	ns.SendNotificationToUser(userID, "Account Approved",
		"An administrator approved your account. You now have full access.",
		NotificationData{
			Type:   "approval_granted",
			ID:     strconv.FormatUint(uint64(userID), 10),
			UserID: strconv.FormatUint(uint64(userID), 10),
			Screen: "dashboard",
		})
}
