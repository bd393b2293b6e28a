package services

import (
	"log"
	"math"

	"github.com/chaitu2303/FoodChain/models"
	"github.com/chaitu2303/FoodChain/storage"
	"github.com/chaitu2303/FoodChain/utils"
)

// averageSpeedKmh approximates a two-wheeler in city traffic, used for the
// estimated-time field on tasks.
const averageSpeedKmh = 25.0

// Matcher selects a volunteer for a donation from the eligible pool.
type Matcher interface {
	Match(donation *models.Donation, candidates []models.Volunteer) *models.Volunteer
}

// FirstAvailable picks the first candidate. Parity with the original
// placeholder behavior; useful as a deterministic fallback.
type FirstAvailable struct{}

func (FirstAvailable) Match(_ *models.Donation, candidates []models.Volunteer) *models.Volunteer {
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}

// Nearest picks the candidate closest to the pickup point by haversine
// distance over last-known coordinates. Falls back to first-available when
// the donation or every candidate lacks coordinates.
type Nearest struct{}

func (Nearest) Match(donation *models.Donation, candidates []models.Volunteer) *models.Volunteer {
	if len(candidates) == 0 {
		return nil
	}
	if donation.Latitude == nil || donation.Longitude == nil {
		return FirstAvailable{}.Match(donation, candidates)
	}

	var best *models.Volunteer
	bestDist := math.MaxFloat64
	for i := range candidates {
		v := &candidates[i]
		if v.CurrentLatitude == nil || v.CurrentLongitude == nil {
			continue
		}
		d := CalculateDistance(*donation.Latitude, *donation.Longitude, *v.CurrentLatitude, *v.CurrentLongitude)
		if d < bestDist {
			bestDist = d
			best = v
		}
	}
	if best == nil {
		return FirstAvailable{}.Match(donation, candidates)
	}
	return best
}

// CalculateDistance returns the haversine distance in kilometers.
func CalculateDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const R = 6371 // Earth's radius in kilometers

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}

// AssignmentStore is the slice of persistence the assignment flow needs.
type AssignmentStore interface {
	EligibleVolunteers() ([]models.Volunteer, error)
	TaskForDonation(donationID uint) (*models.VolunteerTask, error)
	SaveTask(task *models.VolunteerTask) error
	UpdateDonationStatus(donation *models.Donation) error
}

type dbAssignmentStore struct{}

// EligibleVolunteers returns available volunteers whose role assignment is
// approved and whose profile is verified, resolved in a single joined
// query.
func (dbAssignmentStore) EligibleVolunteers() ([]models.Volunteer, error) {
	var volunteers []models.Volunteer
	err := storage.DB.
		Joins("JOIN role_assignments ra ON ra.user_id = volunteers.user_id AND ra.role = ? AND ra.approved = ?", models.RoleVolunteer, true).
		Joins("JOIN user_profiles up ON up.user_id = volunteers.user_id AND up.is_verified = ?", true).
		Where("volunteers.availability = ?", models.AvailabilityAvailable).
		Find(&volunteers).Error
	if err != nil {
		return nil, err
	}
	return volunteers, nil
}

func (dbAssignmentStore) TaskForDonation(donationID uint) (*models.VolunteerTask, error) {
	var task models.VolunteerTask
	if err := storage.DB.Where("donation_id = ?", donationID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (dbAssignmentStore) SaveTask(task *models.VolunteerTask) error {
	return storage.DB.Save(task).Error
}

func (dbAssignmentStore) UpdateDonationStatus(donation *models.Donation) error {
	return storage.DB.Model(donation).Update("status", donation.Status).Error
}

// AssignmentService creates volunteer tasks and drives donations into the
// assigned state.
type AssignmentService struct {
	Matcher Matcher
	Store   AssignmentStore
}

func NewAssignmentService() *AssignmentService {
	return &AssignmentService{Matcher: Nearest{}, Store: dbAssignmentStore{}}
}

// EligibleVolunteers exposes the store query for the admin surface.
func (as *AssignmentService) EligibleVolunteers() ([]models.Volunteer, error) {
	return as.Store.EligibleVolunteers()
}

// AssignVolunteer binds a volunteer to the donation's task, creating the
// task if it does not exist, and advances the donation to assigned. The
// donation must be able to reach assigned before anything is written, so a
// pending or terminal donation never grows an orphan task. The OTP pair is
// generated on first binding only. Updates are sequential single-row
// writes; a failure between them is surfaced so the admin can retry.
func (as *AssignmentService) AssignVolunteer(donation *models.Donation, volunteer *models.Volunteer) (*models.VolunteerTask, error) {
	if !donation.Status.CanTransition(models.DonationAssigned) {
		return nil, &models.TransitionError{
			Entity: "donation",
			From:   string(donation.Status),
			To:     string(models.DonationAssigned),
		}
	}

	task, err := as.Store.TaskForDonation(donation.ID)
	if err != nil {
		task = &models.VolunteerTask{
			DonationID: donation.ID,
			Status:     models.TaskUnassigned,
			NGOID:      donation.AcceptedByNGO,
		}
	}

	if err := task.BindVolunteer(volunteer.ID, func() string { return utils.GenerateOTP(4) }); err != nil {
		return nil, err
	}

	if donation.Latitude != nil && donation.Longitude != nil &&
		volunteer.CurrentLatitude != nil && volunteer.CurrentLongitude != nil {
		dist := CalculateDistance(*donation.Latitude, *donation.Longitude, *volunteer.CurrentLatitude, *volunteer.CurrentLongitude)
		minutes := int(dist / averageSpeedKmh * 60)
		task.EstimatedDistance = &dist
		task.EstimatedTime = &minutes
	}

	if err := as.Store.SaveTask(task); err != nil {
		return nil, err
	}

	if err := donation.Transition(models.DonationAssigned); err != nil {
		return nil, err
	}
	if err := as.Store.UpdateDonationStatus(donation); err != nil {
		return nil, err
	}

	return task, nil
}

// AutoAssign scans the eligible pool and assigns one volunteer to a freshly
// approved donation. Returns nil task when nobody is eligible; the donation
// then stays at approved awaiting manual assignment.
func (as *AssignmentService) AutoAssign(donation *models.Donation) (*models.VolunteerTask, error) {
	candidates, err := as.Store.EligibleVolunteers()
	if err != nil {
		return nil, err
	}

	chosen := as.Matcher.Match(donation, candidates)
	if chosen == nil {
		log.Printf("auto-assign: no eligible volunteer for donation %d, staying at approved", donation.ID)
		return nil, nil
	}

	return as.AssignVolunteer(donation, chosen)
}
