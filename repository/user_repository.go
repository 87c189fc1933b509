package repository

import (
	"errors"
	"fmt"
	"log"

	"github.com/SAADSTACK/NeuroMetric-AI/models"

	"gorm.io/gorm"
)

// UserRepository is the persistence adapter for local user profiles linked to
// the external identity provider. Status writes are whole-record replacements;
// last-write-wins across contexts.
type UserRepository interface {
	Create(profile *models.UserProfile) error
	GetByExternalID(externalID string) (*models.UserProfile, error) // Returns (nil, nil) when no profile exists
	GetByID(id string) (*models.UserProfile, error)
	ListPending() ([]models.UserProfile, error)
	UpdateStatus(id string, status models.UserStatus) (*models.UserProfile, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create stores a new user profile.
func (r *userRepository) Create(profile *models.UserProfile) error {
	if profile == nil {
		log.Printf("ERROR: [UserRepository] Create: profile cannot be nil.")
		return errors.New("profile cannot be nil")
	}
	if profile.ExternalID == "" {
		log.Printf("ERROR: [UserRepository] Create: profile ExternalID cannot be empty.")
		return errors.New("profile external ID cannot be empty")
	}

	err := r.db.Create(profile).Error
	if err != nil {
		log.Printf("ERROR: [UserRepository] Failed to create profile for externalID '%s': %v", profile.ExternalID, err)
		return fmt.Errorf("failed to create profile for externalID '%s': %w", profile.ExternalID, err)
	}
	log.Printf("INFO: [UserRepository] Created profile ID %s (externalID '%s', role %s, status %s).",
		profile.ID, profile.ExternalID, profile.Role, profile.Status)
	return nil
}

// GetByExternalID retrieves the profile linked to an external auth UID.
func (r *userRepository) GetByExternalID(externalID string) (*models.UserProfile, error) {
	if externalID == "" {
		log.Printf("ERROR: [UserRepository] GetByExternalID: externalID cannot be empty.")
		return nil, errors.New("external ID cannot be empty")
	}

	var profile models.UserProfile
	err := r.db.Where("external_id = ?", externalID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [UserRepository] No profile found for externalID '%s'.", externalID)
			return nil, nil // Not found, service layer will interpret
		}
		log.Printf("ERROR: [UserRepository] Failed to retrieve profile for externalID '%s': %v", externalID, err)
		return nil, fmt.Errorf("failed to retrieve profile for externalID '%s': %w", externalID, err)
	}
	return &profile, nil
}

// GetByID retrieves a profile by its internal ID.
func (r *userRepository) GetByID(id string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("WARN: [UserRepository] Profile with ID '%s' not found.", id)
			return nil, nil
		}
		log.Printf("ERROR: [UserRepository] Failed to retrieve profile ID '%s': %v", id, err)
		return nil, fmt.Errorf("failed to retrieve profile ID '%s': %w", id, err)
	}
	return &profile, nil
}

// ListPending returns all patient profiles awaiting administrator approval.
func (r *userRepository) ListPending() ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	err := r.db.Where("role = ? AND status = ?", models.RolePatient, models.UserStatusPending).
		Order("created_at asc").Find(&profiles).Error
	if err != nil {
		log.Printf("ERROR: [UserRepository] Failed to list pending profiles: %v", err)
		return nil, fmt.Errorf("failed to list pending profiles: %w", err)
	}
	log.Printf("INFO: [UserRepository] Retrieved %d pending profiles.", len(profiles))
	return profiles, nil
}

// UpdateStatus changes a profile's approval status and returns the updated record.
func (r *userRepository) UpdateStatus(id string, status models.UserStatus) (*models.UserProfile, error) {
	profile, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		log.Printf("WARN: [UserRepository] UpdateStatus: profile with ID '%s' not found.", id)
		return nil, fmt.Errorf("profile with ID '%s' not found", id)
	}

	profile.Status = status
	if err := r.db.Save(profile).Error; err != nil {
		log.Printf("ERROR: [UserRepository] Failed to update status of profile ID '%s' to '%s': %v", id, status, err)
		return nil, fmt.Errorf("failed to update status of profile ID '%s': %w", id, err)
	}
	log.Printf("INFO: [UserRepository] Updated profile '%s' (%s) to status '%s'.", profile.Name, id, status)
	return profile, nil
}
