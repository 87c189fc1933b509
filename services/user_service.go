package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/SAADSTACK/NeuroMetric-AI/models"
	"github.com/SAADSTACK/NeuroMetric-AI/notifier"
	"github.com/SAADSTACK/NeuroMetric-AI/repository"
	"github.com/SAADSTACK/NeuroMetric-AI/utils"
)

// UserService manages local profiles and the approval workflow. Every
// mutation that changes externally-visible state publishes a change event so
// views in other contexts (including the writer's own) can re-query.
type UserService interface {
	CreateProfile(externalID, name, email string, role models.Role) (*models.UserProfile, error)
	GetProfile(externalID string) (*models.UserProfile, error) // Returns (nil, nil) when no profile exists
	GetPendingUsers() ([]models.UserProfile, error)
	UpdateUserStatus(id string, status models.UserStatus) (*models.UserProfile, error)
}

type userService struct {
	repo repository.UserRepository
	hub  *notifier.Hub
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo repository.UserRepository, hub *notifier.Hub) UserService {
	return &userService{repo: repo, hub: hub}
}

// CreateProfile registers a local profile for an authenticated identity.
// Admins are approved immediately; patients start pending and wait for an
// administrator.
func (s *userService) CreateProfile(externalID, name, email string, role models.Role) (*models.UserProfile, error) {
	if externalID == "" {
		return nil, errors.New("external ID cannot be empty")
	}
	if name == "" {
		return nil, errors.New("name cannot be empty")
	}
	if role != models.RolePatient && role != models.RoleAdmin {
		return nil, fmt.Errorf("unknown role '%s'", role)
	}

	existing, err := s.repo.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Printf("WARN: [UserService] Profile already exists for externalID '%s'.", externalID)
		return nil, errors.New("profile already exists")
	}

	status := models.UserStatusPending
	if role == models.RoleAdmin {
		status = models.UserStatusApproved
	}

	profile := &models.UserProfile{
		ID:         utils.GenerateID(),
		ExternalID: externalID,
		Name:       name,
		Email:      email,
		Role:       role,
		Status:     status,
	}
	if err := s.repo.Create(profile); err != nil {
		return nil, err
	}

	s.publish(notifier.Event{Type: notifier.EventProfileCreated, UserID: externalID})
	return profile, nil
}

// GetProfile looks up the profile linked to an external auth UID.
func (s *userService) GetProfile(externalID string) (*models.UserProfile, error) {
	return s.repo.GetByExternalID(externalID)
}

// GetPendingUsers lists patient profiles awaiting approval.
func (s *userService) GetPendingUsers() ([]models.UserProfile, error) {
	return s.repo.ListPending()
}

// UpdateUserStatus moves a profile to approved or rejected and notifies
// observers. A view sitting in the "waiting for approval" state re-queries on
// this signal and transitions accordingly.
func (s *userService) UpdateUserStatus(id string, status models.UserStatus) (*models.UserProfile, error) {
	if status != models.UserStatusApproved && status != models.UserStatusRejected && status != models.UserStatusPending {
		return nil, fmt.Errorf("unknown status '%s'", status)
	}

	profile, err := s.repo.UpdateStatus(id, status)
	if err != nil {
		return nil, err
	}

	s.publish(notifier.Event{Type: notifier.EventUserStatusChanged, UserID: profile.ExternalID})
	return profile, nil
}

func (s *userService) publish(event notifier.Event) {
	if s.hub != nil {
		s.hub.Publish(event)
	}
}
