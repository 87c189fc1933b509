package services

import (
	"errors"
	"testing"

	"github.com/SAADSTACK/NeuroMetric-AI/models"
	"github.com/SAADSTACK/NeuroMetric-AI/notifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock type for the UserRepository interface.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(profile *models.UserProfile) error {
	args := m.Called(profile)
	return args.Error(0)
}

func (m *MockUserRepository) GetByExternalID(externalID string) (*models.UserProfile, error) {
	args := m.Called(externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.UserProfile, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) ListPending() ([]models.UserProfile, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) UpdateStatus(id string, status models.UserStatus) (*models.UserProfile, error) {
	args := m.Called(id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func TestUserService_CreateProfile(t *testing.T) {
	t.Run("Patient profile starts pending", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByExternalID", "ext1").Return(nil, nil)
		repo.On("Create", mock.MatchedBy(func(p *models.UserProfile) bool {
			return p.Status == models.UserStatusPending && p.Role == models.RolePatient && p.ID != ""
		})).Return(nil)

		svc := NewUserService(repo, nil)
		profile, err := svc.CreateProfile("ext1", "Alice", "alice@example.com", models.RolePatient)
		assert.NoError(t, err)
		assert.Equal(t, models.UserStatusPending, profile.Status)
		repo.AssertExpectations(t)
	})

	t.Run("Admin profile is approved immediately", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByExternalID", "ext2").Return(nil, nil)
		repo.On("Create", mock.MatchedBy(func(p *models.UserProfile) bool {
			return p.Status == models.UserStatusApproved && p.Role == models.RoleAdmin
		})).Return(nil)

		svc := NewUserService(repo, nil)
		profile, err := svc.CreateProfile("ext2", "Root", "", models.RoleAdmin)
		assert.NoError(t, err)
		assert.Equal(t, models.UserStatusApproved, profile.Status)
		repo.AssertExpectations(t)
	})

	t.Run("Duplicate external ID is rejected before the write", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByExternalID", "ext1").Return(&models.UserProfile{ExternalID: "ext1"}, nil)

		svc := NewUserService(repo, nil)
		profile, err := svc.CreateProfile("ext1", "Alice", "", models.RolePatient)
		assert.Error(t, err)
		assert.Nil(t, profile)
		repo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("Empty identity or unknown role is invalid", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), nil)

		_, err := svc.CreateProfile("", "Alice", "", models.RolePatient)
		assert.Error(t, err)
		_, err = svc.CreateProfile("ext1", "", "", models.RolePatient)
		assert.Error(t, err)
		_, err = svc.CreateProfile("ext1", "Alice", "", models.Role("superuser"))
		assert.Error(t, err)
	})
}

func TestUserService_UpdateUserStatus(t *testing.T) {
	t.Run("Approval persists and notifies observers", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("UpdateStatus", "id1", models.UserStatusApproved).
			Return(&models.UserProfile{ID: "id1", ExternalID: "ext1", Status: models.UserStatusApproved}, nil)

		hub := notifier.NewHub()
		events, cancel := hub.Subscribe()
		defer cancel()

		svc := NewUserService(repo, hub)
		profile, err := svc.UpdateUserStatus("id1", models.UserStatusApproved)
		assert.NoError(t, err)
		assert.Equal(t, models.UserStatusApproved, profile.Status)

		event := <-events
		assert.Equal(t, notifier.EventUserStatusChanged, event.Type)
		assert.Equal(t, "ext1", event.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("Unknown status never reaches the store", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo, nil)

		_, err := svc.UpdateUserStatus("id1", models.UserStatus("banned"))
		assert.Error(t, err)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})

	t.Run("Store failure is propagated without a notification", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("UpdateStatus", "missing", models.UserStatusRejected).
			Return(nil, errors.New("profile not found"))

		hub := notifier.NewHub()
		events, cancel := hub.Subscribe()
		defer cancel()

		svc := NewUserService(repo, hub)
		_, err := svc.UpdateUserStatus("missing", models.UserStatusRejected)
		assert.Error(t, err)

		select {
		case e := <-events:
			t.Fatalf("unexpected event %q published on a failed update", e.Type)
		default:
		}
	})
}
