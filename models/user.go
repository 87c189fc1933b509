package models

import "time"

// Role defines a user profile's role in the system.
type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// UserStatus defines the approval state of a user profile.
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
)

// UserProfile is the local profile linked to an external identity account.
// ExternalID is the opaque, stable identifier supplied by the identity
// provider; Name is presentation only. The two are deliberately separate
// fields so a provider-side identifier format change can never collide with
// display data.
type UserProfile struct {
	ID            string     `json:"id" gorm:"primaryKey"` // UUID assigned at profile creation
	ExternalID    string     `json:"external_id" gorm:"uniqueIndex"`
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Role          Role       `json:"role" gorm:"index"`
	Status        UserStatus `json:"status" gorm:"index"`
	ContactNumber string     `json:"contact_number,omitempty"`
	Address       string     `json:"address,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
