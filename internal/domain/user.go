package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
	ErrDuplicateUser  = errors.New("user already exists for identity")
)

// User is the internal profile record linked 1:1 to an external identity.
// OrganizationID stays nil until onboarding completes.
// swagger:model User
type User struct {
	ID             string    `json:"id"`
	IdentityID     string    `json:"identity_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	LastName       string    `json:"last_name"`
	OrganizationID *string   `json:"organization_id,omitempty"`
	EmailVerified  bool      `json:"email_verified"`
	Flags          []string  `json:"flags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(identityID, email, name, lastName string, createdAt, updatedAt time.Time) *User {
	return &User{
		IdentityID: identityID,
		Email:      email,
		Name:       name,
		LastName:   lastName,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

// UserSettings holds per-user preferences returned by the settings projection.
// swagger:model UserSettings
type UserSettings struct {
	UserID             string `json:"user_id"`
	Locale             string `json:"locale"`
	EmailNotifications bool   `json:"email_notifications"`
}

// DefaultUserSettings returns the settings used when a user has never saved any.
func DefaultUserSettings(userID string) *UserSettings {
	return &UserSettings{UserID: userID, Locale: "en", EmailNotifications: true}
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIdentityID(ctx context.Context, identityID string) (*User, error)
	Update(ctx context.Context, user *User) error
	SetEmailVerified(ctx context.Context, id string) error
	GetSettings(ctx context.Context, userID string) (*UserSettings, error)
}
