package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for onboarding operations.
var (
	ErrOnboardingIncomplete = errors.New("onboarding steps incomplete")
	ErrAlreadyOnboarded     = errors.New("onboarding already completed")
)

// OnboardingState is the account-setup stage derived from the resolved
// identity and user.
type OnboardingState string

const (
	OnboardingStateUnauthenticated   OnboardingState = "unauthenticated"
	OnboardingStateUnverified        OnboardingState = "unverified"
	OnboardingStatePendingOnboarding OnboardingState = "pending_onboarding"
	OnboardingStateOnboarded         OnboardingState = "onboarded"
)

// Onboarding form steps, in order.
const (
	OnboardingStepOrganizationType    = "organization_type"
	OnboardingStepOrganizationProfile = "organization_profile"
)

// OnboardingProgress holds per-step form state keyed to a user so a returning
// user resumes at the last completed step. Nil fields are not yet collected.
// swagger:model OnboardingProgress
type OnboardingProgress struct {
	UserID           string            `json:"user_id"`
	Step             string            `json:"step"`
	OrganizationType *OrganizationType `json:"organization_type,omitempty"`
	Category         *string           `json:"category,omitempty"`
	OrganizationName *string           `json:"organization_name,omitempty"`
	AddressLine      *string           `json:"address_line,omitempty"`
	City             *string           `json:"city,omitempty"`
	Country          *string           `json:"country,omitempty"`
	PostalCode       *string           `json:"postal_code,omitempty"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// OnboardingRepository defines the interface for onboarding progress storage.
type OnboardingRepository interface {
	Upsert(ctx context.Context, progress *OnboardingProgress) error
	// GetByUserID returns (nil, nil) when no progress has been saved.
	GetByUserID(ctx context.Context, userID string) (*OnboardingProgress, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// OnboardingService defines the business logic for account setup and email
// verification.
type OnboardingService interface {
	// Start creates the internal User for the identity if absent. It is the
	// only operation allowed to do so.
	Start(ctx context.Context, identity *Identity) (*User, error)
	State(identity *Identity, user *User) OnboardingState
	RequestVerificationCode(ctx context.Context, user *User) error
	VerifyEmailWithCode(ctx context.Context, user *User, code string) error
	SaveStep(ctx context.Context, userID string, patch *OnboardingProgress) error
	Progress(ctx context.Context, userID string) (*OnboardingProgress, error)
	Complete(ctx context.Context, user *User) (*Organization, error)
}
