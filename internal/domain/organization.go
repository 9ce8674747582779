package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for organization operations.
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrAlreadyMember        = errors.New("already a member of an organization")
)

// OrganizationType distinguishes the two tenant roles on the platform.
type OrganizationType string

const (
	// OrganizationTypeHost publishes events.
	OrganizationTypeHost OrganizationType = "host"
	// OrganizationTypeSponsor requests to fund events.
	OrganizationTypeSponsor OrganizationType = "sponsor"
)

// Valid reports whether t is a known organization type.
func (t OrganizationType) Valid() bool {
	return t == OrganizationTypeHost || t == OrganizationTypeSponsor
}

// Organization is the tenant boundary: every onboarded user belongs to
// exactly one organization.
// swagger:model Organization
type Organization struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Type        OrganizationType `json:"type"`
	Category    string           `json:"category"`
	AddressLine string           `json:"address_line,omitempty"`
	City        string           `json:"city,omitempty"`
	Country     string           `json:"country,omitempty"`
	PostalCode  string           `json:"postal_code,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Membership roles.
const (
	MembershipRoleOwner  = "owner"
	MembershipRoleMember = "member"
)

// Membership links a user to an organization with a role.
// swagger:model Membership
type Membership struct {
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	JoinedAt       time.Time `json:"joined_at"`
}

// OrganizationRepository defines the interface for organization storage.
type OrganizationRepository interface {
	// CreateWithOwner creates the organization, its owner membership, and the
	// user's organization link as one atomic unit.
	CreateWithOwner(ctx context.Context, org *Organization, ownerUserID string) error
	GetByID(ctx context.Context, id string) (*Organization, error)
}

// MembershipRepository defines the interface for membership storage.
type MembershipRepository interface {
	// GetByUserAndOrganization returns (nil, nil) when no membership exists.
	GetByUserAndOrganization(ctx context.Context, userID, organizationID string) (*Membership, error)
	ListByOrganizationID(ctx context.Context, organizationID string) ([]*Membership, error)
	Add(ctx context.Context, organizationID, userID, role string) error
}
