package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for sponsorship operations.
var (
	ErrSponsorshipNotFound  = errors.New("sponsorship request not found")
	ErrDuplicateSponsorship = errors.New("sponsorship request already exists for this event")
)

// SponsorshipStatus is the lifecycle state of a sponsorship request.
type SponsorshipStatus string

const (
	SponsorshipStatusPending   SponsorshipStatus = "pending"
	SponsorshipStatusAccepted  SponsorshipStatus = "accepted"
	SponsorshipStatusDeclined  SponsorshipStatus = "declined"
	SponsorshipStatusWithdrawn SponsorshipStatus = "withdrawn"
)

// SponsorshipRequest references an event and the sponsor organization asking
// to fund it. It is visible only to the sponsor organization and to the host
// organization owning the event.
// swagger:model SponsorshipRequest
type SponsorshipRequest struct {
	ID             string            `json:"id"`
	EventID        string            `json:"event_id"`
	OrganizationID string            `json:"organization_id"`
	Status         SponsorshipStatus `json:"status"`
	AmountCents    *int64            `json:"amount_cents,omitempty"`
	Note           *string           `json:"note,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// SponsorshipRepository defines the interface for sponsorship request storage.
type SponsorshipRepository interface {
	Create(ctx context.Context, req *SponsorshipRequest) error
	GetByID(ctx context.Context, id string) (*SponsorshipRequest, error)
	// ListVisibleToOrganization returns requests where the organization is
	// either the sponsor or the host of the referenced event.
	ListVisibleToOrganization(ctx context.Context, organizationID string) ([]*SponsorshipRequest, error)
	UpdateStatus(ctx context.Context, id string, status SponsorshipStatus) (*SponsorshipRequest, error)
}
