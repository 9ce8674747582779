package domain

import (
	"context"
	"errors"
	"time"
)

// ErrEventNotFound is returned when an event does not exist or is hidden from
// the caller; the two cases are deliberately indistinguishable.
var ErrEventNotFound = errors.New("event not found")

// Event is owned by exactly one host organization. Unpublished events are
// visible only to members of the owning organization.
// swagger:model Event
type Event struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	Venue          *string    `json:"venue,omitempty"`
	StartsAt       time.Time  `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
	Published      bool       `json:"published"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(organizationID, name string, startsAt time.Time, createdAt, updatedAt time.Time) *Event {
	return &Event{
		OrganizationID: organizationID,
		Name:           name,
		StartsAt:       startsAt,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// Event search sort fields. Repositories map these to columns.
const (
	EventSortDate      = "date"
	EventSortName      = "name"
	EventSortCreatedAt = "createdAt"
)

// EventSearchParams selects a page of published events. Page is zero-indexed;
// Limit is expected to be clamped by the caller before it reaches the store.
type EventSearchParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Offset returns the row offset for the zero-indexed page.
func (p EventSearchParams) Offset() int {
	if p.Page < 0 {
		return 0
	}
	return p.Page * p.Limit
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	ListByOrganizationID(ctx context.Context, organizationID string) ([]*Event, error)
	// Search returns a page of published events and the total match count.
	Search(ctx context.Context, params EventSearchParams) ([]*Event, int, error)
}
