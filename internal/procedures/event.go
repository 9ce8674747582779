package procedures

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sponsorhub/internal/domain"
	"sponsorhub/internal/rpc"
)

const defaultSearchLimit = 20

type getEventInput struct {
	ID               string `json:"id"`
	WithOrganization bool   `json:"withOrganization,omitempty"`
	WithMedia        bool   `json:"withMedia,omitempty"`
}

func (in *getEventInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return rpc.Invalid("id", "required")
	}
	return nil
}

type getEventOutput struct {
	Event        *domain.Event        `json:"event"`
	Organization *domain.Organization `json:"organization,omitempty"`
	Media        []*domain.Media      `json:"media,omitempty"`
}

type searchEventsInput struct {
	Page      int    `json:"page,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	SortBy    string `json:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder,omitempty"`
}

func (in *searchEventsInput) Validate() error {
	if in.Page < 0 {
		return rpc.Invalid("page", "must not be negative")
	}
	if in.Limit < 0 {
		return rpc.Invalid("limit", "must not be negative")
	}
	switch in.SortBy {
	case "", domain.EventSortDate, domain.EventSortName, domain.EventSortCreatedAt:
	default:
		return rpc.Invalid("sortBy", "must be date, name, or createdAt")
	}
	switch in.SortOrder {
	case "", "asc", "desc":
	default:
		return rpc.Invalid("sortOrder", "must be asc or desc")
	}
	return nil
}

type searchEventsOutput struct {
	Events []*domain.Event `json:"events"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

type createEventInput struct {
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Venue       *string    `json:"venue,omitempty"`
	StartsAt    time.Time  `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	Published   bool       `json:"published,omitempty"`
}

func (in *createEventInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return rpc.Invalid("name", "required")
	}
	if in.StartsAt.IsZero() {
		return rpc.Invalid("startsAt", "required")
	}
	if in.EndsAt != nil && in.EndsAt.Before(in.StartsAt) {
		return rpc.Invalid("endsAt", "must not be before startsAt")
	}
	return nil
}

type updateEventInput struct {
	ID          string     `json:"id"`
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Venue       *string    `json:"venue,omitempty"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	Published   *bool      `json:"published,omitempty"`
}

func (in *updateEventInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return rpc.Invalid("id", "required")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return rpc.Invalid("name", "must not be blank")
	}
	return nil
}

type listOrganizationEventsInput struct {
	OrganizationID string `json:"organizationId"`
}

func (in *listOrganizationEventsInput) Validate() error {
	if strings.TrimSpace(in.OrganizationID) == "" {
		return rpc.Invalid("organizationId", "required")
	}
	return nil
}

type eventListOutput struct {
	Events []*domain.Event `json:"events"`
}

// RegisterEventProcedures registers the event procedures. maxPageSize caps
// the search page size regardless of what the caller asks for.
func RegisterEventProcedures(r *rpc.Router, maxPageSize int) {
	r.Register(&rpc.Procedure{
		Name:   "event.getEvent",
		Access: rpc.Public,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in getEventInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			event, err := rc.Store.Events.GetByID(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			if !event.Published && !isMemberOf(rc, event.OrganizationID) {
				// Hidden events are indistinguishable from absent ones.
				return nil, domain.ErrEventNotFound
			}
			out := &getEventOutput{Event: event}
			if in.WithOrganization {
				org, err := rc.Store.Organizations.GetByID(ctx, event.OrganizationID)
				if err != nil {
					return nil, err
				}
				out.Organization = org
			}
			if in.WithMedia {
				media, err := rc.Store.Media.ListByEventID(ctx, event.ID)
				if err != nil {
					return nil, err
				}
				out.Media = media
			}
			return out, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "event.searchEvents",
		Access: rpc.Public,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in searchEventsInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			params := domain.EventSearchParams{
				Page:      in.Page,
				Limit:     in.Limit,
				SortBy:    in.SortBy,
				SortOrder: in.SortOrder,
			}
			if params.Limit == 0 {
				params.Limit = defaultSearchLimit
			}
			if params.Limit > maxPageSize {
				params.Limit = maxPageSize
			}
			if params.SortBy == "" {
				params.SortBy = domain.EventSortDate
			}
			if params.SortOrder == "" {
				params.SortOrder = "asc"
			}
			events, total, err := rc.Store.Events.Search(ctx, params)
			if err != nil {
				return nil, err
			}
			return &searchEventsOutput{Events: events, Total: total, Page: params.Page, Limit: params.Limit}, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "event.createEvent",
		Access: rpc.RequireUser,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in createEventInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			orgID, ok := rc.OrganizationID()
			if !ok {
				return nil, rpc.Forbidden("complete onboarding before creating events")
			}
			org, err := rc.Store.Organizations.GetByID(ctx, orgID)
			if err != nil {
				return nil, err
			}
			if org.Type != domain.OrganizationTypeHost {
				return nil, rpc.Forbidden("only host organizations can create events")
			}
			now := time.Now()
			event := domain.NewEvent(orgID, strings.TrimSpace(in.Name), in.StartsAt, now, now)
			event.Description = in.Description
			event.Venue = in.Venue
			event.EndsAt = in.EndsAt
			event.Published = in.Published
			if err := rc.Store.Events.Create(ctx, event); err != nil {
				return nil, fmt.Errorf("failed to create event: %w", err)
			}
			return event, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "event.updateEvent",
		Access: rpc.RequireOrgMember,
		ResolveOrgID: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (string, error) {
			var in updateEventInput
			if err := rpc.Decode(raw, &in); err != nil {
				return "", err
			}
			// Ownership comes from the stored event, never from the request.
			event, err := rc.Store.Events.GetByID(ctx, in.ID)
			if err != nil {
				return "", err
			}
			return event.OrganizationID, nil
		},
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in updateEventInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			event, err := rc.Store.Events.GetByID(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			if in.Name != nil {
				event.Name = strings.TrimSpace(*in.Name)
			}
			if in.Description != nil {
				event.Description = in.Description
			}
			if in.Venue != nil {
				event.Venue = in.Venue
			}
			if in.StartsAt != nil {
				event.StartsAt = *in.StartsAt
			}
			if in.EndsAt != nil {
				event.EndsAt = in.EndsAt
			}
			if in.Published != nil {
				event.Published = *in.Published
			}
			event.UpdatedAt = time.Now()
			if err := rc.Store.Events.Update(ctx, event); err != nil {
				return nil, err
			}
			return event, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "event.listOrganizationEvents",
		Access: rpc.RequireOrgMember,
		ResolveOrgID: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (string, error) {
			var in listOrganizationEventsInput
			if err := rpc.Decode(raw, &in); err != nil {
				return "", err
			}
			return in.OrganizationID, nil
		},
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			// The authorization gate already proved membership in the
			// requested organization, so query by the caller's own org.
			orgID, _ := rc.OrganizationID()
			events, err := rc.Store.Events.ListByOrganizationID(ctx, orgID)
			if err != nil {
				return nil, err
			}
			return &eventListOutput{Events: events}, nil
		},
	})
}

func isMemberOf(rc *rpc.Context, organizationID string) bool {
	orgID, ok := rc.OrganizationID()
	return ok && orgID == organizationID
}
