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

type getSponsorRequestsInput struct {
	OrganizationID string `json:"organizationId"`
}

func (in *getSponsorRequestsInput) Validate() error {
	if strings.TrimSpace(in.OrganizationID) == "" {
		return rpc.Invalid("organizationId", "required")
	}
	return nil
}

type sponsorRequestListOutput struct {
	Requests []*domain.SponsorshipRequest `json:"requests"`
}

type createSponsorRequestInput struct {
	EventID     string  `json:"eventId"`
	AmountCents *int64  `json:"amountCents,omitempty"`
	Note        *string `json:"note,omitempty"`
}

func (in *createSponsorRequestInput) Validate() error {
	if strings.TrimSpace(in.EventID) == "" {
		return rpc.Invalid("eventId", "required")
	}
	if in.AmountCents != nil && *in.AmountCents <= 0 {
		return rpc.Invalid("amountCents", "must be positive")
	}
	return nil
}

type updateSponsorRequestStatusInput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (in *updateSponsorRequestStatusInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return rpc.Invalid("id", "required")
	}
	switch domain.SponsorshipStatus(in.Status) {
	case domain.SponsorshipStatusAccepted, domain.SponsorshipStatusDeclined:
		return nil
	default:
		return rpc.Invalid("status", "must be accepted or declined")
	}
}

type withdrawSponsorRequestInput struct {
	ID string `json:"id"`
}

func (in *withdrawSponsorRequestInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return rpc.Invalid("id", "required")
	}
	return nil
}

// RegisterSponsorshipProcedures registers the sponsorship request procedures.
func RegisterSponsorshipProcedures(r *rpc.Router) {
	r.Register(&rpc.Procedure{
		Name:   "sponsorship.getSponsorRequests",
		Access: rpc.RequireOrgMember,
		ResolveOrgID: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (string, error) {
			var in getSponsorRequestsInput
			if err := rpc.Decode(raw, &in); err != nil {
				return "", err
			}
			return in.OrganizationID, nil
		},
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			// Membership in the requested organization is already proven, so
			// the query is keyed to the caller's own org. Asking for another
			// org never widens visibility; it fails the gate instead.
			orgID, _ := rc.OrganizationID()
			requests, err := rc.Store.Sponsorships.ListVisibleToOrganization(ctx, orgID)
			if err != nil {
				return nil, err
			}
			return &sponsorRequestListOutput{Requests: requests}, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "sponsorship.createSponsorRequest",
		Access: rpc.RequireUser,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in createSponsorRequestInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			orgID, ok := rc.OrganizationID()
			if !ok {
				return nil, rpc.Forbidden("complete onboarding before sponsoring events")
			}
			org, err := rc.Store.Organizations.GetByID(ctx, orgID)
			if err != nil {
				return nil, err
			}
			if org.Type != domain.OrganizationTypeSponsor {
				return nil, rpc.Forbidden("only sponsor organizations can request sponsorships")
			}
			event, err := rc.Store.Events.GetByID(ctx, in.EventID)
			if err != nil {
				return nil, err
			}
			if !event.Published {
				return nil, domain.ErrEventNotFound
			}
			if event.OrganizationID == orgID {
				return nil, rpc.Invalid("eventId", "cannot sponsor your own event")
			}
			now := time.Now()
			req := &domain.SponsorshipRequest{
				EventID:        event.ID,
				OrganizationID: orgID,
				Status:         domain.SponsorshipStatusPending,
				AmountCents:    in.AmountCents,
				Note:           in.Note,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := rc.Store.Sponsorships.Create(ctx, req); err != nil {
				return nil, err
			}
			return req, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "sponsorship.updateSponsorRequestStatus",
		Access: rpc.RequireOrgMember,
		ResolveOrgID: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (string, error) {
			var in updateSponsorRequestStatusInput
			if err := rpc.Decode(raw, &in); err != nil {
				return "", err
			}
			// Accept and decline belong to the host side, so the gate is the
			// organization owning the referenced event.
			req, err := rc.Store.Sponsorships.GetByID(ctx, in.ID)
			if err != nil {
				return "", err
			}
			event, err := rc.Store.Events.GetByID(ctx, req.EventID)
			if err != nil {
				return "", err
			}
			return event.OrganizationID, nil
		},
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in updateSponsorRequestStatusInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			req, err := rc.Store.Sponsorships.GetByID(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			if req.Status != domain.SponsorshipStatusPending {
				return nil, rpc.Conflict(fmt.Sprintf("request is already %s", req.Status))
			}
			updated, err := rc.Store.Sponsorships.UpdateStatus(ctx, req.ID, domain.SponsorshipStatus(in.Status))
			if err != nil {
				return nil, err
			}
			return updated, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "sponsorship.withdrawSponsorRequest",
		Access: rpc.RequireOrgMember,
		ResolveOrgID: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (string, error) {
			var in withdrawSponsorRequestInput
			if err := rpc.Decode(raw, &in); err != nil {
				return "", err
			}
			// Withdrawal belongs to the sponsor side.
			req, err := rc.Store.Sponsorships.GetByID(ctx, in.ID)
			if err != nil {
				return "", err
			}
			return req.OrganizationID, nil
		},
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in withdrawSponsorRequestInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			req, err := rc.Store.Sponsorships.GetByID(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			if req.Status != domain.SponsorshipStatusPending {
				return nil, rpc.Conflict(fmt.Sprintf("request is already %s", req.Status))
			}
			updated, err := rc.Store.Sponsorships.UpdateStatus(ctx, req.ID, domain.SponsorshipStatusWithdrawn)
			if err != nil {
				return nil, err
			}
			return updated, nil
		},
	})
}
