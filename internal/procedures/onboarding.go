package procedures

import (
	"context"
	"encoding/json"
	"strings"

	"sponsorhub/internal/domain"
	"sponsorhub/internal/rpc"
)

type startOnboardingOutput struct {
	User  *domain.User           `json:"user"`
	State domain.OnboardingState `json:"state"`
}

type onboardingStateOutput struct {
	State domain.OnboardingState `json:"state"`
}

type requestVerificationCodeOutput struct {
	Sent bool `json:"sent"`
}

type verifyEmailInput struct {
	Code string `json:"code"`
}

func (in *verifyEmailInput) Validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return rpc.Invalid("code", "required")
	}
	return nil
}

type verifyEmailOutput struct {
	Verified bool `json:"verified"`
}

type saveStepInput struct {
	Step             string                   `json:"step"`
	OrganizationType *domain.OrganizationType `json:"organizationType,omitempty"`
	Category         *string                  `json:"category,omitempty"`
	OrganizationName *string                  `json:"organizationName,omitempty"`
	AddressLine      *string                  `json:"addressLine,omitempty"`
	City             *string                  `json:"city,omitempty"`
	Country          *string                  `json:"country,omitempty"`
	PostalCode       *string                  `json:"postalCode,omitempty"`
}

func (in *saveStepInput) Validate() error {
	if strings.TrimSpace(in.Step) == "" {
		return rpc.Invalid("step", "required")
	}
	return nil
}

type completeOnboardingOutput struct {
	Organization *domain.Organization   `json:"organization"`
	State        domain.OnboardingState `json:"state"`
}

// RegisterOnboardingProcedures registers the account-setup procedures.
// onboarding.start is the single entry point that may create the internal
// user for a fresh identity, which is why it runs at RequireIdentity while
// the remaining steps require a resolved user.
func RegisterOnboardingProcedures(r *rpc.Router, svc domain.OnboardingService) {
	r.Register(&rpc.Procedure{
		Name:   "onboarding.start",
		Access: rpc.RequireIdentity,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			user, err := svc.Start(ctx, rc.Identity)
			if err != nil {
				return nil, err
			}
			return &startOnboardingOutput{User: user, State: svc.State(rc.Identity, user)}, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "onboarding.getState",
		Access: rpc.Public,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			return &onboardingStateOutput{State: svc.State(rc.Identity, rc.User)}, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "onboarding.requestVerificationCode",
		Access: rpc.RequireUser,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			if rc.User.EmailVerified {
				return nil, rpc.Conflict("email is already verified")
			}
			if err := svc.RequestVerificationCode(ctx, rc.User); err != nil {
				return nil, err
			}
			return &requestVerificationCodeOutput{Sent: true}, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "onboarding.verifyEmailWithCode",
		Access: rpc.RequireUser,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in verifyEmailInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			if rc.User.EmailVerified {
				return nil, rpc.Conflict("email is already verified")
			}
			if err := svc.VerifyEmailWithCode(ctx, rc.User, in.Code); err != nil {
				return nil, err
			}
			return &verifyEmailOutput{Verified: true}, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "onboarding.saveStep",
		Access: rpc.RequireUser,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in saveStepInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			if !rc.User.EmailVerified {
				return nil, rpc.Forbidden("verify your email before onboarding")
			}
			if rc.User.OrganizationID != nil {
				return nil, rpc.Conflict("onboarding already completed")
			}
			patch := &domain.OnboardingProgress{
				Step:             in.Step,
				OrganizationType: in.OrganizationType,
				Category:         in.Category,
				OrganizationName: in.OrganizationName,
				AddressLine:      in.AddressLine,
				City:             in.City,
				Country:          in.Country,
				PostalCode:       in.PostalCode,
			}
			if err := svc.SaveStep(ctx, rc.User.ID, patch); err != nil {
				return nil, err
			}
			return svc.Progress(ctx, rc.User.ID)
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "onboarding.getProgress",
		Access: rpc.RequireUser,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			return svc.Progress(ctx, rc.User.ID)
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "onboarding.complete",
		Access: rpc.RequireUser,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			if !rc.User.EmailVerified {
				return nil, rpc.Forbidden("verify your email before onboarding")
			}
			org, err := svc.Complete(ctx, rc.User)
			if err != nil {
				return nil, err
			}
			// Sibling batch frames share rc.User; report the new state off a
			// copy instead of writing the organization link back in place.
			user := *rc.User
			user.OrganizationID = &org.ID
			return &completeOnboardingOutput{Organization: org, State: svc.State(rc.Identity, &user)}, nil
		},
	})
}
