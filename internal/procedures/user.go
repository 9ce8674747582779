// Package procedures declares every routable operation: its name, access
// level, input decoding, and handler. Registration functions group the
// procedures by area and are called once from main.
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

// Projection flags accepted by user.getUserInfo. The set is fixed so that
// callers cannot request arbitrary joins.
const (
	UserFlagWithOrganization = "withOrganization"
	UserFlagWithMembership   = "withMembership"
	UserFlagWithSettings     = "withSettings"
)

type getUserInfoInput struct {
	Flags []string `json:"flags,omitempty"`
}

func (in *getUserInfoInput) Validate() error {
	for _, f := range in.Flags {
		switch f {
		case UserFlagWithOrganization, UserFlagWithMembership, UserFlagWithSettings:
		default:
			return rpc.Invalid("flags", fmt.Sprintf("unknown flag %q", f))
		}
	}
	return nil
}

type getUserInfoOutput struct {
	User         *domain.User         `json:"user"`
	Organization *domain.Organization `json:"organization,omitempty"`
	Membership   *domain.Membership   `json:"membership,omitempty"`
	Settings     *domain.UserSettings `json:"settings,omitempty"`
}

type updateUserInput struct {
	Name     *string `json:"name,omitempty"`
	LastName *string `json:"lastName,omitempty"`
}

func (in *updateUserInput) Validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return rpc.Invalid("name", "must not be blank")
	}
	if in.LastName != nil && strings.TrimSpace(*in.LastName) == "" {
		return rpc.Invalid("lastName", "must not be blank")
	}
	return nil
}

type signOutOutput struct {
	SignedOut bool `json:"signed_out"`
}

// RegisterUserProcedures registers user.getUserInfo, user.updateUser, and
// user.signOut.
func RegisterUserProcedures(r *rpc.Router, provider domain.IdentityProvider) {
	r.Register(&rpc.Procedure{
		Name:   "user.getUserInfo",
		Access: rpc.RequireUser,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in getUserInfoInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			out := &getUserInfoOutput{User: rc.User}
			for _, f := range in.Flags {
				switch f {
				case UserFlagWithOrganization:
					orgID, ok := rc.OrganizationID()
					if !ok {
						continue
					}
					org, err := rc.Store.Organizations.GetByID(ctx, orgID)
					if err != nil {
						return nil, err
					}
					out.Organization = org
				case UserFlagWithMembership:
					orgID, ok := rc.OrganizationID()
					if !ok {
						continue
					}
					m, err := rc.Store.Memberships.GetByUserAndOrganization(ctx, rc.User.ID, orgID)
					if err != nil {
						return nil, err
					}
					out.Membership = m
				case UserFlagWithSettings:
					settings, err := rc.Store.Users.GetSettings(ctx, rc.User.ID)
					if err != nil {
						return nil, err
					}
					out.Settings = settings
				}
			}
			return out, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "user.updateUser",
		Access: rpc.RequireUser,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in updateUserInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			// The context is shared across concurrent batch frames, so the
			// patch is applied to a copy, never to rc.User in place.
			user := *rc.User
			if in.Name != nil {
				user.Name = strings.TrimSpace(*in.Name)
			}
			if in.LastName != nil {
				user.LastName = strings.TrimSpace(*in.LastName)
			}
			user.UpdatedAt = time.Now()
			if err := rc.Store.Users.Update(ctx, &user); err != nil {
				return nil, err
			}
			return &user, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "user.signOut",
		Access: rpc.RequireIdentity,
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			if err := provider.SignOut(ctx, rc.Cookies); err != nil {
				return nil, fmt.Errorf("failed to sign out: %w", err)
			}
			return &signOutOutput{SignedOut: true}, nil
		},
	})
}
