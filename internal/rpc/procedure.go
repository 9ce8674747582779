package rpc

import (
	"bytes"
	"context"
	"encoding/json"
)

// Access is the authorization requirement a procedure declares.
type Access int

const (
	// Public procedures run for anonymous callers.
	Public Access = iota
	// RequireIdentity needs a valid provider session; an internal User may
	// not exist yet. Used by the onboarding bootstrap.
	RequireIdentity
	// RequireUser needs a resolved internal User.
	RequireUser
	// RequireOrgMember needs a resolved User whose organization matches the
	// target entity's organization, resolved via ResolveOrgID.
	RequireOrgMember
)

// HandlerFunc executes a procedure against the request context and raw input.
type HandlerFunc func(ctx context.Context, rc *Context, input json.RawMessage) (any, error)

// OrgResolverFunc loads the target entity for an organization-gated
// procedure and returns its owning organization id. The id is always taken
// from the loaded entity, never trusted from the input.
type OrgResolverFunc func(ctx context.Context, rc *Context, input json.RawMessage) (string, error)

// Procedure is a single named, typed, authorization-checked operation.
type Procedure struct {
	Name         string
	Access       Access
	ResolveOrgID OrgResolverFunc
	Handle       HandlerFunc
}

// Validator is implemented by input DTOs that support validation.
type Validator interface {
	Validate() error
}

// Decode decodes raw procedure input into dest with DisallowUnknownFields
// and runs Validate when dest implements Validator. Errors are already
// classified as validation errors.
func Decode(raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return Invalid("", err.Error())
	}
	if v, ok := dest.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
