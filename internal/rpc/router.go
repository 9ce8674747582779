package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
)

// Router is the composed set of all procedures. It is stateless between
// calls; all state lives in the domain store.
type Router struct {
	logger     *slog.Logger
	procedures map[string]*Procedure
}

// NewRouter returns an empty Router.
func NewRouter(logger *slog.Logger) *Router {
	return &Router{
		logger:     logger,
		procedures: make(map[string]*Procedure),
	}
}

// Register adds a procedure. It panics on an invalid or duplicate
// registration since that is a wiring bug, not a runtime condition.
func (r *Router) Register(p *Procedure) {
	if p.Name == "" || p.Handle == nil {
		panic("rpc: procedure must have a name and a handler")
	}
	if p.Access == RequireOrgMember && p.ResolveOrgID == nil {
		panic(fmt.Sprintf("rpc: procedure %s requires an organization resolver", p.Name))
	}
	if _, exists := r.procedures[p.Name]; exists {
		panic(fmt.Sprintf("rpc: duplicate procedure %s", p.Name))
	}
	r.procedures[p.Name] = p
}

// ProcedureNames returns the registered procedure paths, sorted.
func (r *Router) ProcedureNames() []string {
	names := make([]string, 0, len(r.procedures))
	for name := range r.procedures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call dispatches one procedure invocation: authorization first, then input
// handling inside the procedure. Every failure leaves classified; store and
// provider errors never cross this boundary unwrapped.
func (r *Router) Call(ctx context.Context, rc *Context, path string, input json.RawMessage) (any, *Error) {
	p, ok := r.procedures[path]
	if !ok {
		return nil, NotFound("unknown procedure: " + path)
	}
	if rerr := r.authorize(ctx, rc, p, input); rerr != nil {
		return nil, rerr
	}
	out, err := p.Handle(ctx, rc, input)
	if err != nil {
		rerr := AsError(err)
		if rerr.Kind == KindInternal {
			r.logger.ErrorContext(ctx, "procedure failed", "procedure", path, "err", err)
		}
		return nil, rerr
	}
	return out, nil
}

func (r *Router) authorize(ctx context.Context, rc *Context, p *Procedure, input json.RawMessage) *Error {
	switch p.Access {
	case Public:
		return nil
	case RequireIdentity:
		if rc.State == AuthAnonymous {
			return Unauthenticated("sign in required")
		}
		return nil
	case RequireUser, RequireOrgMember:
		if rc.State == AuthAnonymous {
			return Unauthenticated("sign in required")
		}
		if rc.State == AuthIdentityOnly {
			// A valid session without a profile: only the explicit
			// onboarding bootstrap may create the User.
			return NotFound("user not found")
		}
		if p.Access == RequireOrgMember {
			orgID, ok := rc.OrganizationID()
			if !ok {
				return Forbidden("no organization membership")
			}
			target, err := p.ResolveOrgID(ctx, rc, input)
			if err != nil {
				rerr := AsError(err)
				if rerr.Kind == KindInternal {
					r.logger.ErrorContext(ctx, "organization resolution failed", "procedure", p.Name, "err", err)
				}
				return rerr
			}
			if target != orgID {
				return Forbidden("not a member of this organization")
			}
		}
		return nil
	default:
		r.logger.ErrorContext(ctx, "unknown access level", "procedure", p.Name, "access", int(p.Access))
		return Internal()
	}
}
