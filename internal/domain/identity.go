package domain

import (
	"context"
	"net/http"
)

// Identity is the authenticated subject issued by the external identity
// provider. It is session-level data: the application reads it on every
// request and only ever writes narrow metadata patches back.
type Identity struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	EmailVerified bool           `json:"email_verified"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// CookieReader reads request cookies by name.
type CookieReader interface {
	Cookie(name string) (value string, ok bool)
}

// CookieWriter sets response cookies. Implementations without a response
// writer (e.g. during pure rendering) must treat writes as no-ops.
type CookieWriter interface {
	SetCookie(c *http.Cookie)
}

// CookieJar combines cookie read and write capabilities for one request.
type CookieJar interface {
	CookieReader
	CookieWriter
}

// IdentityProvider wraps the external auth service.
//
// Resolve returns (nil, nil) when no valid session cookie exists; callers
// must treat that as "not logged in", never as a fatal error. Resolve may
// rewrite a session-refresh cookie as a side effect; that write is
// best-effort and a failure to write never fails the request.
type IdentityProvider interface {
	Resolve(ctx context.Context, jar CookieJar) (*Identity, error)
	SignOut(ctx context.Context, jar CookieJar) error
	PatchMetadata(ctx context.Context, identityID string, patch map[string]any) error
}
