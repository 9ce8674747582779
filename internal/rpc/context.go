package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"sponsorhub/internal/domain"
)

// AuthState is the three-state resolution of the caller's identity, computed
// once per request by the Builder so procedures never re-derive it.
type AuthState int

const (
	// AuthAnonymous means no valid session cookie was presented.
	AuthAnonymous AuthState = iota
	// AuthIdentityOnly means the identity provider session is valid but no
	// internal User exists for it yet.
	AuthIdentityOnly
	// AuthUser means the identity resolved to an internal User.
	AuthUser
)

// Cookies is the per-request cookie capability. Writes are best-effort: a
// jar built without a response writer swallows them, so session refreshes
// can never fail a read-only request. Batched procedure calls share one jar
// concurrently, hence the mutex.
type Cookies struct {
	mu  sync.Mutex
	req *http.Request
	w   http.ResponseWriter
}

// NewCookies returns a cookie jar over the request. w may be nil.
func NewCookies(r *http.Request, w http.ResponseWriter) *Cookies {
	return &Cookies{req: r, w: w}
}

// Cookie returns the named request cookie's value.
func (c *Cookies) Cookie(name string) (string, bool) {
	if c.req == nil {
		return "", false
	}
	ck, err := c.req.Cookie(name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// SetCookie writes a response cookie. No-op when the jar has no writer.
func (c *Cookies) SetCookie(ck *http.Cookie) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.w == nil {
		return
	}
	http.SetCookie(c.w, ck)
}

// Context is the per-request bundle handed to every procedure: resolved auth
// state, cookie capability, and the domain store handle. It is built fresh
// per transport request and never reused.
type Context struct {
	State    AuthState
	Identity *domain.Identity
	User     *domain.User
	Cookies  *Cookies
	Store    *domain.Store
}

// OrganizationID returns the resolved user's organization, if any.
func (c *Context) OrganizationID() (string, bool) {
	if c.User == nil || c.User.OrganizationID == nil {
		return "", false
	}
	return *c.User.OrganizationID, true
}

// Builder assembles request contexts. Construction never fails: identity
// resolution errors degrade to an anonymous context and are logged.
type Builder struct {
	Provider domain.IdentityProvider
	Store    *domain.Store
	Logger   *slog.Logger
}

// Build resolves the session cookie into the three-state auth value. w may
// be nil when the caller cannot set cookies (e.g. during rendering).
func (b *Builder) Build(ctx context.Context, r *http.Request, w http.ResponseWriter) *Context {
	rc := &Context{
		State:   AuthAnonymous,
		Cookies: NewCookies(r, w),
		Store:   b.Store,
	}
	identity, err := b.Provider.Resolve(ctx, rc.Cookies)
	if err != nil {
		b.Logger.WarnContext(ctx, "identity resolution failed", "err", err)
		return rc
	}
	if identity == nil {
		return rc
	}
	rc.Identity = identity
	rc.State = AuthIdentityOnly

	user, err := b.Store.Users.GetByIdentityID(ctx, identity.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			b.Logger.ErrorContext(ctx, "user lookup failed", "identity_id", identity.ID, "err", err)
		}
		return rc
	}
	rc.User = user
	rc.State = AuthUser
	return rc
}
