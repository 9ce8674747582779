// Package identity adapts the external identity provider behind the
// domain.IdentityProvider port. Sessions arrive as a signed JWT in a cookie;
// the token is verified locally and only refresh, revocation, and metadata
// writes go over the wire.
package identity

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sponsorhub/internal/domain"
)

// Config holds the provider adapter configuration.
type Config struct {
	CookieName    string
	Secret        string
	BaseURL       string
	APIKey        string
	RefreshWindow time.Duration
	SecureCookies bool
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email         string         `json:"email"`
	EmailVerified bool           `json:"email_verified"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type provider struct {
	cfg    Config
	secret []byte
	api    *apiClient
	logger *slog.Logger
}

// NewProvider returns an IdentityProvider backed by the configured service.
// httpClient may be nil.
func NewProvider(cfg Config, httpClient *http.Client, logger *slog.Logger) domain.IdentityProvider {
	return &provider{
		cfg:    cfg,
		secret: []byte(cfg.Secret),
		api:    newAPIClient(cfg.BaseURL, cfg.APIKey, httpClient),
		logger: logger,
	}
}

// Resolve verifies the session cookie and returns the identity it carries.
// A missing, malformed, or expired cookie resolves to (nil, nil): an
// anonymous caller, not an error. Sessions inside the refresh window are
// exchanged for a fresh token and the cookie is rewritten best-effort.
func (p *provider) Resolve(ctx context.Context, jar domain.CookieJar) (*domain.Identity, error) {
	value, ok := jar.Cookie(p.cfg.CookieName)
	if !ok {
		return nil, nil
	}
	claims, err := p.parse(value)
	if err != nil {
		return nil, nil
	}

	identity := &domain.Identity{
		ID:            claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Metadata:      claims.Metadata,
	}

	if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < p.cfg.RefreshWindow {
		fresh, err := p.api.RefreshSession(ctx, value)
		if err != nil {
			p.logger.WarnContext(ctx, "session refresh failed", "identity_id", identity.ID, "error", err)
			return identity, nil
		}
		expires := claims.ExpiresAt.Time
		if freshClaims, err := p.parse(fresh); err == nil && freshClaims.ExpiresAt != nil {
			expires = freshClaims.ExpiresAt.Time
		}
		jar.SetCookie(p.sessionCookie(fresh, expires))
	}
	return identity, nil
}

// SignOut revokes the session server-side and clears the cookie. Revocation
// failures do not keep the caller signed in locally; the cookie is cleared
// regardless.
func (p *provider) SignOut(ctx context.Context, jar domain.CookieJar) error {
	if value, ok := jar.Cookie(p.cfg.CookieName); ok {
		if err := p.api.RevokeSession(ctx, value); err != nil {
			p.logger.WarnContext(ctx, "session revocation failed", "error", err)
		}
	}
	jar.SetCookie(&http.Cookie{
		Name:     p.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// PatchMetadata merges fields into the provider-side identity metadata.
func (p *provider) PatchMetadata(ctx context.Context, identityID string, patch map[string]any) error {
	return p.api.PatchMetadata(ctx, identityID, patch)
}

func (p *provider) parse(value string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (p *provider) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     p.cfg.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   p.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
