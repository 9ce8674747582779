package rpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sponsorhub/internal/domain"
)

// fakeProvider implements domain.IdentityProvider for tests.
type fakeProvider struct {
	identity *domain.Identity
	err      error
}

func (f *fakeProvider) Resolve(ctx context.Context, jar domain.CookieJar) (*domain.Identity, error) {
	return f.identity, f.err
}

func (f *fakeProvider) SignOut(ctx context.Context, jar domain.CookieJar) error { return nil }

func (f *fakeProvider) PatchMetadata(ctx context.Context, identityID string, patch map[string]any) error {
	return nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byIdentity map[string]*domain.User
	getErr     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byIdentity: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	u.ID = "created-1"
	f.byIdentity[u.IdentityID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range f.byIdentity {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByIdentityID(ctx context.Context, identityID string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byIdentity[identityID]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error { return nil }

func (f *fakeUserRepo) SetEmailVerified(ctx context.Context, id string) error { return nil }

func (f *fakeUserRepo) GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error) {
	return domain.DefaultUserSettings(userID), nil
}

func TestBuilderBuild(t *testing.T) {
	identity := &domain.Identity{ID: "identity-1", Email: "alice@example.com"}

	tests := []struct {
		name      string
		provider  *fakeProvider
		users     func() *fakeUserRepo
		wantState AuthState
	}{
		{
			name:      "no session resolves to anonymous",
			provider:  &fakeProvider{},
			users:     newFakeUserRepo,
			wantState: AuthAnonymous,
		},
		{
			name:      "provider failure degrades to anonymous",
			provider:  &fakeProvider{err: errors.New("provider unreachable")},
			users:     newFakeUserRepo,
			wantState: AuthAnonymous,
		},
		{
			name:      "session without a user resolves to identity only",
			provider:  &fakeProvider{identity: identity},
			users:     newFakeUserRepo,
			wantState: AuthIdentityOnly,
		},
		{
			name:     "session with a user resolves to user",
			provider: &fakeProvider{identity: identity},
			users: func() *fakeUserRepo {
				users := newFakeUserRepo()
				users.byIdentity["identity-1"] = &domain.User{ID: "user-1", IdentityID: "identity-1"}
				return users
			},
			wantState: AuthUser,
		},
		{
			name:     "user lookup failure degrades to identity only",
			provider: &fakeProvider{identity: identity},
			users: func() *fakeUserRepo {
				users := newFakeUserRepo()
				users.getErr = errors.New("connection lost")
				return users
			},
			wantState: AuthIdentityOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Builder{
				Provider: tt.provider,
				Store:    &domain.Store{Users: tt.users()},
				Logger:   testLogger(),
			}
			req := httptest.NewRequest(http.MethodPost, "/api/rpc", nil)
			rc := b.Build(context.Background(), req, httptest.NewRecorder())

			assert.Equal(t, tt.wantState, rc.State)
			if tt.wantState == AuthAnonymous {
				assert.Nil(t, rc.Identity)
			}
			if tt.wantState == AuthUser {
				require.NotNil(t, rc.User)
			} else {
				assert.Nil(t, rc.User)
			}
		})
	}
}

func TestCookies(t *testing.T) {
	t.Run("reads request cookies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/rpc", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "abc"})
		jar := NewCookies(req, nil)

		v, ok := jar.Cookie("session")
		require.True(t, ok)
		assert.Equal(t, "abc", v)

		_, ok = jar.Cookie("missing")
		assert.False(t, ok)
	})

	t.Run("write without a response writer is a no-op", func(t *testing.T) {
		jar := NewCookies(httptest.NewRequest(http.MethodPost, "/", nil), nil)
		assert.NotPanics(t, func() {
			jar.SetCookie(&http.Cookie{Name: "session", Value: "abc"})
		})
	})

	t.Run("concurrent writes are safe", func(t *testing.T) {
		rec := httptest.NewRecorder()
		jar := NewCookies(httptest.NewRequest(http.MethodPost, "/", nil), rec)

		done := make(chan struct{})
		for i := 0; i < 8; i++ {
			go func() {
				defer func() { done <- struct{}{} }()
				jar.SetCookie(&http.Cookie{Name: "session", Value: "abc", Expires: time.Now().Add(time.Hour)})
			}()
		}
		for i := 0; i < 8; i++ {
			<-done
		}
		assert.NotEmpty(t, rec.Header().Values("Set-Cookie"))
	})
}
