package procedures

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"sponsorhub/internal/domain"
	"sponsorhub/internal/rpc"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	byID         map[string]*domain.Event
	byOrg        map[string][]*domain.Event
	searchResult []*domain.Event
	searchTotal  int
	searchParams *domain.EventSearchParams
	updated      *domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), byOrg: make(map[string][]*domain.Event)}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	e.ID = "event-created"
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEventNotFound
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	f.updated = e
	return nil
}

func (f *fakeEventRepo) ListByOrganizationID(ctx context.Context, organizationID string) ([]*domain.Event, error) {
	return f.byOrg[organizationID], nil
}

func (f *fakeEventRepo) Search(ctx context.Context, params domain.EventSearchParams) ([]*domain.Event, int, error) {
	f.searchParams = &params
	return f.searchResult, f.searchTotal, nil
}

// fakeOrgRepo implements domain.OrganizationRepository for tests.
type fakeOrgRepo struct {
	byID map[string]*domain.Organization
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{byID: make(map[string]*domain.Organization)}
}

func (f *fakeOrgRepo) CreateWithOwner(ctx context.Context, org *domain.Organization, ownerUserID string) error {
	org.ID = "org-created"
	f.byID[org.ID] = org
	return nil
}

func (f *fakeOrgRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	if o, ok := f.byID[id]; ok {
		return o, nil
	}
	return nil, domain.ErrOrganizationNotFound
}

// fakeMembershipRepo implements domain.MembershipRepository for tests.
type fakeMembershipRepo struct {
	memberships map[string]*domain.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{memberships: make(map[string]*domain.Membership)}
}

func membershipKey(userID, orgID string) string { return userID + "/" + orgID }

func (f *fakeMembershipRepo) GetByUserAndOrganization(ctx context.Context, userID, organizationID string) (*domain.Membership, error) {
	return f.memberships[membershipKey(userID, organizationID)], nil
}

func (f *fakeMembershipRepo) ListByOrganizationID(ctx context.Context, organizationID string) ([]*domain.Membership, error) {
	var out []*domain.Membership
	for _, m := range f.memberships {
		if m.OrganizationID == organizationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembershipRepo) Add(ctx context.Context, organizationID, userID, role string) error {
	f.memberships[membershipKey(userID, organizationID)] = &domain.Membership{
		OrganizationID: organizationID, UserID: userID, Role: role,
	}
	return nil
}

// fakeSponsorshipRepo implements domain.SponsorshipRepository for tests.
type fakeSponsorshipRepo struct {
	byID      map[string]*domain.SponsorshipRequest
	visible   map[string][]*domain.SponsorshipRequest
	listedFor []string
	createErr error
}

func newFakeSponsorshipRepo() *fakeSponsorshipRepo {
	return &fakeSponsorshipRepo{
		byID:    make(map[string]*domain.SponsorshipRequest),
		visible: make(map[string][]*domain.SponsorshipRequest),
	}
}

func (f *fakeSponsorshipRepo) Create(ctx context.Context, req *domain.SponsorshipRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	req.ID = "req-created"
	f.byID[req.ID] = req
	return nil
}

func (f *fakeSponsorshipRepo) GetByID(ctx context.Context, id string) (*domain.SponsorshipRequest, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, domain.ErrSponsorshipNotFound
}

func (f *fakeSponsorshipRepo) ListVisibleToOrganization(ctx context.Context, organizationID string) ([]*domain.SponsorshipRequest, error) {
	f.listedFor = append(f.listedFor, organizationID)
	return f.visible[organizationID], nil
}

func (f *fakeSponsorshipRepo) UpdateStatus(ctx context.Context, id string, status domain.SponsorshipStatus) (*domain.SponsorshipRequest, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrSponsorshipNotFound
	}
	r.Status = status
	return r, nil
}

// fakeMediaRepo implements domain.MediaRepository for tests.
type fakeMediaRepo struct {
	byID    map[string]*domain.Media
	byEvent map[string][]*domain.Media
	deleted []string
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{byID: make(map[string]*domain.Media), byEvent: make(map[string][]*domain.Media)}
}

func (f *fakeMediaRepo) Create(ctx context.Context, m *domain.Media) error {
	m.ID = "media-created"
	f.byID[m.ID] = m
	f.byEvent[m.EventID] = append(f.byEvent[m.EventID], m)
	return nil
}

func (f *fakeMediaRepo) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	if m, ok := f.byID[id]; ok {
		return m, nil
	}
	return nil, domain.ErrMediaNotFound
}

func (f *fakeMediaRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Media, error) {
	return f.byEvent[eventID], nil
}

func (f *fakeMediaRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrMediaNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeUserRepo implements domain.UserRepository for tests. Update is
// mutex-guarded because procedure tests call it from concurrent goroutines.
type fakeUserRepo struct {
	byID     map[string]*domain.User
	settings map[string]*domain.UserSettings

	mu      sync.Mutex
	updated *domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), settings: make(map[string]*domain.UserSettings)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	u.ID = "user-created"
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByIdentityID(ctx context.Context, identityID string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.IdentityID == identityID {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	f.updated = u
	f.mu.Unlock()
	return nil
}

func (f *fakeUserRepo) SetEmailVerified(ctx context.Context, id string) error { return nil }

func (f *fakeUserRepo) GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error) {
	if s, ok := f.settings[userID]; ok {
		return s, nil
	}
	return domain.DefaultUserSettings(userID), nil
}

// fakeSigner implements domain.UploadURLSigner for tests.
type fakeSigner struct {
	keys []string
}

func (f *fakeSigner) SignUpload(ctx context.Context, key, mimeType string, size int64) (string, error) {
	f.keys = append(f.keys, key)
	return "https://uploads.example.com/" + key, nil
}

// fakeIdentityProvider implements domain.IdentityProvider for tests.
type fakeIdentityProvider struct {
	signOutCalls int
}

func (f *fakeIdentityProvider) Resolve(ctx context.Context, jar domain.CookieJar) (*domain.Identity, error) {
	return nil, nil
}

func (f *fakeIdentityProvider) SignOut(ctx context.Context, jar domain.CookieJar) error {
	f.signOutCalls++
	return nil
}

func (f *fakeIdentityProvider) PatchMetadata(ctx context.Context, identityID string, patch map[string]any) error {
	return nil
}

// fixture bundles a router over fake repositories with per-test request
// contexts.
type fixture struct {
	events       *fakeEventRepo
	orgs         *fakeOrgRepo
	memberships  *fakeMembershipRepo
	sponsorships *fakeSponsorshipRepo
	media        *fakeMediaRepo
	users        *fakeUserRepo
	signer       *fakeSigner
	provider     *fakeIdentityProvider
	store        *domain.Store
	router       *rpc.Router
}

func newFixture() *fixture {
	f := &fixture{
		events:       newFakeEventRepo(),
		orgs:         newFakeOrgRepo(),
		memberships:  newFakeMembershipRepo(),
		sponsorships: newFakeSponsorshipRepo(),
		media:        newFakeMediaRepo(),
		users:        newFakeUserRepo(),
		signer:       &fakeSigner{},
		provider:     &fakeIdentityProvider{},
	}
	f.store = &domain.Store{
		Users:         f.users,
		Organizations: f.orgs,
		Memberships:   f.memberships,
		Events:        f.events,
		Sponsorships:  f.sponsorships,
		Media:         f.media,
	}
	f.router = rpc.NewRouter(testLogger())
	RegisterUserProcedures(f.router, f.provider)
	RegisterEventProcedures(f.router, 100)
	RegisterSponsorshipProcedures(f.router)
	RegisterMediaProcedures(f.router, f.signer, 25<<20)
	return f
}

func (f *fixture) anonymous() *rpc.Context {
	return &rpc.Context{State: rpc.AuthAnonymous, Store: f.store}
}

func (f *fixture) asUser(user *domain.User) *rpc.Context {
	return &rpc.Context{
		State:    rpc.AuthUser,
		Identity: &domain.Identity{ID: user.IdentityID, Email: user.Email},
		User:     user,
		Store:    f.store,
	}
}

func memberUser(id, orgID string) *domain.User {
	return &domain.User{ID: id, IdentityID: "identity-" + id, Email: id + "@example.com", EmailVerified: true, OrganizationID: &orgID}
}
