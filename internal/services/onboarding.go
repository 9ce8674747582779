package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"sponsorhub/internal/domain"
)

const verificationCodeDigits = 6

var verificationCodeRegex = regexp.MustCompile(`^\d{6}$`)

type onboardingService struct {
	store        *domain.Store
	provider     domain.IdentityProvider
	emailService domain.EmailService
	codeTTL      time.Duration
	logger       *slog.Logger
}

// NewOnboardingService creates an OnboardingService over the given store,
// identity provider, and email service.
func NewOnboardingService(store *domain.Store, provider domain.IdentityProvider, emailService domain.EmailService, codeTTL time.Duration, logger *slog.Logger) domain.OnboardingService {
	return &onboardingService{
		store:        store,
		provider:     provider,
		emailService: emailService,
		codeTTL:      codeTTL,
		logger:       logger,
	}
}

// Start resolves or creates the internal user for the identity. When the
// user is created and the email is not yet verified, a first verification
// code is issued immediately so the client does not need a second call.
func (s *onboardingService) Start(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	user, err := s.store.Users.GetByIdentityID(ctx, identity.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	now := time.Now()
	user = domain.NewUser(identity.ID, strings.ToLower(identity.Email), firstName(identity), lastName(identity), now, now)
	user.EmailVerified = identity.EmailVerified
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			// Concurrent start for the same identity; the other call won.
			return s.store.Users.GetByIdentityID(ctx, identity.ID)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if !user.EmailVerified {
		if err := s.RequestVerificationCode(ctx, user); err != nil {
			s.logger.Warn("failed to issue initial verification code", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

// State derives the account-setup stage from the resolved identity and user.
func (s *onboardingService) State(identity *domain.Identity, user *domain.User) domain.OnboardingState {
	switch {
	case identity == nil:
		return domain.OnboardingStateUnauthenticated
	case user == nil || !user.EmailVerified:
		return domain.OnboardingStateUnverified
	case user.OrganizationID == nil:
		return domain.OnboardingStatePendingOnboarding
	default:
		return domain.OnboardingStateOnboarded
	}
}

// RequestVerificationCode issues a fresh code for the user, replacing any
// live one, and emails it. Only the hash of the code is stored.
func (s *onboardingService) RequestVerificationCode(ctx context.Context, user *domain.User) error {
	code, err := generateVerificationCode(verificationCodeDigits)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	codeHash := hashVerificationCode(code)
	expiresAt := time.Now().Add(s.codeTTL)
	if err := s.store.VerificationCodes.Replace(ctx, user.ID, codeHash, expiresAt); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	if s.emailService != nil {
		data := &domain.VerificationCodeEmailData{
			Email:            user.Email,
			Name:             user.Name,
			Code:             code,
			ExpiresInMinutes: int(s.codeTTL.Minutes()),
		}
		if err := s.emailService.SendVerificationCode(ctx, data); err != nil {
			return fmt.Errorf("failed to send verification code email: %w", err)
		}
	}
	return nil
}

// VerifyEmailWithCode consumes the code and marks the email verified in both
// the identity provider and the local user record. The provider patch comes
// first so the local flag is never ahead of the provider's.
func (s *onboardingService) VerifyEmailWithCode(ctx context.Context, user *domain.User, code string) error {
	code = strings.TrimSpace(code)
	if !verificationCodeRegex.MatchString(code) {
		return domain.ErrCodeInvalid
	}
	consumed, err := s.store.VerificationCodes.Consume(ctx, user.ID, hashVerificationCode(code))
	if err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}
	if !consumed {
		return domain.ErrCodeInvalid
	}
	if err := s.provider.PatchMetadata(ctx, user.IdentityID, map[string]any{"email_verified": true}); err != nil {
		return fmt.Errorf("failed to update identity provider: %w", err)
	}
	if err := s.store.Users.SetEmailVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

// SaveStep merges the non-nil fields of patch into the user's saved progress
// and records the step name.
func (s *onboardingService) SaveStep(ctx context.Context, userID string, patch *domain.OnboardingProgress) error {
	if patch.Step != domain.OnboardingStepOrganizationType && patch.Step != domain.OnboardingStepOrganizationProfile {
		return fmt.Errorf("%w: unknown step %q", domain.ErrInvalidInput, patch.Step)
	}
	if patch.OrganizationType != nil && !patch.OrganizationType.Valid() {
		return fmt.Errorf("%w: unknown organization type %q", domain.ErrInvalidInput, *patch.OrganizationType)
	}

	progress, err := s.store.Onboarding.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	if progress == nil {
		progress = &domain.OnboardingProgress{UserID: userID}
	}
	progress.Step = patch.Step
	if patch.OrganizationType != nil {
		progress.OrganizationType = patch.OrganizationType
	}
	if patch.Category != nil {
		progress.Category = patch.Category
	}
	if patch.OrganizationName != nil {
		progress.OrganizationName = patch.OrganizationName
	}
	if patch.AddressLine != nil {
		progress.AddressLine = patch.AddressLine
	}
	if patch.City != nil {
		progress.City = patch.City
	}
	if patch.Country != nil {
		progress.Country = patch.Country
	}
	if patch.PostalCode != nil {
		progress.PostalCode = patch.PostalCode
	}
	progress.UpdatedAt = time.Now()
	if err := s.store.Onboarding.Upsert(ctx, progress); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Progress returns the user's saved progress, or an empty record when none
// has been saved yet.
func (s *onboardingService) Progress(ctx context.Context, userID string) (*domain.OnboardingProgress, error) {
	progress, err := s.store.Onboarding.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if progress == nil {
		progress = &domain.OnboardingProgress{UserID: userID, Step: domain.OnboardingStepOrganizationType}
	}
	return progress, nil
}

// Complete turns the saved progress into an organization with the user as
// owner. Saved progress is cleared best-effort afterwards; a leftover row is
// harmless because the org link now gates everything.
func (s *onboardingService) Complete(ctx context.Context, user *domain.User) (*domain.Organization, error) {
	if user.OrganizationID != nil {
		return nil, domain.ErrAlreadyOnboarded
	}
	progress, err := s.store.Onboarding.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if progress == nil || progress.OrganizationType == nil || progress.Category == nil || progress.OrganizationName == nil {
		return nil, domain.ErrOnboardingIncomplete
	}

	now := time.Now()
	org := &domain.Organization{
		Name:      *progress.OrganizationName,
		Type:      *progress.OrganizationType,
		Category:  *progress.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if progress.AddressLine != nil {
		org.AddressLine = *progress.AddressLine
	}
	if progress.City != nil {
		org.City = *progress.City
	}
	if progress.Country != nil {
		org.Country = *progress.Country
	}
	if progress.PostalCode != nil {
		org.PostalCode = *progress.PostalCode
	}
	if err := s.store.Organizations.CreateWithOwner(ctx, org, user.ID); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	if err := s.store.Onboarding.DeleteByUserID(ctx, user.ID); err != nil {
		s.logger.Warn("failed to clear onboarding progress", "user_id", user.ID, "error", err)
	}
	return org, nil
}

func firstName(identity *domain.Identity) string {
	if v, ok := identity.Metadata["name"].(string); ok {
		return v
	}
	return ""
}

func lastName(identity *domain.Identity) string {
	if v, ok := identity.Metadata["last_name"].(string); ok {
		return v
	}
	return ""
}

func generateVerificationCode(digits int) (string, error) {
	// rand.Int keeps the digit distribution uniform; a byte mod 10 would not.
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

func hashVerificationCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
