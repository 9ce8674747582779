package domain

// Store bundles the repositories behind the domain store boundary. A handle
// to it travels inside each request context; handler code never reaches a
// process-wide database value directly.
type Store struct {
	Users             UserRepository
	Organizations     OrganizationRepository
	Memberships       MembershipRepository
	Events            EventRepository
	Sponsorships      SponsorshipRepository
	Media             MediaRepository
	VerificationCodes VerificationCodeRepository
	Onboarding        OnboardingRepository
}
