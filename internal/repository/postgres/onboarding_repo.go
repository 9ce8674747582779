package postgres

import (
	"context"
	"database/sql"
	"errors"

	"sponsorhub/internal/domain"
)

type onboardingRepository struct {
	DB *sql.DB
}

// NewOnboardingRepository returns a domain.OnboardingRepository implemented with Postgres.
func NewOnboardingRepository(db *sql.DB) domain.OnboardingRepository {
	return &onboardingRepository{DB: db}
}

func (r *onboardingRepository) Upsert(ctx context.Context, p *domain.OnboardingProgress) error {
	query := `
		INSERT INTO onboarding_progress (user_id, step, organization_type, category, organization_name, address_line, city, country, postal_code, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE
		SET step = EXCLUDED.step,
			organization_type = EXCLUDED.organization_type,
			category = EXCLUDED.category,
			organization_name = EXCLUDED.organization_name,
			address_line = EXCLUDED.address_line,
			city = EXCLUDED.city,
			country = EXCLUDED.country,
			postal_code = EXCLUDED.postal_code,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query,
		p.UserID, p.Step, p.OrganizationType, p.Category, p.OrganizationName,
		p.AddressLine, p.City, p.Country, p.PostalCode, p.UpdatedAt,
	)
	return err
}

func (r *onboardingRepository) GetByUserID(ctx context.Context, userID string) (*domain.OnboardingProgress, error) {
	query := `
		SELECT user_id, step, organization_type, category, organization_name, address_line, city, country, postal_code, updated_at
		FROM onboarding_progress
		WHERE user_id = $1
	`
	p := &domain.OnboardingProgress{}
	var typeNull, categoryNull, nameNull, addrNull, cityNull, countryNull, postalNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Step, &typeNull, &categoryNull, &nameNull,
		&addrNull, &cityNull, &countryNull, &postalNull, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if typeNull.Valid {
		t := domain.OrganizationType(typeNull.String)
		p.OrganizationType = &t
	}
	if categoryNull.Valid {
		p.Category = &categoryNull.String
	}
	if nameNull.Valid {
		p.OrganizationName = &nameNull.String
	}
	if addrNull.Valid {
		p.AddressLine = &addrNull.String
	}
	if cityNull.Valid {
		p.City = &cityNull.String
	}
	if countryNull.Valid {
		p.Country = &countryNull.String
	}
	if postalNull.Valid {
		p.PostalCode = &postalNull.String
	}
	return p, nil
}

func (r *onboardingRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM onboarding_progress WHERE user_id = $1`, userID)
	return err
}
