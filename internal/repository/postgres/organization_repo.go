package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"sponsorhub/internal/domain"
)

type organizationRepository struct {
	DB *sql.DB
}

// NewOrganizationRepository returns a domain.OrganizationRepository implemented with Postgres.
func NewOrganizationRepository(db *sql.DB) domain.OrganizationRepository {
	return &organizationRepository{DB: db}
}

// CreateWithOwner inserts the organization, the owner membership, and the
// user's organization link in one transaction. A crash mid-way must not
// leave an organization without an owner.
func (r *organizationRepository) CreateWithOwner(ctx context.Context, org *domain.Organization, ownerUserID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertOrg := `
		INSERT INTO organizations (name, type, category, address_line, city, country, postal_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, insertOrg,
		org.Name, org.Type, org.Category, org.AddressLine, org.City, org.Country, org.PostalCode,
		org.CreatedAt, org.UpdatedAt,
	).Scan(&org.ID)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}

	insertMember := `
		INSERT INTO organization_members (organization_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
	`
	if _, err := tx.ExecContext(ctx, insertMember, org.ID, ownerUserID, domain.MembershipRoleOwner); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("insert membership: %w", err)
	}

	linkUser := `UPDATE users SET organization_id = $1, updated_at = NOW() WHERE id = $2 AND organization_id IS NULL`
	result, err := tx.ExecContext(ctx, linkUser, org.ID, ownerUserID)
	if err != nil {
		return fmt.Errorf("link user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAlreadyMember
	}

	return tx.Commit()
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	query := `
		SELECT id, name, type, category, address_line, city, country, postal_code, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	org := &domain.Organization{}
	var addrNull, cityNull, countryNull, postalNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Type, &org.Category,
		&addrNull, &cityNull, &countryNull, &postalNull,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, err
	}
	org.AddressLine = addrNull.String
	org.City = cityNull.String
	org.Country = countryNull.String
	org.PostalCode = postalNull.String
	return org, nil
}
