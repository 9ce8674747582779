package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"sponsorhub/internal/domain"
)

type membershipRepository struct {
	DB *sql.DB
}

// NewMembershipRepository returns a domain.MembershipRepository implemented with Postgres.
func NewMembershipRepository(db *sql.DB) domain.MembershipRepository {
	return &membershipRepository{DB: db}
}

func (r *membershipRepository) GetByUserAndOrganization(ctx context.Context, userID, organizationID string) (*domain.Membership, error) {
	query := `
		SELECT organization_id, user_id, role, joined_at
		FROM organization_members
		WHERE user_id = $1 AND organization_id = $2
	`
	m := &domain.Membership{}
	err := r.DB.QueryRowContext(ctx, query, userID, organizationID).Scan(
		&m.OrganizationID, &m.UserID, &m.Role, &m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *membershipRepository) ListByOrganizationID(ctx context.Context, organizationID string) ([]*domain.Membership, error) {
	query := `
		SELECT organization_id, user_id, role, joined_at
		FROM organization_members
		WHERE organization_id = $1
		ORDER BY joined_at, user_id
	`
	rows, err := r.DB.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]*domain.Membership, 0)
	for rows.Next() {
		m := &domain.Membership{}
		if err := rows.Scan(&m.OrganizationID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *membershipRepository) Add(ctx context.Context, organizationID, userID, role string) error {
	query := `
		INSERT INTO organization_members (organization_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.DB.ExecContext(ctx, query, organizationID, userID, role)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrAlreadyMember
		}
		return err
	}
	return nil
}
