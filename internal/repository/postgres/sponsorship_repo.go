package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"sponsorhub/internal/domain"
)

type sponsorshipRepository struct {
	DB *sql.DB
}

// NewSponsorshipRepository returns a domain.SponsorshipRepository implemented with Postgres.
func NewSponsorshipRepository(db *sql.DB) domain.SponsorshipRepository {
	return &sponsorshipRepository{DB: db}
}

func (r *sponsorshipRepository) Create(ctx context.Context, req *domain.SponsorshipRequest) error {
	query := `
		INSERT INTO sponsorship_requests (event_id, organization_id, status, amount_cents, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		req.EventID, req.OrganizationID, req.Status, req.AmountCents, req.Note,
		req.CreatedAt, req.UpdatedAt,
	).Scan(&req.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateSponsorship
		}
		return err
	}
	return nil
}

func (r *sponsorshipRepository) GetByID(ctx context.Context, id string) (*domain.SponsorshipRequest, error) {
	query := `
		SELECT id, event_id, organization_id, status, amount_cents, note, created_at, updated_at
		FROM sponsorship_requests
		WHERE id = $1
	`
	return scanSponsorship(r.DB.QueryRowContext(ctx, query, id))
}

func scanSponsorship(row *sql.Row) (*domain.SponsorshipRequest, error) {
	s := &domain.SponsorshipRequest{}
	var amountNull sql.NullInt64
	var noteNull sql.NullString
	err := row.Scan(
		&s.ID, &s.EventID, &s.OrganizationID, &s.Status,
		&amountNull, &noteNull, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSponsorshipNotFound
		}
		return nil, err
	}
	if amountNull.Valid {
		s.AmountCents = &amountNull.Int64
	}
	if noteNull.Valid {
		s.Note = &noteNull.String
	}
	return s, nil
}

// ListVisibleToOrganization returns requests where the organization is the
// sponsor or hosts the referenced event. Visibility is decided here, in one
// place, by the join.
func (r *sponsorshipRepository) ListVisibleToOrganization(ctx context.Context, organizationID string) ([]*domain.SponsorshipRequest, error) {
	query := `
		SELECT s.id, s.event_id, s.organization_id, s.status, s.amount_cents, s.note, s.created_at, s.updated_at
		FROM sponsorship_requests s
		INNER JOIN events e ON e.id = s.event_id
		WHERE s.organization_id = $1 OR e.organization_id = $1
		ORDER BY s.created_at DESC, s.id
	`
	rows, err := r.DB.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	requests := make([]*domain.SponsorshipRequest, 0)
	for rows.Next() {
		s := &domain.SponsorshipRequest{}
		var amountNull sql.NullInt64
		var noteNull sql.NullString
		if err := rows.Scan(
			&s.ID, &s.EventID, &s.OrganizationID, &s.Status,
			&amountNull, &noteNull, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if amountNull.Valid {
			s.AmountCents = &amountNull.Int64
		}
		if noteNull.Valid {
			s.Note = &noteNull.String
		}
		requests = append(requests, s)
	}
	return requests, rows.Err()
}

func (r *sponsorshipRepository) UpdateStatus(ctx context.Context, id string, status domain.SponsorshipStatus) (*domain.SponsorshipRequest, error) {
	query := `
		UPDATE sponsorship_requests
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, event_id, organization_id, status, amount_cents, note, created_at, updated_at
	`
	return scanSponsorship(r.DB.QueryRowContext(ctx, query, id, status))
}
