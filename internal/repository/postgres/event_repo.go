package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sponsorhub/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns a domain.EventRepository implemented with Postgres.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `id, organization_id, name, description, venue, starts_at, ends_at, published, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (organization_id, name, description, venue, starts_at, ends_at, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.OrganizationID, e.Name, e.Description, e.Venue, e.StartsAt, e.EndsAt, e.Published,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func scanEvent(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, venueNull sql.NullString
	var endsNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.OrganizationID, &e.Name, &descNull, &venueNull,
		&e.StartsAt, &endsNull, &e.Published, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	if venueNull.Valid {
		e.Venue = &venueNull.String
	}
	if endsNull.Valid {
		e.EndsAt = &endsNull.Time
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, venue = $3, starts_at = $4, ends_at = $5, published = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Name, e.Description, e.Venue, e.StartsAt, e.EndsAt, e.Published, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *eventRepository) ListByOrganizationID(ctx context.Context, organizationID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organization_id = $1 ORDER BY starts_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// eventSortColumns maps the exported sort fields to real columns. Anything
// else is rejected before it can reach the query string.
var eventSortColumns = map[string]string{
	domain.EventSortDate:      "starts_at",
	domain.EventSortName:      "name",
	domain.EventSortCreatedAt: "created_at",
}

func (r *eventRepository) Search(ctx context.Context, params domain.EventSearchParams) ([]*domain.Event, int, error) {
	column, ok := eventSortColumns[params.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unknown sort field %q", domain.ErrInvalidInput, params.SortBy)
	}
	direction := "ASC"
	if params.SortOrder == "desc" {
		direction = "DESC"
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE published = TRUE`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE published = TRUE ORDER BY ` +
		column + ` ` + direction + `, id LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		var descNull, venueNull sql.NullString
		var endsNull sql.NullTime
		if err := rows.Scan(
			&e.ID, &e.OrganizationID, &e.Name, &descNull, &venueNull,
			&e.StartsAt, &endsNull, &e.Published, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if descNull.Valid {
			e.Description = &descNull.String
		}
		if venueNull.Valid {
			e.Venue = &venueNull.String
		}
		if endsNull.Valid {
			e.EndsAt = &endsNull.Time
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
