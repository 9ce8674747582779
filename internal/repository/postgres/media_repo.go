package postgres

import (
	"context"
	"database/sql"
	"errors"

	"sponsorhub/internal/domain"
)

type mediaRepository struct {
	DB *sql.DB
}

// NewMediaRepository returns a domain.MediaRepository implemented with Postgres.
func NewMediaRepository(db *sql.DB) domain.MediaRepository {
	return &mediaRepository{DB: db}
}

func (r *mediaRepository) Create(ctx context.Context, m *domain.Media) error {
	query := `
		INSERT INTO media (event_id, mime_type, file_size, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, m.EventID, m.MimeType, m.FileSize, m.StorageKey, m.CreatedAt).Scan(&m.ID)
}

func (r *mediaRepository) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	query := `
		SELECT id, event_id, mime_type, file_size, storage_key, created_at
		FROM media
		WHERE id = $1
	`
	m := &domain.Media{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.EventID, &m.MimeType, &m.FileSize, &m.StorageKey, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMediaNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *mediaRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Media, error) {
	query := `
		SELECT id, event_id, mime_type, file_size, storage_key, created_at
		FROM media
		WHERE event_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	media := make([]*domain.Media, 0)
	for rows.Next() {
		m := &domain.Media{}
		if err := rows.Scan(&m.ID, &m.EventID, &m.MimeType, &m.FileSize, &m.StorageKey, &m.CreatedAt); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (r *mediaRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMediaNotFound
	}
	return nil
}
