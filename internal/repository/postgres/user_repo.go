package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"sponsorhub/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns a domain.UserRepository implemented with Postgres.
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (identity_id, email, name, last_name, email_verified, flags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		u.IdentityID, u.Email, u.Name, u.LastName, u.EmailVerified, pq.Array(u.Flags), u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_identity_id_key" {
				return domain.ErrDuplicateUser
			}
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, identity_id, email, name, last_name, organization_id, email_verified, flags, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.DB.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByIdentityID(ctx context.Context, identityID string) (*domain.User, error) {
	query := `
		SELECT id, identity_id, email, name, last_name, organization_id, email_verified, flags, created_at, updated_at
		FROM users
		WHERE identity_id = $1
	`
	return r.scanUser(r.DB.QueryRowContext(ctx, query, identityID))
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	var orgNull sql.NullString
	err := row.Scan(
		&u.ID, &u.IdentityID, &u.Email, &u.Name, &u.LastName,
		&orgNull, &u.EmailVerified, pq.Array(&u.Flags), &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if orgNull.Valid {
		u.OrganizationID = &orgNull.String
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET name = $1, last_name = $2, email = $3, flags = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.DB.ExecContext(ctx, query, u.Name, u.LastName, u.Email, pq.Array(u.Flags), u.UpdatedAt, u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetEmailVerified(ctx context.Context, id string) error {
	query := `UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error) {
	query := `
		SELECT user_id, locale, email_notifications
		FROM user_settings
		WHERE user_id = $1
	`
	s := &domain.UserSettings{}
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&s.UserID, &s.Locale, &s.EmailNotifications)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultUserSettings(userID), nil
		}
		return nil, err
	}
	return s, nil
}
