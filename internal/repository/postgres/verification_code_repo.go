package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sponsorhub/internal/domain"
)

type verificationCodeRepository struct {
	DB *sql.DB
}

// NewVerificationCodeRepository returns a domain.VerificationCodeRepository implemented with Postgres.
func NewVerificationCodeRepository(db *sql.DB) domain.VerificationCodeRepository {
	return &verificationCodeRepository{DB: db}
}

// Replace runs the delete and the insert in one transaction so a crash in
// between cannot leave two live codes for the same user.
func (r *verificationCodeRepository) Replace(ctx context.Context, userID, codeHash string, expiresAt time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM email_verification_codes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete prior codes: %w", err)
	}
	insert := `
		INSERT INTO email_verification_codes (user_id, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	if _, err := tx.ExecContext(ctx, insert, userID, codeHash, expiresAt); err != nil {
		return fmt.Errorf("insert code: %w", err)
	}
	return tx.Commit()
}

// Consume deletes the matching unexpired code in a single statement, so two
// racing verification attempts cannot both win.
func (r *verificationCodeRepository) Consume(ctx context.Context, userID, codeHash string) (bool, error) {
	query := `
		DELETE FROM email_verification_codes
		WHERE user_id = $1 AND code_hash = $2 AND expires_at > NOW()
	`
	result, err := r.DB.ExecContext(ctx, query, userID, codeHash)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
