package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestVerificationCodeRepository_Replace(t *testing.T) {
	ctx := context.Background()
	expiresAt := time.Date(2025, 3, 1, 12, 15, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "deletes prior codes and inserts the new one atomically",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM email_verification_codes`).
					WithArgs("user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO email_verification_codes`).
					WithArgs("user-1", "hash-abc", expiresAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "insert failure rolls back the delete",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM email_verification_codes`).
					WithArgs("user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO email_verification_codes`).
					WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
		{
			name: "begin failure",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("connection lost"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)

			repo := NewVerificationCodeRepository(db)
			err = repo.Replace(ctx, "user-1", "hash-abc", expiresAt)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVerificationCodeRepository_Consume(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		codeHash     string
		mock         func(mock sqlmock.Sqlmock)
		wantConsumed bool
		wantErr      bool
	}{
		{
			name:     "matching unexpired code is consumed",
			codeHash: "hash-abc",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM email_verification_codes`).
					WithArgs("user-1", "hash-abc").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantConsumed: true,
		},
		{
			name:     "no matching row means not consumed",
			codeHash: "hash-wrong",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM email_verification_codes`).
					WithArgs("user-1", "hash-wrong").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantConsumed: false,
		},
		{
			name:     "db error",
			codeHash: "hash-abc",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM email_verification_codes`).
					WillReturnError(errors.New("connection lost"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)

			repo := NewVerificationCodeRepository(db)
			consumed, err := repo.Consume(ctx, "user-1", tt.codeHash)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantConsumed, consumed)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
