package domain

import (
	"context"
	"errors"
	"time"
)

// ErrCodeInvalid is returned when a verification code is malformed, expired,
// unknown, or already consumed.
var ErrCodeInvalid = errors.New("invalid or expired code")

// EmailVerificationCode is a one-time 6-digit code bound to a user. At most
// one live code exists per user; issuing a new one replaces the old.
type EmailVerificationCode struct {
	ID        string
	UserID    string
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// VerificationCodeRepository defines the interface for one-time code storage.
type VerificationCodeRepository interface {
	// Replace deletes any live codes for the user and inserts the new one as
	// one atomic unit.
	Replace(ctx context.Context, userID, codeHash string, expiresAt time.Time) error
	// Consume deletes the matching unexpired code. Exactly one concurrent
	// caller may observe consumed=true for a given code.
	Consume(ctx context.Context, userID, codeHash string) (consumed bool, err error)
}
