package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wander-api/wander/internal/domain/entity"
)

// ErrNotFound is returned by lookups that match no visible record.
// Implementations must not distinguish "absent" from "soft-deleted".
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned by Create when the email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository is the credential store contract. All read methods apply an
// explicit active-only predicate: soft-deleted users are invisible to every
// lookup here, which is part of the contract rather than hidden middleware.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// GetByResetTokenHash matches only records whose reset token hash equals
	// hash and whose reset expiry is still in the future.
	GetByResetTokenHash(ctx context.Context, hash string) (*entity.User, error)

	// Update persists profile fields (name, email, photo, role). It never
	// touches password or reset columns.
	Update(ctx context.Context, u *entity.User) error

	// UpdatePassword sets the password hash and password_changed_at, and
	// clears both reset-token columns, in a single atomic statement.
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error

	// SetResetToken stores the reset token hash and its expiry together.
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error

	// ClearResetToken removes both reset-token columns together. Used to roll
	// back when the reset email cannot be delivered.
	ClearResetToken(ctx context.Context, id string) error

	// Deactivate soft-deletes the record by clearing the active flag.
	Deactivate(ctx context.Context, id string) error

	List(ctx context.Context) ([]*entity.User, error)
}
