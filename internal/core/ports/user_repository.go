package ports

import (
	"context"
	"time"

	"github.com/userhub/account-api/internal/core/domain"
)

// UserUpdate carries the mutable profile fields for a partial update.
// Nil pointers leave the stored value untouched.
type UserUpdate struct {
	Name         *string
	Email        *string
	Role         *string
	Verified     *bool
	ProfileImage *string
}

// UserRepository defines the persistence contract for user records.
// All lookups exclude soft-deleted records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByVerification matches a user on both email and the stored
	// verification token.
	FindByVerification(ctx context.Context, email, token string) (*domain.User, error)

	// FindByResetToken matches email + reset token with an expiry strictly
	// after now.
	FindByResetToken(ctx context.Context, email, token string, now time.Time) (*domain.User, error)

	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	SetVerificationToken(ctx context.Context, id, token string) error

	// SetVerified marks the account verified and clears the verification
	// token, making it single-use.
	SetVerified(ctx context.Context, id string) error

	SetResetToken(ctx context.Context, id, token string, expires time.Time) error

	// ResetPassword replaces the password hash and clears the reset token
	// and its expiry in one write.
	ResetPassword(ctx context.Context, id, passwordHash string) error

	SetPassword(ctx context.Context, id, passwordHash string) error
	SetRefreshToken(ctx context.Context, id, token string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, page, limit int) ([]*domain.User, int64, error)
}
