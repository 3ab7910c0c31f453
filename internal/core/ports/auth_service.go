package ports

import (
	"context"

	"github.com/userhub/account-api/internal/core/domain"
)

// LoginResult bundles the outcome of a successful login.
type LoginResult struct {
	User         *domain.User
	Token        string
	RefreshToken string
}

// TokenPair is returned by a refresh-token exchange.
type TokenPair struct {
	Token        string
	RefreshToken string
}

// UpdateProfileInput carries profile changes. ImageData, when present, is
// a base64 data URL ("data:image/png;base64,....") whose decoded bytes are
// written to the image store.
type UpdateProfileInput struct {
	Name      string
	Email     string
	ImageData string
}

// AuthService is the orchestrator composing the credential store, token
// issuer, mail dispatch and the one-time token flows.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	VerifyEmail(ctx context.Context, email, token string) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error)
	VerifyPassword(ctx context.Context, userID, password string) (bool, error)
}
