package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
)

const (
	oneTimeTokenBytes = 32
	resetTokenTTL     = time.Hour

	mailKindVerification = "verification"
	mailKindReset        = "password-reset"
)

// SendLimiter throttles outgoing mail per recipient (Redis-backed).
type SendLimiter interface {
	Allow(ctx context.Context, kind, email string) (bool, error)
}

// AuthConfig carries the URLs embedded into outgoing emails.
type AuthConfig struct {
	// BackendURL is the public base URL of this API, used for the email
	// verification redemption link.
	BackendURL string
	// FrontendURL is the web client base URL, used for password-reset and
	// post-verification redirects.
	FrontendURL string
}

// AuthService composes the credential store, token issuer, mail dispatch
// and the one-time token flows into the account lifecycle operations.
type AuthService struct {
	repo      ports.UserRepository
	tokens    ports.TokenIssuer
	mailer    ports.Mailer
	templates ports.TemplateRenderer
	images    ports.ImageStore
	limiter   SendLimiter
	cfg       AuthConfig
	log       zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	tokens ports.TokenIssuer,
	mailer ports.Mailer,
	templates ports.TemplateRenderer,
	images ports.ImageStore,
	limiter SendLimiter,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		mailer:    mailer,
		templates: templates,
		images:    images,
		limiter:   limiter,
		cfg:       cfg,
		log:       log,
	}
}

// Register creates an unverified account and dispatches the verification
// email. The caller is not logged in; a generic success message is all the
// client gets back.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The uniqueness index is the arbiter under concurrent registrations;
	// the lookup above only gives a friendlier fast path.
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.issueVerification(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// Login authenticates by email and password and issues an access/refresh
// token pair. Missing users and wrong passwords collapse to the same
// generic error; unverified accounts are reported distinctly so the client
// can prompt for re-verification.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Verified {
		return nil, domain.ErrNotVerified
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}

	return &ports.LoginResult{User: user, Token: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new token pair, rotating
// the stored refresh token. A token that verifies but does not match the
// persisted one has been superseded and is rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if user.RefreshToken != refreshToken {
		return nil, domain.ErrTokenInvalid
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}

	return &ports.TokenPair{Token: access, RefreshToken: refresh}, nil
}

// VerifyEmail redeems a verification token. The lookup matches email and
// token together; redemption clears the token so it cannot be replayed.
func (s *AuthService) VerifyEmail(ctx context.Context, email, token string) error {
	if email == "" || token == "" {
		return domain.ErrVerificationNotFound
	}

	user, err := s.repo.FindByVerification(ctx, email, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrVerificationNotFound
		}
		return err
	}
	return s.repo.SetVerified(ctx, user.ID)
}

// ResendVerification issues a fresh verification token for an unverified
// account, subject to the per-recipient send cooldown.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified {
		return domain.ErrAlreadyVerified
	}

	if err := s.checkSendLimit(ctx, mailKindVerification, email); err != nil {
		return err
	}
	return s.issueVerification(ctx, user)
}

// ForgotPassword issues a time-limited reset token and emails the
// redemption link. Unknown emails are reported as not found.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.checkSendLimit(ctx, mailKindReset, email); err != nil {
		return err
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	expires := time.Now().UTC().Add(resetTokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		s.cfg.FrontendURL, token, url.QueryEscape(user.Email))
	body, err := s.templates.Render(mailKindReset, map[string]string{
		"resetUrl":    resetURL,
		"currentYear": fmt.Sprint(time.Now().Year()),
	})
	if err != nil {
		return err
	}
	return s.dispatch(ctx, user.Email, "Password Reset - Account API", body)
}

// ResetPassword redeems a reset token. Wrong token, expired token and
// unknown email all collapse to the same outcome so the endpoint cannot be
// used as a token-guessing oracle.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	if email == "" || token == "" {
		return domain.ErrResetInvalid
	}

	user, err := s.repo.FindByResetToken(ctx, email, token, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrResetInvalid
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.ResetPassword(ctx, user.ID, string(hash))
}

// ChangePassword replaces the password after re-checking the current one.
// On a mismatch nothing is written.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, user.ID, string(hash))
}

// UpdateProfile applies name/email changes and, when image data is
// present, decodes it and writes it to the image store, recording the
// derived URL on the user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	upd := ports.UserUpdate{}
	if in.Name != "" {
		upd.Name = &in.Name
	}
	if in.Email != "" && in.Email != user.Email {
		if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
			return nil, domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		upd.Email = &in.Email
	}

	if in.ImageData != "" {
		imageURL, err := s.storeProfileImage(ctx, userID, in.ImageData)
		if err != nil {
			return nil, err
		}
		upd.ProfileImage = &imageURL
	}

	return s.repo.Update(ctx, userID, upd)
}

// VerifyPassword is the read-only re-authentication check used before
// sensitive actions. It never mutates state.
func (s *AuthService) VerifyPassword(ctx context.Context, userID, password string) (bool, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil, nil
}

func (s *AuthService) issueVerification(ctx context.Context, user *domain.User) error {
	token, err := randomToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetVerificationToken(ctx, user.ID, token); err != nil {
		return err
	}

	verifyURL := fmt.Sprintf("%s/auth/verify-email?token=%s&email=%s",
		s.cfg.BackendURL, token, url.QueryEscape(user.Email))
	body, err := s.templates.Render(mailKindVerification, map[string]string{
		"verificationUrl": verifyURL,
		"currentYear":     fmt.Sprint(time.Now().Year()),
	})
	if err != nil {
		return err
	}
	return s.dispatch(ctx, user.Email, "Verify Your Email - Account API", body)
}

// dispatch sends synchronously. A persisted token with a failed send is
// still redeemable, so the failure is surfaced for the caller to retry
// rather than dropped.
func (s *AuthService) dispatch(ctx context.Context, to, subject, body string) error {
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("mail dispatch failed")
		return fmt.Errorf("%w: %v", domain.ErrMailDispatch, err)
	}
	return nil
}

func (s *AuthService) checkSendLimit(ctx context.Context, kind, email string) error {
	ok, err := s.limiter.Allow(ctx, kind, email)
	if err != nil {
		// A broken limiter should not block account recovery.
		s.log.Warn().Err(err).Str("kind", kind).Msg("send limiter unavailable, allowing")
		return nil
	}
	if !ok {
		return domain.ErrSendLimit
	}
	return nil
}

// storeProfileImage decodes a base64 data URL and writes the bytes to the
// content store, returning the public URL.
func (s *AuthService) storeProfileImage(ctx context.Context, userID, data string) (string, error) {
	payload := data
	contentType := "image/png"
	if idx := strings.Index(data, ";base64,"); idx >= 0 {
		contentType = strings.TrimPrefix(data[:idx], "data:")
		payload = data[idx+len(";base64,"):]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", domain.ErrInvalidImage
	}

	key := fmt.Sprintf("profiles/%d-%s.png", time.Now().UnixMilli(), userID)
	return s.images.Put(ctx, key, contentType, raw)
}

// randomToken returns a 32-byte cryptographically random token, hex
// encoded.
func randomToken() (string, error) {
	buf := make([]byte, oneTimeTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
