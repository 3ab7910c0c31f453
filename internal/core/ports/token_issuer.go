package ports

import "github.com/userhub/account-api/internal/core/domain"

// AccessClaims is the decoded identity carried by an access token.
type AccessClaims struct {
	UserID string
	Email  string
	Role   string
}

// TokenIssuer mints and verifies the two token kinds: short-lived access
// tokens (identity + role, stateless) and longer-lived refresh tokens
// (user id only, persisted on the user record).
//
// Verification failures distinguish domain.ErrTokenExpired from
// domain.ErrTokenInvalid so callers can tell a stale session from a
// tampered token.
type TokenIssuer interface {
	IssueAccess(user *domain.User) (string, error)
	IssueRefresh(user *domain.User) (string, error)
	VerifyAccess(token string) (*AccessClaims, error)
	VerifyRefresh(token string) (string, error)
}
