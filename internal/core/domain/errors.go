package domain

import "errors"

// Sentinel errors returned by services and repositories. The HTTP layer
// maps each of these to a status code and envelope in one place
// (internal/api/error_handler.go).
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email is already in use")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrNotVerified          = errors.New("please verify your email before log in")
	ErrWrongPassword        = errors.New("current password is incorrect")
	ErrAlreadyVerified      = errors.New("account is already verified")
	ErrVerificationNotFound = errors.New("verification token not found")
	ErrResetInvalid         = errors.New("invalid or expired token")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrForbidden            = errors.New("access forbidden")
	ErrInvalidImage         = errors.New("invalid image data")
	ErrMailDispatch         = errors.New("error sending email")
	ErrSendLimit            = errors.New("too many requests, try again later")
)
