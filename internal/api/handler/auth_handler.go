package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/userhub/account-api/internal/api/metrics"
	"github.com/userhub/account-api/internal/core/domain"
	"github.com/userhub/account-api/internal/core/ports"
)

// AuthHandler exposes the account lifecycle endpoints. The template
// renderer is needed for the one HTML response in the API: the
// verification-failure page reached directly from an emailed link.
type AuthHandler struct {
	authService ports.AuthService
	templates   ports.TemplateRenderer
	frontendURL string
}

func NewAuthHandler(authService ports.AuthService, templates ports.TemplateRenderer, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		templates:   templates,
		frontendURL: frontendURL,
	}
}

// Register creates a new unverified account and sends the verification
// email.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password); err != nil {
		return err
	}
	metrics.RegistrationsTotal.Inc()
	metrics.EmailsSentTotal.WithLabelValues("verification").Inc()

	return c.JSON(http.StatusCreated, messageResponse{
		Message: "Signed up successfully. Please check your email for verification.",
	})
}

// Login authenticates and returns the access/refresh token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotVerified):
			metrics.LoginsTotal.WithLabelValues("unverified").Inc()
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Message:      "Login successful",
		User:         toUserResponse(result.User),
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
	})
}

// Refresh exchanges a valid refresh token for a new token pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  refreshResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/refresh-token [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, refreshResponse{
		Token:        pair.Token,
		RefreshToken: pair.RefreshToken,
	})
}

// VerifyEmail redeems an emailed verification token. On success the user
// lands on the frontend login page; on failure they get a human-readable
// page with a resend link, since this endpoint is reached from a mail
// client rather than an API client.
//
// @Summary      Verify email address
// @Tags         auth
// @Produce      html
// @Param        token  query  string  true  "Verification token"
// @Param        email  query  string  true  "Account email"
// @Success      302
// @Failure      400  {string}  string  "HTML failure page"
// @Router       /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	email := c.QueryParam("email")
	token := c.QueryParam("token")

	err := h.authService.VerifyEmail(c.Request().Context(), email, token)
	if err == nil {
		return c.Redirect(http.StatusFound, h.frontendURL+"/login")
	}
	if !errors.Is(err, domain.ErrVerificationNotFound) {
		return err
	}

	resendURL := fmt.Sprintf("%s/resend-verification?email=%s", h.frontendURL, url.QueryEscape(email))
	page, rerr := h.templates.Render("verification-failed", map[string]string{
		"resendUrl":   resendURL,
		"currentYear": fmt.Sprint(time.Now().Year()),
	})
	if rerr != nil {
		return rerr
	}
	return c.HTML(http.StatusBadRequest, page)
}

// ResendVerification re-issues the verification token for an unverified
// account.
//
// @Summary      Resend verification email
// @Tags         auth
// @Produce      json
// @Param        email  query     string  true  "Account email"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /auth/resend-verification-email [get]
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	if err := h.authService.ResendVerification(c.Request().Context(), email); err != nil {
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues("verification").Inc()

	return c.JSON(http.StatusOK, messageResponse{Message: "Verification email resent"})
}

// ForgotPassword issues a time-limited password reset token and emails
// the reset link.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	metrics.EmailsSentTotal.WithLabelValues("password-reset").Inc()

	return c.JSON(http.StatusOK, messageResponse{Message: "Password reset email sent"})
}

// ResetPassword redeems a reset token and sets the new password.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Email, req.Token, req.NewPassword); err != nil {
		return err
	}
	metrics.PasswordResetsTotal.Inc()

	return c.JSON(http.StatusOK, messageResponse{Message: "Password reset successful"})
}

// ChangePassword replaces the password of the authenticated user after
// re-checking the current one.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/change-password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password changed successfully"})
}

// UpdateProfile applies name/email/image changes for the authenticated
// user. Accepts either JSON with the image embedded as a base64 data URL
// or a multipart form with a profileImage file part.
//
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile changes"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		req.Name = c.FormValue("name")
		req.Email = c.FormValue("email")
		if fh, ferr := c.FormFile("profileImage"); ferr == nil {
			imageData, rerr := formImageDataURL(fh)
			if rerr != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid image upload")
			}
			req.ProfileImage = imageData
		}
	} else if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), userID, ports.UpdateProfileInput{
		Name:      req.Name,
		Email:     req.Email,
		ImageData: req.ProfileImage,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		Message: "Profile updated successfully",
		User:    toUserResponse(user),
	})
}

// VerifyPassword is the read-only re-authentication check used before
// sensitive client actions.
//
// @Summary      Verify current password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      verifyPasswordRequest  true  "Password to check"
// @Success      200   {object}  verifyPasswordResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/verify-password [post]
func (h *AuthHandler) VerifyPassword(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req verifyPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	valid, err := h.authService.VerifyPassword(c.Request().Context(), userID, req.Password)
	if err != nil {
		return err
	}

	msg := "Password is valid"
	if !valid {
		msg = "Password is invalid"
	}
	return c.JSON(http.StatusOK, verifyPasswordResponse{IsValid: valid, Message: msg})
}

// formImageDataURL reads an uploaded image part and re-encodes it as the
// base64 data URL form the service consumes, so both upload styles share
// one code path.
func formImageDataURL(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
