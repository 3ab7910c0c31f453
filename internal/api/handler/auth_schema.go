package handler

import "github.com/userhub/account-api/internal/core/domain"

// --- Request types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"       validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=100"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,max=100"`
}

type updateProfileRequest struct {
	Name  string `json:"name"  validate:"omitempty,min=1,max=255"`
	Email string `json:"email" validate:"omitempty,email"`
	// ProfileImage is a base64 data URL ("data:image/png;base64,....").
	ProfileImage string `json:"profileImage"`
}

type verifyPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// --- Response types ---

// userResponse is the public projection of a user record. Password hash
// and the one-time tokens never leave the service.
type userResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Verified     bool   `json:"verified"`
	ProfileImage string `json:"profileImage,omitempty"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Verified:     u.Verified,
		ProfileImage: u.ProfileImage,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Message      string       `json:"message"`
	User         userResponse `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type profileResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type verifyPasswordResponse struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}
