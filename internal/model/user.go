package model

import (
	"database/sql"
	"time"
)

// OAuth provider names as stored in the users table.
const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// User represents a user account in the database.
type User struct {
	ID              int64
	Email           string
	PasswordHash    string
	CreatedViaOAuth bool
	OAuthProvider   sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest starts the code-based reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// VerifyResetCodeRequest exchanges an emailed code for a reset token.
type VerifyResetCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResetPasswordRequest consumes a reset token to set a new password.
type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

// ChangePasswordRequest changes the password of a known account.
type ChangePasswordRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	CreatedViaOAuth bool      `json:"createdViaOAuth"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// LoginResponse carries the session token issued on login.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// ForgotPasswordResponse is success-shaped whether or not the account
// exists. Code and DevMode are only populated when mail delivery is not
// configured.
type ForgotPasswordResponse struct {
	Message   string `json:"message"`
	ExpiresIn string `json:"expiresIn"`
	Code      string `json:"code,omitempty"`
	DevMode   bool   `json:"devMode,omitempty"`
}

// VerifyResetCodeResponse carries the reset token minted after a code check.
type VerifyResetCodeResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

// MessageResponse is a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}
