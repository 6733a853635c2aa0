package service

import (
	"context"
	"errors"
	"time"

	"github.com/cinehome/cinehome-go/internal/crypto"
	"github.com/cinehome/cinehome-go/internal/model"
	"github.com/cinehome/cinehome-go/internal/repository"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrAllFieldsRequired  = errors.New("all fields are required")
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrSamePassword       = errors.New("new password must be different from the current password")
)

// UserStore is the credential-store contract the services depend on. It is
// implemented by repository.UserRepository and by in-memory fakes in tests.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// AuthService handles registration, login and password changes.
type AuthService struct {
	users         UserStore
	jwtSecret     string
	sessionExpiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, secret string, sessionExpiry time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		jwtSecret:     secret,
		sessionExpiry: sessionExpiry,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	if req.Email == "" {
		return model.UserResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.UserResponse{}, ErrPasswordRequired
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.UserResponse{}, err
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrDuplicateEmail
		}
		return model.UserResponse{}, err
	}

	return toUserResponse(user), nil
}

// Login authenticates a user and returns a session token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.LoginResponse{}, ErrUserNotFound
		}
		return model.LoginResponse{}, err
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		return model.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := crypto.GenerateSessionToken(user.ID, user.Email, s.jwtSecret, s.sessionExpiry)
	if err != nil {
		return model.LoginResponse{}, err
	}

	return model.LoginResponse{
		Message: "login successful",
		Token:   token,
	}, nil
}

// ChangePassword replaces the password of an account after checking the
// current one. The new password must differ from the current one.
func (s *AuthService) ChangePassword(ctx context.Context, req model.ChangePasswordRequest) error {
	if req.Email == "" || req.CurrentPassword == "" || req.NewPassword == "" {
		return ErrAllFieldsRequired
	}
	if req.CurrentPassword == req.NewPassword {
		return ErrSamePassword
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !crypto.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return toUserResponse(user), nil
}

func toUserResponse(user *model.User) model.UserResponse {
	return model.UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		CreatedViaOAuth: user.CreatedViaOAuth,
		CreatedAt:       user.CreatedAt,
	}
}
