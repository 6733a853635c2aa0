package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cinehome/cinehome-go/internal/crypto"
	"github.com/cinehome/cinehome-go/internal/mail"
	"github.com/cinehome/cinehome-go/internal/model"
	"github.com/cinehome/cinehome-go/internal/repository"
	"github.com/cinehome/cinehome-go/internal/store"
)

var (
	ErrEmailAndCodeRequired = errors.New("email and code are required")
	ErrResetFieldsRequired  = errors.New("resetToken and newPassword are required")
	ErrCodeNotFound         = errors.New("code not found or expired")
	ErrCodeExpired          = errors.New("code expired")
	ErrCodeMismatch         = errors.New("incorrect code")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
)

// Ephemeral state lives in one KV store; the prefixes keep pending codes
// and consumed token IDs apart.
const (
	codeKeyPrefix = "code:"
	jtiKeyPrefix  = "jti:"
)

// ResetService implements the code-based password-recovery flow: issue a
// short-lived emailed code, trade it for a reset token, consume the token.
type ResetService struct {
	users       UserStore
	kv          store.KV
	mailer      mail.Mailer
	jwtSecret   string
	codeExpiry  time.Duration
	tokenExpiry time.Duration
}

// NewResetService creates a new ResetService. A nil mailer switches the
// service into developer mode: codes are returned in the API response.
func NewResetService(users UserStore, kv store.KV, mailer mail.Mailer, secret string, codeExpiry, tokenExpiry time.Duration) *ResetService {
	return &ResetService{
		users:       users,
		kv:          kv,
		mailer:      mailer,
		jwtSecret:   secret,
		codeExpiry:  codeExpiry,
		tokenExpiry: tokenExpiry,
	}
}

// Forgot issues a verification code for the email and attempts delivery.
// The response is success-shaped whether or not the account exists, so the
// endpoint cannot be used to enumerate registered emails.
func (s *ResetService) Forgot(ctx context.Context, email string) (model.ForgotPasswordResponse, error) {
	if email == "" {
		return model.ForgotPasswordResponse{}, ErrEmailRequired
	}

	generic := model.ForgotPasswordResponse{
		Message:   "if the email exists, you will receive a code shortly",
		ExpiresIn: s.expiresIn(),
	}

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return generic, nil
		}
		return model.ForgotPasswordResponse{}, err
	}

	code, err := crypto.GenerateVerificationCode()
	if err != nil {
		return model.ForgotPasswordResponse{}, err
	}

	// A new request supersedes any pending code for the same email.
	s.kv.Set(codeKeyPrefix+email, code, s.codeExpiry)

	if s.mailer == nil {
		slog.Warn("mail delivery not configured, returning code in response", "email", email)
		return model.ForgotPasswordResponse{
			Message:   generic.Message,
			ExpiresIn: generic.ExpiresIn,
			Code:      code,
			DevMode:   true,
		}, nil
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		// The code stays pending; failure must not reveal whether the
		// email exists, so the caller still sees the generic response.
		slog.Error("sending verification code failed", "error", err)
		return generic, nil
	}

	return generic, nil
}

// VerifyCode checks a submitted code against the pending one for the email
// and mints a reset token on success. Codes are one-time: a verified or
// expired code is removed immediately.
func (s *ResetService) VerifyCode(ctx context.Context, email, code string) (model.VerifyResetCodeResponse, error) {
	if email == "" || code == "" {
		return model.VerifyResetCodeResponse{}, ErrEmailAndCodeRequired
	}

	stored, expiresAt, ok := s.kv.Get(codeKeyPrefix + email)
	if !ok {
		return model.VerifyResetCodeResponse{}, ErrCodeNotFound
	}

	if time.Now().After(expiresAt) {
		s.kv.Delete(codeKeyPrefix + email)
		return model.VerifyResetCodeResponse{}, ErrCodeExpired
	}

	if stored != strings.TrimSpace(code) {
		return model.VerifyResetCodeResponse{}, ErrCodeMismatch
	}

	s.kv.Delete(codeKeyPrefix + email)

	token, err := crypto.GenerateResetToken(email, s.jwtSecret, s.tokenExpiry)
	if err != nil {
		return model.VerifyResetCodeResponse{}, err
	}

	return model.VerifyResetCodeResponse{
		Message:    "code verified successfully",
		ResetToken: token,
	}, nil
}

// Reset consumes a reset token and persists the new password. Each token is
// accepted once: its jti is recorded until the token would have expired.
func (s *ResetService) Reset(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return ErrResetFieldsRequired
	}

	claims, err := crypto.ValidateResetToken(resetToken, s.jwtSecret)
	if err != nil {
		return ErrInvalidResetToken
	}

	if _, _, used := s.kv.Get(jtiKeyPrefix + claims.ID); used {
		return ErrInvalidResetToken
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.kv.Set(jtiKeyPrefix+claims.ID, "used", time.Until(claims.ExpiresAt.Time))
	return nil
}

func (s *ResetService) expiresIn() string {
	return fmt.Sprintf("%d minutes", int(s.codeExpiry.Minutes()))
}
