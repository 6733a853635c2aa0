package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"time"

	"github.com/cinehome/cinehome-go/internal/config"
	"github.com/cinehome/cinehome-go/internal/crypto"
	"github.com/cinehome/cinehome-go/internal/model"
	"github.com/cinehome/cinehome-go/internal/repository"
)

// OAuthService turns a provider-verified email into this service's tokens
// and picks the frontend URL the user-agent is sent back to. The provider
// round trip itself lives in internal/oauth.
type OAuthService struct {
	users         UserStore
	jwtSecret     string
	resetExpiry   time.Duration
	sessionExpiry time.Duration
	frontend      config.Frontend
}

// NewOAuthService creates a new OAuthService. sessionExpiry is the OAuth
// session lifetime (longer than the login endpoint's default).
func NewOAuthService(users UserStore, secret string, resetExpiry, sessionExpiry time.Duration, frontend config.Frontend) *OAuthService {
	return &OAuthService{
		users:         users,
		jwtSecret:     secret,
		resetExpiry:   resetExpiry,
		sessionExpiry: sessionExpiry,
		frontend:      frontend,
	}
}

// ResetRedirect mints a reset token for the provider-verified email and
// returns the frontend reset URL carrying it. The account does not have to
// exist yet; the reset endpoint re-checks at consumption time.
func (s *OAuthService) ResetRedirect(email, provider string) (string, error) {
	token, err := crypto.GenerateResetToken(email, s.jwtSecret, s.resetExpiry)
	if err != nil {
		return "", err
	}

	return withParams(s.frontend.ResetURL, url.Values{
		"reset_token": {token},
		"source":      {provider},
	}), nil
}

// LoginRedirect logs in an existing account identified by the verified
// email. An unknown email redirects back to the login page with a marker
// instead of failing the request.
func (s *OAuthService) LoginRedirect(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return withParams(s.frontend.LoginURL, url.Values{
				"error": {"user_not_found"},
				"email": {email},
			}), nil
		}
		return "", err
	}

	token, err := crypto.GenerateSessionToken(user.ID, user.Email, s.jwtSecret, s.sessionExpiry)
	if err != nil {
		return "", err
	}

	return withParams(s.frontend.ProfileURL, url.Values{
		"token": {token},
		"email": {email},
	}), nil
}

// SignupRedirect creates an account for the verified email, or logs the
// user in when the account already exists. OAuth accounts get a random
// password that is never disclosed; they only ever log in via the provider.
func (s *OAuthService) SignupRedirect(ctx context.Context, email, provider string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return "", err
	}

	if user != nil {
		token, err := crypto.GenerateSessionToken(user.ID, user.Email, s.jwtSecret, s.sessionExpiry)
		if err != nil {
			return "", err
		}
		return withParams(s.frontend.ProfileURL, url.Values{
			"token":    {token},
			"email":    {email},
			"existing": {"true"},
		}), nil
	}

	password, err := crypto.GenerateRandomPassword()
	if err != nil {
		return "", err
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return "", err
	}

	user = &model.User{
		Email:           email,
		PasswordHash:    hash,
		CreatedViaOAuth: true,
		OAuthProvider:   sql.NullString{String: provider, Valid: true},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}

	token, err := crypto.GenerateSessionToken(user.ID, user.Email, s.jwtSecret, s.sessionExpiry)
	if err != nil {
		return "", err
	}

	return withParams(s.frontend.ProfileURL, url.Values{
		"token": {token},
		"email": {email},
		"new":   {"true"},
	}), nil
}

// FailureRedirect sends the user-agent back to the login page with a
// generic error marker. Provider error payloads stay in the server logs.
func (s *OAuthService) FailureRedirect(reason string) string {
	return withParams(s.frontend.LoginURL, url.Values{"error": {reason}})
}

func withParams(base string, params url.Values) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
