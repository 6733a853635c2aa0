package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "cinehome"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInvalidState = errors.New("invalid oauth state")
)

// SessionClaims is the JWT payload of a session token: the authenticated
// identity carried by login and OAuth login/signup responses.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// ResetClaims is the JWT payload of a reset token: a short-lived
// authorization to change the password of one email. ID carries a jti so
// the reset service can enforce single use.
type ResetClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// StateClaims is the JWT payload round-tripped through the OAuth provider's
// state parameter. Signing it keeps the declared action tamper-proof.
type StateClaims struct {
	jwt.RegisteredClaims
	Action string `json:"action"`
}

// GenerateSessionToken creates a signed session token for the given user.
func GenerateSessionToken(userID int64, email, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateSessionToken parses and validates a session token string.
func ValidateSessionToken(tokenString, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := parseInto(tokenString, secret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateResetToken creates a signed reset token binding the email to a
// reset authorization for the given lifetime.
func GenerateResetToken(email, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateResetToken parses and validates a reset token string. Validity is
// signature plus expiry only; single-use bookkeeping belongs to the caller.
func ValidateResetToken(tokenString, secret string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := parseInto(tokenString, secret, claims); err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignState encodes an OAuth flow action into a signed state parameter.
// The short expiry bounds how long an authorization round trip may take.
func SignState(action, secret string) (string, error) {
	now := time.Now()
	claims := StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Action: action,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseState validates a state parameter and returns the action it encodes.
func ParseState(state, secret string) (string, error) {
	claims := &StateClaims{}
	if err := parseInto(state, secret, claims); err != nil {
		return "", ErrInvalidState
	}
	if claims.Action == "" {
		return "", ErrInvalidState
	}
	return claims.Action, nil
}

func parseInto(tokenString, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
