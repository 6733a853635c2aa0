package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration. It is built once in main and
// handed to the components that need it — nothing reads the environment
// after startup.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Env         string `env:"ENV" envDefault:"development"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"root:password@tcp(127.0.0.1:3306)/cinehome?parseTime=true"`

	JWTSecret          string        `env:"JWT_SECRET" envDefault:"dev-secret-change-in-production"`
	SessionExpiry      time.Duration `env:"SESSION_EXPIRY" envDefault:"1h"`
	OAuthSessionExpiry time.Duration `env:"OAUTH_SESSION_EXPIRY" envDefault:"168h"`
	ResetTokenExpiry   time.Duration `env:"RESET_TOKEN_EXPIRY" envDefault:"15m"`
	VerifyCodeExpiry   time.Duration `env:"VERIFY_CODE_EXPIRY" envDefault:"10m"`

	Google   GoogleOAuth `envPrefix:"GOOGLE_"`
	GitHub   GitHubOAuth `envPrefix:"GITHUB_"`
	Frontend Frontend    `envPrefix:"FRONTEND_"`
	Mail     Mail        `envPrefix:"EMAIL_"`
}

// GoogleOAuth carries the Google client credentials and the per-flow
// callback URLs. A callback URL must match the Google console entry
// exactly; when empty the handlers fall back to the request host.
type GoogleOAuth struct {
	ClientID          string `env:"CLIENT_ID"`
	ClientSecret      string `env:"CLIENT_SECRET"`
	CallbackURL       string `env:"CALLBACK_URL"`
	LoginCallbackURL  string `env:"LOGIN_CALLBACK_URL"`
	SignupCallbackURL string `env:"SIGNUP_CALLBACK_URL"`
}

// GitHubOAuth carries the GitHub client credentials. GitHub is only used
// for the password-reset flow.
type GitHubOAuth struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	CallbackURL  string `env:"CALLBACK_URL"`
}

// Frontend holds the browser-facing URLs the OAuth callbacks redirect to.
type Frontend struct {
	ResetURL   string `env:"RESET_URL" envDefault:"http://localhost:3001/reset.html"`
	ProfileURL string `env:"PROFILE_URL" envDefault:"http://localhost:3001/profil.html"`
	LoginURL   string `env:"LOGIN_URL" envDefault:"http://localhost:3001/login.html"`
}

// Mail holds SMTP settings for verification-code delivery. When User or
// Password is empty the reset service runs in developer mode and returns
// codes in the API response instead of sending mail.
type Mail struct {
	Host     string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"PORT" envDefault:"587"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret-change-in-production" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set in production environment")
	}

	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.User
	}

	return cfg, nil
}
