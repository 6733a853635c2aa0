package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/cinehome/cinehome-go/internal/config"
	"github.com/cinehome/cinehome-go/internal/handler"
	"github.com/cinehome/cinehome-go/internal/mail"
	"github.com/cinehome/cinehome-go/internal/middleware"
	"github.com/cinehome/cinehome-go/internal/oauth"
	"github.com/cinehome/cinehome-go/internal/repository"
	"github.com/cinehome/cinehome-go/internal/service"
	"github.com/cinehome/cinehome-go/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	kv := store.NewMemory()

	var mailer mail.Mailer
	if cfg.Mail.User != "" && cfg.Mail.Password != "" {
		mailer = mail.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From)
	} else {
		slog.Warn("EMAIL_USER or EMAIL_PASSWORD not set — verification codes will be returned in responses")
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.SessionExpiry)
	resetService := service.NewResetService(userRepo, kv, mailer, cfg.JWTSecret, cfg.VerifyCodeExpiry, cfg.ResetTokenExpiry)
	oauthService := service.NewOAuthService(userRepo, cfg.JWTSecret, cfg.ResetTokenExpiry, cfg.OAuthSessionExpiry, cfg.Frontend)

	authHandler := handler.NewAuthHandler(authService)
	resetHandler := handler.NewResetHandler(resetService)
	oauthHandler := handler.NewOAuthHandler(oauthService, cfg.JWTSecret)

	google := oauth.NewGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret)
	github := oauth.NewGitHub(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/register", authHandler.HandleRegister)
		r.Post("/api/login", authHandler.HandleLogin)
		r.Post("/api/forgot-password", resetHandler.HandleForgotPassword)
		r.Post("/api/verify-reset-code", resetHandler.HandleVerifyResetCode)
		r.Post("/api/reset-password", resetHandler.HandleResetPassword)
		r.Post("/api/change-password", authHandler.HandleChangePassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Get("/api/me", authHandler.HandleMe)
	})

	// OAuth flows. GitHub only supports password recovery; Google also
	// supports login and signup, each with its own callback.
	r.Get("/auth/github",
		oauthHandler.Authorize(github, oauth.ActionReset, cfg.GitHub.CallbackURL, "/auth/github/callback"))
	r.Get("/auth/github/callback",
		oauthHandler.Callback(github, oauth.ActionReset, cfg.GitHub.CallbackURL, "/auth/github/callback"))

	r.Get("/auth/google",
		oauthHandler.Authorize(google, oauth.ActionReset, cfg.Google.CallbackURL, "/auth/google/callback"))
	r.Get("/auth/google/callback",
		oauthHandler.Callback(google, oauth.ActionReset, cfg.Google.CallbackURL, "/auth/google/callback"))
	r.Get("/auth/google/login",
		oauthHandler.Authorize(google, oauth.ActionLogin, cfg.Google.LoginCallbackURL, "/auth/google/login/callback"))
	r.Get("/auth/google/login/callback",
		oauthHandler.Callback(google, oauth.ActionLogin, cfg.Google.LoginCallbackURL, "/auth/google/login/callback"))
	r.Get("/auth/google/signup",
		oauthHandler.Authorize(google, oauth.ActionSignup, cfg.Google.SignupCallbackURL, "/auth/google/signup/callback"))
	r.Get("/auth/google/signup/callback",
		oauthHandler.Callback(google, oauth.ActionSignup, cfg.Google.SignupCallbackURL, "/auth/google/signup/callback"))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
