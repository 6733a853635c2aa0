package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/cinehome/cinehome-go/internal/crypto"
	"github.com/cinehome/cinehome-go/internal/oauth"
	"github.com/cinehome/cinehome-go/internal/service"
)

// Provider is the slice of internal/oauth the handlers need; tests inject
// fakes.
type Provider interface {
	Name() string
	Configured() bool
	AuthURL(redirectURL, state string) string
	Exchange(ctx context.Context, redirectURL, code string) (*oauth2.Token, error)
	FetchEmail(ctx context.Context, token *oauth2.Token) (string, error)
}

// OAuthHandler drives the provider redirect round trips. Each route is
// bound to one provider, one declared action and one callback URL; the
// signed state parameter carries the action through the provider.
type OAuthHandler struct {
	service   *service.OAuthService
	jwtSecret string
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(svc *service.OAuthService, secret string) *OAuthHandler {
	return &OAuthHandler{service: svc, jwtSecret: secret}
}

// Authorize returns the handler that starts an OAuth flow: it signs the
// state and redirects the user-agent to the provider's authorization URL.
func (h *OAuthHandler) Authorize(p Provider, action, configuredURL, callbackPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !p.Configured() {
			http.Error(w, p.Name()+" client not configured", http.StatusInternalServerError)
			return
		}

		state, err := crypto.SignState(action, h.jwtSecret)
		if err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		redirectURL := callbackURL(r, configuredURL, callbackPath)
		http.Redirect(w, r, p.AuthURL(redirectURL, state), http.StatusFound)
	}
}

// Callback returns the handler that completes an OAuth flow: it validates
// the state, exchanges the code, fetches the verified email and branches on
// the declared action. Login and signup failures redirect back to the
// frontend with a marker; reset failures answer the HTTP request directly.
func (h *OAuthHandler) Callback(p Provider, action, configuredURL, callbackPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		reset := action == oauth.ActionReset

		if errParam := q.Get("error"); errParam != "" {
			slog.Warn("oauth provider returned error", "provider", p.Name(), "error", errParam)
			if reset {
				http.Error(w, "authorization failed", http.StatusBadRequest)
				return
			}
			http.Redirect(w, r, h.service.FailureRedirect("oauth_failed"), http.StatusFound)
			return
		}

		code := q.Get("code")
		if code == "" {
			if reset {
				http.Error(w, "no authorization code received", http.StatusBadRequest)
				return
			}
			http.Redirect(w, r, h.service.FailureRedirect("no_code"), http.StatusFound)
			return
		}

		stateAction, err := crypto.ParseState(q.Get("state"), h.jwtSecret)
		if err != nil || stateAction != action {
			slog.Warn("oauth state rejected", "provider", p.Name(), "error", err)
			if reset {
				http.Error(w, "invalid oauth state", http.StatusBadRequest)
				return
			}
			http.Redirect(w, r, h.service.FailureRedirect("invalid_state"), http.StatusFound)
			return
		}

		redirectURL := callbackURL(r, configuredURL, callbackPath)
		token, err := p.Exchange(r.Context(), redirectURL, code)
		if err != nil {
			slog.Error("oauth token exchange failed", "provider", p.Name(), "error", err)
			h.failUpstream(w, r, reset)
			return
		}

		email, err := p.FetchEmail(r.Context(), token)
		if err != nil {
			if errors.Is(err, oauth.ErrEmailUnavailable) {
				if reset {
					http.Error(w, "email not available from "+p.Name(), http.StatusBadRequest)
					return
				}
				http.Redirect(w, r, h.service.FailureRedirect("no_email"), http.StatusFound)
				return
			}
			slog.Error("oauth identity fetch failed", "provider", p.Name(), "error", err)
			h.failUpstream(w, r, reset)
			return
		}

		var target string
		switch action {
		case oauth.ActionReset:
			target, err = h.service.ResetRedirect(email, p.Name())
		case oauth.ActionLogin:
			target, err = h.service.LoginRedirect(r.Context(), email)
		case oauth.ActionSignup:
			target, err = h.service.SignupRedirect(r.Context(), email, p.Name())
		default:
			err = crypto.ErrInvalidState
		}
		if err != nil {
			slog.Error("oauth flow completion failed", "provider", p.Name(), "action", action, "error", err)
			h.failUpstream(w, r, reset)
			return
		}

		http.Redirect(w, r, target, http.StatusFound)
	}
}

func (h *OAuthHandler) failUpstream(w http.ResponseWriter, r *http.Request, reset bool) {
	if reset {
		http.Error(w, "oauth failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.service.FailureRedirect("oauth_failed"), http.StatusFound)
}

// callbackURL picks the redirect URL the provider is told, preferring the
// configured value. The fallback rebuilds it from the request, honoring
// X-Forwarded-Proto so TLS-terminating proxies still produce the externally
// visible scheme.
func callbackURL(r *http.Request, configured, path string) string {
	if configured != "" {
		return configured
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + path
}
