// Package oauth drives the three-legged authorization-code flow against
// the identity providers and recovers a verified email for the account
// flows. It knows nothing about users or tokens issued by this service.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

// Actions a flow instance can declare through the state parameter.
const (
	ActionLogin  = "login"
	ActionSignup = "signup"
	ActionReset  = "reset"
)

var (
	ErrTokenExchangeFailed = errors.New("token exchange failed")
	ErrEmailUnavailable    = errors.New("email not available from provider")
)

// Provider holds the client configuration for one identity provider.
// emailFunc fetches a verified email with the obtained access token.
type Provider struct {
	name       string
	config     oauth2.Config
	authParams []oauth2.AuthCodeOption
	emailFunc  func(ctx context.Context, client *http.Client) (string, error)
}

// Name returns the provider identifier used in redirect markers.
func (p *Provider) Name() string {
	return p.name
}

// NewGoogle creates the Google provider. Google supports the login, signup
// and reset flows; userinfo exposes a single account email.
func NewGoogle(clientID, clientSecret string) *Provider {
	return &Provider{
		name: "google",
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{"email", "profile"},
			Endpoint:     google.Endpoint,
		},
		authParams: []oauth2.AuthCodeOption{
			oauth2.AccessTypeOffline,
			oauth2.SetAuthURLParam("prompt", "consent"),
		},
		emailFunc: googleEmail("https://www.googleapis.com/oauth2/v2/userinfo"),
	}
}

// NewGitHub creates the GitHub provider, used for the reset flow only.
// GitHub exposes a list of emails; only one marked both primary and
// verified is acceptable.
func NewGitHub(clientID, clientSecret string) *Provider {
	return &Provider{
		name: "github",
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		emailFunc: githubEmail("https://api.github.com/user/emails"),
	}
}

// Configured reports whether client credentials are present.
func (p *Provider) Configured() bool {
	return p.config.ClientID != ""
}

// AuthURL builds the provider authorization URL for the given callback URL
// and state value.
func (p *Provider) AuthURL(redirectURL, state string) string {
	cfg := p.config
	cfg.RedirectURL = redirectURL
	return cfg.AuthCodeURL(state, p.authParams...)
}

// Exchange trades an authorization code for an access token. The redirect
// URL must match the one used to build the authorization URL.
func (p *Provider) Exchange(ctx context.Context, redirectURL, code string) (*oauth2.Token, error) {
	cfg := p.config
	cfg.RedirectURL = redirectURL

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}
	if token.AccessToken == "" {
		return nil, ErrTokenExchangeFailed
	}
	return token, nil
}

// FetchEmail retrieves the verified account email using the access token.
func (p *Provider) FetchEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	return p.emailFunc(ctx, p.config.Client(ctx, token))
}

func googleEmail(userInfoURL string) func(ctx context.Context, client *http.Client) (string, error) {
	return func(ctx context.Context, client *http.Client) (string, error) {
		var profile struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := getJSON(ctx, client, userInfoURL, &profile); err != nil {
			return "", err
		}
		if profile.Email == "" {
			return "", ErrEmailUnavailable
		}
		return profile.Email, nil
	}
}

func githubEmail(emailsURL string) func(ctx context.Context, client *http.Client) (string, error) {
	return func(ctx context.Context, client *http.Client) (string, error) {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, emailsURL, &emails); err != nil {
			return "", err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				return e.Email, nil
			}
		}
		return "", ErrEmailUnavailable
	}
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
