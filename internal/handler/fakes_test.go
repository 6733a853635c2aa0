package handler

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/cinehome/cinehome-go/internal/model"
	"github.com/cinehome/cinehome-go/internal/repository"
)

const testSecret = "test-secret"

// fakeUserStore is an in-memory service.UserStore for handler tests.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.Email] = &cp
	return nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = hash
			u.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrUserNotFound
}

// fakeProvider implements Provider without talking to a real identity
// provider.
type fakeProvider struct {
	name        string
	configured  bool
	exchangeErr error
	email       string
	emailErr    error
}

func (p *fakeProvider) Name() string     { return p.name }
func (p *fakeProvider) Configured() bool { return p.configured }

func (p *fakeProvider) AuthURL(redirectURL, state string) string {
	v := url.Values{}
	v.Set("redirect_uri", redirectURL)
	v.Set("state", state)
	return "https://provider.example/authorize?" + v.Encode()
}

func (p *fakeProvider) Exchange(ctx context.Context, redirectURL, code string) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "provider-token"}, nil
}

func (p *fakeProvider) FetchEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	if p.emailErr != nil {
		return "", p.emailErr
	}
	return p.email, nil
}
