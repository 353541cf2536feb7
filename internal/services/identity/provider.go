// Package identity owns the local participant: a logged-in member or an
// anonymous guest. Only the member token and profile are persisted.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/dependencies/random"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/storage"
)

// Persisted keys
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// MaxNicknameLength is counted in runes
const MaxNicknameLength = 32

// Authenticator exchanges credentials with the auth server
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (token string, profile model.Profile, err error)
}

// Resetter drops the shared channel connection
type Resetter interface {
	Reset()
}

// Provider holds at most one identity at a time
type Provider struct {
	auth    Authenticator
	storage storage.Storage
	random  random.Random
	channel Resetter
	logger  *slog.Logger

	mu       sync.Mutex
	current  *model.Identity
	onChange []func(*model.Identity)
}

// New creates a provider with no identity
func New(auth Authenticator, store storage.Storage, rnd random.Random, ch Resetter, logger *slog.Logger) *Provider {
	return &Provider{
		auth:    auth,
		storage: store,
		random:  rnd,
		channel: ch,
		logger:  logger.With(slog.String("component", "identity")),
	}
}

// OnChange registers fn to run after the identity is replaced or
// cleared. fn receives a copy, or nil after logout.
func (p *Provider) OnChange(fn func(*model.Identity)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = append(p.onChange, fn)
}

// Current returns a copy of the active identity, or nil
func (p *Provider) Current() *model.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clone(p.current)
}

// LoginWithCredentials authenticates a member and persists the token and
// profile. Failures are always *model.AuthError.
func (p *Provider) LoginWithCredentials(ctx context.Context, creds model.Credentials) (*model.Identity, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, &model.AuthError{
			Kind:    model.AuthInvalidCredentials,
			Message: "email and password are required",
		}
	}

	token, profile, err := p.auth.Login(ctx, creds)
	if err != nil {
		var authErr *model.AuthError
		if !errors.As(err, &authErr) {
			authErr = &model.AuthError{Kind: model.AuthUnknown, Message: "login failed", Err: err}
		}
		p.logger.Info("login failed",
			slog.String("kind", string(authErr.Kind)),
			slog.String("error", err.Error()))
		return nil, authErr
	}

	user, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}
	if err := p.storage.Set(ctx, KeyToken, token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	if err := p.storage.Set(ctx, KeyUser, string(user)); err != nil {
		return nil, fmt.Errorf("failed to persist profile: %w", err)
	}

	id := &model.Identity{Role: model.RoleMember, Token: token, Profile: profile}
	p.activate(id)

	p.logger.Info("logged in", slog.String("user_id", profile.ID))
	return clone(id), nil
}

// StartGuestSession creates an anonymous identity. Guests are never
// persisted.
func (p *Provider) StartGuestSession(nickname string) (*model.Identity, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return nil, model.ErrInvalidNickname
	}

	id := &model.Identity{
		Role:        model.RoleGuest,
		EphemeralID: p.random.ID("guest_"),
		Nickname:    nickname,
	}
	p.activate(id)

	p.logger.Info("guest session started", slog.String("guest_id", id.EphemeralID))
	return clone(id), nil
}

// Restore rebuilds the member identity from storage. It returns nil and
// no error when nothing usable is stored.
func (p *Provider) Restore(ctx context.Context) (*model.Identity, error) {
	token, err := p.storage.Get(ctx, KeyToken)
	if errors.Is(err, model.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user, err := p.storage.Get(ctx, KeyUser)
	if errors.Is(err, model.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var profile model.Profile
	if err := json.Unmarshal([]byte(user), &profile); err != nil || token == "" || profile.ID == "" {
		p.logger.Warn("discarding unreadable stored identity")
		return nil, nil
	}

	id := &model.Identity{Role: model.RoleMember, Token: token, Profile: profile}
	p.activate(id)

	p.logger.Debug("identity restored", slog.String("user_id", profile.ID))
	return clone(id), nil
}

// Logout clears the identity, drops the channel and deletes the stored
// credentials
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	hooks := append([]func(*model.Identity){}, p.onChange...)
	p.mu.Unlock()

	p.channel.Reset()
	for _, fn := range hooks {
		fn(nil)
	}

	if err := p.storage.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("failed to clear stored credentials: %w", err)
	}
	p.logger.Info("logged out")
	return nil
}

// activate replaces the current identity. A connection opened for the
// previous identity is dropped first.
func (p *Provider) activate(id *model.Identity) {
	p.mu.Lock()
	had := p.current != nil
	p.current = id
	hooks := append([]func(*model.Identity){}, p.onChange...)
	p.mu.Unlock()

	if had {
		p.channel.Reset()
	}
	for _, fn := range hooks {
		fn(clone(id))
	}
}

func clone(id *model.Identity) *model.Identity {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}
