// Package session holds the authenticated identity and its bearer token and
// persists both, as a pair, in the metadata repository.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/fraudwatch/internal/client/models"
	"github.com/dmitrijs2005/fraudwatch/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fraudwatch/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Slot names in the metadata repository.
const (
	IdentitySlot = "fraudDetectionUser"
	TokenSlot    = "authToken"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrIncompleteLogin  = errors.New("login requires an identity with id and email and a token")
)

type Identity = models.Identity

// Store is the process-wide session. The zero value is not usable; build it
// with NewStore.
type Store struct {
	mu       sync.RWMutex
	repo     metadata.Repository
	log      logging.Logger
	now      func() time.Time
	identity *Identity
	token    string
}

func NewStore(repo metadata.Repository, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{repo: repo, log: log, now: time.Now}
}

// Restore loads the persisted pair. Anything unusable (missing half, bad
// JSON, no id or email, expired token) is treated as logged out and erased.
// It reports whether a session was restored.
func (s *Store) Restore(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity, s.token = nil, ""

	rawIdentity, err := s.repo.Get(ctx, IdentitySlot)
	if err != nil {
		s.log.Warn(ctx, "session restore: read identity", "err", err)
		return false
	}
	rawToken, err := s.repo.Get(ctx, TokenSlot)
	if err != nil {
		s.log.Warn(ctx, "session restore: read token", "err", err)
		return false
	}

	if rawIdentity == nil && rawToken == nil {
		return false
	}

	identity, reason := s.validate(rawIdentity, string(rawToken))
	if reason != "" {
		s.log.Warn(ctx, "discarding persisted session", "reason", reason)
		if err := s.repo.DeleteMany(ctx, IdentitySlot, TokenSlot); err != nil {
			s.log.Error(ctx, "session restore: erase slots", "err", err)
		}
		return false
	}

	s.identity = identity
	s.token = string(rawToken)
	s.log.Info(ctx, "session restored", "email", identity.Email, "role", identity.Role.String())
	return true
}

func (s *Store) validate(rawIdentity []byte, token string) (*Identity, string) {
	if rawIdentity == nil {
		return nil, "identity missing"
	}
	var identity Identity
	if err := json.Unmarshal(rawIdentity, &identity); err != nil {
		return nil, "identity malformed"
	}
	if identity.ID == "" || identity.Email == "" {
		return nil, "identity incomplete"
	}
	if token == "" {
		return nil, "token missing"
	}
	if tokenExpired(token, s.now()) {
		return nil, "token expired"
	}
	return &identity, ""
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// The signature is not checked. Non-JWT tokens are opaque and never expire
// locally.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

// Login makes identity current and persists it with token. Nothing changes
// if persisting fails.
func (s *Store) Login(ctx context.Context, identity Identity, token string) error {
	if identity.ID == "" || identity.Email == "" || token == "" {
		return ErrIncompleteLogin
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SetMany(ctx, map[string][]byte{
		IdentitySlot: raw,
		TokenSlot:    []byte(token),
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.identity = &identity
	s.token = token
	s.log.Info(ctx, "logged in", "email", identity.Email, "role", identity.Role.String())
	return nil
}

// Logout forgets the session. It is safe to call when already logged out.
// The in-memory session is cleared even if erasing the slots fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasAuthenticated := s.identity != nil
	if err := s.clear(ctx); err != nil {
		return err
	}
	if wasAuthenticated {
		s.log.Info(ctx, "logged out")
	}
	return nil
}

// Expire is Logout for a session the service rejected.
func (s *Store) Expire(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Warn(ctx, "session rejected by service, logging out")
	if err := s.clear(ctx); err != nil {
		s.log.Error(ctx, "expire session", "err", err)
	}
}

func (s *Store) clear(ctx context.Context) error {
	s.identity, s.token = nil, ""
	if err := s.repo.DeleteMany(ctx, IdentitySlot, TokenSlot); err != nil {
		return fmt.Errorf("erase session: %w", err)
	}
	return nil
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// CurrentIdentity returns a copy of the identity, or nil when logged out.
func (s *Store) CurrentIdentity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	identity := *s.identity
	return &identity
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Require returns the current identity or ErrNotAuthenticated.
func (s *Store) Require() (*Identity, error) {
	identity := s.CurrentIdentity()
	if identity == nil {
		return nil, ErrNotAuthenticated
	}
	return identity, nil
}
