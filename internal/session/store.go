// Package session owns the persisted login state: the bearer token and the
// cached profile, kept under two fixed files in the state directory. It is
// the single writer of both; every other component reads through it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

const (
	tokenFile   = "af_token"
	profileFile = "af_user"
)

// ErrNoSession is returned by RefreshProfile when no token is stored.
var ErrNoSession = errors.New("session: no stored token")

// Store holds the authenticated session. Construct it before the API client,
// pass Token as the client's TokenSource, then Bind the client back.
type Store struct {
	dir    string
	logger *logging.Logger

	mu      sync.RWMutex
	token   string
	profile *api.Profile
	subs    []func(bool)

	client *api.Client
}

// NewStore loads any persisted session from dir, creating dir if needed.
func NewStore(dir string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("session: create state dir: %w", err)
	}
	s := &Store{dir: dir, logger: logger}

	if raw, err := os.ReadFile(filepath.Join(dir, tokenFile)); err == nil {
		s.token = string(raw)
	}
	if raw, err := os.ReadFile(filepath.Join(dir, profileFile)); err == nil {
		var p api.Profile
		if err := json.Unmarshal(raw, &p); err == nil {
			s.profile = &p
		} else {
			logger.Warn("session: discarding unreadable stored profile", "error", err)
		}
	}
	return s, nil
}

// Bind attaches the API client used for login and profile refresh.
func (s *Store) Bind(c *api.Client) {
	s.client = c
}

// Token returns the current bearer token, or "" when logged out. It is the
// TokenSource handed to the API client.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a token is stored.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Profile returns the cached profile, or nil when none is stored.
func (s *Store) Profile() *api.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Role returns the cached profile's role, or "" without a session.
func (s *Store) Role() api.Role {
	if p := s.Profile(); p != nil {
		return p.Role
	}
	return ""
}

// Subscribe registers a listener for the is-authenticated signal. The
// listener is invoked synchronously on every login and logout.
func (s *Store) Subscribe(fn func(authenticated bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Login exchanges credentials for a token, persists it, then refreshes and
// persists the full profile from /auth/me.
func (s *Store) Login(ctx context.Context, username, password string) (*api.Profile, error) {
	resp, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = resp.Token
	s.mu.Unlock()
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(resp.Token), 0o600); err != nil {
		s.logger.Warn("session: persist token failed", "error", err)
	}
	s.notify(true)

	profile, err := s.RefreshProfile(ctx)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// RefreshProfile fetches /auth/me and persists the result. Without a token
// it returns ErrNoSession. A 401/403 means the token went stale: the session
// is destroyed so the caller lands back at login.
func (s *Store) RefreshProfile(ctx context.Context) (*api.Profile, error) {
	if !s.Authenticated() {
		return nil, ErrNoSession
	}
	profile, err := s.client.Me(ctx)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && (apiErr.Status == 401 || apiErr.Status == 403) {
			s.logger.Info("session: token rejected, logging out")
			s.Logout()
		}
		return nil, err
	}

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
	raw, err := json.Marshal(profile)
	if err == nil {
		if err := os.WriteFile(filepath.Join(s.dir, profileFile), raw, 0o600); err != nil {
			s.logger.Warn("session: persist profile failed", "error", err)
		}
	}
	return profile, nil
}

// Logout removes the token and profile, both in memory and on disk.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.profile = nil
	s.mu.Unlock()

	_ = os.Remove(filepath.Join(s.dir, tokenFile))
	_ = os.Remove(filepath.Join(s.dir, profileFile))
	s.notify(false)
}

func (s *Store) notify(authenticated bool) {
	s.mu.RLock()
	subs := make([]func(bool), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(authenticated)
	}
}
