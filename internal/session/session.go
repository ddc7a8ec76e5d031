// Package session holds the current authenticated identity and persists it
// under the "user" key of the backing store.
//
// Credentials are two fixed placeholder pairs. There is no hashing and no
// rate limiting; this is a local mock login, not a security boundary.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/clinicdesk/internal/domain"
	"github.com/roach88/clinicdesk/internal/kv"
	"github.com/roach88/clinicdesk/internal/metrics"
)

type credential struct {
	password string
	role     domain.Role
}

var credentials = map[string]credential{
	"admin": {password: "admin", role: domain.RoleAdmin},
	"staff": {password: "staff", role: domain.RoleStaff},
}

// Options configures a Store.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Schema  *domain.Schema
}

// Store owns the current identity.
type Store struct {
	backend kv.Backend
	logger  *slog.Logger
	metrics *metrics.Metrics
	current *domain.Identity
}

// Open loads the persisted identity, if any.
//
// A persisted identity that does not match the schema is discarded and
// removed from the backend; the store starts logged out.
func Open(ctx context.Context, backend kv.Backend, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{backend: backend, logger: logger, metrics: opts.Metrics}

	raw, ok, err := backend.Get(ctx, kv.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return s, nil
	}

	id, err := decodeIdentity(opts.Schema, raw)
	if err != nil {
		logger.Warn("discarding malformed session", "error", err)
		if err := backend.Remove(ctx, kv.KeyUser); err != nil {
			return nil, fmt.Errorf("clear session: %w", err)
		}
		return s, nil
	}
	s.current = &id
	return s, nil
}

func decodeIdentity(schema *domain.Schema, raw string) (domain.Identity, error) {
	if schema != nil {
		if err := schema.Check(domain.DefIdentity, []byte(raw)); err != nil {
			return domain.Identity{}, err
		}
	}
	var id domain.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return domain.Identity{}, fmt.Errorf("decode session: %w", err)
	}
	return id, nil
}

// Current returns a copy of the current identity, or nil when logged out.
func (s *Store) Current() *domain.Identity {
	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

// Login matches username and password against the fixed credentials.
// On a match the identity is set and persisted and Login returns true.
// On a mismatch nothing changes and Login returns false with a nil error.
func (s *Store) Login(ctx context.Context, username, password string) (bool, error) {
	cred, ok := credentials[username]
	if !ok || cred.password != password {
		s.metrics.Session("login", "rejected")
		s.logger.Info("login rejected", "username", username)
		return false, nil
	}

	id := domain.Identity{ID: cred.role.IdentityID(), Username: username, Role: cred.role}
	if err := s.set(ctx, id); err != nil {
		return false, err
	}
	s.metrics.Session("login", "ok")
	s.logger.Info("logged in", "username", username, "role", id.Role)
	return true, nil
}

// Signup sets and persists a new identity with the given role.
//
// It has no rejection path: input checks belong to the caller, and the
// result is always true unless the backend fails. The stored username is
// NFC-normalized so composed and decomposed spellings compare equal.
func (s *Store) Signup(ctx context.Context, username, password string, role domain.Role) (bool, error) {
	username = norm.NFC.String(username)
	id := domain.Identity{ID: role.IdentityID(), Username: username, Role: role}
	if err := s.set(ctx, id); err != nil {
		return false, err
	}
	s.metrics.Session("signup", "ok")
	s.logger.Info("signed up", "username", username, "role", role)
	return true, nil
}

// Logout clears the identity. It does nothing when already logged out.
func (s *Store) Logout(ctx context.Context) error {
	if s.current == nil {
		return nil
	}
	if err := s.backend.Remove(ctx, kv.KeyUser); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info("logged out", "username", s.current.Username)
	s.current = nil
	s.metrics.Session("logout", "ok")
	return nil
}

// set persists id before making it current.
func (s *Store) set(ctx context.Context, id domain.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.backend.Set(ctx, kv.KeyUser, string(data)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.current = &id
	return nil
}
