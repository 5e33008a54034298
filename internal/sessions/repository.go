package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/riftvoice/backend/internal/models"
	"github.com/riftvoice/backend/pkg/kv"
)

const (
	sessionPrefix = "session:"
	gamePrefix    = "game:"
)

var (
	// ErrSessionNotFound is returned when no session record exists for an id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrMappingNotFound is returned when no game mapping exists for a key.
	ErrMappingNotFound = errors.New("mapping not found")
)

// SessionKey is the store key of a session record.
func SessionKey(id string) string { return sessionPrefix + id }

// GameKey is the store key of a game-identity mapping. k is a session id or
// a normalized handle.
func GameKey(k string) string { return gamePrefix + k }

// Repository reads and writes session and mapping records. Records are JSON;
// the underlying store does not interpret them.
type Repository struct {
	store kv.Store
}

// NewRepository creates a session repository over a key-value store.
func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store}
}

// GetSession returns the session with the given id.
func (r *Repository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := r.get(ctx, SessionKey(id), &s); err != nil {
		if errors.Is(err, kv.ErrAbsent) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if s.Users == nil {
		s.Users = []models.User{}
	}
	return &s, nil
}

// PutSession writes the session record.
func (r *Repository) PutSession(ctx context.Context, s *models.Session) error {
	return r.put(ctx, SessionKey(s.SessionID), s)
}

// GetMapping returns the mapping stored under GameKey(key).
func (r *Repository) GetMapping(ctx context.Context, key string) (*models.Mapping, error) {
	var m models.Mapping
	if err := r.get(ctx, GameKey(key), &m); err != nil {
		if errors.Is(err, kv.ErrAbsent) {
			return nil, ErrMappingNotFound
		}
		return nil, err
	}
	return &m, nil
}

// PutMapping writes the mapping under GameKey(key).
func (r *Repository) PutMapping(ctx context.Context, key string, m *models.Mapping) error {
	return r.put(ctx, GameKey(key), m)
}

func (r *Repository) get(ctx context.Context, key string, dst any) error {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *Repository) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.store.Put(ctx, key, raw)
}
